package render

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// listEnd terminates every numeric list RORB reads from the storm file.
const listEnd = ", -99"

// fixed formats v with exactly places decimals. The exact binary value is
// rounded half to even, so 0.125 gives "0.12" and 2.675 gives "2.67".
func fixed(v float64, places int32) string {
	d, ok := exactDecimal(v)
	if !ok {
		return strconv.FormatFloat(v, 'f', int(places), 64)
	}
	return d.RoundBank(places).StringFixed(places)
}

// rounded rounds v to places decimals like fixed, then writes the result
// in its shortest form ("3.0", "1.23").
func rounded(v float64, places int32) string {
	d, ok := exactDecimal(v)
	if !ok {
		return plainFloat(v)
	}
	f, _ := d.RoundBank(places).Float64()
	return plainFloat(f)
}

// exactDecimal returns the decimal equal to v's binary value. NaN and the
// infinities have none.
func exactDecimal(v float64) (decimal.Decimal, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Decimal{}, false
	}
	frac, exp := math.Frexp(v)
	// v = mant * 2^exp with an integral mant.
	mant := int64(math.Ldexp(frac, 53))
	exp -= 53
	m := big.NewInt(mant)
	if exp >= 0 {
		m.Lsh(m, uint(exp))
		return decimal.NewFromBigInt(m, 0), true
	}
	// mant * 2^-n == mant * 5^n * 10^-n
	n := int64(-exp)
	m.Mul(m, new(big.Int).Exp(big.NewInt(5), big.NewInt(n), nil))
	return decimal.NewFromBigInt(m, int32(-n)), true
}

func fixedAll(values []float64, places int32) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fixed(v, places)
	}
	return out
}

func intItems(values ...int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.Itoa(v)
	}
	return out
}

// plainFloat writes v in its shortest exact form, always with a decimal
// point ("0.25", "1.0").
func plainFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// formatList joins items with ", ", perLine items to a line, and appends end.
func formatList(items []string, perLine int, end string) string {
	if perLine < 1 {
		perLine = 1
	}
	var lines []string
	for i := 0; i < len(items); i += perLine {
		j := min(i+perLine, len(items))
		lines = append(lines, strings.Join(items[i:j], ", "))
	}
	return strings.Join(lines, "\n") + end
}

// oneLine joins all items on a single line.
func oneLine(items []string) string {
	return formatList(items, len(items), "")
}

// roundHalfEven rounds to the nearest integer, ties to even.
func roundHalfEven(v float64) int {
	return int(math.RoundToEven(v))
}
