package report

import (
	"strconv"
	"strings"
)

// state is the position of a table scanner.
type state int

const (
	// stateSeeking looks for the next table header.
	stateSeeking state = iota
	// stateHeader has read a header and expects the units row or data.
	stateHeader
	// stateBody collects data rows.
	stateBody
	// stateClosed ends the section.
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateSeeking:
		return "seeking"
	case stateHeader:
		return "header"
	case stateBody:
		return "body"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

// span is a half-open range of report line indices.
type span struct {
	from, to int
}

// table is one parsed block of columns.
type table struct {
	header []string
	line   int // 1-based line of the header
	rows   [][]float64
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// fields splits a row on any run of whitespace. Report columns are
// right-aligned with variable padding, so widths are not significant.
func fields(line string) []string {
	return strings.Fields(line)
}

// isSeparator reports rows made only of rule characters, which RORB prints
// above totals.
func isSeparator(line string) bool {
	t := strings.TrimSpace(line)
	if t == "" {
		return false
	}
	return strings.Trim(t, "-=_* ") == ""
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// numericRow parses every cell of a row; idx is the first bad cell.
func numericRow(cells []string) (row []float64, idx int, ok bool) {
	row = make([]float64, len(cells))
	for i, c := range cells {
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, i, false
		}
		row[i] = v
	}
	return row, -1, true
}
