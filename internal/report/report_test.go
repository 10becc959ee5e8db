package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/registry"
	"github.com/daryltucker/rorb-fews/internal/testutil"
)

func lineNumber(t *testing.T, text, needle string) int {
	t.Helper()
	for i, l := range splitLines(text) {
		if strings.Contains(l, needle) {
			return i + 1
		}
	}
	t.Fatalf("%q not in text", needle)
	return 0
}

func byKey(records []*model.Record) map[string]*model.Record {
	out := make(map[string]*model.Record, len(records))
	for _, r := range records {
		out[r.Key().String()] = r
	}
	return out
}

func parseErr(t *testing.T, err error) *model.OutputParseError {
	t.Helper()
	require.Error(t, err)
	var pe *model.OutputParseError
	require.True(t, errors.As(err, &pe), "got %T: %v", err, err)
	return pe
}

func TestParse(t *testing.T) {
	testutil.UseTestLogger(t)
	reg := testutil.NewRegistry(t)
	loc := reg.Location()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, loc)

	records, err := Parse(
		Report{Name: "run.out", Text: testutil.ReportOut},
		[]Trace{{Storage: "410571", Name: "HappyJacks.csv", Text: testutil.TraceCSV}},
		reg, Timing{})
	require.NoError(t, err)
	require.Len(t, records, 3+2+5)

	// Excess records come in table order.
	assert.Equal(t, "A", records[0].Element.Name)
	assert.Equal(t, "C", records[1].Element.Name)
	assert.Equal(t, "B", records[2].Element.Name)

	got := byKey(records)

	a := got["A P.fcst.excess"]
	require.NotNil(t, a)
	assert.Equal(t, model.KindSubarea, a.Element.Kind)
	assert.Equal(t, "mm", a.Unit)
	assert.Equal(t, start, a.Start)
	assert.Equal(t, 15*time.Minute, a.Step)
	assert.Equal(t, []float64{0.5, 1.25}, a.Values)
	assert.Equal(t, []float64{0, 2}, got["C P.fcst.excess"].Values)
	assert.Equal(t, []float64{0.1, 0.2}, got["B P.fcst.excess"].Values)

	q1 := got["410574 Q.fcst"]
	require.NotNil(t, q1)
	assert.Equal(t, model.KindGauge, q1.Element.Kind)
	assert.Equal(t, "m3/s", q1.Unit)
	assert.Equal(t, []float64{1.2, 3.4, 5.6}, q1.Values)
	assert.Equal(t, start.Add(30*time.Minute), q1.End())
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, got["410575 Q.fcst"].Values)

	h := got["410571 H.fcst"]
	require.NotNil(t, h)
	assert.Equal(t, model.KindStorage, h.Element.Kind)
	assert.Equal(t, "mSMD", h.Unit)
	assert.Equal(t, time.Hour, h.Step)
	assert.Equal(t, []float64{1082.5, 1082.6}, h.Values)
	assert.Equal(t, []float64{0.25, 1}, got["410571 G.fcst"].Values)
}

func TestParse_HydrographOffsets(t *testing.T) {
	testutil.UseTestLogger(t)
	reg, err := registry.Load([]byte(`
elements:
  - {kind: subarea, name: A, order: 0, optional: true}
  - {kind: gauge, name: "410574", order: 0, column: Hyd001}
`), []byte(`
timezone: Australia/Sydney
pi_time_zone: AET
timesteps_minutes: {rain: 15, gateops: 60, transfer: 60, operation: 60}
`))
	require.NoError(t, err)

	text := "Input of parameters:\nRouting results:\n Inc Hyd001\n 0 1.2\n 1 3.4\n 2 5.6\n"
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, reg.Location())

	records, err := Parse(Report{Name: "run.out", Text: text}, nil, reg, Timing{Start: start, Step: time.Hour})
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, []time.Time{start, start.Add(time.Hour), start.Add(2 * time.Hour)}, r.Times())
	assert.Equal(t, []float64{1.2, 3.4, 5.6}, r.Values)
}

func TestParse_MissingExcessSection(t *testing.T) {
	testutil.UseTestLogger(t)
	reg := testutil.NewRegistry(t)
	text := strings.Replace(testutil.ReportOut, "Input of parameters:", "Input parameters", 1)

	records, err := Parse(Report{Name: "run.out", Text: text}, nil, reg, Timing{})
	pe := parseErr(t, err)
	assert.Nil(t, records)
	assert.Equal(t, SectionExcess, pe.Section)
	assert.Equal(t, "run.out", pe.File)
	assert.Contains(t, err.Error(), `section "rainfall excess"`)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		fallback Timing
		section  string
		line     string // text of the offending line, when tied to one
		msg      string
	}{
		{
			name:    "non-numeric excess cell",
			old:     "1.25   2.00",
			new:     "1.2x   2.00",
			section: SectionExcess,
			line:    "1.2x",
			msg:     `non-numeric value "1.2x" in column 1`,
		},
		{
			name:    "short excess row",
			old:     "    2     1    5.0   0.20",
			new:     "    2     1    5.0",
			section: SectionExcess,
			line:    "    2     1    5.0",
			msg:     "row has 3 columns",
		},
		{
			name:    "unterminated excess table",
			old:     " Tot.               4.05\n",
			new:     "",
			section: SectionExcess,
			msg:     "before its \"Tot.\" line",
		},
		{
			name:    "pluvio reference out of range",
			old:     "Pluvi. ref. no.   2",
			new:     "Pluvi. ref. no.   7",
			section: SectionExcess,
			line:    "Pluvi. ref. no.   7",
			msg:     "pluvio reference 7 outside 1..3",
		},
		{
			name:    "value columns do not match references",
			old:     "Pluvi. ref. no.   1  3",
			new:     "Pluvi. ref. no.   1",
			section: SectionExcess,
			msg:     "2 value columns for 1 pluvio references",
		},
		{
			name:    "pluvio group dropped",
			old:     " Pluvi. ref. no.   2\n",
			new:     "",
			section: SectionExcess,
			msg:     "no rainfall excess for subareas B",
		},
		{
			name:    "excess rows short of the simulation period",
			old:     "2024-01-01 00:00:00 - 2024-01-01 00:15:00",
			new:     "2024-01-01 00:00:00 - 2024-01-01 01:00:00",
			section: SectionExcess,
			line:    " Incs  ment  area     1      3",
			msg:     "table has 2 rows, simulation period 2024-01-01 00:00:00 - 2024-01-01 01:00:00 at 15m0s needs 5",
		},
		{
			name:    "excess rows past the simulation period",
			old:     "2024-01-01 00:00:00 - 2024-01-01 00:15:00",
			new:     "2024-01-01 00:00:00 - 2024-01-01 00:00:00",
			section: SectionExcess,
			line:    " Incs  ment  area     1      3",
			msg:     "needs 1",
		},
		{
			name:    "period ends before it starts",
			old:     "2024-01-01 00:00:00 - 2024-01-01 00:15:00",
			new:     "2024-01-01 00:00:00 - 2023-12-31 23:45:00",
			section: SectionTiming,
			line:    "Simulation period",
			msg:     `bad end time "2023-12-31 23:45:00"`,
		},
		{
			name:    "hydrograph block with fewer rows",
			old:     "   2     0.3\n",
			new:     "",
			section: SectionHydrograph,
			line:    " Inc   Hyd002",
			msg:     "column block has 2 rows",
		},
		{
			name:    "gauge column missing",
			old:     " Inc   Hyd002",
			new:     " Inc   Hyd009",
			section: SectionHydrograph,
			msg:     `column Hyd002 of gauge "410575" not found`,
		},
		{
			name:    "non-numeric hydrograph cell",
			old:     "   1     3.4    9.1",
			new:     "   1     ***    9.1",
			section: SectionHydrograph,
			line:    "***",
			msg:     `non-numeric value "***" in column Hyd001`,
		},
		{
			name:    "no timing anywhere",
			old:     " Time increment  0.25 hours\n",
			new:     "",
			section: SectionTiming,
			msg:     "no time increment",
		},
		{
			name:     "fallback step covers missing increment",
			old:      " Time increment  0.25 hours\n",
			new:      "",
			fallback: Timing{Step: 15 * time.Minute},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.UseTestLogger(t)
			reg := testutil.NewRegistry(t)
			require.Contains(t, testutil.ReportOut, tt.old)
			text := strings.Replace(testutil.ReportOut, tt.old, tt.new, 1)

			records, err := Parse(Report{Name: "run.out", Text: text}, nil, reg, tt.fallback)
			if tt.section == "" {
				require.NoError(t, err)
				assert.Len(t, records, 5)
				return
			}
			pe := parseErr(t, err)
			assert.Nil(t, records)
			assert.Equal(t, tt.section, pe.Section)
			if tt.line != "" {
				assert.Equal(t, lineNumber(t, text, tt.line), pe.Line)
			}
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParse_OptionalSubareaMayBeMissing(t *testing.T) {
	testutil.UseTestLogger(t)
	reg, err := registry.Load([]byte(`
elements:
  - {kind: subarea, name: A, order: 0}
  - {kind: subarea, name: B, order: 1, optional: true}
  - {kind: subarea, name: C, order: 2}
`), []byte(testutil.ConventionsYAML))
	require.NoError(t, err)
	text := strings.Replace(testutil.ReportOut, " Pluvi. ref. no.   2\n", "", 1)

	records, err := Parse(Report{Name: "run.out", Text: text}, nil, reg, Timing{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].Element.Name)
	assert.Equal(t, "C", records[1].Element.Name)
}

func TestParse_FallbackStartSkipsPeriodCheck(t *testing.T) {
	testutil.UseTestLogger(t)
	reg := testutil.NewRegistry(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, reg.Location())
	text := strings.Replace(testutil.ReportOut, " Simulation period 2024-01-01 00:00:00 - 2024-01-01 00:15:00\n", "", 1)

	records, err := Parse(Report{Name: "run.out", Text: text}, nil, reg, Timing{Start: start})
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestParse_AggregateTableSkipped(t *testing.T) {
	testutil.UseTestLogger(t)
	reg := testutil.NewRegistry(t)
	records, err := Parse(Report{Name: "run.out", Text: testutil.ReportOut}, nil, reg, Timing{})
	require.NoError(t, err)
	for _, r := range records {
		for _, v := range r.Values {
			assert.NotEqual(t, 3.45, v, "aggregate table leaked into %s", r.Key())
		}
	}
}

func TestParseTrace(t *testing.T) {
	testutil.UseTestLogger(t)
	reg := testutil.NewRegistry(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, reg.Location())

	records, err := ParseTrace(Trace{Storage: "410571", Name: "HappyJacks.csv", Text: testutil.TraceCSV}, reg, start)
	require.NoError(t, err)
	require.Len(t, records, 5)

	params := make([]string, len(records))
	for i, r := range records {
		params[i] = r.Parameter
		assert.Equal(t, []time.Time{start, start.Add(time.Hour)}, r.Times())
	}
	assert.Equal(t, []string{"H.fcst", "V.fcst", "Q-in.fcst", "Q-out.fcst", "G.fcst"}, params)
	assert.Equal(t, []float64{10, 11}, records[2].Values)
}

func TestParseTrace_Errors(t *testing.T) {
	tests := []struct {
		name    string
		storage string
		text    string
		line    int
		msg     string
	}{
		{
			name:    "undeclared storage",
			storage: "999",
			text:    testutil.TraceCSV,
			msg:     `trace for undeclared storage "999"`,
		},
		{
			name:    "empty",
			storage: "410571",
			text:    "",
			line:    1,
			msg:     "trace is empty",
		},
		{
			name:    "missing column",
			storage: "410571",
			text:    "iTime, waterLevel\n1, 2\n",
			line:    1,
			msg:     "column SRes not found",
		},
		{
			name:    "no time column",
			storage: "410571",
			text:    "time, waterLevel\n",
			line:    1,
			msg:     "column iTime not found",
		},
		{
			name:    "bad minute index",
			storage: "410571",
			text:    strings.Replace(testutil.TraceCSV, "61,", "1.5,", 1),
			line:    3,
			msg:     `iTime "1.5" is not a minute index from 1`,
		},
		{
			name:    "non-numeric value",
			storage: "410571",
			text:    strings.Replace(testutil.TraceCSV, "1510", "n/a", 1),
			line:    3,
			msg:     `non-numeric value "n/a" in column SRes`,
		},
		{
			name:    "irregular spacing",
			storage: "410571",
			text:    testutil.TraceCSV + "91, 1082.7, 1520, 12, 14, 1.0\n",
			msg:     "irregular spacing",
		},
		{
			name:    "header only",
			storage: "410571",
			text:    strings.SplitAfter(testutil.TraceCSV, "\n")[0],
			line:    1,
			msg:     "trace has no rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.UseTestLogger(t)
			reg := testutil.NewRegistry(t)
			start := time.Date(2024, 1, 1, 0, 0, 0, 0, reg.Location())

			_, err := ParseTrace(Trace{Storage: tt.storage, Name: "trace.csv", Text: tt.text}, reg, start)
			pe := parseErr(t, err)
			assert.Equal(t, SectionTrace, pe.Section)
			assert.Equal(t, tt.line, pe.Line)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
