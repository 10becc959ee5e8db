package model

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestStepCount(t *testing.T) {
	tests := []struct {
		name  string
		end   time.Time
		step  time.Duration
		count int
	}{
		{name: "single sample", end: t0, step: 15 * time.Minute, count: 1},
		{name: "one day at 15 minutes", end: t0.Add(24 * time.Hour), step: 15 * time.Minute, count: 97},
		{name: "partial step floors", end: t0.Add(70 * time.Minute), step: 15 * time.Minute, count: 5},
		{name: "end before start", end: t0.Add(-time.Hour), step: time.Hour, count: 0},
		{name: "zero step", end: t0.Add(time.Hour), step: 0, count: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.count, StepCount(t0, tt.end, tt.step))
		})
	}
}

func TestRecordFromPoints(t *testing.T) {
	id := ElementID{Kind: KindGauge, Name: "410574"}

	t.Run("regular grid", func(t *testing.T) {
		times := []time.Time{t0, t0.Add(time.Hour), t0.Add(2 * time.Hour)}
		r, err := NewRecordFromPoints(id, "Q.fcst", "m3/s", times, []float64{1.2, 3.4, 5.6})
		require.NoError(t, err)
		assert.Equal(t, time.Hour, r.Step)
		assert.Equal(t, times, r.Times())
		assert.Equal(t, t0.Add(2*time.Hour), r.End())
		assert.Equal(t, StepCount(r.Start, r.End(), r.Step), r.Len())
	})

	t.Run("not increasing", func(t *testing.T) {
		times := []time.Time{t0, t0.Add(time.Hour), t0.Add(time.Hour)}
		_, err := NewRecordFromPoints(id, "Q.fcst", "m3/s", times, []float64{1, 2, 3})
		assert.ErrorContains(t, err, "not increasing")
	})

	t.Run("irregular", func(t *testing.T) {
		times := []time.Time{t0, t0.Add(time.Hour), t0.Add(3 * time.Hour)}
		_, err := NewRecordFromPoints(id, "Q.fcst", "m3/s", times, []float64{1, 2, 3})
		assert.ErrorContains(t, err, "irregular spacing")
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := NewRecordFromPoints(id, "Q.fcst", "m3/s", []time.Time{t0}, []float64{1, 2})
		assert.Error(t, err)
	})
}

func TestRunModelSeries(t *testing.T) {
	m := NewRunModel(RunWindow{Start: t0, End: t0.Add(time.Hour)})
	s := &Series{
		Element:  ElementID{Kind: KindSubarea, Name: "CR"},
		Quantity: QuantityRainfall,
		Start:    t0,
		Step:     15 * time.Minute,
		Values:   []float64{0, 1, math.NaN(), 2, 0},
	}
	require.NoError(t, m.AddSeries(s))

	got, ok := m.Series(KindSubarea, "CR", QuantityRainfall)
	require.True(t, ok)
	assert.Equal(t, 2, got.FirstMissing())
	assert.Equal(t, t0.Add(time.Hour), got.End())

	err := m.AddSeries(s)
	var inErr *InputError
	require.True(t, errors.As(err, &inErr))
	assert.Contains(t, inErr.Element, "CR")
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "config",
			err:  NewConfigError("catalog", `subarea "B"`, "duplicate order 1"),
			want: `config error: catalog: element subarea "B": duplicate order 1`,
		},
		{
			name: "render",
			err:  NewRenderError("RORB_CMD.par", `isa "2"`, "missing loss parameters"),
			want: `render error: RORB_CMD.par: element isa "2": missing loss parameters`,
		},
		{
			name: "parse with line",
			err:  NewOutputParseError("run.out", "rainfall excess", 12, "bad cell"),
			want: `output parse error: run.out:12: section "rainfall excess": bad cell`,
		},
		{
			name: "write",
			err:  NewWriteError(ArtifactReservoirOperation, "410571 H.fcst", "duplicate series"),
			want: "write error: reservoir_operation: series 410571 H.fcst: duplicate series",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := WrapInputError("params.xml", "decode parameters", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "input error: params.xml: decode parameters: unexpected EOF", err.Error())
}
