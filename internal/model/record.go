package model

import (
	"fmt"
	"time"
)

// Record is one normalized return-direction time series: a regular sequence
// of values for a single element and parameter.
type Record struct {
	Element   ElementID
	Parameter string
	Unit      string
	Start     time.Time
	Step      time.Duration
	Values    []float64
}

// NewRecord builds a record on a regular grid.
func NewRecord(id ElementID, parameter, unit string, start time.Time, step time.Duration, values []float64) (*Record, error) {
	if step <= 0 {
		return nil, fmt.Errorf("record %s %s: non-positive step %s", id, parameter, step)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("record %s %s: no values", id, parameter)
	}
	return &Record{
		Element:   id,
		Parameter: parameter,
		Unit:      unit,
		Start:     start,
		Step:      step,
		Values:    values,
	}, nil
}

// NewRecordFromPoints builds a record from explicit timestamps, which must
// be strictly increasing and equally spaced.
func NewRecordFromPoints(id ElementID, parameter, unit string, times []time.Time, values []float64) (*Record, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("record %s %s: %d timestamps for %d values", id, parameter, len(times), len(values))
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("record %s %s: no values", id, parameter)
	}
	if len(times) == 1 {
		// A single sample carries no spacing; a nominal one-second step keeps
		// End() == Start.
		return NewRecord(id, parameter, unit, times[0], time.Second, values)
	}
	step := times[1].Sub(times[0])
	for i := 1; i < len(times); i++ {
		d := times[i].Sub(times[i-1])
		if d <= 0 {
			return nil, fmt.Errorf("record %s %s: timestamps not increasing at index %d", id, parameter, i)
		}
		if d != step {
			return nil, fmt.Errorf("record %s %s: irregular spacing at index %d (%s, expected %s)", id, parameter, i, d, step)
		}
	}
	return NewRecord(id, parameter, unit, times[0], step, values)
}

// Len returns the number of values.
func (r *Record) Len() int { return len(r.Values) }

// End returns the timestamp of the last value.
func (r *Record) End() time.Time {
	return r.Start.Add(time.Duration(len(r.Values)-1) * r.Step)
}

// Times returns the timestamp of every value.
func (r *Record) Times() []time.Time {
	out := make([]time.Time, len(r.Values))
	for i := range r.Values {
		out[i] = r.Start.Add(time.Duration(i) * r.Step)
	}
	return out
}

// RecordKey identifies a series inside an exchange document.
type RecordKey struct {
	Location  string
	Parameter string
}

func (k RecordKey) String() string {
	return k.Location + " " + k.Parameter
}

// Key identifies the series inside an exchange document.
func (r *Record) Key() RecordKey {
	return RecordKey{Location: r.Element.Name, Parameter: r.Parameter}
}
