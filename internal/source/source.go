// Package source adapts FEWS time-indexed exports into raw per-station
// series for the compiler.
package source

import (
	"fmt"
	"time"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/pi"
)

// RawSeries is one station/variable column as exported by FEWS, before
// it is bound to a catalog element.
type RawSeries struct {
	Station  string
	Variable string
	Times    []time.Time
	Values   []float64
	Missing  []bool
	// Step is the declared spacing, zero when the export does not state one.
	Step time.Duration
}

// Source yields raw series.
type Source interface {
	Name() string
	Series() ([]RawSeries, error)
}

// PITimeSeries exposes a decoded PI time-series document as a Source.
type PITimeSeries struct {
	doc *pi.TimeSeries
	loc *time.Location
}

// NewPITimeSeries wraps doc; event times are read in loc.
func NewPITimeSeries(doc *pi.TimeSeries, loc *time.Location) *PITimeSeries {
	return &PITimeSeries{doc: doc, loc: loc}
}

// OpenPITimeSeries reads the document at path.
func OpenPITimeSeries(path string, loc *time.Location) (*PITimeSeries, error) {
	doc, err := pi.ReadTimeSeriesFile(path)
	if err != nil {
		return nil, err
	}
	return NewPITimeSeries(doc, loc), nil
}

func (s *PITimeSeries) Name() string {
	if s.doc.Path != "" {
		return s.doc.Path
	}
	return "time series"
}

func (s *PITimeSeries) Series() ([]RawSeries, error) {
	out := make([]RawSeries, 0, len(s.doc.Series))
	for i := range s.doc.Series {
		ser := &s.doc.Series[i]
		times, values, missing, err := ser.Points(s.loc)
		if err != nil {
			ie := model.NewInputError(s.Name(), ser.Header.LocationID, ser.Header.ParameterID, "bad event")
			ie.Err = err
			return nil, ie
		}
		out = append(out, RawSeries{
			Station:  ser.Header.LocationID,
			Variable: ser.Header.ParameterID,
			Times:    times,
			Values:   values,
			Missing:  missing,
			Step:     ser.Header.TimeStep.Duration(),
		})
	}
	return out, nil
}

// Static is an in-memory Source.
type Static struct {
	Label string
	Raw   []RawSeries
}

func (s *Static) Name() string { return s.Label }

func (s *Static) Series() ([]RawSeries, error) {
	for _, r := range s.Raw {
		if len(r.Times) != len(r.Values) {
			return nil, fmt.Errorf("%s: series %s/%s has %d times and %d values", s.Label, r.Station, r.Variable, len(r.Times), len(r.Values))
		}
	}
	return s.Raw, nil
}
