/*
PURPOSE:
  The compiled forward-direction input: parameters, states and time-indexed
  series keyed by element name.

REQUIREMENTS:
  - Every series references a catalog element.
  - Missing numeric values are represented as NaN so the renderer can refuse
    them explicitly instead of formatting a default.

ARCHITECTURE INTEGRATION:
  - Built by: internal/compiler
  - Consumed by: internal/render

ERROR HANDLING:
  - AddSeries rejects a second series for the same element and quantity.

RELATED FILES:
  - internal/model/element.go
  - internal/compiler/compiler.go
*/

package model

import (
	"fmt"
	"math"
	"time"
)

// Missing returns the marker used for an absent value.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v is the missing-value marker.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// StepCount returns the number of samples between start and end inclusive.
func StepCount(start, end time.Time, step time.Duration) int {
	if step <= 0 || end.Before(start) {
		return 0
	}
	return int(end.Sub(start)/step) + 1
}

// RunWindow is the simulation period requested by FEWS.
type RunWindow struct {
	Start time.Time
	End   time.Time
	Time0 time.Time
}

// Settings are run-wide switches from the parameter document.
type Settings struct {
	SnowEnabled bool
	Bursts      int
}

// ISAParams are the loss and routing parameters of one interstation area.
type ISAParams struct {
	IL float64
	CL float64
	Kc float64
	M  float64
}

// BaseflowParams drive the generated baseflow hydrograph.
type BaseflowParams struct {
	Const      float64
	Multiplier float64
	// StartHours is the offset from run start at which growth begins.
	StartHours float64
}

// GateParams select the gate-operation template of a storage.
type GateParams struct {
	Procedure int
}

// DamState is the observed state of a storage at forecast time.
type DamState struct {
	Level float64
}

// SnowState is the observed snow course state. Either value may be missing.
type SnowState struct {
	Depth        float64
	WaterContent float64
}

// Series is a regular time series attached to one element.
type Series struct {
	Element  ElementID
	Quantity Quantity
	Unit     string
	Start    time.Time
	Step     time.Duration
	Values   []float64
}

// End returns the timestamp of the last value.
func (s *Series) End() time.Time {
	if len(s.Values) == 0 {
		return s.Start
	}
	return s.Start.Add(time.Duration(len(s.Values)-1) * s.Step)
}

// Times returns the timestamp of every value.
func (s *Series) Times() []time.Time {
	out := make([]time.Time, len(s.Values))
	for i := range s.Values {
		out[i] = s.Start.Add(time.Duration(i) * s.Step)
	}
	return out
}

// FirstMissing returns the index of the first missing value or -1.
func (s *Series) FirstMissing() int {
	for i, v := range s.Values {
		if IsMissing(v) {
			return i
		}
	}
	return -1
}

type seriesKey struct {
	id ElementID
	q  Quantity
}

// RunModel is the normalized result of compiling one FEWS run.
type RunModel struct {
	Window   RunWindow
	Settings Settings

	ISA      map[string]ISAParams
	Baseflow map[string]BaseflowParams
	Gates    map[string]GateParams
	Dams     map[string]DamState
	Snow     map[string]SnowState

	series map[seriesKey]*Series
}

// NewRunModel returns an empty model for the given window.
func NewRunModel(window RunWindow) *RunModel {
	return &RunModel{
		Window:   window,
		ISA:      make(map[string]ISAParams),
		Baseflow: make(map[string]BaseflowParams),
		Gates:    make(map[string]GateParams),
		Dams:     make(map[string]DamState),
		Snow:     make(map[string]SnowState),
		series:   make(map[seriesKey]*Series),
	}
}

// AddSeries attaches s to the model.
func (m *RunModel) AddSeries(s *Series) error {
	k := seriesKey{id: s.Element, q: s.Quantity}
	if _, dup := m.series[k]; dup {
		return NewInputError("", s.Element.String(), string(s.Quantity), "duplicate series")
	}
	m.series[k] = s
	return nil
}

// Series returns the series of quantity q for element (kind, name).
func (m *RunModel) Series(kind Kind, name string, q Quantity) (*Series, bool) {
	s, ok := m.series[seriesKey{id: ElementID{Kind: kind, Name: name}, q: q}]
	return s, ok
}

// SeriesCount returns the number of attached series.
func (m *RunModel) SeriesCount() int { return len(m.series) }

func (m *RunModel) String() string {
	return fmt.Sprintf("run %s..%s (%d isa, %d baseflow, %d storages, %d series)",
		m.Window.Start.Format(time.DateTime), m.Window.End.Format(time.DateTime),
		len(m.ISA), len(m.Baseflow), len(m.Dams), len(m.series))
}
