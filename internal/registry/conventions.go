package registry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/daryltucker/rorb-fews/internal/model"
)

// Timestep keys every conventions document must declare.
const (
	StepRain       = "rain"
	StepGateOps    = "gateops"
	StepTransfer   = "transfer"
	StepOperation  = "operation"
	StepHydrograph = "hydrograph"
)

var requiredSteps = []string{StepRain, StepGateOps, StepTransfer, StepOperation}

var supportedCalendars = map[string]bool{
	"gregorian":           true,
	"standard":            true,
	"proleptic_gregorian": true,
}

// SeriesBinding maps a FEWS source variable onto an element kind and
// quantity.
type SeriesBinding struct {
	Variable string         `yaml:"-"`
	Kind     model.Kind     `yaml:"kind"`
	Quantity model.Quantity `yaml:"quantity"`
	Unit     string         `yaml:"unit"`
	Timestep string         `yaml:"timestep"`
	// FillMissing, when set, replaces missing points with its value.
	FillMissing *float64 `yaml:"fill_missing"`
}

// TraceColumn maps a CSV trace column onto a FEWS parameter.
type TraceColumn struct {
	Column    string `yaml:"column"`
	Parameter string `yaml:"parameter"`
	Unit      string `yaml:"unit"`
}

// Conventions is the decoded FEWS conventions document.
type Conventions struct {
	Timezone     string                   `yaml:"timezone"`
	Calendar     string                   `yaml:"calendar"`
	PITimeZone   string                   `yaml:"pi_time_zone"`
	MissingValue *float64                 `yaml:"missing_value"`
	Timesteps    map[string]int           `yaml:"timesteps_minutes"`
	Series       map[string]SeriesBinding `yaml:"series"`
	TraceColumns []TraceColumn            `yaml:"trace_columns"`
	Parameters   map[string]string        `yaml:"parameters"`
	Units        map[string]string        `yaml:"units"`

	loc *time.Location
}

var defaultArtifactParameters = map[model.ArtifactKind]string{
	model.ArtifactGaugeFlow:      "Q.fcst",
	model.ArtifactRainfallExcess: "P.fcst.excess",
}

var defaultArtifactUnits = map[model.ArtifactKind]string{
	model.ArtifactGaugeFlow:      "m3/s",
	model.ArtifactRainfallExcess: "mm",
}

func parseConventions(data []byte, reg *Registry) (*Conventions, error) {
	var c Conventions
	if err := decodeStrict(data, &c); err != nil {
		return nil, wrapDecode(docConventions, err)
	}

	if c.Timezone == "" {
		return nil, model.NewConfigError(docConventions, "", "timezone is required")
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		ce := model.NewConfigErrorf(docConventions, "", "unknown timezone %q", c.Timezone)
		ce.Err = err
		return nil, ce
	}
	c.loc = loc

	if c.Calendar == "" {
		c.Calendar = "gregorian"
	}
	if !supportedCalendars[strings.ToLower(c.Calendar)] {
		return nil, model.NewConfigErrorf(docConventions, "", "unsupported calendar %q", c.Calendar)
	}
	if c.PITimeZone == "" {
		return nil, model.NewConfigError(docConventions, "", "pi_time_zone is required")
	}
	if c.MissingValue == nil {
		mv := -99.0
		c.MissingValue = &mv
	}

	for name, minutes := range c.Timesteps {
		if minutes <= 0 {
			return nil, model.NewConfigErrorf(docConventions, "", "timestep %q must be positive, got %d", name, minutes)
		}
	}
	for _, name := range requiredSteps {
		if _, ok := c.Timesteps[name]; !ok {
			return nil, model.NewConfigErrorf(docConventions, "", "timestep %q is required", name)
		}
	}

	for variable, b := range c.Series {
		b.Variable = variable
		if !b.Kind.Valid() {
			return nil, model.NewConfigErrorf(docConventions, "", "series %q binds unknown kind %q", variable, b.Kind)
		}
		if b.Quantity == "" {
			return nil, model.NewConfigErrorf(docConventions, "", "series %q has no quantity", variable)
		}
		if _, ok := c.Timesteps[b.Timestep]; !ok {
			return nil, model.NewConfigErrorf(docConventions, "", "series %q uses undeclared timestep %q", variable, b.Timestep)
		}
		if reg.Count(b.Kind) == 0 {
			return nil, model.NewConfigErrorf(docConventions, "", "series %q binds kind %s which has no elements", variable, b.Kind)
		}
		c.Series[variable] = b
	}

	seen := make(map[string]bool)
	for _, tc := range c.TraceColumns {
		if tc.Column == "" || tc.Parameter == "" {
			return nil, model.NewConfigError(docConventions, "", "trace column requires column and parameter")
		}
		if seen[tc.Column] {
			return nil, model.NewConfigErrorf(docConventions, "", "trace column %q declared twice", tc.Column)
		}
		seen[tc.Column] = true
	}
	return &c, nil
}

// Location returns the run time zone.
func (r *Registry) Location() *time.Location { return r.conv.loc }

// PITimeZone returns the zone label written into exchange documents.
func (r *Registry) PITimeZone() string { return r.conv.PITimeZone }

// MissingValue returns the FEWS missing-value sentinel.
func (r *Registry) MissingValue() float64 { return *r.conv.MissingValue }

// Timestep returns the named timestep.
func (r *Registry) Timestep(name string) (time.Duration, bool) {
	m, ok := r.conv.Timesteps[name]
	if !ok {
		return 0, false
	}
	return time.Duration(m) * time.Minute, true
}

// MustTimestep returns a timestep that Load has already validated as present.
func (r *Registry) MustTimestep(name string) time.Duration {
	d, ok := r.Timestep(name)
	if !ok {
		panic(fmt.Sprintf("registry: timestep %q not declared", name))
	}
	return d
}

// SeriesBinding returns the binding for a source variable.
func (r *Registry) SeriesBinding(variable string) (SeriesBinding, bool) {
	b, ok := r.conv.Series[variable]
	return b, ok
}

// SeriesBindings returns every binding sorted by variable name.
func (r *Registry) SeriesBindings() []SeriesBinding {
	out := make([]SeriesBinding, 0, len(r.conv.Series))
	for _, b := range r.conv.Series {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Variable < out[j].Variable })
	return out
}

// TraceColumns returns the CSV trace columns in output order.
func (r *Registry) TraceColumns() []TraceColumn {
	out := make([]TraceColumn, len(r.conv.TraceColumns))
	copy(out, r.conv.TraceColumns)
	return out
}

// ArtifactParameter returns the FEWS parameter id written for a report
// artifact (gauge flow or rainfall excess).
func (r *Registry) ArtifactParameter(kind model.ArtifactKind) string {
	if p := r.conv.Parameters[string(kind)]; p != "" {
		return p
	}
	return defaultArtifactParameters[kind]
}

// ArtifactUnit returns the unit written for a report artifact.
func (r *Registry) ArtifactUnit(kind model.ArtifactKind) string {
	if u := r.conv.Units[string(kind)]; u != "" {
		return u
	}
	return defaultArtifactUnits[kind]
}

// Convention exposes scalar conventions by key: timezone, calendar,
// pi_time_zone, missing_value and timestep.<name> (minutes).
func (r *Registry) Convention(key string) (string, bool) {
	switch key {
	case "timezone":
		return r.conv.Timezone, true
	case "calendar":
		return r.conv.Calendar, true
	case "pi_time_zone":
		return r.conv.PITimeZone, true
	case "missing_value":
		return strconv.FormatFloat(*r.conv.MissingValue, 'f', -1, 64), true
	}
	if name, ok := strings.CutPrefix(key, "timestep."); ok {
		if m, ok := r.conv.Timesteps[name]; ok {
			return strconv.Itoa(m), true
		}
	}
	return "", false
}

// ConventionKeys lists the keys accepted by Convention, sorted.
func (r *Registry) ConventionKeys() []string {
	keys := []string{"calendar", "missing_value", "pi_time_zone", "timezone"}
	for name := range r.conv.Timesteps {
		keys = append(keys, "timestep."+name)
	}
	sort.Strings(keys)
	return keys
}
