/*
PURPOSE:
  The Input Model Compiler: turns the FEWS run info, parameter document,
  state document and time-series exports into a validated model.RunModel.

REQUIREMENTS:
  User-specified:
  - Every series must reference a catalog element of the bound kind.
  - Every mandatory element must have its parameters and states, or the
    compiler fails before anything is rendered.

  Implementation-discovered:
  - FEWS groups parameters by repeating a group id once per location with
    a key parameter (rorb.isaId, rorbId) identifying the location.
  - Snow course states live at "<course>SnowCourse" locations.
  - Input order (groups, series, stations) carries no meaning; the
    renderer re-applies catalog order.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (pre).
  - Produces: *model.RunModel for internal/render.

ERROR HANDLING:
  - All failures are *model.InputError naming the element and the
    parameter or series at fault.

RELATED FILES:
  - internal/compiler/series.go
  - internal/model/run.go
*/

package compiler

import (
	"errors"
	"fmt"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/output"
	"github.com/daryltucker/rorb-fews/internal/pi"
	"github.com/daryltucker/rorb-fews/internal/registry"
	"github.com/daryltucker/rorb-fews/internal/source"
)

// Parameter groups and ids used by the FEWS RORB module configuration.
const (
	GroupLoss     = "Loss parameters"
	GroupRouting  = "Routing parameters"
	GroupBaseflow = "Baseflow parameters"
	GroupGate     = "Gate parameters"
	GroupSettings = "snow module and bursts"

	KeyISA = "rorb.isaId"
	KeyID  = "rorbId"

	ParamIL        = "rorbIL1"
	ParamCL        = "rorbCL1"
	ParamKc        = "rorbKc"
	ParamM         = "rorbM"
	ParamBF        = "rorbBF"
	ParamBMult     = "rorbBmult"
	ParamBFStart   = "rorbBFstart"
	ParamGate      = "rorbGate"
	ParamSnow      = "rorbSnow"
	ParamBursts    = "rorbBursts"
	StateLevel     = "H_observed"
	StateSnowDepth = "SD_observed"
	StateSnowWater = "WC_observed"

	snowCourseSuffix = "SnowCourse"
)

// Inputs are the decoded FEWS documents of one run.
type Inputs struct {
	Run     *pi.RunInfo
	Params  *pi.Parameters
	State   *pi.TimeSeries
	Sources []source.Source
}

// Compile builds the run model. The registry is only read.
func Compile(in Inputs, reg *registry.Registry) (*model.RunModel, error) {
	if in.Run == nil || in.Params == nil || in.State == nil {
		return nil, model.NewInputError("", "", "", "run info, parameters and state are all required")
	}
	c := &compiler{in: in, reg: reg}
	c.m = model.NewRunModel(model.RunWindow{Start: in.Run.Start, End: in.Run.End, Time0: in.Run.Time0})

	steps := []func() error{
		c.settings,
		c.isa,
		c.baseflow,
		c.gates,
		c.damStates,
		c.snowStates,
		c.series,
		c.requireSeries,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	output.Logger.Info("Compiled run model",
		"start", c.m.Window.Start, "end", c.m.Window.End,
		"isa", len(c.m.ISA), "baseflow", len(c.m.Baseflow),
		"storages", len(c.m.Dams), "series", c.m.SeriesCount(),
		"snow", c.m.Settings.SnowEnabled)
	return c.m, nil
}

type compiler struct {
	in  Inputs
	reg *registry.Registry
	m   *model.RunModel
}

func (c *compiler) paramErr(el model.Element, id string, err error) error {
	msg := "parameter unavailable"
	if !errors.Is(err, pi.ErrNotFound) {
		msg = "parameter malformed"
	}
	ie := model.NewInputError(c.in.Params.Path, el.ID().String(), id, msg)
	ie.Err = err
	return ie
}

func (c *compiler) settings() error {
	snow, err := c.in.Params.Setting(GroupSettings, ParamSnow)
	if err == nil {
		c.m.Settings.SnowEnabled, err = snow.Bool()
	}
	if err != nil {
		ie := model.NewInputError(c.in.Params.Path, "", ParamSnow, "snow setting unavailable")
		ie.Err = err
		return ie
	}

	bursts, err := c.in.Params.Setting(GroupSettings, ParamBursts)
	if err == nil {
		c.m.Settings.Bursts, err = bursts.Int()
	}
	if err != nil {
		ie := model.NewInputError(c.in.Params.Path, "", ParamBursts, "burst count unavailable")
		ie.Err = err
		return ie
	}
	if c.m.Settings.Bursts < 1 {
		return model.NewInputError(c.in.Params.Path, "", ParamBursts,
			fmt.Sprintf("burst count must be positive, got %d", c.m.Settings.Bursts))
	}
	return nil
}

// keyedFloats reads ids from the group keyed by the element name. Missing
// values on optional elements skip the element; ok reports whether all were read.
func (c *compiler) keyedFloats(el model.Element, group, key string, ids ...string) (vals []float64, ok bool, err error) {
	vals = make([]float64, len(ids))
	for i, id := range ids {
		p, err := c.in.Params.Keyed(group, key, el.Name, id)
		if err == nil {
			vals[i], err = p.Float()
		}
		if err != nil {
			if el.Optional && errors.Is(err, pi.ErrNotFound) {
				output.Logger.Warn("Optional element has no parameters, skipping", "element", el.ID().String(), "parameter", id)
				return nil, false, nil
			}
			return nil, false, c.paramErr(el, id, err)
		}
	}
	return vals, true, nil
}

func (c *compiler) isa() error {
	for _, el := range c.reg.ElementsInOrder(model.KindISA) {
		loss, ok, err := c.keyedFloats(el, GroupLoss, KeyISA, ParamIL, ParamCL)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		routing, ok, err := c.keyedFloats(el, GroupRouting, KeyISA, ParamKc, ParamM)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		c.m.ISA[el.Name] = model.ISAParams{IL: loss[0], CL: loss[1], Kc: routing[0], M: routing[1]}
	}
	return nil
}

func (c *compiler) baseflow() error {
	for _, el := range c.reg.ElementsInOrder(model.KindBaseflow) {
		v, ok, err := c.keyedFloats(el, GroupBaseflow, KeyID, ParamBF, ParamBMult, ParamBFStart)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if v[2] < 0 {
			return model.NewInputError(c.in.Params.Path, el.ID().String(), ParamBFStart, "baseflow start must not be negative")
		}
		c.m.Baseflow[el.Name] = model.BaseflowParams{Const: v[0], Multiplier: v[1], StartHours: v[2]}
	}
	return nil
}

func (c *compiler) gates() error {
	for _, el := range c.reg.ElementsInOrder(model.KindStorage) {
		p, err := c.in.Params.Keyed(GroupGate, KeyID, el.Name, ParamGate)
		var proc int
		if err == nil {
			proc, err = p.Int()
		}
		if err != nil {
			if el.Optional && errors.Is(err, pi.ErrNotFound) {
				output.Logger.Warn("Optional storage has no gate procedure, skipping", "element", el.ID().String())
				continue
			}
			return c.paramErr(el, ParamGate, err)
		}
		c.m.Gates[el.Name] = model.GateParams{Procedure: proc}
	}
	return nil
}

func (c *compiler) damStates() error {
	for _, el := range c.reg.ElementsInOrder(model.KindStorage) {
		v, err := c.stateValue(el.Name, StateLevel)
		if err != nil {
			return err
		}
		if model.IsMissing(v) {
			if el.Optional {
				output.Logger.Warn("Optional storage has no observed level", "element", el.ID().String())
				continue
			}
			return model.NewInputError(c.in.State.Path, el.ID().String(), StateLevel, "observed level is missing")
		}
		c.m.Dams[el.Name] = model.DamState{Level: v}
	}
	return nil
}

func (c *compiler) snowStates() error {
	for _, el := range c.reg.ElementsInOrder(model.KindSnowCourse) {
		loc := el.Name + snowCourseSuffix
		depth, err := c.stateValue(loc, StateSnowDepth)
		if err != nil {
			return err
		}
		water, err := c.stateValue(loc, StateSnowWater)
		if err != nil {
			return err
		}
		if (model.IsMissing(depth) || model.IsMissing(water)) && !el.Optional && c.m.Settings.SnowEnabled {
			return model.NewInputError(c.in.State.Path, el.ID().String(), StateSnowDepth+"/"+StateSnowWater, "snow course state is missing")
		}
		c.m.Snow[el.Name] = model.SnowState{Depth: depth, WaterContent: water}
	}
	return nil
}

// stateValue returns the first event of (location, parameter). An absent
// series is reported as missing, a malformed one as an error.
func (c *compiler) stateValue(location, parameter string) (float64, error) {
	s, ok := c.in.State.Find(location, parameter)
	if !ok {
		return model.Missing(), nil
	}
	v, err := s.FirstValue()
	if errors.Is(err, pi.ErrNotFound) {
		return model.Missing(), nil
	}
	if err != nil {
		ie := model.NewInputError(c.in.State.Path, location, parameter, "state value malformed")
		ie.Err = err
		return 0, ie
	}
	return v, nil
}
