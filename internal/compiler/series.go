package compiler

import (
	"fmt"
	"math"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/output"
	"github.com/daryltucker/rorb-fews/internal/registry"
	"github.com/daryltucker/rorb-fews/internal/source"
)

// windowQuantities must cover the run window exactly.
var windowQuantities = map[model.Quantity]bool{
	model.QuantityRainfall: true,
	model.QuantityQTrans:   true,
	model.QuantityQGen:     true,
	model.QuantityQOutlet:  true,
}

func (c *compiler) series() error {
	for _, src := range c.in.Sources {
		raws, err := src.Series()
		if err != nil {
			return fmt.Errorf("read %s: %w", src.Name(), err)
		}
		for _, raw := range raws {
			s, err := c.bind(src.Name(), raw)
			if err != nil {
				return err
			}
			if err := c.m.AddSeries(s); err != nil {
				if ie, ok := err.(*model.InputError); ok {
					ie.File = src.Name()
				}
				return err
			}
		}
	}
	return nil
}

func (c *compiler) bind(file string, raw source.RawSeries) (*model.Series, error) {
	label := raw.Station + "/" + raw.Variable
	b, ok := c.reg.SeriesBinding(raw.Variable)
	if !ok {
		return nil, model.NewInputError(file, raw.Station, raw.Variable, "variable is not bound in conventions")
	}
	id := model.ElementID{Kind: b.Kind, Name: raw.Station}
	if !c.reg.Has(b.Kind, raw.Station) {
		return nil, model.NewInputError(file, id.String(), raw.Variable, "station is not a declared element")
	}
	step := c.reg.MustTimestep(b.Timestep)

	if len(raw.Values) == 0 {
		return nil, model.NewInputError(file, id.String(), raw.Variable, "series is empty")
	}
	if len(raw.Times) != len(raw.Values) {
		return nil, model.NewInputError(file, id.String(), raw.Variable,
			fmt.Sprintf("%d timestamps for %d values", len(raw.Times), len(raw.Values)))
	}
	if raw.Step != 0 && raw.Step != step {
		return nil, model.NewInputError(file, id.String(), raw.Variable,
			fmt.Sprintf("declared step %s does not match %s timestep %s", raw.Step, b.Timestep, step))
	}
	for i := 1; i < len(raw.Times); i++ {
		if d := raw.Times[i].Sub(raw.Times[i-1]); d != step {
			return nil, model.NewInputError(file, id.String(), raw.Variable,
				fmt.Sprintf("spacing %s at %s, expected %s", d, raw.Times[i].Format("2006-01-02 15:04:05"), step))
		}
	}
	if windowQuantities[b.Quantity] {
		want := model.StepCount(c.m.Window.Start, c.m.Window.End, step)
		if len(raw.Values) != want {
			return nil, model.NewInputError(file, id.String(), raw.Variable,
				fmt.Sprintf("%d values, run window needs %d", len(raw.Values), want))
		}
		if !raw.Times[0].Equal(c.m.Window.Start) {
			return nil, model.NewInputError(file, id.String(), raw.Variable,
				fmt.Sprintf("starts at %s, run window starts at %s",
					raw.Times[0].Format("2006-01-02 15:04:05"), c.m.Window.Start.Format("2006-01-02 15:04:05")))
		}
	}

	values := fill(raw, b)
	if n := countMissing(values); n > 0 {
		output.Logger.Debug("Series has missing values", "series", label, "missing", n)
	}
	return &model.Series{
		Element:  id,
		Quantity: b.Quantity,
		Unit:     b.Unit,
		Start:    raw.Times[0],
		Step:     step,
		Values:   values,
	}, nil
}

// fill copies the values, replacing missing points with the binding's
// fill value when one is declared and NaN otherwise.
func fill(raw source.RawSeries, b registry.SeriesBinding) []float64 {
	out := make([]float64, len(raw.Values))
	filled := 0
	for i, v := range raw.Values {
		missing := math.IsNaN(v) || (i < len(raw.Missing) && raw.Missing[i])
		switch {
		case !missing:
			out[i] = v
		case b.FillMissing != nil:
			out[i] = *b.FillMissing
			filled++
		default:
			out[i] = model.Missing()
		}
	}
	if filled > 0 {
		output.Logger.Info("Filled missing values", "variable", b.Variable, "station", raw.Station, "count", filled, "value", *b.FillMissing)
	}
	return out
}

func countMissing(values []float64) int {
	n := 0
	for _, v := range values {
		if model.IsMissing(v) {
			n++
		}
	}
	return n
}

// requireSeries checks that mandatory elements received their forcing.
func (c *compiler) requireSeries() error {
	for _, el := range c.reg.ElementsInOrder(model.KindSubarea) {
		if _, ok := c.m.Series(model.KindSubarea, el.Name, model.QuantityRainfall); !ok && !el.Optional {
			return model.NewInputError("", el.ID().String(), string(model.QuantityRainfall), "no rainfall series")
		}
	}
	if !c.m.Settings.SnowEnabled {
		return nil
	}
	for _, el := range c.reg.ElementsInOrder(model.KindMeteo) {
		if el.Optional {
			continue
		}
		for _, q := range []model.Quantity{model.QuantityTemperature, model.QuantityWind} {
			if _, ok := c.m.Series(model.KindMeteo, el.Name, q); !ok {
				return model.NewInputError("", el.ID().String(), string(q), "snow module enabled but series is absent")
			}
		}
	}
	return nil
}
