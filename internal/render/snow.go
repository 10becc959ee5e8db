package render

import (
	"strconv"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/output"
)

func (st *run) snow() error {
	if !st.m.Settings.SnowEnabled {
		return nil
	}
	file := st.layout.SnowFile

	meteo := st.reg.ElementsInOrder(model.KindMeteo)
	if len(meteo) == 0 {
		return model.NewRenderError(file, "", "snow module enabled but no meteo station declared")
	}
	// RORB takes a single forcing station; the first in catalog order.
	station := meteo[0]
	temp, err := st.series(file, model.KindMeteo, station.Name, model.QuantityTemperature)
	if err != nil {
		return err
	}
	wind, err := st.series(file, model.KindMeteo, station.Name, model.QuantityWind)
	if err != nil {
		return err
	}

	zones := st.reg.ElementsInOrder(model.KindElevationZone)
	water := make([]float64, len(zones))
	density := 0.0
	for i, z := range zones {
		wc, err := st.priorityValue(file, z, func(s model.SnowState) float64 { return s.WaterContent })
		if err != nil {
			return err
		}
		sd, err := st.priorityValue(file, z, func(s model.SnowState) float64 { return s.Depth })
		if err != nil {
			return err
		}
		water[i] = wc
		density += z.Weight * SnowpackDensity(sd, wc)
	}

	values := map[string]string{
		"temp_timeseries":                    oneLine(fixedAll(temp.Values, 1)),
		"temp_number_increment":              strconv.Itoa(len(temp.Values) + 1),
		"wind_timeseries":                    oneLine(fixedAll(wind.Values, 1)),
		"wind_number_increment":              strconv.Itoa(len(wind.Values) + 1),
		"num_elezone":                        strconv.Itoa(len(zones)),
		"snowmelt_water_content_elezone":     oneLine(fixedAll(water, 2)),
		"snowmelt_weighted_snowpack_density": rounded(density, 2),
	}
	_, err = st.emit(file, TemplatePrefix+file, model.FileSnow, model.ElementID{}, values)
	return err
}

// priorityValue returns the first non-missing value among the zone's snow
// courses. When every course is missing an optional zone falls back to 0.
func (st *run) priorityValue(file string, zone model.Element, pick func(model.SnowState) float64) (float64, error) {
	for _, course := range zone.Priority {
		s, ok := st.m.Snow[course]
		if !ok {
			continue
		}
		if v := pick(s); !model.IsMissing(v) {
			return v, nil
		}
	}
	if zone.Optional {
		output.Logger.Warn("No snow course data for elevation zone, using 0", "element", zone.ID().String(), "priority", zone.Priority)
		return 0, nil
	}
	return 0, model.NewRenderError(file, zone.ID().String(), "every snow course in the priority list is missing")
}

// SnowpackDensity is depth over water content, 0 when there is no water.
func SnowpackDensity(depth, water float64) float64 {
	if water == 0 {
		return 0
	}
	return depth / water
}
