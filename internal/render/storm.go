package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/registry"
)

const (
	patternsPerLine = 10
	burstsPerLine   = 20
)

func (st *run) storm() error {
	file := st.layout.StormFile
	rainStep := st.step(registry.StepRain)
	n := st.windowCount(rainStep)
	subareas := st.reg.ElementsInOrder(model.KindSubarea)

	var patterns, totals []string
	for i, el := range subareas {
		s, err := st.series(file, model.KindSubarea, el.Name, model.QuantityRainfall)
		if err != nil {
			return err
		}
		if len(s.Values) != n {
			return model.NewRenderErrorf(file, el.ID().String(), "rainfall has %d values, run window needs %d", len(s.Values), n)
		}
		total := 0.0
		for _, v := range s.Values {
			total += v
		}
		pct := make([]float64, len(s.Values))
		if total != 0 {
			for j, v := range s.Values {
				pct[j] = v / total * 100
			}
		}
		patterns = append(patterns, fmt.Sprintf("Calc_order_%d temporal pattern with pre-burst (%% of depth)\n%s",
			i+1, formatList(fixedAll(pct, 2), patternsPerLine, listEnd)))
		totals = append(totals, fixed(total, 2))
	}

	baseflows := st.reg.ElementsInOrder(model.KindBaseflow)
	var bfSetting []string
	var hydrographs []string
	for i, el := range baseflows {
		p, ok := st.m.Baseflow[el.Name]
		if !ok {
			return model.NewRenderError(file, el.ID().String(), "no baseflow parameters")
		}
		startIdx := int(p.StartHours * 60 / rainStep.Minutes())
		values := BaseflowSeries(p.Const, p.Multiplier, startIdx, n)
		hydrographs = append(hydrographs, fmt.Sprintf("Baseflow_calc_order_%d\n%s",
			i+1, formatList(fixedAll(values, 2), patternsPerLine, listEnd)))
		bfSetting = append(bfSetting, intItems(0, n-1)...)
	}

	choice := make([]string, len(subareas))
	for i := range subareas {
		choice[i] = strconv.Itoa(i + 1)
	}

	values := map[string]string{
		"start_time": st.m.Window.Start.Format(time.DateTime),
		"end_time":   st.m.Window.End.Format(time.DateTime),
		"stm_setting": formatList(
			[]string{hours(rainStep), strconv.Itoa(n), "1", strconv.Itoa(len(subareas)), "1"},
			patternsPerLine, listEnd),
		"pluvio_setting":                formatList(intItems(0, n), patternsPerLine, listEnd),
		"all_subarea_temporal_patterns": strings.Join(patterns, "\n"),
		"subarea_rainfall":              formatList(totals, patternsPerLine, listEnd),
		"pluvio_choice":                 formatList(choice, patternsPerLine, listEnd),
		"baseflow_setting":              formatList(bfSetting, burstsPerLine, listEnd),
		"all_baseflow_hydrographs":      strings.Join(hydrographs, "\n"),
	}
	_, err := st.emit(file, TemplatePrefix+file, model.FileStorm, model.ElementID{}, values)
	return err
}

// BaseflowSeries returns n baseflow values: constant before index start,
// then growing geometrically by multiplier from the constant, so value i
// (i >= start) is c * multiplier^(i-start+1).
func BaseflowSeries(c, multiplier float64, start, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i < start {
			out[i] = c
			continue
		}
		out[i] = c * math.Pow(multiplier, float64(i-start+1))
	}
	return out
}
