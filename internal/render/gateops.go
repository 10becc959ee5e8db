package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/registry"
)

// Positions inside a gate-ops template (0-based lines).
const (
	lineOutflowPairs  = 5
	lineGateOpenings  = 6
	lineLevelOpenings = 7
	lineLevelStorage  = 8

	// The pair tables start after a header whose length depends on whether
	// the storage has more than one gate-opening pair.
	tableStartSingle = 9
	tableStartMulti  = 12
)

// GateOpsTemplate selects the template file for a gate procedure:
// procedures 1 and 3 use the automatic template when one exists, 2, 4 and
// 5 always use the open template.
func GateOpsTemplate(files registry.GateOpsFiles, procedure int) (string, error) {
	switch procedure {
	case 1, 3:
		if files.FilenameAuto != "" {
			return files.FilenameAuto, nil
		}
		return files.FilenameOpen, nil
	case 2, 4, 5:
		return files.FilenameOpen, nil
	}
	return "", fmt.Errorf("unsupported gate procedure %d", procedure)
}

func (st *run) gateOpsFiles() error {
	gateStep := st.step(registry.StepGateOps)
	for _, g := range st.mapping.GateOps() {
		el, _ := st.reg.Element(model.KindStorage, g.ID)
		id := el.ID()

		gate, ok := st.m.Gates[g.ID]
		if !ok {
			return model.NewRenderError(g.FilenameOpen, id.String(), "no gate procedure")
		}
		name, err := GateOpsTemplate(g.GateOpsFiles, gate.Procedure)
		if err != nil {
			return model.NewRenderError(g.FilenameOpen, id.String(), err.Error())
		}
		dam, ok := st.m.Dams[g.ID]
		if !ok || model.IsMissing(dam.Level) {
			return model.NewRenderError(name, id.String(), "no observed level")
		}

		tmplName := TemplatePrefix + name
		text, err := st.templates.Template(tmplName)
		if err != nil {
			return model.WrapRenderError(name, "load template "+tmplName, err)
		}
		table, err := LevelStorageTable(splitLines(text))
		if err != nil {
			return model.NewRenderErrorf(name, id.String(), "template %s: %v", tmplName, err)
		}

		values := map[string]string{
			"gateops_timestep_minute":   hours(gateStep),
			"initial_reservoir_storage": strconv.Itoa(roundHalfEven(table.Storage(dam.Level))),
		}
		if _, err := st.emit(name, tmplName, model.FileGateOps, id, values); err != nil {
			return err
		}
		st.gateOps = append(st.gateOps, g.Storage, st.layout.Path(name))
	}
	return nil
}

// LevelTable is an elevation-storage relationship with increasing elevations.
type LevelTable struct {
	Levels   []float64
	Storages []float64
}

// Storage interpolates linearly, clamping outside the table.
func (t LevelTable) Storage(level float64) float64 {
	n := len(t.Levels)
	if level <= t.Levels[0] {
		return t.Storages[0]
	}
	if level >= t.Levels[n-1] {
		return t.Storages[n-1]
	}
	i := sort.SearchFloat64s(t.Levels, level)
	if t.Levels[i] == level {
		return t.Storages[i]
	}
	x0, x1 := t.Levels[i-1], t.Levels[i]
	y0, y1 := t.Storages[i-1], t.Storages[i]
	return y0 + (y1-y0)*(level-x0)/(x1-x0)
}

// LevelStorageTable extracts the elevation-storage pairs of a gate-ops
// template. Counts on lines 6-9 are read up to any "!" comment.
func LevelStorageTable(lines []string) (LevelTable, error) {
	count := func(idx int) (int, error) {
		if idx >= len(lines) {
			return 0, fmt.Errorf("line %d: missing", idx+1)
		}
		field, _, _ := strings.Cut(lines[idx], "!")
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(field), ",")))
		if err != nil {
			return 0, fmt.Errorf("line %d: expected a count, got %q", idx+1, lines[idx])
		}
		if n < 0 {
			return 0, fmt.Errorf("line %d: negative count %d", idx+1, n)
		}
		return n, nil
	}

	sq, err := count(lineOutflowPairs)
	if err != nil {
		return LevelTable{}, err
	}
	openings, err := count(lineGateOpenings)
	if err != nil {
		return LevelTable{}, err
	}
	lo, err := count(lineLevelOpenings)
	if err != nil {
		return LevelTable{}, err
	}
	hs, err := count(lineLevelStorage)
	if err != nil {
		return LevelTable{}, err
	}
	if hs == 0 {
		return LevelTable{}, fmt.Errorf("line %d: elevation-storage table is empty", lineLevelStorage+1)
	}

	start := tableStartSingle
	if openings > 1 {
		start = tableStartMulti
	}
	start += sq + lo
	if start+hs > len(lines) {
		return LevelTable{}, fmt.Errorf("elevation-storage table needs lines %d-%d, template has %d", start+1, start+hs, len(lines))
	}

	t := LevelTable{Levels: make([]float64, hs), Storages: make([]float64, hs)}
	for i := 0; i < hs; i++ {
		row := start + i
		fields := strings.Fields(strings.ReplaceAll(lines[row], ",", " "))
		if len(fields) != 2 {
			return LevelTable{}, fmt.Errorf("line %d: expected elevation and storage, got %q", row+1, lines[row])
		}
		h, err1 := strconv.ParseFloat(fields[0], 64)
		s, err2 := strconv.ParseFloat(fields[1], 64)
		if err1 != nil || err2 != nil {
			return LevelTable{}, fmt.Errorf("line %d: non-numeric pair %q", row+1, lines[row])
		}
		if i > 0 && h <= t.Levels[i-1] {
			return LevelTable{}, fmt.Errorf("line %d: elevations must increase", row+1)
		}
		t.Levels[i], t.Storages[i] = h, s
	}
	return t, nil
}
