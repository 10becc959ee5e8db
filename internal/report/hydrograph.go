package report

import (
	"strings"
	"time"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/registry"
)

// parseHydrograph reads the selected hydrographs. The section starts at the
// first line naming a declared gauge column; each column block has its own
// header and the first column is the increment offset from run start.
func parseHydrograph(file string, lines []string, reg *registry.Registry, timing Timing) ([]*model.Record, error) {
	gauges := reg.ElementsInOrder(model.KindGauge)
	if len(gauges) == 0 {
		return nil, nil
	}
	columns := make(map[string]bool, len(gauges))
	names := make([]string, len(gauges))
	for i, g := range gauges {
		columns[g.Column] = true
		names[i] = g.Column
	}

	start := -1
	for i, l := range lines {
		for _, f := range fields(l) {
			if columns[f] {
				start = i
				break
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return nil, model.NewOutputParseErrorf(file, SectionHydrograph, 0,
			"no line names a gauge column (%s)", strings.Join(names, ", "))
	}

	tables, err := scanColumnBlocks(file, lines, start)
	if err != nil {
		return nil, err
	}
	merged, err := mergeColumnBlocks(file, tables)
	if err != nil {
		return nil, err
	}

	base := tables[0]
	times := make([]time.Time, len(base.rows))
	for i, row := range base.rows {
		times[i] = timing.Start.Add(time.Duration(row[0] * float64(timing.Step)))
	}

	param := reg.ArtifactParameter(model.ArtifactGaugeFlow)
	unit := reg.ArtifactUnit(model.ArtifactGaugeFlow)
	out := make([]*model.Record, 0, len(gauges))
	for _, g := range gauges {
		values, ok := merged[g.Column]
		if !ok {
			return nil, model.NewOutputParseErrorf(file, SectionHydrograph, base.line,
				"column %s of %s not found", g.Column, g.ID())
		}
		rec, err := model.NewRecordFromPoints(g.ID(), param, unit, times, values)
		if err != nil {
			pe := model.NewOutputParseErrorf(file, SectionHydrograph, base.line, "column %s", g.Column)
			pe.Err = err
			return nil, pe
		}
		out = append(out, rec)
	}
	return out, nil
}

// scanColumnBlocks reads column blocks from the header at lines[start]. A
// blank line ends a block; the next block must be a header followed by a
// numeric row, anything else closes the section.
func scanColumnBlocks(file string, lines []string, start int) ([]*table, error) {
	var tables []*table
	cur := &table{header: fields(lines[start]), line: start + 1}
	st := stateHeader

	finish := func() error {
		if len(cur.rows) == 0 {
			return model.NewOutputParseError(file, SectionHydrograph, cur.line, "column block has no rows")
		}
		tables = append(tables, cur)
		cur = nil
		return nil
	}

	for i := start + 1; i < len(lines) && st != stateClosed; i++ {
		l := lines[i]
		switch st {
		case stateHeader, stateBody:
			if isBlank(l) {
				if err := finish(); err != nil {
					return nil, err
				}
				st = stateSeeking
				continue
			}
			cells := fields(l)
			if len(cells) != len(cur.header) {
				return nil, model.NewOutputParseErrorf(file, SectionHydrograph, i+1,
					"row has %d columns, header on line %d has %d", len(cells), cur.line, len(cur.header))
			}
			row, bad, ok := numericRow(cells)
			if !ok {
				return nil, model.NewOutputParseErrorf(file, SectionHydrograph, i+1,
					"non-numeric value %q in column %s", cells[bad], cur.header[bad])
			}
			cur.rows = append(cur.rows, row)
			st = stateBody
		case stateSeeking:
			if isBlank(l) {
				continue
			}
			if startsBlock(lines, i) {
				cur = &table{header: fields(l), line: i + 1}
				st = stateHeader
				continue
			}
			st = stateClosed
		}
	}
	if cur != nil {
		if err := finish(); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

func startsBlock(lines []string, i int) bool {
	head := fields(lines[i])
	if len(head) < 2 || isNumber(head[0]) || i+1 >= len(lines) {
		return false
	}
	next := fields(lines[i+1])
	return len(next) > 0 && isNumber(next[0])
}

// mergeColumnBlocks joins blocks by column name. Blocks must cover the same
// increments; the first occurrence of a repeated column wins.
func mergeColumnBlocks(file string, tables []*table) (map[string][]float64, error) {
	base := tables[0]
	merged := make(map[string][]float64)
	for ti, t := range tables {
		if len(t.rows) != len(base.rows) {
			return nil, model.NewOutputParseErrorf(file, SectionHydrograph, t.line,
				"column block has %d rows, first block on line %d has %d", len(t.rows), base.line, len(base.rows))
		}
		for r := range t.rows {
			if t.rows[r][0] != base.rows[r][0] {
				return nil, model.NewOutputParseErrorf(file, SectionHydrograph, t.line,
					"column block %d row %d is increment %v, first block has %v", ti+1, r+1, t.rows[r][0], base.rows[r][0])
			}
		}
		for c := 1; c < len(t.header); c++ {
			name := t.header[c]
			if _, dup := merged[name]; dup {
				continue
			}
			values := make([]float64, len(t.rows))
			for r, row := range t.rows {
				values[r] = row[c]
			}
			merged[name] = values
		}
	}
	return merged, nil
}
