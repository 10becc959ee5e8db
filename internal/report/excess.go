package report

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/output"
	"github.com/daryltucker/rorb-fews/internal/registry"
)

// Marker text of the parameter echo section.
const (
	markerInput   = "Input of parameters:"
	markerRouting = "Routing results:"
	markerEcho    = "Rainfall, mm, in time inc. following time shown"
	markerPluvio  = "Pluvi. ref. no."
	markerIncs    = "Incs"
	markerTotal   = "Tot."
)

// excessLabelColumns are the header words of the increment and area
// columns; every other column is one pluvio reference.
var excessLabelColumns = []string{"Incs", "ment", "area"}

func findExcessSection(file string, lines []string) (span, error) {
	sec := span{from: -1, to: len(lines)}
	for i, l := range lines {
		if sec.from < 0 {
			if strings.Contains(l, markerInput) {
				sec.from = i
			}
			continue
		}
		if strings.Contains(l, markerRouting) {
			sec.to = i
			break
		}
	}
	if sec.from < 0 {
		return sec, model.NewOutputParseErrorf(file, SectionExcess, 0, "marker %q not found", markerInput)
	}
	return sec, nil
}

// parseExcess walks the parameter echo. Each "Pluvi. ref. no." line names
// the subareas of the next Incs table, in column order.
func parseExcess(file string, lines []string, sec span, reg *registry.Registry, timing Timing) ([]*model.Record, error) {
	subareas := reg.ElementsInOrder(model.KindSubarea)
	param := reg.ArtifactParameter(model.ArtifactRainfallExcess)
	unit := reg.ArtifactUnit(model.ArtifactRainfallExcess)

	var (
		records []*model.Record
		pending []model.Element
		tbl     *table
		echo    bool
		err     error
	)
	st := stateSeeking
	for i := sec.from + 1; i < sec.to; i++ {
		l := lines[i]
		switch st {
		case stateSeeking:
			switch {
			case strings.Contains(l, markerPluvio):
				if pending, err = pluvioRefs(file, i+1, l, subareas); err != nil {
					return nil, err
				}
				echo = false
			case echo:
				// Rainfall echo rows up to their pluvio reference line.
			case strings.Contains(l, markerEcho):
				echo = true
			case strings.Contains(l, markerIncs):
				tbl = &table{header: fields(l), line: i + 1}
				st = stateHeader
			}
		case stateHeader:
			// Units row.
			st = stateBody
		case stateBody:
			switch {
			case strings.Contains(l, markerTotal):
				recs, err := excessRecords(file, tbl, pending, param, unit, timing)
				if err != nil {
					return nil, err
				}
				records = append(records, recs...)
				pending, tbl = nil, nil
				st = stateSeeking
			case isBlank(l), isSeparator(l):
			default:
				cells := fields(l)
				if len(cells) != len(tbl.header) {
					return nil, model.NewOutputParseErrorf(file, SectionExcess, i+1,
						"row has %d columns, header on line %d has %d", len(cells), tbl.line, len(tbl.header))
				}
				row, bad, ok := numericRow(cells)
				if !ok {
					return nil, model.NewOutputParseErrorf(file, SectionExcess, i+1,
						"non-numeric value %q in column %s", cells[bad], tbl.header[bad])
				}
				tbl.rows = append(tbl.rows, row)
			}
		}
	}
	if st != stateSeeking {
		return nil, model.NewOutputParseErrorf(file, SectionExcess, tbl.line,
			"table ends in state %s before its %q line", st, markerTotal)
	}
	if missing := missingSubareas(records, subareas); len(missing) > 0 {
		return nil, model.NewOutputParseErrorf(file, SectionExcess, 0,
			"no rainfall excess for subareas %s", strings.Join(missing, ", "))
	}
	return records, nil
}

// missingSubareas lists the mandatory subareas no table reported.
func missingSubareas(records []*model.Record, subareas []model.Element) []string {
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		seen[r.Element.Name] = true
	}
	var missing []string
	for _, el := range subareas {
		if !el.Optional && !seen[el.Name] {
			missing = append(missing, el.Name)
		}
	}
	return missing
}

func pluvioRefs(file string, line int, l string, subareas []model.Element) ([]model.Element, error) {
	_, rest, _ := strings.Cut(l, markerPluvio)
	var out []model.Element
	for _, f := range fields(rest) {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, model.NewOutputParseErrorf(file, SectionExcess, line, "pluvio reference %q is not a number", f)
		}
		if n < 1 || n > len(subareas) {
			return nil, model.NewOutputParseErrorf(file, SectionExcess, line,
				"pluvio reference %d outside 1..%d declared subareas", n, len(subareas))
		}
		out = append(out, subareas[n-1])
	}
	if len(out) == 0 {
		return nil, model.NewOutputParseError(file, SectionExcess, line, "pluvio reference line lists no subareas")
	}
	return out, nil
}

func excessRecords(file string, tbl *table, pending []model.Element, param, unit string, timing Timing) ([]*model.Record, error) {
	if pending == nil {
		output.Logger.Warn("Skipping rainfall-excess table without pluvio reference", "file", file, "line", tbl.line, "rows", len(tbl.rows))
		return nil, nil
	}
	var cols []int
	for i, h := range tbl.header {
		if !slices.Contains(excessLabelColumns, h) {
			cols = append(cols, i)
		}
	}
	if len(cols) != len(pending) {
		return nil, model.NewOutputParseErrorf(file, SectionExcess, tbl.line,
			"table has %d value columns for %d pluvio references", len(cols), len(pending))
	}
	if len(tbl.rows) == 0 {
		return nil, model.NewOutputParseError(file, SectionExcess, tbl.line, "table has no rows")
	}
	if !timing.End.IsZero() {
		if want := model.StepCount(timing.Start, timing.End, timing.Step); len(tbl.rows) != want {
			return nil, model.NewOutputParseErrorf(file, SectionExcess, tbl.line,
				"table has %d rows, simulation period %s - %s at %s needs %d",
				len(tbl.rows), timing.Start.Format(time.DateTime), timing.End.Format(time.DateTime), timing.Step, want)
		}
	}

	out := make([]*model.Record, 0, len(cols))
	for j, c := range cols {
		values := make([]float64, len(tbl.rows))
		for r, row := range tbl.rows {
			values[r] = row[c]
		}
		rec, err := model.NewRecord(pending[j].ID(), param, unit, timing.Start, timing.Step, values)
		if err != nil {
			pe := model.NewOutputParseError(file, SectionExcess, tbl.line, "build record")
			pe.Err = err
			return nil, pe
		}
		out = append(out, rec)
	}
	return out, nil
}
