package report

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/registry"
)

// TraceTimeColumn holds the 1-based minute index of each trace row.
const TraceTimeColumn = "iTime"

// ParseTrace reads one storage trace. Row iTime=1 is start; every
// configured trace column becomes one record.
func ParseTrace(tr Trace, reg *registry.Registry, start time.Time) ([]*model.Record, error) {
	id := model.ElementID{Kind: model.KindStorage, Name: tr.Storage}
	if !reg.Has(model.KindStorage, tr.Storage) {
		return nil, model.NewOutputParseErrorf(tr.Name, SectionTrace, 0, "trace for undeclared %s", id)
	}

	r := csv.NewReader(strings.NewReader(tr.Text))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, csvError(tr.Name, err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	timeCol, ok := col[TraceTimeColumn]
	if !ok {
		return nil, model.NewOutputParseErrorf(tr.Name, SectionTrace, 1, "column %s not found", TraceTimeColumn)
	}
	wanted := reg.TraceColumns()
	idx := make([]int, len(wanted))
	for i, tc := range wanted {
		c, ok := col[tc.Column]
		if !ok {
			return nil, model.NewOutputParseErrorf(tr.Name, SectionTrace, 1, "column %s not found", tc.Column)
		}
		idx[i] = c
	}

	var times []time.Time
	values := make([][]float64, len(wanted))
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(tr.Name, err)
		}
		line, _ := r.FieldPos(0)

		minute, err := strconv.ParseFloat(strings.TrimSpace(rec[timeCol]), 64)
		if err != nil || minute != math.Trunc(minute) || minute < 1 {
			return nil, model.NewOutputParseErrorf(tr.Name, SectionTrace, line, "%s %q is not a minute index from 1", TraceTimeColumn, rec[timeCol])
		}
		times = append(times, start.Add(time.Duration(minute-1)*time.Minute))

		for i, c := range idx {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[c]), 64)
			if err != nil {
				return nil, model.NewOutputParseErrorf(tr.Name, SectionTrace, line, "non-numeric value %q in column %s", rec[c], wanted[i].Column)
			}
			values[i] = append(values[i], v)
		}
	}
	if len(times) == 0 {
		return nil, model.NewOutputParseError(tr.Name, SectionTrace, 1, "trace has no rows")
	}

	out := make([]*model.Record, 0, len(wanted))
	for i, tc := range wanted {
		rec, err := model.NewRecordFromPoints(id, tc.Parameter, tc.Unit, times, values[i])
		if err != nil {
			pe := model.NewOutputParseErrorf(tr.Name, SectionTrace, 0, "column %s", tc.Column)
			pe.Err = err
			return nil, pe
		}
		out = append(out, rec)
	}
	return out, nil
}

func csvError(file string, err error) error {
	line := 0
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		line = pe.Line
	} else if errors.Is(err, io.EOF) {
		return model.NewOutputParseError(file, SectionTrace, 1, "trace is empty")
	}
	e := model.NewOutputParseError(file, SectionTrace, line, "malformed CSV")
	e.Err = err
	return e
}
