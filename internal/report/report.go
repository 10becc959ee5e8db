/*
PURPOSE:
  The Output Parser: turns the RORB .out report and the per-storage CSV
  traces into normalized time-series records for the return direction.

REQUIREMENTS:
  User-specified:
  - Sections are located by marker text, parsed by an explicit state
    machine, and never dropped silently.
  - A missing rainfall-excess section is an error naming that section.
  - Reconstructed timestamps are strictly increasing.

  Implementation-discovered:
  - Rainfall tables echoed back in the parameter section precede every
    pluvio reference line and are not results.
  - The last rainfall-excess table of a report is an aggregate with no
    pluvio reference of its own.
  - The hydrograph table is printed in column blocks separated by a blank
    line, each with its own header.
  - Trace CSV headers are padded with spaces.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (post).
  - Output: []*model.Record, grouped into artifacts by internal/pixml.

ERROR HANDLING:
  - *model.OutputParseError with file, section and 1-based line.

RELATED FILES:
  - internal/report/scanner.go (line classification and states)
  - internal/report/excess.go, hydrograph.go, trace.go
*/

package report

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/output"
	"github.com/daryltucker/rorb-fews/internal/registry"
)

// Section names used in errors.
const (
	SectionTiming     = "timing"
	SectionExcess     = "rainfall excess"
	SectionHydrograph = "hydrograph"
	SectionTrace      = "trace"
)

// Report is the text of a RORB .out file.
type Report struct {
	Name string
	Text string
}

// Trace is one per-storage CSV trace written by the gate-operation module.
type Trace struct {
	// Storage is the storage element the trace belongs to.
	Storage string
	Name    string
	Text    string
}

// Timing places report increments on the calendar.
type Timing struct {
	Start time.Time
	Step  time.Duration
	// End is the last printed increment, zero when the report prints no
	// simulation period.
	End   time.Time
}

var (
	periodPattern    = regexp.MustCompile(`(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) - (\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})`)
	incrementPattern = regexp.MustCompile(`([\d.]+) hours`)
)

// Parse reads every record the report and traces carry. fallback supplies
// the start or step when the report does not print them.
func Parse(rep Report, traces []Trace, reg *registry.Registry, fallback Timing) ([]*model.Record, error) {
	lines := splitLines(rep.Text)

	sec, err := findExcessSection(rep.Name, lines)
	if err != nil {
		return nil, err
	}
	timing, err := resolveTiming(rep.Name, lines, sec, reg.Location(), fallback)
	if err != nil {
		return nil, err
	}
	output.Logger.Debug("Report timing", "start", timing.Start.Format(time.DateTime), "step", timing.Step)

	var records []*model.Record
	excess, err := parseExcess(rep.Name, lines, sec, reg, timing)
	if err != nil {
		return nil, err
	}
	records = append(records, excess...)

	gauges, err := parseHydrograph(rep.Name, lines, reg, timing)
	if err != nil {
		return nil, err
	}
	records = append(records, gauges...)

	traceStart := fallback.Start
	if traceStart.IsZero() {
		traceStart = timing.Start
	}
	for _, tr := range traces {
		recs, err := ParseTrace(tr, reg, traceStart)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}

	output.Logger.Info("Parsed report", "report", rep.Name, "records", len(records),
		"rainfall_excess", len(excess), "gauges", len(gauges), "traces", len(traces))
	return records, nil
}

// resolveTiming reads the simulation period and increment printed in the
// parameter echo, outside the rainfall echo blocks, filling gaps from
// fallback.
func resolveTiming(file string, lines []string, sec span, loc *time.Location, fallback Timing) (Timing, error) {
	t := Timing{}
	echo := false
	for i := sec.from; i < sec.to; i++ {
		l := lines[i]
		switch {
		case echo:
			if strings.Contains(l, markerPluvio) {
				echo = false
			}
			continue
		case strings.Contains(l, markerEcho):
			echo = true
			continue
		}
		if t.Start.IsZero() {
			if m := periodPattern.FindStringSubmatch(l); m != nil {
				start, err := time.ParseInLocation(time.DateTime, m[1], loc)
				if err != nil {
					return t, model.NewOutputParseErrorf(file, SectionTiming, i+1, "bad start time %q", m[1])
				}
				end, err := time.ParseInLocation(time.DateTime, m[2], loc)
				if err != nil || end.Before(start) {
					return t, model.NewOutputParseErrorf(file, SectionTiming, i+1, "bad end time %q", m[2])
				}
				t.Start, t.End = start, end
			}
		}
		if t.Step == 0 {
			if m := incrementPattern.FindStringSubmatch(l); m != nil {
				h, err := strconv.ParseFloat(m[1], 64)
				if err != nil || h <= 0 {
					return t, model.NewOutputParseErrorf(file, SectionTiming, i+1, "bad time increment %q", m[1])
				}
				t.Step = time.Duration(math.Round(h*3600)) * time.Second
			}
		}
	}

	if t.Start.IsZero() {
		t.Start = fallback.Start
	}
	if t.Step == 0 {
		t.Step = fallback.Step
	}
	if t.Start.IsZero() {
		return t, model.NewOutputParseError(file, SectionTiming, 0, "report prints no simulation period and no run start was given")
	}
	if t.Step <= 0 {
		return t, model.NewOutputParseError(file, SectionTiming, 0, "report prints no time increment and no step was given")
	}
	return t, nil
}
