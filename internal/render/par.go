package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/daryltucker/rorb-fews/internal/model"
)

func (st *run) par() error {
	file := st.layout.ParFile
	var loss, routing []string
	for _, el := range st.reg.ElementsInOrder(model.KindISA) {
		p, ok := st.m.ISA[el.Name]
		if !ok {
			return model.NewRenderError(file, el.ID().String(), "no loss and routing parameters")
		}
		loss = append(loss, ISALine(el.Name, p.IL, p.CL))
		routing = append(routing, ISALine(el.Name, p.Kc, p.M))
	}

	snowRef := ""
	if st.m.Settings.SnowEnabled {
		snowRef = "Snowmelt :" + st.layout.Path(st.layout.SnowFile)
	}
	matchRef := ""
	if st.layout.MatchingFile != "" {
		matchRef = "Matching :" + st.layout.Path(st.layout.MatchingFile)
	}

	values := map[string]string{
		"catg_file":          st.layout.Path(st.layout.CatchmentFile),
		"stm_file":           st.layout.Path(st.layout.StormFile),
		"num_burst":          strconv.Itoa(st.m.Settings.Bursts),
		"num_isa":            strconv.Itoa(st.reg.Count(model.KindISA) + 1),
		"loss_params_isa":    strings.Join(loss, "\n"),
		"routing_params_isa": strings.Join(routing, "\n"),
		"gate_file":          st.layout.Path(st.layout.MultiGateOpsFile),
		"snow_file":          snowRef,
		"matching_file":      matchRef,
	}
	if _, err := st.emit(file, TemplatePrefix+file, model.FileParameter, model.ElementID{}, values); err != nil {
		return err
	}
	last := &st.files[len(st.files)-1]
	last.Lines = clearEmptyLines(last.Lines)
	return nil
}

// ISALine formats one interstation-area parameter pair.
func ISALine(id string, a, b float64) string {
	return fmt.Sprintf("ISA  %-3s: %s, %s", id, plainFloat(a), plainFloat(b))
}

// ISAValues is one parsed ISA line.
type ISAValues struct {
	ID string
	A  float64
	B  float64
}

var (
	isaPrefix = regexp.MustCompile(`^ISA\s+\S+\s*:`)
	isaLine   = regexp.MustCompile(`^ISA\s+(\S+)\s*:\s*([^,\s]+)\s*,\s*(\S+)\s*$`)
)

// ParseISALines reads every ISA line of a rendered parameter file, in file
// order. It is the inverse of ISALine.
func ParseISALines(lines []string) ([]ISAValues, error) {
	var out []ISAValues
	for i, l := range lines {
		l = strings.TrimSpace(l)
		if !isaPrefix.MatchString(l) {
			continue
		}
		mm := isaLine.FindStringSubmatch(l)
		if mm == nil {
			return nil, fmt.Errorf("line %d: malformed ISA line %q", i+1, l)
		}
		a, err := strconv.ParseFloat(mm[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		b, err := strconv.ParseFloat(mm[3], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, ISAValues{ID: mm[1], A: a, B: b})
	}
	return out, nil
}

func (st *run) catchment() error {
	file := st.layout.CatchmentFile
	_, err := st.emit(file, TemplatePrefix+file, model.FileCatchment, model.ElementID{}, nil)
	return err
}
