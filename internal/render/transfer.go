package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/output"
	"github.com/daryltucker/rorb-fews/internal/registry"
)

// Shared templates for per-node files.
const (
	TransferTemplate = TemplatePrefix + "GateOpsTransfer.dat"
	OverrideTemplate = TemplatePrefix + "GateOpsOverride.dat"
)

func (st *run) transferFiles() error {
	for _, tf := range st.mapping.Transfers() {
		el, _ := st.reg.Element(model.KindTransfer, tf.ID)
		if _, ok := st.m.Series(model.KindTransfer, tf.ID, tf.Quantity); !ok && el.Optional {
			output.Logger.Warn("Optional transfer has no series, skipping file", "element", el.ID().String(), "quantity", tf.Quantity, "file", tf.Filename)
			continue
		}
		s, err := st.series(tf.Filename, model.KindTransfer, tf.ID, tf.Quantity)
		if err != nil {
			return err
		}
		values := map[string]string{
			"in":       strconv.Itoa(tf.In),
			"out":      strconv.Itoa(tf.Out),
			"transfer": formatList(fixedAll(s.Values, 0), 1, ""),
		}
		if _, err := st.emit(tf.Filename, TransferTemplate, model.FileTransfer, el.ID(), values); err != nil {
			return err
		}
		st.transfers = append(st.transfers, st.layout.Path(tf.Filename))
	}
	return nil
}

func (st *run) overrideFiles() error {
	for _, g := range st.mapping.GateOps() {
		if g.OverwriteFilename == "" {
			continue
		}
		id := model.ElementID{Kind: model.KindStorage, Name: g.ID}
		_, hasOutflow := st.m.Series(model.KindStorage, g.ID, model.QuantityOutflow)
		_, hasOpening := st.m.Series(model.KindStorage, g.ID, model.QuantityGateOpening)
		if !hasOutflow && !hasOpening {
			continue
		}
		file := g.OverwriteFilename
		outflow, err := st.series(file, model.KindStorage, g.ID, model.QuantityOutflow)
		if err != nil {
			return err
		}
		opening, err := st.series(file, model.KindStorage, g.ID, model.QuantityGateOpening)
		if err != nil {
			return err
		}
		if len(outflow.Values) != len(opening.Values) || !outflow.Start.Equal(opening.Start) {
			return model.NewRenderErrorf(file, id.String(), "outflow (%d values) and gate opening (%d values) are not aligned",
				len(outflow.Values), len(opening.Values))
		}
		if st.overrideSteps != 0 && st.overrideSteps != len(outflow.Values) {
			return model.NewRenderErrorf(file, id.String(), "override has %d steps, earlier overrides have %d", len(outflow.Values), st.overrideSteps)
		}
		st.overrideSteps = len(outflow.Values)

		pairs := make([]string, len(outflow.Values))
		for i := range outflow.Values {
			pairs[i] = fmt.Sprintf("%s,%s", fixed(outflow.Values[i], 4), fixed(opening.Values[i], 1))
		}
		values := map[string]string{
			"gate_override":   g.Storage,
			"outflow_opening": strings.Join(pairs, "\n"),
		}
		if _, err := st.emit(file, OverrideTemplate, model.FileOverride, id, values); err != nil {
			return err
		}
		st.overrides = append(st.overrides, st.layout.Path(file))
	}
	return nil
}

func (st *run) multiGateOps() error {
	file := st.layout.MultiGateOpsFile
	transferStep := st.step(registry.StepTransfer)
	operationStep := st.step(registry.StepOperation)

	opSteps := st.overrideSteps
	if opSteps == 0 {
		opSteps = st.windowCount(operationStep)
	}

	values := map[string]string{
		"gateops_number":             strconv.Itoa(len(st.gateOps) / 2),
		"gateops_storages_and_files": strings.Join(st.gateOps, "\n"),
		"transfer_number":            strconv.Itoa(len(st.transfers)),
		"transfer_timestep_hour":     hours(transferStep),
		"transfer_number_timestep":   strconv.Itoa(st.windowCount(transferStep)),
		"transfer_files":             strings.Join(st.transfers, "\n"),
		"operation_number":           strconv.Itoa(len(st.overrides)),
		"operation_timestep_hour":    hours(operationStep),
		"operation_number_timestep":  strconv.Itoa(opSteps),
		"operation_files":            strings.Join(st.overrides, "\n"),
	}
	_, err := st.emit(file, TemplatePrefix+file, model.FileMultiGateOp, model.ElementID{}, values)
	return err
}
