/*
PURPOSE:
  Defines the 'inspect' subcommand.
  Prints the catalog, conventions and file mapping as the adapter sees
  them after validation.

REQUIREMENTS:
  User-specified:
  - Useful validation step before wiring the adapter into FEWS.

ERROR HANDLING:
  - Returns the first ConfigError from loading.

USAGE:
  rorb-fews inspect --catalog rorb_config.yaml
*/

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/registry"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the validated catalog, conventions and file mapping",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		reg, err := registry.LoadFiles(cfg.Catalog, cfg.Conventions)
		if err != nil {
			return err
		}
		mapping, err := registry.LoadMappingFile(cfg.Mapping, reg)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		renderElements(w, reg)
		renderConventions(w, reg)
		renderMapping(w, mapping)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

func renderElements(w io.Writer, reg *registry.Registry) {
	t := newTable(w, "Elements")
	t.AppendHeader(table.Row{"Kind", "Order", "Name", "Optional", "Detail"})
	for _, kind := range model.Kinds {
		for _, el := range reg.ElementsInOrder(kind) {
			t.AppendRow(table.Row{kind, el.Order, el.Name, el.Optional, elementDetail(el)})
		}
	}
	t.Render()
}

func elementDetail(el model.Element) string {
	switch el.Kind {
	case model.KindGauge:
		return "column " + el.Column
	case model.KindElevationZone:
		return fmt.Sprintf("priority %s, weight %g", strings.Join(el.Priority, " > "), el.Weight)
	}
	return ""
}

func renderConventions(w io.Writer, reg *registry.Registry) {
	t := newTable(w, "Conventions")
	t.AppendHeader(table.Row{"Key", "Value"})
	for _, key := range reg.ConventionKeys() {
		v, _ := reg.Convention(key)
		t.AppendRow(table.Row{key, v})
	}
	t.Render()

	t = newTable(w, "Series bindings")
	t.AppendHeader(table.Row{"Variable", "Kind", "Quantity", "Unit", "Timestep"})
	for _, b := range reg.SeriesBindings() {
		t.AppendRow(table.Row{b.Variable, b.Kind, b.Quantity, b.Unit, b.Timestep})
	}
	t.Render()

	t = newTable(w, "Outputs")
	t.AppendHeader(table.Row{"Artifact", "Parameter", "Unit"})
	for _, kind := range model.Artifacts {
		if kind == model.ArtifactReservoirOperation {
			for _, c := range reg.TraceColumns() {
				t.AppendRow(table.Row{kind, c.Parameter + " (" + c.Column + ")", c.Unit})
			}
			continue
		}
		t.AppendRow(table.Row{kind, reg.ArtifactParameter(kind), reg.ArtifactUnit(kind)})
	}
	t.Render()
}

func renderMapping(w io.Writer, mapping *registry.FileMapping) {
	t := newTable(w, "Gate operations")
	t.AppendHeader(table.Row{"Storage", "Name", "Open", "Auto", "Override", "Trace"})
	for _, g := range mapping.GateOps() {
		t.AppendRow(table.Row{g.ID, g.Storage, g.FilenameOpen, g.FilenameAuto, g.OverwriteFilename, g.CSVFilename})
	}
	t.Render()

	t = newTable(w, "Transfers")
	t.AppendHeader(table.Row{"Element", "Quantity", "In", "Out", "File"})
	for _, tf := range mapping.Transfers() {
		t.AppendRow(table.Row{tf.ID, tf.Quantity, tf.In, tf.Out, tf.Filename})
	}
	t.Render()
}
