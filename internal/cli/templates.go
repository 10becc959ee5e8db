package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/daryltucker/rorb-fews/internal/output"
	"github.com/daryltucker/rorb-fews/internal/registry"
	"github.com/daryltucker/rorb-fews/internal/render"
)

var templatesCmd = &cobra.Command{
	Use:   "templates <model_folder>",
	Short: "Check that a model folder has every template a run reads",
	Args:  cobra.ExactArgs(1),
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

		dir := cfg.TemplatesIn(args[0])
		layout := render.Layout{
			ModelDir:         args[0],
			ParFile:          cfg.Files.Par,
			StormFile:        cfg.Files.Storm,
			CatchmentFile:    cfg.Files.Catchment,
			SnowFile:         cfg.Files.Snow,
			MultiGateOpsFile: cfg.Files.MultiGateOps,
		}
		reqs := render.Requirements(layout, mapping)
		missing, err := render.Missing(reqs, render.DirTemplates(dir))
		if err != nil {
			return err
		}
		absent := make(map[string]bool, len(missing))
		for _, r := range missing {
			absent[r.Template] = true
		}

		t := newTable(cmd.OutOrStdout(), "Templates in "+dir)
		t.AppendHeader(table.Row{"Template", "Kind", "Storage", "Required", "Status"})
		required := 0
		for _, r := range reqs {
			status := "ok"
			if absent[r.Template] {
				status = "missing"
				if r.Required {
					required++
				}
			}
			t.AppendRow(table.Row{r.Template, r.Kind, r.Element, r.Required, status})
		}
		t.Render()

		if required > 0 {
			return fmt.Errorf("%d required templates missing from %s", required, dir)
		}
		output.Logger.Info("Templates complete", "dir", dir, "optional_missing", len(missing))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}
