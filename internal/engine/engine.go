/*
PURPOSE:
  Orchestrates one adapter invocation: the forward (pre) step that turns
  FEWS exports into RORB input files, the launch of the RORB executable,
  and the return (post) step that turns RORB results into FEWS imports.

REQUIREMENTS:
  User-specified:
  - Everything is driven by the run info file FEWS writes.
  - Nothing is written unless the whole step succeeded in memory.

  Implementation-discovered:
  - The model folder comes from the run info "model_folder" property and
    keeps FEWS's own path style.
  - Output files are matched to artifacts by position: gauge flow,
    reservoir operation, rainfall excess.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: registry, pi, source, compiler, render, report, pixml, output

ERROR HANDLING:
  - Typed errors from the stages pass through unchanged; file system
    failures are wrapped with the path.

RELATED FILES:
  - internal/engine/pre.go, post.go, launch.go
*/

package engine

import (
	"fmt"
	"os"
	"time"

	"github.com/daryltucker/rorb-fews/internal/config"
	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/output"
	"github.com/daryltucker/rorb-fews/internal/pi"
	"github.com/daryltucker/rorb-fews/internal/registry"
	"github.com/daryltucker/rorb-fews/internal/render"
)

// Engine runs adapter steps with one configuration.
type Engine struct {
	Config *config.Config
	// RunID tags manifest entries; it matches the logger's run_id.
	RunID string
}

// New creates a new Engine.
func New(cfg *config.Config, runID string) *Engine {
	return &Engine{Config: cfg, RunID: runID}
}

// session is the state shared by the steps of one run info.
type session struct {
	reg      *registry.Registry
	mapping  *registry.FileMapping
	run      *pi.RunInfo
	modelDir string
	layout   render.Layout
}

func (e *Engine) open(runInfoPath string) (*session, error) {
	cfg := e.Config
	reg, err := registry.LoadFiles(cfg.Catalog, cfg.Conventions)
	if err != nil {
		return nil, err
	}
	mapping, err := registry.LoadMappingFile(cfg.Mapping, reg)
	if err != nil {
		return nil, err
	}
	run, err := pi.ReadRunInfoFile(runInfoPath, reg.Location())
	if err != nil {
		return nil, err
	}

	modelDir, ok := run.Property(pi.PropModelFolder)
	if !ok {
		modelDir = run.WorkDir
	}
	if modelDir == "" {
		return nil, model.NewInputError(run.Path, "", pi.PropModelFolder, "run info names neither a model folder nor a work dir")
	}

	output.Logger.Info("Opened run", "run_info", runInfoPath, "model_folder", modelDir,
		"start", run.Start.Format(time.DateTime), "end", run.End.Format(time.DateTime))
	return &session{reg: reg, mapping: mapping, run: run, modelDir: modelDir, layout: e.layout(modelDir)}, nil
}

func (e *Engine) layout(modelDir string) render.Layout {
	f := e.Config.Files
	return render.Layout{
		ModelDir:         modelDir,
		ParFile:          f.Par,
		StormFile:        f.Storm,
		CatchmentFile:    f.Catchment,
		SnowFile:         f.Snow,
		MultiGateOpsFile: f.MultiGateOps,
		MatchingFile:     f.Matching,
	}
}

// writeFile replaces path with data.
func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// manifest appends entries when the manifest is enabled.
func (e *Engine) manifest(s *session, entries []output.ManifestEntry) error {
	if !e.Config.Manifest || len(entries) == 0 {
		return nil
	}
	path := s.layout.Path(e.Config.Files.ManifestFile)
	w, err := output.NewJSONWriter(path)
	if err != nil {
		return fmt.Errorf("failed to init manifest at %s: %w", path, err)
	}
	defer w.Close()
	for _, entry := range entries {
		entry.RunID = e.RunID
		if err := w.Write(entry); err != nil {
			return fmt.Errorf("write manifest %s: %w", path, err)
		}
	}
	return nil
}
