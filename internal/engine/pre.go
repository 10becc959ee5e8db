package engine

import (
	"context"
	"time"

	"github.com/daryltucker/rorb-fews/internal/compiler"
	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/output"
	"github.com/daryltucker/rorb-fews/internal/pi"
	"github.com/daryltucker/rorb-fews/internal/render"
	"github.com/daryltucker/rorb-fews/internal/source"
)

// PreResult lists what the forward step produced.
type PreResult struct {
	Model  *model.RunModel
	Files  []model.RenderedFile
	Paths  []string
	Script string
}

// Pre compiles the FEWS exports named by the run info and renders every
// RORB input file. With dryRun nothing is written.
func (e *Engine) Pre(ctx context.Context, runInfoPath string, dryRun bool) (*PreResult, error) {
	s, err := e.open(runInfoPath)
	if err != nil {
		return nil, err
	}
	run := s.run
	if len(run.InputNetcdfFiles) > 0 {
		return nil, model.NewInputError(run.Path, "", "inputNetcdfFile",
			"NetCDF exports are not read; export the series as PI-XML inputTimeSeriesFile")
	}

	in, err := e.inputs(s)
	if err != nil {
		return nil, err
	}
	m, err := compiler.Compile(in, s.reg)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	templates := render.DirTemplates(e.Config.TemplatesIn(s.modelDir))
	files, err := render.New(s.reg, s.mapping, templates, s.layout).Render(m)
	if err != nil {
		return nil, err
	}

	res := &PreResult{Model: m, Files: files, Script: s.layout.Path(e.Config.Files.LaunchScript)}
	for _, f := range files {
		res.Paths = append(res.Paths, s.layout.Path(f.Name))
	}
	if dryRun {
		output.Logger.Info("Dry run, nothing written", "files", len(files))
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []output.ManifestEntry
	for i, f := range files {
		data := f.Bytes()
		if err := writeFile(res.Paths[i], data); err != nil {
			return nil, err
		}
		output.Logger.Debug("Wrote file", "path", res.Paths[i], "kind", f.Kind)
		entries = append(entries, output.ManifestEntry{
			Step: "pre", Path: res.Paths[i], Kind: string(f.Kind), Element: f.Element.Name,
			Lines: len(f.Lines), Bytes: len(data), Written: time.Now(),
		})
	}

	exe := e.exe(s)
	script := []byte(BatchScript(s.modelDir, exe, s.layout.Path(e.Config.Files.Par)))
	if err := writeFile(res.Script, script); err != nil {
		return nil, err
	}
	entries = append(entries, output.ManifestEntry{
		Step: "pre", Path: res.Script, Kind: "launch_script", Bytes: len(script), Written: time.Now(),
	})
	if err := e.manifest(s, entries); err != nil {
		return nil, err
	}

	output.Logger.Info("Pre step complete", "files", len(files), "script", res.Script, "model", m.String())
	return res, nil
}

// inputs opens the parameter, state and series exports. The state file is
// chosen by index; every other time-series file is a series source.
func (e *Engine) inputs(s *session) (compiler.Inputs, error) {
	run, loc := s.run, s.reg.Location()

	paramsPath, err := run.InputParameterFile(0)
	if err != nil {
		return compiler.Inputs{}, err
	}
	params, err := pi.ReadParametersFile(paramsPath)
	if err != nil {
		return compiler.Inputs{}, err
	}

	statePath, err := run.InputTimeSeriesFile(e.Config.StateIndex)
	if err != nil {
		return compiler.Inputs{}, err
	}
	state, err := pi.ReadTimeSeriesFile(statePath)
	if err != nil {
		return compiler.Inputs{}, err
	}

	in := compiler.Inputs{Run: run, Params: params, State: state}
	for i, p := range run.InputTimeSeriesFiles {
		if i == e.Config.StateIndex {
			continue
		}
		src, err := source.OpenPITimeSeries(p, loc)
		if err != nil {
			return compiler.Inputs{}, err
		}
		in.Sources = append(in.Sources, src)
	}
	output.Logger.Debug("Opened inputs", "parameters", paramsPath, "state", statePath, "sources", len(in.Sources))
	return in, nil
}
