package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/output"
	"github.com/daryltucker/rorb-fews/internal/pixml"
	"github.com/daryltucker/rorb-fews/internal/registry"
	"github.com/daryltucker/rorb-fews/internal/report"
)

// PostResult lists what the return step produced.
type PostResult struct {
	Records []*model.Record
	// Outputs maps each artifact to the file it was written to.
	Outputs map[model.ArtifactKind]string
}

// Post parses the RORB report and gate-operation traces and writes one
// PI-XML file per artifact to the output paths named by the run info.
func (e *Engine) Post(ctx context.Context, runInfoPath string) (*PostResult, error) {
	s, err := e.open(runInfoPath)
	if err != nil {
		return nil, err
	}

	reportPath := s.layout.Path(e.Config.Files.Report)
	text, err := readResult(reportPath, "report")
	if err != nil {
		return nil, err
	}
	var traces []report.Trace
	for _, g := range s.mapping.GateOps() {
		if g.CSVFilename == "" {
			continue
		}
		path := s.layout.Path(g.CSVFilename)
		data, err := readResult(path, report.SectionTrace)
		if err != nil {
			return nil, err
		}
		traces = append(traces, report.Trace{Storage: g.ID, Name: path, Text: data})
	}

	fallback := report.Timing{Start: s.run.Start, Step: s.reg.MustTimestep(registry.StepRain)}
	records, err := report.Parse(report.Report{Name: reportPath, Text: text}, traces, s.reg, fallback)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	groups, err := pixml.Split(records)
	if err != nil {
		return nil, err
	}

	// Encode every document before touching the output files.
	encoded := make([][]byte, len(model.Artifacts))
	paths := make([]string, len(model.Artifacts))
	for i, kind := range model.Artifacts {
		path, err := s.run.OutputTimeSeriesFile(i)
		if err != nil {
			return nil, err
		}
		doc, err := pixml.Write(groups[kind], kind, s.reg)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := doc.Encode(&buf); err != nil {
			return nil, err
		}
		encoded[i], paths[i] = buf.Bytes(), path
	}

	res := &PostResult{Records: records, Outputs: make(map[model.ArtifactKind]string)}
	var entries []output.ManifestEntry
	for i, kind := range model.Artifacts {
		if err := writeFile(paths[i], encoded[i]); err != nil {
			return nil, err
		}
		if len(groups[kind]) == 0 {
			output.Logger.Warn("No series for artifact, wrote empty document", "artifact", kind, "path", paths[i])
		}
		res.Outputs[kind] = paths[i]
		entries = append(entries, output.ManifestEntry{
			Step: "post", Path: paths[i], Kind: string(kind),
			Series: len(groups[kind]), Bytes: len(encoded[i]), Written: time.Now(),
		})
	}

	if e.Config.CSV {
		path := s.layout.Path(e.Config.Files.CSVFile)
		if err := exportCSV(path, records); err != nil {
			return nil, err
		}
		entries = append(entries, output.ManifestEntry{
			Step: "post", Path: path, Kind: "csv", Series: len(records), Written: time.Now(),
		})
	}
	if err := e.manifest(s, entries); err != nil {
		return nil, err
	}

	output.Logger.Info("Post step complete", "records", len(records), "outputs", len(paths))
	return res, nil
}

// readResult reads a file written by the engine run.
func readResult(path, section string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		msg := "cannot read engine output"
		if errors.Is(err, os.ErrNotExist) {
			msg = "engine output missing; did the engine run?"
		}
		pe := model.NewOutputParseError(path, section, 0, msg)
		pe.Err = err
		return "", pe
	}
	return string(data), nil
}

func exportCSV(path string, records []*model.Record) error {
	w, err := output.NewCSVWriter(path)
	if err != nil {
		return fmt.Errorf("failed to init CSV writer at %s: %w", path, err)
	}
	defer w.Close()
	for _, r := range records {
		if err := w.Write(r); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	output.Logger.Info("Exported records", "path", path, "records", len(records))
	return nil
}
