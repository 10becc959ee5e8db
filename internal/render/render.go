/*
PURPOSE:
  The Template Renderer: fills the RORB engine's text templates from a
  compiled run model. Produces the storm file, parameter file, catchment
  file, optional snow file, per-storage gate-ops files, transfer files,
  override files and the multi gate-ops index.

REQUIREMENTS:
  User-specified:
  - Elements are emitted strictly in Registry order.
  - A value required by a template is never defaulted silently.
  - Numeric formatting is deterministic and locale independent.

  Implementation-discovered:
  - RORB lists in the storm file end with ", -99".
  - The gate-ops template itself carries the elevation-storage table used
    to convert the observed level into an initial storage.
  - The parameter file must not contain blank lines (an empty snow
    reference would otherwise leave one).

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (pre).
  - Inputs: *model.RunModel, *registry.Registry, *registry.FileMapping.
  - Output: []model.RenderedFile, written by the engine only after every
    file rendered successfully.

ERROR HANDLING:
  - *model.RenderError naming the output file and the element.

RELATED FILES:
  - internal/render/template.go (placeholder filler)
  - internal/render/format.go (fixed-decimal lists)
*/

package render

import (
	"strings"
	"time"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/output"
	"github.com/daryltucker/rorb-fews/internal/registry"
)

// Layout names the generated files and the folder the engine will read
// them from. File references inside generated files use ModelDir.
type Layout struct {
	ModelDir         string
	ParFile          string
	StormFile        string
	CatchmentFile    string
	SnowFile         string
	MultiGateOpsFile string
	// MatchingFile is referenced from the parameter file when set.
	MatchingFile string
}

// DefaultLayout returns the file names used by the standard RORB setup.
func DefaultLayout(modelDir string) Layout {
	return Layout{
		ModelDir:         modelDir,
		ParFile:          "RORB_CMD.par",
		StormFile:        "Rainfall.stm",
		CatchmentFile:    "catchment.catg",
		SnowFile:         "Snowmelt.dat",
		MultiGateOpsFile: "multiGateOps.dat",
	}
}

// Path returns name inside ModelDir, keeping the folder's own separator
// style (FEWS hands Windows paths through unchanged).
func (l Layout) Path(name string) string {
	dir := l.ModelDir
	switch {
	case dir == "":
		return name
	case strings.HasSuffix(dir, `\`), strings.HasSuffix(dir, "/"):
		return dir + name
	case strings.Contains(dir, `\`):
		return dir + `\` + name
	default:
		return dir + "/" + name
	}
}

// Renderer renders every engine input file for one run.
type Renderer struct {
	reg       *registry.Registry
	mapping   *registry.FileMapping
	templates TemplateSet
	layout    Layout
}

// New returns a renderer. The registry and mapping are only read.
func New(reg *registry.Registry, mapping *registry.FileMapping, templates TemplateSet, layout Layout) *Renderer {
	return &Renderer{reg: reg, mapping: mapping, templates: templates, layout: layout}
}

// run carries per-call state between the file renderers.
type run struct {
	*Renderer
	m     *model.RunModel
	files []model.RenderedFile

	gateOps   []string // storage name, path pairs
	transfers []string
	overrides []string

	overrideSteps int
}

// Render produces all files in output order. Nothing is returned unless
// every file rendered.
func (r *Renderer) Render(m *model.RunModel) ([]model.RenderedFile, error) {
	st := &run{Renderer: r, m: m}
	steps := []func() error{
		st.storm,
		st.par,
		st.catchment,
		st.snow,
		st.gateOpsFiles,
		st.transferFiles,
		st.overrideFiles,
		st.multiGateOps,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return st.files, nil
}

// emit fills the template for name and records the result.
func (st *run) emit(name, template string, kind model.FileKind, el model.ElementID, values map[string]string) ([]string, error) {
	text, err := st.templates.Template(template)
	if err != nil {
		return nil, model.WrapRenderError(name, "load template "+template, err)
	}
	filled, err := Fill(name, text, values)
	if err != nil {
		return nil, err
	}
	lines := splitLines(filled)
	st.files = append(st.files, model.RenderedFile{Name: name, Kind: kind, Lines: lines, Element: el})
	output.Logger.Debug("Rendered file", "file", name, "lines", len(lines))
	return lines, nil
}

func (st *run) step(name string) time.Duration {
	return st.reg.MustTimestep(name)
}

// windowCount is the number of samples of the run window at step.
func (st *run) windowCount(step time.Duration) int {
	return model.StepCount(st.m.Window.Start, st.m.Window.End, step)
}

func hours(d time.Duration) string {
	return plainFloat(d.Hours())
}

// series returns a complete series or a RenderError naming its element.
func (st *run) series(file string, kind model.Kind, name string, q model.Quantity) (*model.Series, error) {
	id := model.ElementID{Kind: kind, Name: name}
	s, ok := st.m.Series(kind, name, q)
	if !ok {
		return nil, model.NewRenderErrorf(file, id.String(), "no %s series", q)
	}
	if i := s.FirstMissing(); i >= 0 {
		return nil, model.NewRenderErrorf(file, id.String(), "%s series has a missing value at %s",
			q, s.Start.Add(time.Duration(i)*s.Step).Format(time.DateTime))
	}
	return s, nil
}
