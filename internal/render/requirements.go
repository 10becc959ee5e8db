package render

import (
	"errors"
	"os"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/registry"
)

// Requirement is one template a run may read.
type Requirement struct {
	Template string
	Kind     model.FileKind
	// Element is set for per-storage templates.
	Element string
	// Required is false for templates only some runs read: snow, the
	// automatic gate-ops variant, transfers and overrides.
	Required bool
}

// Requirements lists the templates Render may read for layout and mapping,
// in render order.
func Requirements(layout Layout, mapping *registry.FileMapping) []Requirement {
	reqs := []Requirement{
		{Template: TemplatePrefix + layout.StormFile, Kind: model.FileStorm, Required: true},
		{Template: TemplatePrefix + layout.ParFile, Kind: model.FileParameter, Required: true},
		{Template: TemplatePrefix + layout.CatchmentFile, Kind: model.FileCatchment, Required: true},
		{Template: TemplatePrefix + layout.SnowFile, Kind: model.FileSnow},
	}
	for _, g := range mapping.GateOps() {
		if g.FilenameAuto != "" {
			reqs = append(reqs, Requirement{Template: TemplatePrefix + g.FilenameAuto, Kind: model.FileGateOps, Element: g.ID})
		}
		reqs = append(reqs, Requirement{Template: TemplatePrefix + g.FilenameOpen, Kind: model.FileGateOps, Element: g.ID, Required: true})
	}
	if len(mapping.Transfers()) > 0 {
		reqs = append(reqs, Requirement{Template: TransferTemplate, Kind: model.FileTransfer})
	}
	reqs = append(reqs,
		Requirement{Template: OverrideTemplate, Kind: model.FileOverride},
		Requirement{Template: TemplatePrefix + layout.MultiGateOpsFile, Kind: model.FileMultiGateOp, Required: true},
	)
	return reqs
}

// Missing returns the requirements templates cannot serve.
func Missing(reqs []Requirement, templates TemplateSet) ([]Requirement, error) {
	var missing []Requirement
	for _, r := range reqs {
		_, err := templates.Template(r.Template)
		switch {
		case err == nil:
		case errors.Is(err, os.ErrNotExist):
			missing = append(missing, r)
		default:
			return nil, err
		}
	}
	return missing, nil
}
