/*
PURPOSE:
  The Config Registry: an immutable description of the RORB element catalog
  (which elements exist, of which kind, in which declared order) and of the
  FEWS conventions (time zone, calendar, timesteps, series bindings).

REQUIREMENTS:
  User-specified:
  - Loaded once per run from two declarative documents, never mutated.
  - Element ordering is the single source of truth for every rendered file
    and every exchange document.

  Implementation-discovered:
  - Orders must be contiguous from 0 per kind; a gap almost always means a
    catalog edit dropped an element, which would shift every later column.
  - Documents are decoded strictly: unknown keys are configuration typos.

ARCHITECTURE INTEGRATION:
  - Used by: internal/compiler, internal/render, internal/report,
    internal/pixml, internal/engine, internal/cli (inspect).
  - Passed explicitly; there is no package-level registry.

ERROR HANDLING:
  - Every validation failure is a *model.ConfigError naming the document and,
    where applicable, the element.

USAGE:
  reg, err := registry.Load(catalogYAML, conventionsYAML)
  for _, e := range reg.ElementsInOrder(model.KindSubarea) { ... }

RELATED FILES:
  - internal/registry/conventions.go
  - internal/registry/mapping.go
*/

package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	// FEWS runs on hosts without a system zoneinfo database.
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/daryltucker/rorb-fews/internal/model"
)

const (
	docCatalog     = "catalog"
	docConventions = "conventions"
	docMapping     = "file mapping"
)

// Registry is the immutable catalog plus conventions.
type Registry struct {
	byKind map[model.Kind][]model.Element
	index  map[model.ElementID]model.Element
	conv   *Conventions
}

type catalogDoc struct {
	Elements []elementDoc `yaml:"elements"`
}

// Pointer fields distinguish "absent" from the zero value.
type elementDoc struct {
	Kind     *string  `yaml:"kind"`
	Name     *string  `yaml:"name"`
	Order    *int     `yaml:"order"`
	Optional bool     `yaml:"optional"`
	Column   string   `yaml:"column"`
	Priority []string `yaml:"priority"`
	Weight   *float64 `yaml:"weight"`
}

// LoadFiles reads both documents from disk and calls Load.
func LoadFiles(catalogPath, conventionsPath string) (*Registry, error) {
	catalog, err := os.ReadFile(catalogPath)
	if err != nil {
		return nil, readError(catalogPath, err)
	}
	conventions, err := os.ReadFile(conventionsPath)
	if err != nil {
		return nil, readError(conventionsPath, err)
	}
	return Load(catalog, conventions)
}

// Load decodes and validates the catalog and conventions documents.
// JSON documents are accepted as well since JSON is a subset of YAML.
func Load(catalog, conventions []byte) (*Registry, error) {
	var cat catalogDoc
	if err := decodeStrict(catalog, &cat); err != nil {
		return nil, wrapDecode(docCatalog, err)
	}

	reg := &Registry{
		byKind: make(map[model.Kind][]model.Element),
		index:  make(map[model.ElementID]model.Element),
	}
	if err := reg.addElements(cat.Elements); err != nil {
		return nil, err
	}
	if err := reg.checkOrders(); err != nil {
		return nil, err
	}
	if err := reg.checkZones(); err != nil {
		return nil, err
	}

	conv, err := parseConventions(conventions, reg)
	if err != nil {
		return nil, err
	}
	reg.conv = conv
	return reg, nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("document is empty")
		}
		return err
	}
	return nil
}

func readError(path string, err error) error {
	ce := model.NewConfigError(path, "", "read failed")
	ce.Err = err
	return ce
}

func wrapDecode(doc string, err error) error {
	ce := model.NewConfigError(doc, "", "decode failed")
	ce.Err = err
	return ce
}

func (r *Registry) addElements(docs []elementDoc) error {
	if len(docs) == 0 {
		return model.NewConfigError(docCatalog, "", "no elements declared")
	}
	for i, d := range docs {
		label := fmt.Sprintf("#%d", i)
		if d.Name != nil {
			label = fmt.Sprintf("#%d %q", i, *d.Name)
		}
		switch {
		case d.Kind == nil || *d.Kind == "":
			return model.NewConfigError(docCatalog, label, "missing required attribute kind")
		case d.Name == nil || *d.Name == "":
			return model.NewConfigError(docCatalog, label, "missing required attribute name")
		case d.Order == nil:
			return model.NewConfigError(docCatalog, label, "missing required attribute order")
		}

		el := model.Element{
			Kind:     model.Kind(*d.Kind),
			Name:     *d.Name,
			Order:    *d.Order,
			Optional: d.Optional,
			Column:   d.Column,
			Priority: d.Priority,
		}
		if !el.Kind.Valid() {
			return model.NewConfigErrorf(docCatalog, el.ID().String(), "unknown kind %q", el.Kind)
		}
		if _, dup := r.index[el.ID()]; dup {
			return model.NewConfigError(docCatalog, el.ID().String(), "declared twice")
		}
		if el.Kind == model.KindGauge && el.Column == "" {
			return model.NewConfigError(docCatalog, el.ID().String(), "gauge requires a hydrograph column")
		}
		if el.Kind == model.KindElevationZone && len(el.Priority) == 0 {
			return model.NewConfigError(docCatalog, el.ID().String(), "elevation zone requires a snow course priority list")
		}
		if d.Weight != nil {
			if *d.Weight < 0 {
				return model.NewConfigError(docCatalog, el.ID().String(), "negative weight")
			}
			el.Weight = *d.Weight
		} else {
			el.Weight = -1 // resolved in checkZones
		}

		r.index[el.ID()] = el
		r.byKind[el.Kind] = append(r.byKind[el.Kind], el)
	}
	return nil
}

// checkOrders sorts each kind and requires orders 0..n-1 exactly once.
func (r *Registry) checkOrders() error {
	for _, kind := range model.Kinds {
		els := r.byKind[kind]
		sort.SliceStable(els, func(i, j int) bool { return els[i].Order < els[j].Order })
		for i, el := range els {
			if el.Order == i {
				continue
			}
			if i > 0 && els[i-1].Order == el.Order {
				return model.NewConfigErrorf(docCatalog, el.ID().String(),
					"order %d already used by %q", el.Order, els[i-1].Name)
			}
			return model.NewConfigErrorf(docCatalog, el.ID().String(),
				"order %d breaks the sequence 0..%d for kind %s (order %d is missing)", el.Order, len(els)-1, kind, i)
		}
	}
	return nil
}

func (r *Registry) checkZones() error {
	zones := r.byKind[model.KindElevationZone]
	for i := range zones {
		z := &zones[i]
		for _, course := range z.Priority {
			if _, ok := r.index[model.ElementID{Kind: model.KindSnowCourse, Name: course}]; !ok {
				return model.NewConfigErrorf(docCatalog, z.ID().String(), "priority references undeclared snow course %q", course)
			}
		}
		if z.Weight < 0 {
			z.Weight = 1 / float64(len(zones))
		}
		r.index[z.ID()] = *z
	}
	return nil
}

// ElementsInOrder returns the elements of kind in declared order.
func (r *Registry) ElementsInOrder(kind model.Kind) []model.Element {
	els := r.byKind[kind]
	out := make([]model.Element, len(els))
	copy(out, els)
	return out
}

// Names returns the element names of kind in declared order.
func (r *Registry) Names(kind model.Kind) []string {
	els := r.byKind[kind]
	out := make([]string, len(els))
	for i, el := range els {
		out[i] = el.Name
	}
	return out
}

// Element looks up one element by identity.
func (r *Registry) Element(kind model.Kind, name string) (model.Element, bool) {
	el, ok := r.index[model.ElementID{Kind: kind, Name: name}]
	return el, ok
}

// Has reports whether (kind, name) is declared.
func (r *Registry) Has(kind model.Kind, name string) bool {
	_, ok := r.index[model.ElementID{Kind: kind, Name: name}]
	return ok
}

// Count returns the number of elements of kind.
func (r *Registry) Count(kind model.Kind) int { return len(r.byKind[kind]) }

// Conventions returns the decoded conventions document.
func (r *Registry) Conventions() *Conventions { return r.conv }
