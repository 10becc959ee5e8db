package registry

import (
	"fmt"
	"os"
	"slices"
	"sort"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/output"
)

// GateOpsFiles names the engine files belonging to one operated storage.
type GateOpsFiles struct {
	// Storage is the storage name as spelled inside the engine catchment file.
	Storage           string `yaml:"storage"`
	FilenameOpen      string `yaml:"filename_open"`
	FilenameAuto      string `yaml:"filename_auto"`
	OverwriteFilename string `yaml:"overwrite_filename"`
	CSVFilename       string `yaml:"csv_filename"`
}

// GateOpsEntry is a GateOpsFiles row with the storage element id.
type GateOpsEntry struct {
	ID string
	GateOpsFiles
}

// TransferFile is one transfer file row: a transfer element's quantity
// moved between two engine nodes.
type TransferFile struct {
	ID       string         `yaml:"id"`
	Quantity model.Quantity `yaml:"quantity"`
	In       int            `yaml:"in"`
	Out      int            `yaml:"out"`
	Filename string         `yaml:"filename"`
}

// FileMapping is the validated file-name mapping table. Its rows are held
// in Registry order.
type FileMapping struct {
	gateOps   []GateOpsEntry
	transfers []TransferFile
	unmapped  []string
}

type mappingDoc struct {
	GateOps   map[string]GateOpsFiles `yaml:"gateops"`
	Transfers []TransferFile          `yaml:"transfers"`
}

// LoadMappingFile reads a mapping document from disk.
func LoadMappingFile(path string, reg *Registry) (*FileMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, readError(path, err)
	}
	return LoadMapping(data, reg)
}

// LoadMapping decodes the file-name mapping table and checks every row
// against the catalog.
func LoadMapping(data []byte, reg *Registry) (*FileMapping, error) {
	var doc mappingDoc
	if err := decodeStrict(data, &doc); err != nil {
		return nil, wrapDecode(docMapping, err)
	}

	fm := &FileMapping{}
	for id, files := range doc.GateOps {
		el := model.ElementID{Kind: model.KindStorage, Name: id}
		if !reg.Has(model.KindStorage, id) {
			return nil, model.NewConfigError(docMapping, el.String(), "gateops entry for undeclared storage")
		}
		if files.Storage == "" || files.FilenameOpen == "" {
			return nil, model.NewConfigError(docMapping, el.String(), "gateops entry requires storage and filename_open")
		}
		fm.gateOps = append(fm.gateOps, GateOpsEntry{ID: id, GateOpsFiles: files})
	}
	sort.Slice(fm.gateOps, func(i, j int) bool {
		return order(reg, model.KindStorage, fm.gateOps[i].ID) < order(reg, model.KindStorage, fm.gateOps[j].ID)
	})
	for _, el := range reg.ElementsInOrder(model.KindStorage) {
		if _, ok := doc.GateOps[el.Name]; ok {
			continue
		}
		fm.unmapped = append(fm.unmapped, el.Name)
		if !el.Optional {
			output.Logger.Warn("Storage has no gateops mapping, its gate files are skipped", "storage", el.Name)
		}
	}

	seen := make(map[string]bool)
	for _, tf := range doc.Transfers {
		el := model.ElementID{Kind: model.KindTransfer, Name: tf.ID}
		if !reg.Has(model.KindTransfer, tf.ID) {
			return nil, model.NewConfigError(docMapping, el.String(), "transfer file for undeclared transfer")
		}
		if !slices.Contains(model.TransferQuantities, tf.Quantity) {
			return nil, model.NewConfigErrorf(docMapping, el.String(), "unsupported transfer quantity %q", tf.Quantity)
		}
		if tf.Filename == "" {
			return nil, model.NewConfigError(docMapping, el.String(), "transfer file requires filename")
		}
		key := fmt.Sprintf("%s/%s", tf.ID, tf.Quantity)
		if seen[key] {
			return nil, model.NewConfigErrorf(docMapping, el.String(), "transfer quantity %s mapped twice", tf.Quantity)
		}
		seen[key] = true
		fm.transfers = append(fm.transfers, tf)
	}
	// Grouped by quantity (qtrans, qgen, qoutlet), then catalog order.
	sort.SliceStable(fm.transfers, func(i, j int) bool {
		a, b := fm.transfers[i], fm.transfers[j]
		qa := slices.Index(model.TransferQuantities, a.Quantity)
		qb := slices.Index(model.TransferQuantities, b.Quantity)
		if qa != qb {
			return qa < qb
		}
		return order(reg, model.KindTransfer, a.ID) < order(reg, model.KindTransfer, b.ID)
	})
	return fm, nil
}

func order(reg *Registry, kind model.Kind, name string) int {
	el, _ := reg.Element(kind, name)
	return el.Order
}

// GateOps returns the gate-ops rows in storage order.
func (m *FileMapping) GateOps() []GateOpsEntry {
	return slices.Clone(m.gateOps)
}

// Unmapped returns the catalog storages without a gateops row, in
// catalog order.
func (m *FileMapping) Unmapped() []string {
	return slices.Clone(m.unmapped)
}

// GateOpsFor returns the row of one storage.
func (m *FileMapping) GateOpsFor(id string) (GateOpsEntry, bool) {
	for _, g := range m.gateOps {
		if g.ID == id {
			return g, true
		}
	}
	return GateOpsEntry{}, false
}

// Transfers returns the transfer rows grouped by quantity in catalog order.
func (m *FileMapping) Transfers() []TransferFile {
	return slices.Clone(m.transfers)
}
