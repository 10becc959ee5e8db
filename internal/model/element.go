/*
PURPOSE:
  Defines the normalized vocabulary shared by both translation directions:
  element kinds, element identity, quantities and artifact kinds.

REQUIREMENTS:
  User-specified:
  - Elements are named, typed catalog entries with a declared order.
  - Identity of an element is (kind, name).

  Implementation-discovered:
  - FEWS location ids and RORB calculation-order ids are both plain strings,
    so kind is needed to disambiguate (a gauge and a baseflow hydrograph
    share the id "410574").

ARCHITECTURE INTEGRATION:
  - Used by: internal/registry, internal/compiler, internal/render,
    internal/report, internal/pixml.

ERROR HANDLING:
  - None (pure data).

RELATED FILES:
  - internal/model/run.go
  - internal/model/record.go
*/

package model

import "fmt"

// Kind is the catalog category an element belongs to.
type Kind string

const (
	KindISA           Kind = "isa"
	KindSubarea       Kind = "subarea"
	KindBaseflow      Kind = "baseflow"
	KindStorage       Kind = "storage"
	KindSnowCourse    Kind = "snow_course"
	KindElevationZone Kind = "elevation_zone"
	KindMeteo         Kind = "meteo"
	KindTransfer      Kind = "transfer"
	KindGauge         Kind = "gauge"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{
	KindISA,
	KindSubarea,
	KindBaseflow,
	KindStorage,
	KindSnowCourse,
	KindElevationZone,
	KindMeteo,
	KindTransfer,
	KindGauge,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ElementID is the identity of a catalog element.
type ElementID struct {
	Kind Kind
	Name string
}

func (id ElementID) String() string {
	return fmt.Sprintf("%s %q", id.Kind, id.Name)
}

// Element is one immutable catalog entry.
type Element struct {
	Kind     Kind
	Name     string
	Order    int
	Optional bool

	// Column is the hydrograph column printed by RORB for a gauge (e.g. "Hyd001").
	Column string
	// Priority lists snow courses consulted, in order, for an elevation zone.
	Priority []string
	// Weight is the elevation zone's share of the weighted snowpack density.
	Weight float64
}

// ID returns the element identity.
func (e Element) ID() ElementID {
	return ElementID{Kind: e.Kind, Name: e.Name}
}

// Quantity names a physical quantity carried by a series.
type Quantity string

const (
	QuantityRainfall    Quantity = "rainfall"
	QuantityTemperature Quantity = "temperature"
	QuantityWind        Quantity = "wind"
	QuantityQTrans      Quantity = "qtrans"
	QuantityQGen        Quantity = "qgen"
	QuantityQOutlet     Quantity = "qoutlet"
	QuantityOutflow     Quantity = "outflow"
	QuantityGateOpening Quantity = "gate_opening"
)

// TransferQuantities are the quantities a transfer file may carry.
var TransferQuantities = []Quantity{QuantityQTrans, QuantityQGen, QuantityQOutlet}

// ArtifactKind identifies one FEWS exchange document produced on the return path.
type ArtifactKind string

const (
	ArtifactGaugeFlow          ArtifactKind = "gauge_flow"
	ArtifactReservoirOperation ArtifactKind = "reservoir_operation"
	ArtifactRainfallExcess     ArtifactKind = "rainfall_excess"
)

// Artifacts lists the artifact kinds in the order FEWS expects the output files.
var Artifacts = []ArtifactKind{
	ArtifactGaugeFlow,
	ArtifactReservoirOperation,
	ArtifactRainfallExcess,
}

// ElementKind returns the element kind whose catalog order governs series
// order inside the artifact.
func (a ArtifactKind) ElementKind() Kind {
	switch a {
	case ArtifactGaugeFlow:
		return KindGauge
	case ArtifactReservoirOperation:
		return KindStorage
	case ArtifactRainfallExcess:
		return KindSubarea
	}
	return ""
}
