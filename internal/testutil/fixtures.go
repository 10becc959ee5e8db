package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daryltucker/rorb-fews/internal/registry"
)

// CatalogYAML is a small catalog covering every element kind. Elements are
// deliberately listed out of order.
const CatalogYAML = `
elements:
  - {kind: isa, name: "2", order: 1}
  - {kind: isa, name: "1", order: 0}
  - {kind: subarea, name: C, order: 2}
  - {kind: subarea, name: A, order: 0}
  - {kind: subarea, name: B, order: 1}
  - {kind: baseflow, name: "410574", order: 0}
  - {kind: storage, name: "410571", order: 0}
  - {kind: snow_course, name: DeepCreek, order: 0, optional: true}
  - {kind: snow_course, name: Cabramurra, order: 1, optional: true}
  - {kind: elevation_zone, name: "1", order: 0, priority: [DeepCreek, Cabramurra], weight: 0.5}
  - {kind: elevation_zone, name: "2", order: 1, priority: [Cabramurra], weight: 0.5, optional: true}
  - {kind: meteo, name: "14", order: 0}
  - {kind: transfer, name: "410542", order: 0}
  - {kind: gauge, name: "410575", order: 1, column: Hyd002}
  - {kind: gauge, name: "410574", order: 0, column: Hyd001}
`

// ConventionsYAML matches CatalogYAML.
const ConventionsYAML = `
timezone: Australia/Sydney
calendar: gregorian
pi_time_zone: AET
missing_value: -99.0
timesteps_minutes: {rain: 15, gateops: 60, transfer: 60, operation: 60, hydrograph: 15}
series:
  P:                {kind: subarea,  quantity: rainfall,     unit: mm,   timestep: rain, fill_missing: 0}
  T_observed:       {kind: meteo,    quantity: temperature,  unit: degC, timestep: rain}
  W_observed:       {kind: meteo,    quantity: wind,         unit: km/h, timestep: rain}
  Qtrans_forecast:  {kind: transfer, quantity: qtrans,       unit: m3/s, timestep: transfer}
  Qgen_forecast:    {kind: transfer, quantity: qgen,         unit: m3/s, timestep: transfer}
  Qoutlet_forecast: {kind: transfer, quantity: qoutlet,      unit: m3/s, timestep: transfer}
  Outflow:          {kind: storage,  quantity: outflow,      unit: m3/s, timestep: operation}
  GateOpening:      {kind: storage,  quantity: gate_opening, unit: m,    timestep: operation}
trace_columns:
  - {column: waterLevel,     parameter: H.fcst,     unit: mSMD}
  - {column: SRes,           parameter: V.fcst,     unit: m3}
  - {column: qSimIn(iTime),  parameter: Q-in.fcst,  unit: m3/s}
  - {column: qSimOut(iTime), parameter: Q-out.fcst, unit: m3/s}
  - {column: gate_open,      parameter: G.fcst,     unit: m}
parameters: {gauge_flow: Q.fcst, rainfall_excess: P.fcst.excess}
units: {gauge_flow: m3/s, rainfall_excess: mm}
`

// MappingYAML matches CatalogYAML.
const MappingYAML = `
gateops:
  "410571":
    storage: HappyJacks
    filename_open: GateOps_HappyJacks_open.dat
    filename_auto: GateOps_HappyJacks_auto.dat
    overwrite_filename: GateOps_HappyJacks_override.dat
    csv_filename: HappyJacks.csv
transfers:
  - {id: "410542", quantity: qgen, in: 12, out: 14, filename: Gen_1.dat}
  - {id: "410542", quantity: qtrans, in: 12, out: 14, filename: Trans_1.dat}
`

// NewRegistry loads the fixture registry.
func NewRegistry(t testing.TB) *registry.Registry {
	t.Helper()
	reg, err := registry.Load([]byte(CatalogYAML), []byte(ConventionsYAML))
	require.NoError(t, err)
	return reg
}

// NewMapping loads the fixture file mapping against reg.
func NewMapping(t testing.TB, reg *registry.Registry) *registry.FileMapping {
	t.Helper()
	fm, err := registry.LoadMapping([]byte(MappingYAML), reg)
	require.NoError(t, err)
	return fm
}
