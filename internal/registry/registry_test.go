package registry_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/output"
	"github.com/daryltucker/rorb-fews/internal/registry"
	"github.com/daryltucker/rorb-fews/internal/testutil"
)

func TestLoad_OrdersElements(t *testing.T) {
	reg := testutil.NewRegistry(t)

	assert.Equal(t, []string{"A", "B", "C"}, reg.Names(model.KindSubarea))
	assert.Equal(t, []string{"1", "2"}, reg.Names(model.KindISA))
	assert.Equal(t, []string{"410574", "410575"}, reg.Names(model.KindGauge))

	for i, el := range reg.ElementsInOrder(model.KindSubarea) {
		assert.Equal(t, i, el.Order)
	}

	g, ok := reg.Element(model.KindGauge, "410575")
	require.True(t, ok)
	assert.Equal(t, "Hyd002", g.Column)

	// A gauge and a baseflow node may share a name.
	assert.True(t, reg.Has(model.KindBaseflow, "410574"))
	assert.True(t, reg.Has(model.KindGauge, "410574"))
	assert.False(t, reg.Has(model.KindStorage, "410574"))
}

func TestLoad_ElementsInOrderIsACopy(t *testing.T) {
	reg := testutil.NewRegistry(t)
	els := reg.ElementsInOrder(model.KindSubarea)
	els[0].Name = "mutated"
	assert.Equal(t, "A", reg.Names(model.KindSubarea)[0])
}

func TestLoad_CatalogErrors(t *testing.T) {
	tests := []struct {
		name      string
		catalog   string
		errSubstr string
	}{
		{
			name:      "empty document",
			catalog:   ``,
			errSubstr: "document is empty",
		},
		{
			name:      "missing order",
			catalog:   `elements: [{kind: subarea, name: A}]`,
			errSubstr: "missing required attribute order",
		},
		{
			name:      "missing name",
			catalog:   `elements: [{kind: subarea, order: 0}]`,
			errSubstr: "missing required attribute name",
		},
		{
			name:      "unknown kind",
			catalog:   `elements: [{kind: lake, name: A, order: 0}]`,
			errSubstr: `unknown kind "lake"`,
		},
		{
			name:      "unknown attribute",
			catalog:   `elements: [{kind: subarea, name: A, order: 0, colour: red}]`,
			errSubstr: "colour",
		},
		{
			name: "duplicate element",
			catalog: `elements:
  - {kind: subarea, name: A, order: 0}
  - {kind: subarea, name: A, order: 1}`,
			errSubstr: "declared twice",
		},
		{
			name: "duplicate order",
			catalog: `elements:
  - {kind: subarea, name: A, order: 0}
  - {kind: subarea, name: B, order: 0}`,
			errSubstr: "order 0 already used",
		},
		{
			name: "gap in orders",
			catalog: `elements:
  - {kind: subarea, name: A, order: 0}
  - {kind: subarea, name: B, order: 2}`,
			errSubstr: "order 1 is missing",
		},
		{
			name:      "gauge without column",
			catalog:   `elements: [{kind: gauge, name: "410574", order: 0}]`,
			errSubstr: "hydrograph column",
		},
		{
			name: "zone priority references unknown course",
			catalog: `elements:
  - {kind: elevation_zone, name: "1", order: 0, priority: [Nowhere]}`,
			errSubstr: `undeclared snow course "Nowhere"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.Load([]byte(tt.catalog), []byte(testutil.ConventionsYAML))
			require.Error(t, err)
			var ce *model.ConfigError
			require.True(t, errors.As(err, &ce), "want *model.ConfigError, got %T", err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoad_ZoneWeightsDefaultToEqualShares(t *testing.T) {
	catalog := `elements:
  - {kind: snow_course, name: S1, order: 0}
  - {kind: elevation_zone, name: "1", order: 0, priority: [S1]}
  - {kind: elevation_zone, name: "2", order: 1, priority: [S1]}
  - {kind: elevation_zone, name: "3", order: 2, priority: [S1], weight: 0.2}
`
	conventions := `
timezone: UTC
pi_time_zone: GMT
timesteps_minutes: {rain: 15, gateops: 60, transfer: 60, operation: 60}
`
	reg, err := registry.Load([]byte(catalog), []byte(conventions))
	require.NoError(t, err)

	zones := reg.ElementsInOrder(model.KindElevationZone)
	require.Len(t, zones, 3)
	assert.InDelta(t, 1.0/3, zones[0].Weight, 1e-12)
	assert.InDelta(t, 1.0/3, zones[1].Weight, 1e-12)
	assert.InDelta(t, 0.2, zones[2].Weight, 1e-12)

	el, _ := reg.Element(model.KindElevationZone, "1")
	assert.InDelta(t, 1.0/3, el.Weight, 1e-12)
}

func TestConventions(t *testing.T) {
	reg := testutil.NewRegistry(t)

	assert.Equal(t, "Australia/Sydney", reg.Location().String())
	assert.Equal(t, "AET", reg.PITimeZone())
	assert.Equal(t, -99.0, reg.MissingValue())

	step, ok := reg.Timestep(registry.StepRain)
	require.True(t, ok)
	assert.Equal(t, 15*time.Minute, step)

	v, ok := reg.Convention("timestep.gateops")
	require.True(t, ok)
	assert.Equal(t, "60", v)

	v, ok = reg.Convention("missing_value")
	require.True(t, ok)
	assert.Equal(t, "-99", v)

	_, ok = reg.Convention("colour")
	assert.False(t, ok)

	b, ok := reg.SeriesBinding("P")
	require.True(t, ok)
	assert.Equal(t, model.KindSubarea, b.Kind)
	assert.Equal(t, "P", b.Variable)
	require.NotNil(t, b.FillMissing)
	assert.Equal(t, 0.0, *b.FillMissing)

	cols := reg.TraceColumns()
	require.Len(t, cols, 5)
	assert.Equal(t, "waterLevel", cols[0].Column)
	assert.Equal(t, "G.fcst", cols[4].Parameter)

	assert.Equal(t, "P.fcst.excess", reg.ArtifactParameter(model.ArtifactRainfallExcess))
	assert.Equal(t, "m3/s", reg.ArtifactUnit(model.ArtifactGaugeFlow))
}

func TestConventions_Errors(t *testing.T) {
	base := `elements: [{kind: subarea, name: A, order: 0}]`
	tests := []struct {
		name        string
		conventions string
		errSubstr   string
	}{
		{
			name:        "unknown timezone",
			conventions: "timezone: Mars/Olympus\npi_time_zone: X\ntimesteps_minutes: {rain: 15, gateops: 60, transfer: 60, operation: 60}",
			errSubstr:   "unknown timezone",
		},
		{
			name:        "unsupported calendar",
			conventions: "timezone: UTC\ncalendar: 360_day\npi_time_zone: X\ntimesteps_minutes: {rain: 15, gateops: 60, transfer: 60, operation: 60}",
			errSubstr:   "unsupported calendar",
		},
		{
			name:        "non-positive timestep",
			conventions: "timezone: UTC\npi_time_zone: X\ntimesteps_minutes: {rain: 0, gateops: 60, transfer: 60, operation: 60}",
			errSubstr:   "must be positive",
		},
		{
			name:        "missing timestep",
			conventions: "timezone: UTC\npi_time_zone: X\ntimesteps_minutes: {rain: 15}",
			errSubstr:   "is required",
		},
		{
			name: "binding to undeclared timestep",
			conventions: `timezone: UTC
pi_time_zone: X
timesteps_minutes: {rain: 15, gateops: 60, transfer: 60, operation: 60}
series:
  P: {kind: subarea, quantity: rainfall, unit: mm, timestep: daily}`,
			errSubstr: `undeclared timestep "daily"`,
		},
		{
			name: "binding to unknown kind",
			conventions: `timezone: UTC
pi_time_zone: X
timesteps_minutes: {rain: 15, gateops: 60, transfer: 60, operation: 60}
series:
  P: {kind: lake, quantity: rainfall, unit: mm, timestep: rain}`,
			errSubstr: `unknown kind "lake"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.Load([]byte(base), []byte(tt.conventions))
			require.Error(t, err)
			var ce *model.ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoadMapping(t *testing.T) {
	reg := testutil.NewRegistry(t)
	fm := testutil.NewMapping(t, reg)

	gates := fm.GateOps()
	require.Len(t, gates, 1)
	assert.Equal(t, "410571", gates[0].ID)
	assert.Equal(t, "HappyJacks", gates[0].Storage)

	// qtrans rows come before qgen rows regardless of document order.
	tr := fm.Transfers()
	require.Len(t, tr, 2)
	assert.Equal(t, model.QuantityQTrans, tr[0].Quantity)
	assert.Equal(t, "Trans_1.dat", tr[0].Filename)
	assert.Equal(t, 12, tr[0].In)
	assert.Equal(t, model.QuantityQGen, tr[1].Quantity)
	assert.Empty(t, fm.Unmapped())
}

func TestLoadMapping_UnmappedStorage(t *testing.T) {
	catalog := `
elements:
  - {kind: storage, name: "410571", order: 0}
  - {kind: storage, name: "410580", order: 1, optional: true}
  - {kind: storage, name: "410590", order: 2}
`
	reg, err := registry.Load([]byte(catalog), []byte(testutil.ConventionsYAML))
	require.NoError(t, err)

	tests := []struct {
		name     string
		doc      string
		unmapped []string
		warned   []string
	}{
		{
			name:     "no rows",
			doc:      "gateops: {}\n",
			unmapped: []string{"410571", "410580", "410590"},
			warned:   []string{"410571", "410590"},
		},
		{
			name:     "optional storage left out",
			doc:      `gateops: {"410571": {storage: A, filename_open: a.dat}, "410590": {storage: B, filename_open: b.dat}}`,
			unmapped: []string{"410580"},
		},
		{
			name:     "mandatory storage left out",
			doc:      `gateops: {"410580": {storage: B, filename_open: b.dat}, "410590": {storage: C, filename_open: c.dat}}`,
			unmapped: []string{"410571"},
			warned:   []string{"410571"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			prev := output.Logger
			output.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
			t.Cleanup(func() { output.SetLogger(prev) })

			fm, err := registry.LoadMapping([]byte(tt.doc), reg)
			require.NoError(t, err)
			assert.Equal(t, tt.unmapped, fm.Unmapped())

			logged := buf.String()
			assert.Equal(t, len(tt.warned), bytes.Count(buf.Bytes(), []byte("level=WARN")), logged)
			for _, id := range tt.warned {
				assert.Contains(t, logged, "storage="+id)
			}
		})
	}
}

func TestLoadMapping_Errors(t *testing.T) {
	reg := testutil.NewRegistry(t)
	tests := []struct {
		name      string
		doc       string
		errSubstr string
	}{
		{
			name:      "undeclared storage",
			doc:       `gateops: {"999": {storage: X, filename_open: x.dat}}`,
			errSubstr: "undeclared storage",
		},
		{
			name:      "missing open template",
			doc:       `gateops: {"410571": {storage: X}}`,
			errSubstr: "filename_open",
		},
		{
			name:      "undeclared transfer",
			doc:       `transfers: [{id: "1", quantity: qtrans, in: 1, out: 2, filename: t.dat}]`,
			errSubstr: "undeclared transfer",
		},
		{
			name:      "bad quantity",
			doc:       `transfers: [{id: "410542", quantity: rainfall, in: 1, out: 2, filename: t.dat}]`,
			errSubstr: "unsupported transfer quantity",
		},
		{
			name: "duplicate row",
			doc: `transfers:
  - {id: "410542", quantity: qtrans, in: 1, out: 2, filename: a.dat}
  - {id: "410542", quantity: qtrans, in: 1, out: 2, filename: b.dat}`,
			errSubstr: "mapped twice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.LoadMapping([]byte(tt.doc), reg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}
