/*
PURPOSE:
  The Time-Series XML Writer: groups parsed records into the three FEWS
  exchange documents (gauge flow, reservoir operation, rainfall excess)
  and serializes them as PI time series.

REQUIREMENTS:
  User-specified:
  - Series inside a document follow the Registry order of the artifact's
    element kind.
  - A (location, parameter) pair appears at most once per document.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (post), after internal/report.Parse.
  - Encoding: internal/pi.TimeSeries.

ERROR HANDLING:
  - *model.WriteError naming the artifact and series.
*/

package pixml

import (
	"io"
	"sort"
	"strconv"

	"github.com/daryltucker/rorb-fews/internal/model"
	"github.com/daryltucker/rorb-fews/internal/pi"
	"github.com/daryltucker/rorb-fews/internal/registry"
)

// SeriesType is the PI header type of every written series.
const SeriesType = "instantaneous"

// ExchangeDocument is one artifact's ordered series.
type ExchangeDocument struct {
	Artifact model.ArtifactKind
	Records  []*model.Record

	reg *registry.Registry
}

// Write builds the document for kind from records. Records must all belong
// to the artifact's element kind.
func Write(records []*model.Record, kind model.ArtifactKind, reg *registry.Registry) (*ExchangeDocument, error) {
	elemKind := kind.ElementKind()
	if elemKind == "" {
		return nil, model.NewWriteError(kind, "", "unknown artifact kind")
	}

	seen := make(map[model.RecordKey]bool, len(records))
	order := make(map[*model.Record]int, len(records))
	for _, r := range records {
		key := r.Key()
		if r.Element.Kind != elemKind {
			return nil, model.NewWriteErrorf(kind, key.String(), "%s does not belong to %s", r.Element, kind)
		}
		el, ok := reg.Element(elemKind, r.Element.Name)
		if !ok {
			return nil, model.NewWriteErrorf(kind, key.String(), "%s is not declared", r.Element)
		}
		if seen[key] {
			return nil, model.NewWriteError(kind, key.String(), "duplicate series")
		}
		seen[key] = true
		order[r] = el.Order
	}

	sorted := make([]*model.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return order[sorted[i]] < order[sorted[j]]
	})
	return &ExchangeDocument{Artifact: kind, Records: sorted, reg: reg}, nil
}

// Split groups records by the artifact their element kind feeds.
func Split(records []*model.Record) (map[model.ArtifactKind][]*model.Record, error) {
	out := make(map[model.ArtifactKind][]*model.Record, len(model.Artifacts))
	for _, r := range records {
		kind, ok := artifactFor(r.Element.Kind)
		if !ok {
			return nil, model.NewWriteErrorf("", r.Key().String(), "no artifact takes %s series", r.Element.Kind)
		}
		out[kind] = append(out[kind], r)
	}
	return out, nil
}

func artifactFor(k model.Kind) (model.ArtifactKind, bool) {
	for _, a := range model.Artifacts {
		if a.ElementKind() == k {
			return a, true
		}
	}
	return "", false
}

// TimeSeries converts the document to its PI form.
func (d *ExchangeDocument) TimeSeries() *pi.TimeSeries {
	loc := d.reg.Location()
	missVal := d.reg.MissingValue()
	ts := pi.NewTimeSeries(d.reg.PITimeZone())
	ts.Series = make([]pi.Series, 0, len(d.Records))
	for _, r := range d.Records {
		s := pi.Series{
			Header: pi.Header{
				Type:        SeriesType,
				LocationID:  r.Element.Name,
				ParameterID: r.Parameter,
				TimeStep:    pi.SecondsStep(r.Step),
				StartDate:   pi.NewDateTime(r.Start.In(loc)),
				EndDate:     pi.NewDateTime(r.End().In(loc)),
				MissVal:     strconv.FormatFloat(missVal, 'f', -1, 64),
				Units:       r.Unit,
			},
			Events: make([]pi.Event, len(r.Values)),
		}
		for i, t := range r.Times() {
			dt := pi.NewDateTime(t.In(loc))
			s.Events[i] = pi.Event{Date: dt.Date, Time: dt.Time, Value: pi.FormatValue(r.Values[i], missVal)}
		}
		ts.Series = append(ts.Series, s)
	}
	return ts
}

// Encode writes the document as PI XML.
func (d *ExchangeDocument) Encode(w io.Writer) error {
	if err := d.TimeSeries().Encode(w); err != nil {
		we := model.NewWriteError(d.Artifact, "", "encode")
		we.Err = err
		return we
	}
	return nil
}
