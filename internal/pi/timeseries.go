package pi

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/daryltucker/rorb-fews/internal/model"
)

// Version is the PI time-series schema version written by the adapter.
const Version = "1.2"

// TimeSeries is a PI time-series document.
type TimeSeries struct {
	XMLName        xml.Name `xml:"TimeSeries"`
	Xmlns          string   `xml:"xmlns,attr,omitempty"`
	XmlnsXSI       string   `xml:"xmlns:xsi,attr,omitempty"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr,omitempty"`
	Version        string   `xml:"version,attr,omitempty"`

	TimeZone                        string   `xml:"timeZone,omitempty"`
	DaylightSavingObservingTimeZone string   `xml:"daylightSavingObservingTimeZone,omitempty"`
	Series                          []Series `xml:"series"`

	// Path is the file the document was read from, if any.
	Path string `xml:"-"`
}

// Series is one <series>: a header and its events.
type Series struct {
	Header Header  `xml:"header"`
	Events []Event `xml:"event"`
}

// Header describes one series.
type Header struct {
	Type        string   `xml:"type"`
	LocationID  string   `xml:"locationId"`
	ParameterID string   `xml:"parameterId"`
	TimeStep    TimeStep `xml:"timeStep"`
	StartDate   DateTime `xml:"startDate"`
	EndDate     DateTime `xml:"endDate"`
	MissVal     string   `xml:"missVal"`
	Units       string   `xml:"units,omitempty"`
}

// TimeStep is the PI timeStep element.
type TimeStep struct {
	Unit       string `xml:"unit,attr"`
	Multiplier int    `xml:"multiplier,attr,omitempty"`
}

// Duration returns the step length, or zero for non-equidistant series.
func (ts TimeStep) Duration() time.Duration {
	m := ts.Multiplier
	if m == 0 {
		m = 1
	}
	switch ts.Unit {
	case "second":
		return time.Duration(m) * time.Second
	case "minute":
		return time.Duration(m) * time.Minute
	case "hour":
		return time.Duration(m) * time.Hour
	case "day":
		return time.Duration(m) * 24 * time.Hour
	case "week":
		return time.Duration(m) * 7 * 24 * time.Hour
	}
	return 0
}

// SecondsStep builds a timeStep expressed in seconds.
func SecondsStep(d time.Duration) TimeStep {
	return TimeStep{Unit: "second", Multiplier: int(d / time.Second)}
}

// Event is one value at one instant.
type Event struct {
	Date  string `xml:"date,attr"`
	Time  string `xml:"time,attr"`
	Value string `xml:"value,attr"`
	Flag  string `xml:"flag,attr,omitempty"`
}

// NewTimeSeries returns an empty document with the namespace declarations
// FEWS expects.
func NewTimeSeries(zone string) *TimeSeries {
	return &TimeSeries{
		Xmlns:                           Namespace,
		XmlnsXSI:                        XSI,
		SchemaLocation:                  Namespace + " http://fews.wldelft.nl/schemas/version1.0/pi-schemas/pi_timeseries.xsd",
		Version:                         Version,
		DaylightSavingObservingTimeZone: zone,
	}
}

// ReadTimeSeriesFile decodes the time-series file at path.
func ReadTimeSeriesFile(path string) (*TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, model.WrapInputError(path, "open time series", err)
	}
	defer f.Close()

	ts, err := ReadTimeSeries(f)
	if err != nil {
		return nil, withFile(err, path)
	}
	ts.Path = path
	return ts, nil
}

// ReadTimeSeries decodes a time-series document.
func ReadTimeSeries(r io.Reader) (*TimeSeries, error) {
	var ts TimeSeries
	if err := xml.NewDecoder(r).Decode(&ts); err != nil {
		return nil, model.WrapInputError("", "decode time series", err)
	}
	return &ts, nil
}

// Encode writes the document with an XML declaration.
func (ts *TimeSeries) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(ts); err != nil {
		return fmt.Errorf("encode time series: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Find returns the series for (location, parameter).
func (ts *TimeSeries) Find(location, parameter string) (*Series, bool) {
	for i := range ts.Series {
		h := ts.Series[i].Header
		if h.LocationID == location && h.ParameterID == parameter {
			return &ts.Series[i], true
		}
	}
	return nil, false
}

// MissingValue parses the header missVal. FEWS writes "NaN" by default.
func (h Header) MissingValue() (float64, bool) {
	s := strings.TrimSpace(h.MissVal)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Points decodes the events in loc. Values equal to missVal, NaN or
// unparseable-empty are reported as missing.
func (s *Series) Points(loc *time.Location) ([]time.Time, []float64, []bool, error) {
	miss, hasMiss := s.Header.MissingValue()
	times := make([]time.Time, len(s.Events))
	values := make([]float64, len(s.Events))
	missing := make([]bool, len(s.Events))
	for i, e := range s.Events {
		t, err := DateTime{Date: e.Date, Time: e.Time}.In(loc)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("event %d: %w", i, err)
		}
		times[i] = t

		raw := strings.TrimSpace(e.Value)
		if raw == "" {
			values[i], missing[i] = math.NaN(), true
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("event %d value %q: %w", i, e.Value, err)
		}
		if math.IsNaN(v) || (hasMiss && v == miss) {
			values[i], missing[i] = math.NaN(), true
			continue
		}
		values[i] = v
	}
	return times, values, missing, nil
}

// FirstValue returns the first event value; missing values are NaN.
func (s *Series) FirstValue() (float64, error) {
	if len(s.Events) == 0 {
		return 0, fmt.Errorf("series %s %s has no events: %w", s.Header.LocationID, s.Header.ParameterID, ErrNotFound)
	}
	_, values, _, err := (&Series{Header: s.Header, Events: s.Events[:1]}).Points(time.UTC)
	if err != nil {
		return 0, err
	}
	return values[0], nil
}

// FormatValue renders v for an event attribute, substituting missVal for NaN.
func FormatValue(v, missVal float64) string {
	if math.IsNaN(v) {
		v = missVal
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
