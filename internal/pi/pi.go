/*
PURPOSE:
  Codecs for the Delft-FEWS Published Interface (PI) XML documents the
  adapter exchanges with the General Adapter: run info, parameters and
  time series.

REQUIREMENTS:
  - Element names are matched regardless of namespace prefix; FEWS writes
    the PI namespace as the default namespace.
  - Dates are written as separate date/time attributes in the run zone.

ARCHITECTURE INTEGRATION:
  - Decoded by: internal/engine (run info), internal/compiler (parameters,
    state), internal/source (time series).
  - Encoded by: internal/pixml.

ERROR HANDLING:
  - Lookups that find nothing wrap ErrNotFound so callers can turn them into
    a *model.InputError naming the element.

RELATED FILES:
  - internal/pi/runinfo.go
  - internal/pi/parameters.go
  - internal/pi/timeseries.go
*/

package pi

import (
	"errors"
	"fmt"
	"time"
)

// Namespace is the PI XML namespace.
const Namespace = "http://www.wldelft.nl/fews/PI"

// XSI is the XML schema instance namespace.
const XSI = "http://www.w3.org/2001/XMLSchema-instance"

// ErrNotFound is wrapped by lookups that find no match.
var ErrNotFound = errors.New("not found")

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// DateTime is the PI date/time attribute pair.
type DateTime struct {
	Date string `xml:"date,attr"`
	Time string `xml:"time,attr"`
}

// NewDateTime formats t in its own location.
func NewDateTime(t time.Time) DateTime {
	return DateTime{Date: t.Format(dateLayout), Time: t.Format(timeLayout)}
}

// IsZero reports whether both attributes are absent.
func (d DateTime) IsZero() bool { return d.Date == "" && d.Time == "" }

// In parses the pair as a wall-clock time in loc.
func (d DateTime) In(loc *time.Location) (time.Time, error) {
	if d.Date == "" {
		return time.Time{}, errors.New("missing date attribute")
	}
	clock := d.Time
	if clock == "" {
		clock = "00:00:00"
	}
	t, err := time.ParseInLocation(dateLayout+" "+timeLayout, d.Date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s %s: %w", d.Date, clock, err)
	}
	return t, nil
}

func (d DateTime) String() string { return d.Date + " " + d.Time }
