package source

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/rorb-fews/internal/pi"
)

const rainXML = `<TimeSeries xmlns="http://www.wldelft.nl/fews/PI" version="1.2">
  <series>
    <header>
      <type>accumulative</type>
      <locationId>CR</locationId>
      <parameterId>P</parameterId>
      <timeStep unit="second" multiplier="900"/>
      <startDate date="2024-01-01" time="00:00:00"/>
      <endDate date="2024-01-01" time="00:30:00"/>
      <missVal>-999</missVal>
      <units>mm</units>
    </header>
    <event date="2024-01-01" time="00:00:00" value="1.5"/>
    <event date="2024-01-01" time="00:15:00" value="-999"/>
    <event date="2024-01-01" time="00:30:00" value="2"/>
  </series>
</TimeSeries>`

func TestPITimeSeries(t *testing.T) {
	doc, err := pi.ReadTimeSeries(strings.NewReader(rainXML))
	require.NoError(t, err)

	src := NewPITimeSeries(doc, time.UTC)
	raw, err := src.Series()
	require.NoError(t, err)
	require.Len(t, raw, 1)

	r := raw[0]
	assert.Equal(t, "CR", r.Station)
	assert.Equal(t, "P", r.Variable)
	assert.Equal(t, 15*time.Minute, r.Step)
	assert.Equal(t, []bool{false, true, false}, r.Missing)
	assert.Equal(t, 1.5, r.Values[0])
	assert.Len(t, r.Times, 3)
}

func TestPITimeSeries_BadEvent(t *testing.T) {
	doc, err := pi.ReadTimeSeries(strings.NewReader(strings.Replace(rainXML, `value="2"`, `value="two"`, 1)))
	require.NoError(t, err)

	_, err = NewPITimeSeries(doc, time.UTC).Series()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CR")
	assert.Contains(t, err.Error(), "series P")
}
