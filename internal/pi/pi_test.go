package pi

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/rorb-fews/internal/model"
)

const runInfoXML = `<?xml version="1.0" encoding="UTF-8"?>
<Run xmlns="http://www.wldelft.nl/fews/PI" version="1.5">
  <timeZone>10.0</timeZone>
  <startDateTime date="2024-01-01" time="00:00:00"/>
  <endDateTime date="2024-01-02" time="00:00:00"/>
  <time0 date="2024-01-01" time="06:00:00"/>
  <workDir>C:\fews\rorb</workDir>
  <inputParameterFile>C:\fews\to_rorb\params.xml</inputParameterFile>
  <inputTimeSeriesFile>C:\fews\to_rorb\input_state.xml</inputTimeSeriesFile>
  <inputTimeSeriesFile>C:\fews\to_rorb\input_rain.xml</inputTimeSeriesFile>
  <outputDiagnosticFile>C:\fews\diag.xml</outputDiagnosticFile>
  <outputTimeSeriesFile>C:\fews\from_rorb\gauge_flow.xml</outputTimeSeriesFile>
  <outputTimeSeriesFile>C:\fews\from_rorb\reservoir.xml</outputTimeSeriesFile>
  <outputTimeSeriesFile>C:\fews\from_rorb\excess.xml</outputTimeSeriesFile>
  <properties>
    <string key="model_folder" value="C:\fews\model\"/>
    <string key="rorb_exe" value="rorb_cmd.exe"/>
    <int key="retries" value="2"/>
  </properties>
</Run>`

func TestReadRunInfo(t *testing.T) {
	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	ri, err := ReadRunInfo(strings.NewReader(runInfoXML), loc)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, loc), ri.Start)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, loc), ri.End)
	assert.Equal(t, time.Date(2024, 1, 1, 6, 0, 0, 0, loc), ri.Time0)
	assert.Len(t, ri.InputTimeSeriesFiles, 2)
	assert.Len(t, ri.OutputTimeSeriesFiles, 3)

	folder, err := ri.RequireProperty(PropModelFolder)
	require.NoError(t, err)
	assert.Equal(t, `C:\fews\model\`, folder)
	assert.Equal(t, "2", ri.Properties["retries"])

	f, err := ri.InputTimeSeriesFile(1)
	require.NoError(t, err)
	assert.Equal(t, `C:\fews\to_rorb\input_rain.xml`, f)

	_, err = ri.InputTimeSeriesFile(5)
	var ie *model.InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "inputTimeSeriesFile", ie.Series)

	_, err = ri.RequireProperty(PropFromRORBFolder)
	assert.ErrorContains(t, err, "fromrorb_folder")
}

func TestReadRunInfo_Errors(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		errSubstr string
	}{
		{
			name:      "missing start",
			doc:       `<Run><endDateTime date="2024-01-02" time="00:00:00"/></Run>`,
			errSubstr: "no start time",
		},
		{
			name:      "missing end",
			doc:       `<Run><startDateTime date="2024-01-02" time="00:00:00"/></Run>`,
			errSubstr: "no end time",
		},
		{
			name:      "end before start",
			doc:       `<Run><startDateTime date="2024-01-02" time="00:00:00"/><endDateTime date="2024-01-01" time="00:00:00"/></Run>`,
			errSubstr: "precedes start",
		},
		{
			name:      "bad date",
			doc:       `<Run><startDateTime date="01/02/2024" time="00:00:00"/><endDateTime date="2024-01-01" time="00:00:00"/></Run>`,
			errSubstr: "startDateTime",
		},
		{
			name:      "not xml",
			doc:       `{}`,
			errSubstr: "decode run info",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRunInfo(strings.NewReader(tt.doc), time.UTC)
			require.Error(t, err)
			var ie *model.InputError
			require.True(t, errors.As(err, &ie))
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

const paramsXML = `<?xml version="1.0" encoding="UTF-8"?>
<parameters xmlns="http://www.wldelft.nl/fews/PI" version="1.5">
  <group id="Loss parameters">
    <parameter id="rorb.isaId"><stringValue>2</stringValue></parameter>
    <parameter id="rorbIL1"><dblValue>15.5</dblValue></parameter>
  </group>
  <group id="Loss parameters">
    <parameter id="rorb.isaId"><stringValue>1</stringValue></parameter>
    <parameter id="rorbIL1"><dblValue>10</dblValue></parameter>
  </group>
  <group id="Gate parameters">
    <parameter id="rorbId"><stringValue>410571</stringValue></parameter>
    <parameter id="rorbGate"><intValue>3</intValue></parameter>
  </group>
  <group id="snow module and bursts">
    <parameter id="rorbSnow"><stringValue>true</stringValue></parameter>
    <parameter id="rorbBursts"><stringValue>1</stringValue></parameter>
  </group>
</parameters>`

func TestParameters(t *testing.T) {
	p, err := ReadParameters(strings.NewReader(paramsXML))
	require.NoError(t, err)

	il, err := p.Keyed("Loss parameters", "rorb.isaId", "1", "rorbIL1")
	require.NoError(t, err)
	v, err := il.Float()
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)

	il, err = p.Keyed("Loss parameters", "rorb.isaId", "2", "rorbIL1")
	require.NoError(t, err)
	v, err = il.Float()
	require.NoError(t, err)
	assert.Equal(t, 15.5, v)

	gate, err := p.Keyed("Gate parameters", "rorbId", "410571", "rorbGate")
	require.NoError(t, err)
	proc, err := gate.Int()
	require.NoError(t, err)
	assert.Equal(t, 3, proc)

	snow, err := p.Setting("snow module and bursts", "rorbSnow")
	require.NoError(t, err)
	on, err := snow.Bool()
	require.NoError(t, err)
	assert.True(t, on)

	_, err = p.Keyed("Loss parameters", "rorb.isaId", "3", "rorbIL1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = p.Keyed("Loss parameters", "rorb.isaId", "1", "rorbCL1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = p.Setting("Routing parameters", "rorbKc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParameterInt(t *testing.T) {
	s := func(v string) *string { return &v }
	tests := []struct {
		name    string
		param   Parameter
		want    int
		wantErr bool
	}{
		{name: "int", param: Parameter{ID: "a", IntValue: s("4")}, want: 4},
		{name: "integral double", param: Parameter{ID: "a", DblValue: s("2.0")}, want: 2},
		{name: "fractional", param: Parameter{ID: "a", DblValue: s("2.5")}, wantErr: true},
		{name: "empty", param: Parameter{ID: "a"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.param.Int()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

const stateXML = `<?xml version="1.0" encoding="UTF-8"?>
<TimeSeries xmlns="http://www.wldelft.nl/fews/PI" version="1.2">
  <timeZone>10.0</timeZone>
  <series>
    <header>
      <type>instantaneous</type>
      <locationId>410571</locationId>
      <parameterId>H_observed</parameterId>
      <timeStep unit="nonequidistant"/>
      <startDate date="2024-01-01" time="00:00:00"/>
      <endDate date="2024-01-01" time="00:00:00"/>
      <missVal>-999.0</missVal>
      <units>mSMD</units>
    </header>
    <event date="2024-01-01" time="00:00:00" value="1082.5" flag="0"/>
  </series>
  <series>
    <header>
      <type>instantaneous</type>
      <locationId>DeepCreekSnowCourse</locationId>
      <parameterId>SD_observed</parameterId>
      <timeStep unit="second" multiplier="900"/>
      <startDate date="2024-01-01" time="00:00:00"/>
      <endDate date="2024-01-01" time="00:30:00"/>
      <missVal>-999.0</missVal>
    </header>
    <event date="2024-01-01" time="00:00:00" value="-999.0"/>
    <event date="2024-01-01" time="00:15:00" value="NaN"/>
    <event date="2024-01-01" time="00:30:00" value="12.5"/>
  </series>
</TimeSeries>`

func TestReadTimeSeries(t *testing.T) {
	ts, err := ReadTimeSeries(strings.NewReader(stateXML))
	require.NoError(t, err)
	require.Len(t, ts.Series, 2)

	h, ok := ts.Find("410571", "H_observed")
	require.True(t, ok)
	v, err := h.FirstValue()
	require.NoError(t, err)
	assert.Equal(t, 1082.5, v)
	assert.Equal(t, time.Duration(0), h.Header.TimeStep.Duration())

	sd, ok := ts.Find("DeepCreekSnowCourse", "SD_observed")
	require.True(t, ok)
	assert.Equal(t, 15*time.Minute, sd.Header.TimeStep.Duration())

	times, values, missing, err := sd.Points(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false}, missing)
	assert.True(t, math.IsNaN(values[0]))
	assert.Equal(t, 12.5, values[2])
	assert.Equal(t, time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC), times[2])

	_, ok = ts.Find("410571", "SD_observed")
	assert.False(t, ok)
}

func TestTimeSeriesEncode(t *testing.T) {
	ts := NewTimeSeries("AET")
	ts.Series = append(ts.Series, Series{
		Header: Header{
			Type:        "instantaneous",
			LocationID:  "410574",
			ParameterID: "Q.fcst",
			TimeStep:    SecondsStep(time.Hour),
			StartDate:   DateTime{Date: "2024-01-01", Time: "00:00:00"},
			EndDate:     DateTime{Date: "2024-01-01", Time: "01:00:00"},
			MissVal:     "-99.0",
			Units:       "m3/s",
		},
		Events: []Event{
			{Date: "2024-01-01", Time: "00:00:00", Value: FormatValue(1.2, -99)},
			{Date: "2024-01-01", Time: "01:00:00", Value: FormatValue(math.NaN(), -99)},
		},
	})

	var buf bytes.Buffer
	require.NoError(t, ts.Encode(&buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `xmlns="http://www.wldelft.nl/fews/PI"`)
	assert.Contains(t, out, `version="1.2"`)
	assert.Contains(t, out, `<daylightSavingObservingTimeZone>AET</daylightSavingObservingTimeZone>`)
	assert.Contains(t, out, `<timeStep unit="second" multiplier="3600"></timeStep>`)
	assert.Contains(t, out, `value="-99"`)

	// The encoded document decodes back to the same series.
	back, err := ReadTimeSeries(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, back.Series, 1)
	assert.Equal(t, ts.Series[0].Header, back.Series[0].Header)
	assert.Equal(t, ts.Series[0].Events, back.Series[0].Events)
}
