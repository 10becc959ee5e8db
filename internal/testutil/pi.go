package testutil

import (
	"fmt"
	"strings"
	"time"
)

// Run window of the PI fixtures, in Australia/Sydney.
const (
	RunStart = "2024-01-01 00:00:00"
	RunEnd   = "2024-01-01 01:00:00"
)

// RunInfoXML is a run file for the fixtures; %s is the model folder.
const RunInfoXML = `<?xml version="1.0" encoding="UTF-8"?>
<Run xmlns="http://www.wldelft.nl/fews/PI" version="1.5">
  <timeZone>10.0</timeZone>
  <startDateTime date="2024-01-01" time="00:00:00"/>
  <endDateTime date="2024-01-01" time="01:00:00"/>
  <time0 date="2024-01-01" time="00:00:00"/>
  <workDir>%[1]s</workDir>
  <inputParameterFile>%[1]s/params.xml</inputParameterFile>
  <inputTimeSeriesFile>%[1]s/input_state.xml</inputTimeSeriesFile>
  <inputTimeSeriesFile>%[1]s/input_series.xml</inputTimeSeriesFile>
  <outputTimeSeriesFile>%[1]s/gauge_flow.xml</outputTimeSeriesFile>
  <outputTimeSeriesFile>%[1]s/reservoir_operation.xml</outputTimeSeriesFile>
  <outputTimeSeriesFile>%[1]s/rainfall_excess.xml</outputTimeSeriesFile>
  <properties>
    <string key="model_folder" value="%[1]s"/>
    <string key="rorb_exe" value="rorb_cmd.exe"/>
  </properties>
</Run>`

// ParamsXML declares parameters for every fixture element. Groups are
// listed out of catalog order.
const ParamsXML = `<?xml version="1.0" encoding="UTF-8"?>
<parameters xmlns="http://www.wldelft.nl/fews/PI" version="1.5">
  <group id="Loss parameters">
    <parameter id="rorb.isaId"><stringValue>2</stringValue></parameter>
    <parameter id="rorbIL1"><dblValue>20</dblValue></parameter>
    <parameter id="rorbCL1"><dblValue>2.5</dblValue></parameter>
  </group>
  <group id="Loss parameters">
    <parameter id="rorb.isaId"><stringValue>1</stringValue></parameter>
    <parameter id="rorbIL1"><dblValue>10</dblValue></parameter>
    <parameter id="rorbCL1"><dblValue>1.5</dblValue></parameter>
  </group>
  <group id="Routing parameters">
    <parameter id="rorb.isaId"><stringValue>1</stringValue></parameter>
    <parameter id="rorbKc"><dblValue>12.3</dblValue></parameter>
    <parameter id="rorbM"><dblValue>0.8</dblValue></parameter>
  </group>
  <group id="Routing parameters">
    <parameter id="rorb.isaId"><stringValue>2</stringValue></parameter>
    <parameter id="rorbKc"><dblValue>45.6</dblValue></parameter>
    <parameter id="rorbM"><dblValue>0.75</dblValue></parameter>
  </group>
  <group id="Baseflow parameters">
    <parameter id="rorbId"><stringValue>410574</stringValue></parameter>
    <parameter id="rorbBF"><dblValue>2</dblValue></parameter>
    <parameter id="rorbBmult"><dblValue>0.5</dblValue></parameter>
    <parameter id="rorbBFstart"><intValue>0</intValue></parameter>
  </group>
  <group id="Gate parameters">
    <parameter id="rorbId"><stringValue>410571</stringValue></parameter>
    <parameter id="rorbGate"><intValue>1</intValue></parameter>
  </group>
  <group id="snow module and bursts">
    <parameter id="rorbSnow"><stringValue>true</stringValue></parameter>
    <parameter id="rorbBursts"><stringValue>1</stringValue></parameter>
  </group>
</parameters>`

// StateXML holds the storage level and one snow course; Cabramurra is
// reported as missing.
var StateXML = `<?xml version="1.0" encoding="UTF-8"?>
<TimeSeries xmlns="http://www.wldelft.nl/fews/PI" version="1.2">
` + stateSeries + `
</TimeSeries>`

var stateSeries = strings.Join([]string{
	PISeries("410571", "H_observed", 0, "-999", "1082.5"),
	PISeries("DeepCreekSnowCourse", "SD_observed", 0, "-999", "30"),
	PISeries("DeepCreekSnowCourse", "WC_observed", 0, "-999", "10"),
	PISeries("CabramurraSnowCourse", "SD_observed", 0, "-999", "-999"),
	PISeries("CabramurraSnowCourse", "WC_observed", 0, "-999", "-999"),
}, "\n")

// SeriesXML holds rainfall for the three subareas (listed C, A, B), meteo
// forcing, transfers and operations over the fixture window.
var SeriesXML = `<?xml version="1.0" encoding="UTF-8"?>
<TimeSeries xmlns="http://www.wldelft.nl/fews/PI" version="1.2">
` + strings.Join([]string{
	PISeries("C", "P", 15*time.Minute, "-999", "0", "3", "3", "0", "0"),
	PISeries("A", "P", 15*time.Minute, "-999", "1", "2", "-999", "1", "0"),
	PISeries("B", "P", 15*time.Minute, "-999", "0", "0", "0", "0", "0"),
	PISeries("14", "T_observed", 15*time.Minute, "-999", "1.25", "1.5", "2", "2.5", "3"),
	PISeries("14", "W_observed", 15*time.Minute, "-999", "10", "11", "12", "13", "14"),
	PISeries("410542", "Qtrans_forecast", time.Hour, "-999", "5.4", "6.6"),
	PISeries("410542", "Qgen_forecast", time.Hour, "-999", "100.2", "99.5"),
	PISeries("410571", "Outflow", time.Hour, "-999", "12.34567", "13"),
	PISeries("410571", "GateOpening", time.Hour, "-999", "0.25", "1"),
}, "\n") + `
</TimeSeries>`

// PISeries renders one PI <series> starting at RunStart. A zero step
// yields a non-equidistant header.
func PISeries(location, parameter string, step time.Duration, missVal string, values ...string) string {
	return PISeriesFrom(RunStart, location, parameter, step, missVal, values...)
}

// PISeriesFrom is PISeries starting at from ("2006-01-02 15:04:05").
func PISeriesFrom(from, location, parameter string, step time.Duration, missVal string, values ...string) string {
	start, _ := time.Parse(time.DateTime, from)
	var b strings.Builder
	b.WriteString("  <series>\n    <header>\n      <type>instantaneous</type>\n")
	fmt.Fprintf(&b, "      <locationId>%s</locationId>\n      <parameterId>%s</parameterId>\n", location, parameter)
	if step == 0 {
		b.WriteString("      <timeStep unit=\"nonequidistant\"/>\n")
	} else {
		fmt.Fprintf(&b, "      <timeStep unit=\"second\" multiplier=\"%d\"/>\n", int(step/time.Second))
	}
	end := start.Add(time.Duration(len(values)-1) * step)
	fmt.Fprintf(&b, "      <startDate date=\"%s\" time=\"%s\"/>\n", start.Format("2006-01-02"), start.Format("15:04:05"))
	fmt.Fprintf(&b, "      <endDate date=\"%s\" time=\"%s\"/>\n", end.Format("2006-01-02"), end.Format("15:04:05"))
	fmt.Fprintf(&b, "      <missVal>%s</missVal>\n    </header>\n", missVal)
	for i, v := range values {
		t := start.Add(time.Duration(i) * step)
		fmt.Fprintf(&b, "    <event date=\"%s\" time=\"%s\" value=\"%s\"/>\n", t.Format("2006-01-02"), t.Format("15:04:05"), v)
	}
	b.WriteString("  </series>")
	return b.String()
}
