package pi

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/daryltucker/rorb-fews/internal/model"
)

// Run-info property keys set by the FEWS module configuration.
const (
	PropModelFolder    = "model_folder"
	PropToRORBFolder   = "tororb_folder"
	PropFromRORBFolder = "fromrorb_folder"
	PropRORBFolder     = "rorb_folder"
	PropRORBExe        = "rorb_exe"
)

type runDoc struct {
	XMLName               xml.Name   `xml:"Run"`
	StartDateTime         DateTime   `xml:"startDateTime"`
	EndDateTime           DateTime   `xml:"endDateTime"`
	Time0                 DateTime   `xml:"time0"`
	WorkDir               string     `xml:"workDir"`
	InputParameterFiles   []string   `xml:"inputParameterFile"`
	InputTimeSeriesFiles  []string   `xml:"inputTimeSeriesFile"`
	InputNetcdfFiles      []string   `xml:"inputNetcdfFile"`
	OutputDiagnosticFile  string     `xml:"outputDiagnosticFile"`
	OutputTimeSeriesFiles []string   `xml:"outputTimeSeriesFile"`
	Properties            properties `xml:"properties"`
}

type properties struct {
	Entries []property `xml:",any"`
}

// property is any typed <string|int|bool|double key= value=/> entry.
type property struct {
	XMLName xml.Name
	Key     string `xml:"key,attr"`
	Value   string `xml:"value,attr"`
}

// RunInfo is the decoded run file written by the FEWS General Adapter.
type RunInfo struct {
	Path  string
	Start time.Time
	End   time.Time
	Time0 time.Time

	WorkDir               string
	InputParameterFiles   []string
	InputTimeSeriesFiles  []string
	InputNetcdfFiles      []string
	OutputDiagnosticFile  string
	OutputTimeSeriesFiles []string
	Properties            map[string]string
}

// ReadRunInfoFile decodes the run file at path.
func ReadRunInfoFile(path string, loc *time.Location) (*RunInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, model.WrapInputError(path, "open run info", err)
	}
	defer f.Close()

	ri, err := ReadRunInfo(f, loc)
	if err != nil {
		return nil, withFile(err, path)
	}
	ri.Path = path
	return ri, nil
}

// ReadRunInfo decodes a run file, interpreting dates in loc.
func ReadRunInfo(r io.Reader, loc *time.Location) (*RunInfo, error) {
	var doc runDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, model.WrapInputError("", "decode run info", err)
	}

	if doc.StartDateTime.IsZero() {
		return nil, model.NewInputError("", "", "startDateTime", "run info has no start time")
	}
	if doc.EndDateTime.IsZero() {
		return nil, model.NewInputError("", "", "endDateTime", "run info has no end time")
	}
	start, err := doc.StartDateTime.In(loc)
	if err != nil {
		return nil, model.WrapInputError("", "startDateTime", err)
	}
	end, err := doc.EndDateTime.In(loc)
	if err != nil {
		return nil, model.WrapInputError("", "endDateTime", err)
	}
	if end.Before(start) {
		return nil, model.NewInputError("", "", "endDateTime",
			fmt.Sprintf("end %s precedes start %s", doc.EndDateTime, doc.StartDateTime))
	}
	time0 := start
	if !doc.Time0.IsZero() {
		if time0, err = doc.Time0.In(loc); err != nil {
			return nil, model.WrapInputError("", "time0", err)
		}
	}

	ri := &RunInfo{
		Start:                 start,
		End:                   end,
		Time0:                 time0,
		WorkDir:               doc.WorkDir,
		InputParameterFiles:   doc.InputParameterFiles,
		InputTimeSeriesFiles:  doc.InputTimeSeriesFiles,
		InputNetcdfFiles:      doc.InputNetcdfFiles,
		OutputDiagnosticFile:  doc.OutputDiagnosticFile,
		OutputTimeSeriesFiles: doc.OutputTimeSeriesFiles,
		Properties:            make(map[string]string, len(doc.Properties.Entries)),
	}
	for _, p := range doc.Properties.Entries {
		ri.Properties[p.Key] = p.Value
	}
	return ri, nil
}

// Property returns a run property.
func (ri *RunInfo) Property(key string) (string, bool) {
	v, ok := ri.Properties[key]
	return v, ok && v != ""
}

// RequireProperty returns a run property or an InputError naming it.
func (ri *RunInfo) RequireProperty(key string) (string, error) {
	v, ok := ri.Property(key)
	if !ok {
		return "", model.NewInputError(ri.Path, "", key, "run info property is missing")
	}
	return v, nil
}

// InputTimeSeriesFile returns the i-th input time-series file.
func (ri *RunInfo) InputTimeSeriesFile(i int) (string, error) {
	return ri.pick(ri.InputTimeSeriesFiles, i, "inputTimeSeriesFile")
}

// InputParameterFile returns the i-th parameter file.
func (ri *RunInfo) InputParameterFile(i int) (string, error) {
	return ri.pick(ri.InputParameterFiles, i, "inputParameterFile")
}

// OutputTimeSeriesFile returns the i-th output time-series file.
func (ri *RunInfo) OutputTimeSeriesFile(i int) (string, error) {
	return ri.pick(ri.OutputTimeSeriesFiles, i, "outputTimeSeriesFile")
}

func (ri *RunInfo) pick(list []string, i int, what string) (string, error) {
	if i < 0 || i >= len(list) || list[i] == "" {
		return "", model.NewInputError(ri.Path, "", what,
			fmt.Sprintf("index %d not present (%d declared)", i, len(list)))
	}
	return list[i], nil
}

func withFile(err error, path string) error {
	if ie, ok := err.(*model.InputError); ok && ie.File == "" {
		ie.File = path
	}
	return err
}
