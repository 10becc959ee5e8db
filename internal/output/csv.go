/*
PURPOSE:
  Writes parsed return-direction records to a flat CSV file for
  inspection outside FEWS.

REQUIREMENTS:
  User-specified:
  - Optional CSV export of everything the post step parsed.

  Implementation-discovered:
  - One row per value keeps the file loadable by spreadsheet tools
    regardless of differing series lengths.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (post, when csv is enabled)
  - Consumes: internal/model.Record

ERROR HANDLING:
  - Returns error on file creation or write failure.

USAGE:
  w, err := output.NewCSVWriter("records.csv")
  w.Write(record)
  w.Close()
*/

package output

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/daryltucker/rorb-fews/internal/model"
)

// CSVHeader is the first row of every record export.
var CSVHeader = []string{"kind", "location", "parameter", "unit", "time", "value"}

// CSVWriter handles writing records to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes every value of r as one row. Missing values are left empty.
func (cw *CSVWriter) Write(r *model.Record) error {
	for i, t := range r.Times() {
		value := ""
		if v := r.Values[i]; !model.IsMissing(v) {
			value = strconv.FormatFloat(v, 'f', -1, 64)
		}
		row := []string{
			string(r.Element.Kind),
			r.Element.Name,
			r.Parameter,
			r.Unit,
			t.Format(time.RFC3339),
			value,
		}
		if err := cw.writer.Write(row); err != nil {
			return err
		}
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}
