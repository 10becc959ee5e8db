/*
PURPOSE:
  Writes a manifest of the files one adapter step produced, as JSON Lines
  (NDJSON), so a failed FEWS run can be traced to exact artifacts.

REQUIREMENTS:
  User-specified:
  - Optional machine-readable record of generated files.

  Implementation-discovered:
  - JSON Lines is append-friendly; pre and post of one run can share a
    manifest, distinguished by run_id and step.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: ManifestEntry

ERROR HANDLING:
  - Returns error on file open or write failure.

USAGE:
  w, err := output.NewJSONWriter("manifest.jsonl")
  w.Write(entry)
  w.Close()
*/

package output

import (
	"encoding/json"
	"os"
	"time"
)

// ManifestEntry describes one written file.
type ManifestEntry struct {
	RunID   string    `json:"run_id"`
	Step    string    `json:"step"`
	Path    string    `json:"path"`
	Kind    string    `json:"kind"`
	Element string    `json:"element,omitempty"`
	Lines   int       `json:"lines,omitempty"`
	Series  int       `json:"series,omitempty"`
	Bytes   int       `json:"bytes"`
	Written time.Time `json:"written"`
}

// JSONWriter appends manifest entries to a JSON Lines file.
type JSONWriter struct {
	file    *os.File
	encoder *json.Encoder
}

// NewJSONWriter opens path for appending, creating it if needed.
func NewJSONWriter(path string) (*JSONWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	return &JSONWriter{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// Write writes a single entry as a JSON line.
func (jw *JSONWriter) Write(e ManifestEntry) error {
	return jw.encoder.Encode(e)
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	return jw.file.Close()
}
