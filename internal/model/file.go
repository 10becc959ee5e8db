package model

import "strings"

// FileKind classifies a rendered engine input file.
type FileKind string

const (
	FileParameter   FileKind = "parameter"
	FileStorm       FileKind = "storm"
	FileCatchment   FileKind = "catchment"
	FileSnow        FileKind = "snow"
	FileGateOps     FileKind = "gateops"
	FileTransfer    FileKind = "transfer"
	FileOverride    FileKind = "override"
	FileMultiGateOp FileKind = "multi_gateops"
)

// RenderedFile is the immutable output of filling one template.
type RenderedFile struct {
	Name  string
	Kind  FileKind
	Lines []string
	// Element is set for per-element files (gate-ops, transfer, override).
	Element ElementID
}

// Text returns the file content with a trailing newline.
func (f *RenderedFile) Text() string {
	if len(f.Lines) == 0 {
		return ""
	}
	return strings.Join(f.Lines, "\n") + "\n"
}

// Bytes returns the file content.
func (f *RenderedFile) Bytes() []byte { return []byte(f.Text()) }
