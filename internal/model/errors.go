package model

import (
	"fmt"
	"strings"
)

// baseError carries the message and optional cause shared by all
// translation errors. The concrete types add the identity of whatever was
// being translated so a failure is locatable without a stack trace.
type baseError struct {
	msg string
	Err error
}

func (e *baseError) format(where ...string) string {
	var parts []string
	for _, w := range where {
		if w != "" {
			parts = append(parts, w)
		}
	}
	parts = append(parts, e.msg)
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *baseError) Unwrap() error { return e.Err }

// ConfigError reports a malformed or inconsistent catalog, conventions or
// file-mapping document.
type ConfigError struct {
	baseError
	Document string
	Element  string
}

// NewConfigError creates a ConfigError.
func NewConfigError(document, element, msg string) *ConfigError {
	return &ConfigError{baseError: baseError{msg: msg}, Document: document, Element: element}
}

// NewConfigErrorf creates a ConfigError with formatting.
func NewConfigErrorf(document, element, format string, args ...any) *ConfigError {
	return NewConfigError(document, element, fmt.Sprintf(format, args...))
}

func (e *ConfigError) Error() string {
	where := ""
	if e.Element != "" {
		where = "element " + e.Element
	}
	return e.format("config error", e.Document, where)
}

// InputError reports missing or malformed upstream FEWS data.
type InputError struct {
	baseError
	File    string
	Element string
	Series  string
}

// NewInputError creates an InputError naming the offending element or series.
func NewInputError(file, element, series, msg string) *InputError {
	return &InputError{baseError: baseError{msg: msg}, File: file, Element: element, Series: series}
}

// WrapInputError wraps a decoding or I/O failure of an input file.
func WrapInputError(file, msg string, cause error) *InputError {
	return &InputError{baseError: baseError{msg: msg, Err: cause}, File: file}
}

func (e *InputError) Error() string {
	var where []string
	if e.Element != "" {
		where = append(where, "element "+e.Element)
	}
	if e.Series != "" {
		where = append(where, "series "+e.Series)
	}
	return e.format("input error", e.File, strings.Join(where, " "))
}

// RenderError reports a value required by a template that is unavailable.
type RenderError struct {
	baseError
	File    string
	Element string
}

// NewRenderError creates a RenderError.
func NewRenderError(file, element, msg string) *RenderError {
	return &RenderError{baseError: baseError{msg: msg}, File: file, Element: element}
}

// NewRenderErrorf creates a RenderError with formatting.
func NewRenderErrorf(file, element, format string, args ...any) *RenderError {
	return NewRenderError(file, element, fmt.Sprintf(format, args...))
}

// WrapRenderError wraps an underlying failure as a render error.
func WrapRenderError(file, msg string, cause error) *RenderError {
	return &RenderError{baseError: baseError{msg: msg, Err: cause}, File: file}
}

func (e *RenderError) Error() string {
	where := ""
	if e.Element != "" {
		where = "element " + e.Element
	}
	return e.format("render error", e.File, where)
}

// OutputParseError reports a report or trace that does not match the
// expected structure. Line is 1-based; zero when not tied to a line.
type OutputParseError struct {
	baseError
	File    string
	Section string
	Line    int
}

// NewOutputParseError creates an OutputParseError.
func NewOutputParseError(file, section string, line int, msg string) *OutputParseError {
	return &OutputParseError{baseError: baseError{msg: msg}, File: file, Section: section, Line: line}
}

// NewOutputParseErrorf creates an OutputParseError with formatting.
func NewOutputParseErrorf(file, section string, line int, format string, args ...any) *OutputParseError {
	return NewOutputParseError(file, section, line, fmt.Sprintf(format, args...))
}

func (e *OutputParseError) Error() string {
	file := e.File
	if file != "" && e.Line > 0 {
		file = fmt.Sprintf("%s:%d", file, e.Line)
	} else if e.Line > 0 {
		file = fmt.Sprintf("line %d", e.Line)
	}
	section := ""
	if e.Section != "" {
		section = fmt.Sprintf("section %q", e.Section)
	}
	return e.format("output parse error", file, section)
}

// WriteError reports duplicate or inconsistent series during serialization.
type WriteError struct {
	baseError
	Artifact ArtifactKind
	Series   string
}

// NewWriteError creates a WriteError.
func NewWriteError(artifact ArtifactKind, series, msg string) *WriteError {
	return &WriteError{baseError: baseError{msg: msg}, Artifact: artifact, Series: series}
}

// NewWriteErrorf creates a WriteError with formatting.
func NewWriteErrorf(artifact ArtifactKind, series, format string, args ...any) *WriteError {
	return NewWriteError(artifact, series, fmt.Sprintf(format, args...))
}

func (e *WriteError) Error() string {
	where := ""
	if e.Series != "" {
		where = "series " + e.Series
	}
	return e.format("write error", string(e.Artifact), where)
}
