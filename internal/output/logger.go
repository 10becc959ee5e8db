/*
PURPOSE:
  Provides the structured logger shared by every package.
  Wraps slog for consistent output.

REQUIREMENTS:
  User-specified:
  - "Sane" CLI output. Not spammy.
  - The log of one FEWS run must be findable next to the model files.

  Implementation-discovered:
  - FEWS General Adapter captures stdout/stderr of the adapter, so logs go
    to stderr and optionally to a file in the model folder.
  - pre and post run as separate processes; a run id ties their lines.

ARCHITECTURE INTEGRATION:
  - Used everywhere.
  - Configured once by internal/cli after the config is loaded.

USAGE:
  output.Logger.Info("message", "key", "value")

RELATED FILES:
  - internal/testutil/logger.go (routes Logger to t.Log)
*/

package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

var Logger *slog.Logger

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// SetLogger allows overriding the default logger (e.g. for testing or config changes)
func SetLogger(l *slog.Logger) {
	Logger = l
}

// LogOptions select the handler built by Configure.
type LogOptions struct {
	Level  string
	Format string
	// File is appended to in addition to Stderr when set.
	File   string
	Stderr io.Writer
	// RunID is attached to every line; empty generates one.
	RunID string
}

// Configure builds the process logger and installs it. The returned closer
// releases the log file, if any.
func Configure(opts LogOptions) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	w := opts.Stderr
	if w == nil {
		w = os.Stderr
	}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(w, f)
		closer = f
	}

	hopts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}

	runID := opts.RunID
	if runID == "" {
		runID = NewRunID()
	}
	l := slog.New(h).With("run_id", runID)
	SetLogger(l)
	return l, closer, nil
}

// NewRunID returns a fresh identifier for one adapter invocation.
func NewRunID() string {
	return uuid.NewString()
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
