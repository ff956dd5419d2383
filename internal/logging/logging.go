// Package logging builds the slog loggers used by the mdfront CLI.
//
// Text output goes through [Handler], which colors levels and keys as
// selected by a [ColorMode]. JSON output uses the standard slog JSON
// handler. Library packages never log; only commands do.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

// Format specifies the output format for log messages.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// Config holds the configuration for creating a new logger.
type Config struct {
	Level  slog.Level
	Format Format
	// Output defaults to os.Stderr.
	Output io.Writer
	// Color applies to the text format only. The zero value means auto.
	Color ColorMode
}

// New creates a logger with the given configuration. Unknown formats fall
// back to text.
func New(cfg Config) *slog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level} //nolint:exhaustruct

	if cfg.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(output, opts))
	}

	return slog.New(NewHandler(output, opts, cfg.Color.Enabled(output)))
}

// NewDiscard creates a logger that discards all output.
func NewDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LevelFromVerbosity maps the -v count and the quiet flag to a level.
func LevelFromVerbosity(verbosity int, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbosity >= 2: //nolint:gomnd
		return slog.LevelDebug - 4 //nolint:gomnd
	case verbosity == 1:
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}

// ParseFormat validates a --log-format value.
func ParseFormat(value string) (Format, bool) {
	switch f := Format(strings.ToLower(value)); f {
	case FormatText, FormatJSON:
		return f, true
	default:
		return FormatText, false
	}
}

type testWriter struct {
	t *testing.T
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))

	return len(p), nil
}

// ForTest creates a Debug level logger writing to the test log.
func ForTest(t *testing.T) *slog.Logger {
	t.Helper()

	return New(Config{Level: slog.LevelDebug, Format: FormatText, Output: &testWriter{t: t}, Color: ColorNever})
}
