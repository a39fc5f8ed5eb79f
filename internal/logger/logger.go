// Package logger configures the process-wide structured logger.
// Progress and error events from the purge flows are emitted through
// slog so they can be shipped as JSON or read as text on a terminal.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// level is shared by every handler created here so SetVerbose takes
// effect on loggers that were built before the flag was parsed.
var level = func() *slog.LevelVar {
	v := new(slog.LevelVar)
	v.Set(slog.LevelInfo)
	return v
}()

// New returns a logger writing structured records to w.
// When jsonFormat is true records are emitted as JSON lines, otherwise
// as human-readable text.
func New(w io.Writer, jsonFormat bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if jsonFormat {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Default returns a text logger on stderr.
func Default() *slog.Logger {
	return New(os.Stderr, false)
}

// SetVerbose enables or disables debug logging.
func SetVerbose(verbose bool) {
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}
