// Package logging builds the diagnostic logger and the attribute helpers
// shared by every package, so field names stay the same everywhere.
package logging

import (
	"io"
	"log/slog"
)

// Canonical log field names.
const (
	KeyFile       = "file"
	KeyCount      = "count"
	KeyKind       = "kind"
	KeyLine       = "line"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// New returns a text logger writing to w. verbose enables debug records.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func File(path string) slog.Attr      { return slog.String(KeyFile, path) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Line(n int) slog.Attr            { return slog.Int(KeyLine, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Err returns the error attribute. A nil error logs as an empty string.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
