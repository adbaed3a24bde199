package batch

import (
	"github.com/leonardomso/gfmlink/internal/inline"
	"github.com/leonardomso/gfmlink/internal/processor"
)

// Status is the outcome of converting one file.
type Status int

const (
	// StatusUnchanged means the file already is in canonical form.
	StatusUnchanged Status = iota
	// StatusChanged means normalizing rewrites the file.
	StatusChanged
	// StatusFailed means the file could not be read.
	StatusFailed
)

// String returns the machine-readable name of the status.
func (s Status) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusChanged:
		return "changed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Label returns a short label for terminal output.
func (s Status) Label() string {
	switch s {
	case StatusUnchanged:
		return "OK"
	case StatusChanged:
		return "REWRITE"
	case StatusFailed:
		return "ERROR"
	default:
		return "?"
	}
}

// Result is the outcome of converting a single file.
type Result struct {
	Path       string
	Original   string
	Normalized string
	Status     Status

	Links       []processor.LinkRecord
	Definitions int
	Missing     []inline.Missing

	// Error is the read error message when Status is StatusFailed.
	Error string
}

// Changed reports whether the file needs rewriting.
func (r Result) Changed() bool {
	return r.Status == StatusChanged
}

// FilterByStatus returns the results with the given status.
func FilterByStatus(results []Result, status Status) []Result {
	var out []Result
	for _, r := range results {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// FilterChanged returns the results that need rewriting.
func FilterChanged(results []Result) []Result {
	return FilterByStatus(results, StatusChanged)
}

// Summary provides statistics about a batch.
type Summary struct {
	Total     int // Files processed
	Changed   int // Files that normalizing rewrites
	Unchanged int // Files already canonical
	Failed    int // Files that could not be read
	Links     int // Links found across all files
	Missing   int // Undefined reference labels
}

// Summarize creates a summary from a slice of results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusChanged:
			s.Changed++
		case StatusUnchanged:
			s.Unchanged++
		case StatusFailed:
			s.Failed++
		}
		s.Links += len(r.Links)
		s.Missing += len(r.Missing)
	}
	return s
}

// HasIssues reports whether any file needs rewriting or failed.
func (s Summary) HasIssues() bool {
	return s.Changed > 0 || s.Failed > 0
}
