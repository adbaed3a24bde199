// Package fixer writes normalized Markdown back to files and describes the
// rewrites as line diffs before they are applied.
package fixer

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/leonardomso/gfmlink/internal/batch"
)

// ErrModified is returned when a file changed after it was converted.
var ErrModified = errors.New("file modified since it was read")

// FileChange is the rewrite of a single file.
type FileChange struct {
	FilePath   string
	Original   string
	Normalized string
	Added      int // Lines only in the normalized form
	Removed    int // Lines only in the original
	Links      int
	Missing    int // Undefined reference labels left as text
}

// FixResult represents the outcome of writing one file.
type FixResult struct {
	Error    error
	FilePath string
	Written  bool
	Skipped  bool
}

// Fixer applies normalized content to files.
type Fixer struct {
	// context is the number of unchanged lines shown around a diff hunk.
	context int
}

// New creates a new Fixer instance.
func New() *Fixer {
	return &Fixer{context: 2}
}

// FindChanges turns batch results into file changes, sorted by path.
// Files that are already canonical or failed to read are left out.
func (*Fixer) FindChanges(results []batch.Result) []FileChange {
	changes := make([]FileChange, 0, len(results))
	for _, r := range results {
		if !r.Changed() {
			continue
		}
		added, removed := countLines(r.Original, r.Normalized)
		changes = append(changes, FileChange{
			FilePath:   r.Path,
			Original:   r.Original,
			Normalized: r.Normalized,
			Added:      added,
			Removed:    removed,
			Links:      len(r.Links),
			Missing:    len(r.Missing),
		})
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].FilePath < changes[j].FilePath
	})
	return changes
}

// countLines counts the lines a diff from a to b adds and removes.
func countLines(a, b string) (added, removed int) {
	m := difflib.NewMatcher(difflib.SplitLines(a), difflib.SplitLines(b))
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'r':
			removed += op.I2 - op.I1
			added += op.J2 - op.J1
		case 'd':
			removed += op.I2 - op.I1
		case 'i':
			added += op.J2 - op.J1
		}
	}
	return added, removed
}

// Diff returns the unified diff of one change.
func (f *Fixer) Diff(fc FileChange) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(fc.Original),
		B:        difflib.SplitLines(fc.Normalized),
		FromFile: fc.FilePath,
		ToFile:   fc.FilePath + " (normalized)",
		Context:  f.context,
	})
	if err != nil {
		return ""
	}
	return diff
}

// Preview returns a formatted string showing what changes would be made.
func (f *Fixer) Preview(changes []FileChange) string {
	if len(changes) == 0 {
		return "All files are already normalized."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d file(s) would be rewritten:\n\n", len(changes)))

	for _, fc := range changes {
		b.WriteString(fmt.Sprintf("%s (+%d -%d)\n", fc.FilePath, fc.Added, fc.Removed))
		if fc.Missing > 0 {
			b.WriteString(fmt.Sprintf("  %d undefined reference(s) stay as text\n", fc.Missing))
		}
		b.WriteString(f.Diff(fc))
		b.WriteString("\n")
	}

	return b.String()
}

// ApplyToFile writes the normalized content of one change. The file is
// skipped with ErrModified when its content no longer matches Original.
func (*Fixer) ApplyToFile(fc FileChange) (*FixResult, error) {
	result := &FixResult{FilePath: fc.FilePath}

	info, err := os.Stat(fc.FilePath)
	if err != nil {
		result.Error = fmt.Errorf("reading file: %w", err)
		return result, result.Error
	}

	content, err := os.ReadFile(fc.FilePath)
	if err != nil {
		result.Error = fmt.Errorf("reading file: %w", err)
		return result, result.Error
	}

	if string(content) != fc.Original {
		result.Skipped = true
		result.Error = ErrModified
		return result, result.Error
	}

	// Only write if content changed
	if fc.Normalized == fc.Original {
		result.Skipped = true
		return result, nil
	}

	if err := os.WriteFile(fc.FilePath, []byte(fc.Normalized), info.Mode().Perm()); err != nil {
		result.Error = fmt.Errorf("writing file: %w", err)
		return result, result.Error
	}

	result.Written = true
	return result, nil
}

// ApplyAll applies all changes and returns results.
func (f *Fixer) ApplyAll(changes []FileChange) []FixResult {
	results := make([]FixResult, 0, len(changes))

	for _, fc := range changes {
		result, _ := f.ApplyToFile(fc)
		results = append(results, *result)
	}

	return results
}

// Summary returns a formatted summary of fix results.
func Summary(results []FixResult) string {
	var b strings.Builder

	written := 0
	skipped := 0
	var errs []string

	for _, r := range results {
		if r.Written {
			written++
		}
		if r.Skipped {
			skipped++
		}
		if r.Error != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", r.FilePath, r.Error))
		}
	}

	if written == 0 && len(errs) == 0 {
		return "No changes made."
	}

	b.WriteString(fmt.Sprintf("Normalized %d file(s).\n", written))

	if skipped > 0 {
		b.WriteString(fmt.Sprintf("Skipped %d file(s).\n", skipped))
	}

	if len(errs) > 0 {
		b.WriteString("\nErrors:\n")
		for _, e := range errs {
			b.WriteString(fmt.Sprintf("  %s\n", e))
		}
	}

	return b.String()
}
