package ui

import (
	"fmt"
	"strings"

	"github.com/leonardomso/gfmlink/internal/batch"
	"github.com/leonardomso/gfmlink/internal/fixer"
	"github.com/leonardomso/gfmlink/internal/helpers"
)

// maxDiffLines bounds the diff shown in the detail panel.
const maxDiffLines = 20

// ResultItem wraps a batch.Result to implement list.Item interface.
type ResultItem struct {
	Result  batch.Result
	Change  fixer.FileChange
	Written bool
}

// FilterValue returns the string used for filtering.
// Implements list.Item interface.
func (i ResultItem) FilterValue() string {
	return i.Result.Path
}

// Title returns the main display text for the item.
// Implements list.DefaultItem interface.
func (i ResultItem) Title() string {
	return i.Result.Path
}

// Description returns secondary text for the item.
// Implements list.DefaultItem interface.
func (i ResultItem) Description() string {
	r := i.Result

	links := fmt.Sprintf("%d %s", len(r.Links), helpers.Plural(len(r.Links), "link"))
	if n := len(r.Missing); n > 0 {
		links += fmt.Sprintf(", %d undefined", n)
	}

	switch {
	case i.Written:
		return "written | " + links
	case r.Status == batch.StatusChanged:
		return fmt.Sprintf("+%d -%d | %s", i.Change.Added, i.Change.Removed, links)
	case r.Status == batch.StatusFailed:
		return "Error: " + helpers.TruncateText(r.Error, 50)
	default:
		return "normalized | " + links
	}
}

// DetailView returns an expanded detail view for the selected item. With
// showDiff the pending rewrite is shown as a colored unified diff.
func (i ResultItem) DetailView(f *fixer.Fixer, showDiff bool) string {
	r := i.Result
	var b strings.Builder

	b.WriteString("┌─ Details ─────────────────────────────────────────────────────────────\n")
	b.WriteString(fmt.Sprintf("│ %s  %s\n", DetailLabelStyle.Render("Status:"), StatusBadge(r.Status, i.Written)))
	b.WriteString(fmt.Sprintf("│ %s  %d\n", DetailLabelStyle.Render("Links:"), len(r.Links)))
	if r.Definitions > 0 {
		b.WriteString(fmt.Sprintf("│ %s  %d\n", DetailLabelStyle.Render("Definitions:"), r.Definitions))
	}
	if r.Error != "" {
		b.WriteString(fmt.Sprintf("│ %s  %s\n", DetailLabelStyle.Render("Error:"), r.Error))
	}

	for _, m := range r.Missing {
		b.WriteString(fmt.Sprintf("│ %s  [%s] line %d\n",
			DetailLabelStyle.Render("Undefined:"), helpers.TruncateText(m.Label, 40), m.Line+1))
	}

	if showDiff && r.Changed() && !i.Written {
		b.WriteString("│\n")
		for _, line := range diffLines(f.Diff(i.Change), maxDiffLines) {
			b.WriteString("│ " + line + "\n")
		}
	}

	b.WriteString("└────────────────────────────────────────────────────────────────────────\n")

	return b.String()
}

// diffLines colors a unified diff and cuts it to limit lines.
func diffLines(diff string, limit int) []string {
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	out := make([]string, 0, min(len(lines), limit)+1)
	for n, line := range lines {
		if n == limit {
			out = append(out, MutedStyle.Render(fmt.Sprintf("... %d more line(s)", len(lines)-limit)))
			break
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			out = append(out, StatusStyle.Render(line))
		case strings.HasPrefix(line, "@@"):
			out = append(out, DiffHunkStyle.Render(line))
		case strings.HasPrefix(line, "+"):
			out = append(out, DiffAddStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			out = append(out, DiffRemoveStyle.Render(line))
		default:
			out = append(out, line)
		}
	}
	return out
}
