package output

import (
	"fmt"
	"strings"

	"github.com/leonardomso/gfmlink/internal/batch"
	"github.com/leonardomso/gfmlink/internal/helpers"
)

// MarkdownFormatter formats reports as Markdown.
type MarkdownFormatter struct{}

// Format implements Formatter.
func (*MarkdownFormatter) Format(report *Report) ([]byte, error) {
	// Pre-grow builder: estimate ~120 bytes per result + ~500 bytes header
	var b strings.Builder
	b.Grow(len(report.Results)*120 + 500)

	// Header
	b.WriteString("# Link Normalization Report\n\n")
	b.WriteString(fmt.Sprintf("**Generated:** %s  \n", report.GeneratedAt.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("**Files Scanned:** %d  \n", len(report.Files)))
	b.WriteString(fmt.Sprintf("**Total Links:** %d  \n", report.Summary.Links))
	b.WriteString(fmt.Sprintf("**Unique Targets:** %d\n\n", report.UniqueHrefs))

	// Summary table
	b.WriteString("## Summary\n\n")
	b.WriteString("| Status | Count |\n")
	b.WriteString("|--------|-------|\n")
	b.WriteString(fmt.Sprintf("| Normalized | %d |\n", report.Summary.Unchanged))
	b.WriteString(fmt.Sprintf("| Needs rewrite | %d |\n", report.Summary.Changed))
	b.WriteString(fmt.Sprintf("| Failed | %d |\n", report.Summary.Failed))
	b.WriteString(fmt.Sprintf("| Undefined references | %d |\n", report.Summary.Missing))
	if len(report.Ignored) > 0 {
		b.WriteString(fmt.Sprintf("| Ignored links | %d |\n", len(report.Ignored)))
	}
	b.WriteString("\n")

	changed := batch.FilterChanged(report.Results)
	if len(changed) > 0 {
		b.WriteString(fmt.Sprintf("## Files to Rewrite (%d)\n\n", len(changed)))
		b.WriteString("| File | Links | Definitions | Undefined |\n")
		b.WriteString("|------|-------|-------------|-----------|\n")
		for _, r := range changed {
			b.WriteString(fmt.Sprintf("| %s | %d | %d | %d |\n",
				escapeMarkdown(r.Path), len(r.Links), r.Definitions, len(r.Missing)))
		}
		b.WriteString("\n")
	}

	if report.Summary.Missing > 0 {
		b.WriteString(fmt.Sprintf("## Undefined References (%d)\n\n", report.Summary.Missing))
		b.WriteString("| Label | Text | File | Line |\n")
		b.WriteString("|-------|------|------|------|\n")
		for _, r := range report.Results {
			for _, m := range r.Missing {
				b.WriteString(fmt.Sprintf("| `%s` | %s | %s | %d |\n",
					escapeMarkdown(m.Label), escapeMarkdown(helpers.TruncateText(m.Text, 40)), escapeMarkdown(r.Path), m.Line+1))
			}
		}
		b.WriteString("\n")
	}

	failed := batch.FilterByStatus(report.Results, batch.StatusFailed)
	if len(failed) > 0 {
		b.WriteString(fmt.Sprintf("## Failed (%d)\n\n", len(failed)))
		for _, r := range failed {
			b.WriteString(fmt.Sprintf("- `%s`: %s\n", r.Path, r.Error))
		}
		b.WriteString("\n")
	}

	if len(report.Ignored) > 0 {
		b.WriteString(fmt.Sprintf("## Ignored Links (%d)\n\n", len(report.Ignored)))
		b.WriteString("| Target | File | Line | Reason | Rule |\n")
		b.WriteString("|--------|------|------|--------|------|\n")
		for _, ig := range report.Ignored {
			href := escapeMarkdown(helpers.TruncateHref(ig.Href, 60))
			b.WriteString(fmt.Sprintf("| %s | %s | %d | %s | `%s` |\n",
				href, escapeMarkdown(ig.File), ig.Line, ig.Reason, ig.Rule))
		}
		b.WriteString("\n")
	}

	return []byte(b.String()), nil
}

// escapeMarkdown escapes special markdown characters in a string.
func escapeMarkdown(s string) string {
	// Escape pipe characters which break tables
	s = strings.ReplaceAll(s, "|", "\\|")
	// Escape backticks
	s = strings.ReplaceAll(s, "`", "\\`")
	return s
}
