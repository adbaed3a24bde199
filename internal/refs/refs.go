// Package refs builds the link reference table of a Markdown document.
//
// A document is scanned once, before any block or inline parsing, and every
// top-level line of the form
//
//	[label]: target "optional title"
//
// is collected into an immutable Table keyed by the normalized label.
// Lines taken as definitions are reported through Table.Consumed so the
// block parser can drop them from the visible content.
package refs

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark/util"
)

// Definition is a single reference definition.
type Definition struct {
	// Label is the label as written in the source.
	Label string
	// Target is the link destination with escapes resolved.
	Target string
	// Title is the optional title. Empty means no title.
	Title string
	// Line is the zero-based source line of the definition.
	Line int
}

// Table holds the reference definitions of one document.
// It is read-only after Build returns.
type Table struct {
	defs     map[string]Definition
	order    []string
	consumed map[int]bool
}

// defPattern matches a definition line. Groups: 1 label, 2 angle target,
// 3 plain target, 4 double-quoted title, 5 single-quoted title, 6 paren title.
var defPattern = regexp.MustCompile(
	`^ {0,3}\[((?:[^\[\]\\]|\\.)+)\]:[ \t]*` +
		`(?:<((?:[^<>\\\n]|\\.)*)>|(\S+))` +
		`(?:[ \t]+(?:"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)'|\(((?:[^()\\]|\\.)*)\)))?` +
		`[ \t]*$`)

// Normalize returns the lookup key for a label: surrounding whitespace is
// trimmed, internal whitespace runs collapse to one space and the result is
// case folded. The same function is applied at insertion and lookup.
func Normalize(label string) string {
	return util.ToLinkReference([]byte(label))
}

// Build scans lines and returns the reference table.
// Lines inside fenced code blocks are never definitions.
func Build(lines []string) *Table {
	t := &Table{
		defs:     map[string]Definition{},
		consumed: map[int]bool{},
	}

	var fence fenceState
	for i, line := range lines {
		if fence.update(line) {
			continue
		}

		def, ok := parseDefinition(line)
		if !ok {
			continue
		}
		def.Line = i

		key := Normalize(def.Label)
		if key == "" {
			continue
		}
		if _, exists := t.defs[key]; exists {
			// First definition wins; the duplicate line stays visible.
			continue
		}
		t.defs[key] = def
		t.order = append(t.order, key)
		t.consumed[i] = true
	}

	return t
}

// BuildString splits source into lines and calls Build.
func BuildString(source string) *Table {
	return Build(SplitLines(source))
}

// SplitLines splits source into lines, normalizing CRLF and CR endings.
func SplitLines(source string) []string {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.ReplaceAll(source, "\r", "\n")
	return strings.Split(source, "\n")
}

// parseDefinition parses a single definition line.
func parseDefinition(line string) (Definition, bool) {
	m := defPattern.FindStringSubmatch(line)
	if m == nil {
		return Definition{}, false
	}

	label := m[1]
	if strings.HasPrefix(label, "^") {
		// Footnote definitions are not link references.
		return Definition{}, false
	}
	if strings.TrimSpace(label) == "" {
		return Definition{}, false
	}

	target := m[3]
	if target == "" {
		target = m[2]
	}

	title := m[4]
	if title == "" {
		title = m[5]
	}
	if title == "" {
		title = m[6]
	}

	return Definition{
		Label:  label,
		Target: unescape(target),
		Title:  unescape(title),
	}, true
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return string(util.UnescapePunctuations([]byte(s)))
}

// Lookup returns the definition for label, matching case-insensitively.
func (t *Table) Lookup(label string) (Definition, bool) {
	if t == nil {
		return Definition{}, false
	}
	key := Normalize(label)
	if key == "" {
		return Definition{}, false
	}
	def, ok := t.defs[key]
	return def, ok
}

// Definitions returns all definitions in source order.
func (t *Table) Definitions() []Definition {
	if t == nil {
		return nil
	}
	out := make([]Definition, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.defs[key])
	}
	return out
}

// Len returns the number of definitions.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Consumed reports whether the zero-based line was taken as a definition.
func (t *Table) Consumed(line int) bool {
	if t == nil {
		return false
	}
	return t.consumed[line]
}

// fenceState tracks whether the scan is inside a fenced code block.
type fenceState struct {
	char  byte
	width int
}

// update feeds one line and reports whether the line belongs to a fence,
// including the opening and closing fence lines themselves.
func (f *fenceState) update(line string) bool {
	char, width, rest, ok := FenceMarker(line)

	if f.width == 0 {
		if !ok {
			return false
		}
		if char == '`' && strings.Contains(rest, "`") {
			return false
		}
		f.char, f.width = char, width
		return true
	}

	if ok && char == f.char && width >= f.width && strings.TrimSpace(rest) == "" {
		f.char, f.width = 0, 0
	}
	return true
}

// FenceMarker reports whether line opens or closes a code fence: up to three
// spaces of indentation followed by three or more backticks or tildes.
// It returns the fence character, the run width and the text after the run.
func FenceMarker(line string) (char byte, width int, rest string, ok bool) {
	indent := 0
	for indent < len(line) && indent < 4 && line[indent] == ' ' {
		indent++
	}
	if indent > 3 || indent >= len(line) {
		return 0, 0, "", false
	}

	char = line[indent]
	if char != '`' && char != '~' {
		return 0, 0, "", false
	}

	end := indent
	for end < len(line) && line[end] == char {
		end++
	}
	width = end - indent
	if width < 3 {
		return 0, 0, "", false
	}
	return char, width, line[end:], true
}
