// Package serializer writes a document tree back as normalized Markdown.
//
// The output is canonical: every anchor is written in inline form, lists use
// fixed markers, code blocks are fenced and text is escaped just enough for
// the result to parse back to the same tree. Serializing the parse of the
// output returns the output unchanged.
package serializer

import (
	"strconv"
	"strings"

	"github.com/leonardomso/gfmlink/internal/autolink"
	"github.com/leonardomso/gfmlink/internal/document"
)

// Serializer writes Markdown. Bare URLs in text are escaped for the
// configured autolink matcher so they do not become links on the next parse.
type Serializer struct {
	autolinks *autolink.Matcher
}

// New creates a Serializer. A nil matcher disables escaping of bare URLs.
func New(autolinks *autolink.Matcher) *Serializer {
	return &Serializer{autolinks: autolinks}
}

// Markdown serializes root with the default autolink schemes.
func Markdown(root *document.Node) string {
	return New(autolink.New()).Markdown(root)
}

// Markdown serializes root. The result has no trailing newline.
func (s *Serializer) Markdown(root *document.Node) string {
	if root == nil {
		return ""
	}
	if root.Kind.IsInline() {
		return s.paragraph(root.Children)
	}
	if root.Kind != document.Document {
		return s.block(root)
	}
	return s.blocks(root.Children, "\n\n")
}

func (s *Serializer) blocks(nodes []*document.Node, sep string) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if out := s.block(n); out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, sep)
}

func (s *Serializer) block(n *document.Node) string {
	switch n.Kind {
	case document.Paragraph:
		return s.paragraph(n.Children)

	case document.Heading:
		return s.heading(n)

	case document.Blockquote:
		return prefixLines(s.blocks(n.Children, "\n\n"), "> ", ">")

	case document.List:
		return s.list(n)

	case document.CodeBlock:
		return codeBlock(n)

	case document.ThematicBreak:
		return "* * *"

	case document.Raw:
		return strings.TrimSpace(n.Markdown)

	case document.Document, document.ListItem:
		return s.blocks(n.Children, "\n\n")
	}

	// Inline content outside a block.
	return s.paragraph([]*document.Node{n})
}

func (s *Serializer) paragraph(children []*document.Node) string {
	w := s.writer(true, false)
	w.nodes(children)
	return w.String()
}

func (s *Serializer) heading(n *document.Node) string {
	level := min(max(n.Level, 1), 6)
	w := s.writer(false, false)
	w.breakAsSpace = true
	w.nodes(n.Children)

	text := w.String()
	if strings.HasSuffix(text, "#") && !strings.HasSuffix(text, `\#`) {
		text = text[:len(text)-1] + `\#`
	}

	marker := strings.Repeat("#", level)
	if text == "" {
		return marker
	}
	return marker + " " + text
}

func (s *Serializer) list(n *document.Node) string {
	sep := "\n\n"
	if n.Tight {
		sep = "\n"
	}

	items := make([]string, 0, len(n.Children))
	for i, item := range n.Children {
		marker := "*"
		if n.Ordered {
			marker = strconv.Itoa(n.Start+i) + "."
		}
		width := max(4, len(marker)+1)

		content := s.blocks(item.Children, sep)
		if content == "" {
			items = append(items, marker)
			continue
		}

		indent := strings.Repeat(" ", width)
		first := marker + strings.Repeat(" ", width-len(marker))
		items = append(items, first+indentLines(content, indent))
	}
	return strings.Join(items, sep)
}

func codeBlock(n *document.Node) string {
	char := "`"
	if strings.Contains(n.Info, "`") {
		char = "~"
	}
	fence := strings.Repeat(char, max(3, longestRun(n.Text, char[0])+1))

	var b strings.Builder
	b.WriteString(fence)
	b.WriteString(n.Info)
	b.WriteByte('\n')
	if n.Text != "" {
		b.WriteString(n.Text)
		b.WriteByte('\n')
	}
	b.WriteString(fence)
	return b.String()
}

// indentLines indents every line after the first. Empty lines stay empty.
func indentLines(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

// prefixLines prefixes every line; empty lines get emptyPrefix.
func prefixLines(s, prefix, emptyPrefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = emptyPrefix
		} else {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func longestRun(s string, c byte) int {
	longest, n := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			n++
			longest = max(longest, n)
		} else {
			n = 0
		}
	}
	return longest
}
