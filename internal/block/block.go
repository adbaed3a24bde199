// Package block splits Markdown source into block nodes.
//
// It recognizes the block structure the link subsystem needs to know about:
// paragraphs, ATX headings, thematic breaks, fenced and indented code,
// blockquotes and lists. Lines the reference table consumed as definitions
// are dropped. Paragraph and heading text is handed to an InlineParser.
package block

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/leonardomso/gfmlink/internal/document"
	"github.com/leonardomso/gfmlink/internal/refs"
)

// InlineParser parses the text of one paragraph or heading. line is the
// zero-based source line the text starts on.
type InlineParser func(text string, line int) []*document.Node

// codeIndent is the indentation that starts an indented code block.
const codeIndent = 4

var (
	headingPattern  = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+(.*?))?(?:[ \t]+#+)?[ \t]*$`)
	thematicPattern = regexp.MustCompile(`^ {0,3}(?:(?:\*[ \t]*){3,}|(?:-[ \t]*){3,}|(?:_[ \t]*){3,})$`)
	quotePattern    = regexp.MustCompile(`^ {0,3}> ?`)
	bulletPattern   = regexp.MustCompile(`^( {0,3})([*+-])( +|$)`)
	orderedPattern  = regexp.MustCompile(`^( {0,3})(\d{1,9})([.)])( +|$)`)
)

type line struct {
	text string
	num  int
	def  bool
}

// Parse parses source into a document. Lines consumed by table are removed
// from the visible content. A nil inline parser yields plain text nodes.
func Parse(source string, table *refs.Table, inline InlineParser) *document.Node {
	if inline == nil {
		inline = func(text string, _ int) []*document.Node {
			return []*document.Node{document.NewText(text)}
		}
	}

	raw := refs.SplitLines(source)
	lines := make([]line, len(raw))
	for i, s := range raw {
		lines[i] = line{text: expandTabs(s), num: i, def: table.Consumed(i)}
	}

	p := &parser{inline: inline}
	return document.NewDocument(p.blocks(lines)...)
}

type parser struct {
	inline InlineParser
}

func (p *parser) blocks(lines []line) []*document.Node {
	var out []*document.Node
	var para []line

	closePara := func() {
		if len(para) > 0 {
			out = append(out, p.paragraph(para))
			para = nil
		}
	}

	for i := 0; i < len(lines); {
		ln := lines[i]

		if ln.def || isBlank(ln.text) {
			closePara()
			i++
			continue
		}

		// Indented code interrupts a paragraph, so an over-indented
		// definition below a paragraph stays visible as code.
		if indentOf(ln.text) >= codeIndent {
			closePara()
			node, next := indentedCode(lines, i)
			out = append(out, node)
			i = next
			continue
		}

		if node, next, ok := fencedCode(lines, i); ok {
			closePara()
			out = append(out, node)
			i = next
			continue
		}

		if m := headingPattern.FindStringSubmatch(ln.text); m != nil {
			closePara()
			h := document.NewNode(document.Heading, p.inline(strings.TrimSpace(m[2]), ln.num)...)
			h.Level = len(m[1])
			h.Line = ln.num
			out = append(out, h)
			i++
			continue
		}

		if thematicPattern.MatchString(ln.text) {
			closePara()
			hr := document.NewNode(document.ThematicBreak)
			hr.Line = ln.num
			out = append(out, hr)
			i++
			continue
		}

		if quotePattern.MatchString(ln.text) {
			closePara()
			node, next := p.blockquote(lines, i)
			out = append(out, node)
			i = next
			continue
		}

		if m, ok := parseMarker(ln.text); ok && (len(para) == 0 || m.canInterrupt()) {
			closePara()
			node, next := p.list(lines, i)
			out = append(out, node)
			i = next
			continue
		}

		para = append(para, ln)
		i++
	}
	closePara()

	return out
}

func (p *parser) paragraph(lines []line) *document.Node {
	parts := make([]string, len(lines))
	for i, ln := range lines {
		parts[i] = strings.TrimLeft(ln.text, " ")
	}
	text := strings.TrimRight(strings.Join(parts, "\n"), " ")

	node := document.NewNode(document.Paragraph, p.inline(text, lines[0].num)...)
	node.Line = lines[0].num
	return node
}

func indentedCode(lines []line, start int) (*document.Node, int) {
	var content []string
	end := start
	for i := start; i < len(lines); i++ {
		ln := lines[i]
		if isBlank(ln.text) {
			content = append(content, "")
			continue
		}
		if ln.def || indentOf(ln.text) < codeIndent {
			break
		}
		content = append(content, ln.text[codeIndent:])
		end = i + 1
	}
	content = content[:end-start]

	node := document.NewNode(document.CodeBlock)
	node.Text = strings.Join(content, "\n")
	node.Line = lines[start].num
	return node, end
}

func fencedCode(lines []line, start int) (*document.Node, int, bool) {
	open := lines[start].text
	char, width, rest, ok := refs.FenceMarker(open)
	if !ok || (char == '`' && strings.Contains(rest, "`")) {
		return nil, 0, false
	}
	indent := indentOf(open)

	node := document.NewNode(document.CodeBlock)
	node.Info = strings.TrimSpace(rest)
	node.Line = lines[start].num

	var content []string
	i := start + 1
	for ; i < len(lines); i++ {
		text := lines[i].text
		if c, w, r, ok := refs.FenceMarker(text); ok && c == char && w >= width && isBlank(r) {
			i++
			break
		}
		content = append(content, trimIndent(text, indent))
	}
	node.Text = strings.Join(content, "\n")
	return node, i, true
}

func (p *parser) blockquote(lines []line, start int) (*document.Node, int) {
	var inner []line
	i := start
	for ; i < len(lines); i++ {
		ln := lines[i]
		if ln.def || isBlank(ln.text) {
			break
		}
		if loc := quotePattern.FindStringIndex(ln.text); loc != nil {
			inner = append(inner, line{text: ln.text[loc[1]:], num: ln.num})
			continue
		}
		// Lazy continuation of a paragraph inside the quote.
		if len(inner) == 0 || isBlank(inner[len(inner)-1].text) || startsBlock(ln.text) {
			break
		}
		inner = append(inner, ln)
	}

	node := document.NewNode(document.Blockquote, p.blocks(inner)...)
	node.Line = lines[start].num
	return node, i
}

// marker is a parsed list item marker.
type marker struct {
	ordered bool
	// delim is the bullet character or the ordered delimiter.
	delim byte
	start int
	// width is the content indent of the item.
	width int
	empty bool
}

func parseMarker(text string) (marker, bool) {
	var m marker
	var prefix, spaces int

	if sm := bulletPattern.FindStringSubmatch(text); sm != nil {
		m.delim = sm[2][0]
		prefix = len(sm[1]) + 1
		spaces = len(sm[3])
	} else if sm := orderedPattern.FindStringSubmatch(text); sm != nil {
		m.ordered = true
		m.delim = sm[3][0]
		m.start, _ = strconv.Atoi(sm[2])
		prefix = len(sm[1]) + len(sm[2]) + 1
		spaces = len(sm[4])
	} else {
		return marker{}, false
	}

	m.empty = isBlank(text[prefix:])
	switch {
	case m.empty || spaces > 4:
		m.width = prefix + 1
	default:
		m.width = prefix + spaces
	}
	return m, true
}

// canInterrupt reports whether the marker may start a list directly after
// paragraph text.
func (m marker) canInterrupt() bool {
	if m.empty {
		return false
	}
	return !m.ordered || m.start == 1
}

func (m marker) sameList(o marker) bool {
	return m.ordered == o.ordered && m.delim == o.delim
}

func (p *parser) list(lines []line, start int) (*document.Node, int) {
	first, _ := parseMarker(lines[start].text)

	list := document.NewNode(document.List)
	list.Ordered = first.ordered
	list.Start = first.start
	if !first.ordered {
		list.Start = 1
	}
	list.Tight = true
	list.Line = lines[start].num

	i := start
	for i < len(lines) {
		m, ok := parseMarker(lines[i].text)
		if !ok || !m.sameList(first) || thematicPattern.MatchString(lines[i].text) {
			break
		}

		item, next, blankEnd, loose := p.item(lines, i, m)
		list.Append(item)
		i = next

		if loose {
			list.Tight = false
		}
		if blankEnd && i < len(lines) {
			if n, ok := parseMarker(lines[i].text); ok && n.sameList(first) {
				list.Tight = false
			}
		}
	}
	return list, i
}

// item collects one list item starting at lines[start]. It returns the
// node, the index of the first line after the item, whether the item was
// followed by blank lines and whether blank lines separate its blocks.
func (p *parser) item(lines []line, start int, m marker) (*document.Node, int, bool, bool) {
	first := lines[start]
	content := []line{{text: first.text[min(m.width, len(first.text)):], num: first.num}}
	if m.empty {
		content[0].text = ""
	}

	i := start + 1
	for ; i < len(lines); i++ {
		ln := lines[i]
		if ln.def {
			break
		}
		if isBlank(ln.text) {
			content = append(content, line{num: ln.num})
			continue
		}
		if indentOf(ln.text) >= m.width {
			content = append(content, line{text: ln.text[m.width:], num: ln.num})
			continue
		}

		prev := content[len(content)-1]
		if isBlank(prev.text) || startsBlock(ln.text) {
			break
		}
		// Lazy paragraph continuation.
		content = append(content, line{text: strings.TrimLeft(ln.text, " "), num: ln.num})
	}

	trailing := 0
	for k := len(content) - 1; k > 0 && isBlank(content[k].text); k-- {
		trailing++
	}
	content = content[:len(content)-trailing]

	children := p.blocks(content)
	item := document.NewNode(document.ListItem, children...)
	item.Line = first.num
	return item, i, trailing > 0, hasInnerBlank(content, len(children))
}

// hasInnerBlank reports whether blank lines separate the blocks of an item.
func hasInnerBlank(content []line, blocks int) bool {
	if blocks < 2 {
		return false
	}
	fence := false
	for _, ln := range content {
		if _, _, _, ok := refs.FenceMarker(ln.text); ok {
			fence = !fence
		}
		if !fence && isBlank(ln.text) {
			return true
		}
	}
	return false
}

// startsBlock reports whether text opens a block that ends a lazy
// continuation.
func startsBlock(text string) bool {
	if indentOf(text) >= codeIndent {
		return false
	}
	if _, _, _, ok := refs.FenceMarker(text); ok {
		return true
	}
	if _, ok := parseMarker(text); ok {
		return true
	}
	return headingPattern.MatchString(text) ||
		thematicPattern.MatchString(text) ||
		quotePattern.MatchString(text)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func indentOf(s string) int {
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}

// trimIndent removes up to n leading spaces.
func trimIndent(s string, n int) string {
	i := 0
	for i < n && i < len(s) && s[i] == ' ' {
		i++
	}
	return s[i:]
}

// expandTabs replaces tabs in the leading whitespace with spaces up to the
// next multiple of four columns.
func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	i := 0
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ':
			b.WriteByte(' ')
			col++
			continue
		case '\t':
			n := 4 - col%4
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		break
	}
	b.WriteString(s[i:])
	return b.String()
}
