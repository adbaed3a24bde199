// Package inline turns the text of one block into inline document nodes.
//
// Parsing runs in three passes over the text. The first finds the opaque
// spans: code spans and angle autolinks, inside which nothing else is
// recognized. The second pairs and resolves brackets with links.Matcher.
// The third walks the text left to right and emits code, anchors, images,
// breaks, emphasis delimiters, bare autolinks and text.
package inline

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark/util"

	"github.com/leonardomso/gfmlink/internal/autolink"
	"github.com/leonardomso/gfmlink/internal/document"
	"github.com/leonardomso/gfmlink/internal/links"
)

// Parser parses inline text against one reference table. It records the
// reference links whose label is undefined and is not safe for concurrent
// use.
type Parser struct {
	refs      links.References
	autolinks *autolink.Matcher
	missing   []Missing
}

// Missing is an explicit reference link, [text][label] or [text][], whose
// label has no definition.
type Missing struct {
	Label string
	Text  string
	// Line is the zero-based source line of the opening bracket.
	Line int
}

// New creates a Parser. A nil autolinks matcher disables bare autolinks;
// angle autolinks are always recognized.
func New(refs links.References, autolinks *autolink.Matcher) *Parser {
	return &Parser{refs: refs, autolinks: autolinks}
}

// Parse parses text whose first line is the zero-based source line.
func (p *Parser) Parse(text string, line int) []*document.Node {
	r := newRun(text, line, p.refs, p.autolinks)
	nodes := r.parseRange(0, len(text), false)
	for _, res := range r.matcher.Resolutions() {
		c := res.Candidate
		if res.IsResolved() || (c.Kind != links.ReferenceLink && c.Kind != links.ReferenceLinkEmpty) {
			continue
		}
		p.missing = append(p.missing, Missing{Label: c.Label, Text: c.Text, Line: r.lineAt(c.Start)})
	}
	return nodes
}

// Missing returns the undefined reference links seen so far, in the order
// their closing brackets appear.
func (p *Parser) Missing() []Missing {
	return p.missing
}

// Parse parses one inline text run and returns its nodes.
func Parse(text string, line int, refs links.References, autolinks *autolink.Matcher) []*document.Node {
	return newRun(text, line, refs, autolinks).parseRange(0, len(text), false)
}

func newRun(text string, line int, refs links.References, autolinks *autolink.Matcher) *run {
	r := &run{
		text:      text,
		line:      line,
		autolinks: autolinks,
		codes:     map[int]string{},
		angles:    map[int]autolink.Match{},
	}
	for i := range len(text) {
		if text[i] == '\n' {
			r.breaks = append(r.breaks, i)
		}
	}
	r.scanOpaque()
	r.matcher = links.NewMatcher(text, r.opaque, refs)
	return r
}

type run struct {
	text      string
	line      int
	autolinks *autolink.Matcher

	// breaks holds the offset of every line break.
	breaks []int
	opaque []links.Span
	codes  map[int]string
	angles map[int]autolink.Match

	matcher *links.Matcher
}

// scanOpaque records code spans and angle autolinks in source order.
func (r *run) scanOpaque() {
	text := r.text
	for i := 0; i < len(text); {
		switch text[i] {
		case '\\':
			if i+1 < len(text) && util.IsPunct(text[i+1]) {
				i += 2
				continue
			}

		case '`':
			n := runLength(text, i, '`')
			if closeAt, ok := closingRun(text, i+n, n); ok {
				end := closeAt + n
				r.opaque = append(r.opaque, links.Span{Start: i, End: end})
				r.codes[i] = codeContent(text[i+n : closeAt])
				i = end
				continue
			}
			i += n
			continue

		case '<':
			if m, ok := autolink.MatchAngle(text, i); ok {
				r.opaque = append(r.opaque, links.Span{Start: i, End: m.End, Link: true})
				r.angles[i] = m
				i = m.End
				continue
			}
		}
		i++
	}
}

// nextOpaque returns the start of the first opaque span at or after pos.
func (r *run) nextOpaque(pos int) int {
	if i := r.opaqueIndex(pos); i < len(r.opaque) {
		return r.opaque[i].Start
	}
	return len(r.text)
}

// opaqueIndex returns the index of the first opaque span starting at or
// after pos.
func (r *run) opaqueIndex(pos int) int {
	return sort.Search(len(r.opaque), func(i int) bool { return r.opaque[i].Start >= pos })
}

func (r *run) lineAt(pos int) int {
	return r.line + sort.SearchInts(r.breaks, pos)
}

// parseRange parses text[start:end]. inLink is true inside the text of a
// link or image, where bare autolinks are not recognized.
func (r *run) parseRange(start, end int, inLink bool) []*document.Node {
	text := r.text
	var pieces []piece
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			pieces = append(pieces, piece{node: document.NewText(buf.String())})
			buf.Reset()
		}
	}
	emit := func(n *document.Node) {
		flush()
		pieces = append(pieces, piece{node: n})
	}

	for i := start; i < end; {
		if code, ok := r.codes[i]; ok {
			n := document.NewNode(document.Code)
			n.Text = code
			emit(n)
			i = r.spanEnd(i)
			continue
		}

		if m, ok := r.angles[i]; ok {
			if inLink {
				buf.WriteString(text[m.Start:m.End])
			} else {
				a := document.NewAnchor(m.URL, "", document.NewText(m.URL))
				a.Syntax = links.AngleAutolink.String()
				a.Line = r.lineAt(i)
				emit(a)
			}
			i = m.End
			continue
		}

		if res, ok := r.matcher.At(i); ok && res.Candidate.End <= end {
			emit(r.linkNode(res))
			i = res.Candidate.End
			continue
		}

		c := text[i]
		switch {
		case c == '\\' && i+1 < end && text[i+1] == '\n':
			trimBufRight(&buf)
			emit(document.NewNode(document.Break))
			i = skipSpaces(text, i+2, end)
			continue

		case c == '\\' && i+1 < end && util.IsPunct(text[i+1]):
			buf.WriteByte(text[i+1])
			i += 2
			continue

		case c == '\n':
			trimBufRight(&buf)
			emit(document.NewNode(document.Break))
			i = skipSpaces(text, i+1, end)
			continue

		case c == '*' || c == '_':
			n := runLength(text[:end], i, c)
			d := flanking(text, start, end, i, i+n, c)
			if d.canOpen || d.canClose {
				flush()
				pieces = append(pieces, piece{node: document.NewText(text[i : i+n]), delim: d})
			} else {
				buf.WriteString(text[i : i+n])
			}
			i += n
			continue

		case !inLink && r.autolinks != nil && isASCIILetter(c):
			limit := min(end, r.nextOpaque(i), r.matcher.NextStart(i))
			if m, ok := r.autolinks.MatchBare(text[:limit], i); ok {
				a := document.NewAnchor(m.URL, "", document.NewText(m.URL))
				a.Syntax = links.Autolink.String()
				a.Line = r.lineAt(i)
				emit(a)
				i = m.End
				continue
			}
		}

		buf.WriteByte(c)
		i++
	}
	flush()

	return finish(pieces)
}

func (r *run) linkNode(res links.Resolution) *document.Node {
	c := res.Candidate
	children := r.parseRange(c.TextStart, c.TextEnd, true)

	var n *document.Node
	if c.Image {
		n = document.NewNode(document.Image, children...)
		n.Href = res.Anchor.Href
		n.Title = res.Anchor.Title
	} else {
		n = document.NewAnchor(res.Anchor.Href, res.Anchor.Title, children...)
	}
	n.Syntax = c.Kind.String()
	n.Line = r.lineAt(c.Start)
	return n
}

func (r *run) spanEnd(start int) int {
	if i := r.opaqueIndex(start); i < len(r.opaque) && r.opaque[i].Start == start {
		return r.opaque[i].End
	}
	return start + 1
}

// codeContent normalizes code span content: line endings become spaces and
// one surrounding space is stripped when present on both sides.
func codeContent(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) >= 2 && s[0] == ' ' && s[len(s)-1] == ' ' && strings.Trim(s, " ") != "" {
		s = s[1 : len(s)-1]
	}
	return s
}

// closingRun finds a backtick run of exactly n starting at or after pos.
func closingRun(text string, pos, n int) (int, bool) {
	for i := pos; i < len(text); {
		if text[i] != '`' {
			i++
			continue
		}
		m := runLength(text, i, '`')
		if m == n {
			return i, true
		}
		i += m
	}
	return 0, false
}

func runLength(text string, pos int, c byte) int {
	n := 0
	for pos+n < len(text) && text[pos+n] == c {
		n++
	}
	return n
}

func skipSpaces(text string, pos, end int) int {
	for pos < end && (text[pos] == ' ' || text[pos] == '\t') {
		pos++
	}
	return pos
}

func trimBufRight(buf *strings.Builder) {
	s := buf.String()
	trimmed := strings.TrimRight(s, " \t")
	if len(trimmed) != len(s) {
		buf.Reset()
		buf.WriteString(trimmed)
	}
}

// flanking classifies the delimiter run text[i:j]. The edges of the range
// count as whitespace.
func flanking(text string, start, end, i, j int, c byte) *delimiter {
	before, after := ' ', ' '
	if i > start {
		before, _ = utf8.DecodeLastRuneInString(text[start:i])
	}
	if j < end {
		after, _ = utf8.DecodeRuneInString(text[j:end])
	}

	spaceBefore, spaceAfter := util.IsSpaceRune(before), util.IsSpaceRune(after)
	punctBefore, punctAfter := util.IsPunctRune(before), util.IsPunctRune(after)

	left := !spaceAfter && (!punctAfter || spaceBefore || punctBefore)
	right := !spaceBefore && (!punctBefore || spaceAfter || punctAfter)

	d := &delimiter{char: c, count: j - i, orig: j - i}
	if c == '*' {
		d.canOpen, d.canClose = left, right
	} else {
		d.canOpen = left && (!right || punctBefore)
		d.canClose = right && (!left || punctAfter)
	}
	return d
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
