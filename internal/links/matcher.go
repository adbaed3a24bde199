package links

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark/util"
)

// maxLabelLength is the longest reference label that is looked up.
const maxLabelLength = 999

// Matcher pairs brackets in one inline text run and resolves every pair.
//
// Brackets are matched left to right with a stack of open positions, so
// nesting depth is bounded only by memory. Escaped brackets and brackets
// inside opaque spans never take part. A '[' without a partner and a ']'
// with an empty stack are plain text.
type Matcher struct {
	text   string
	opaque []Span
	table  References

	resolved map[int]Resolution
	starts   []int
	all      []Resolution

	// closers maps each '(' to its matching ')'. newlines holds the line
	// breaks outside opaque spans.
	closers  map[int]int
	newlines []int
	titles   map[int]titleMatch
}

// titleMatch is a remembered titleAt result keyed by the opening quote.
type titleMatch struct {
	title string
	end   int
	ok    bool
}

// frame is an open bracket on the matching stack.
type frame struct {
	open    int
	image   bool
	hasLink bool
}

// NewMatcher scans text and resolves its bracket pairs. Opaque spans must
// not overlap; they are sorted by start position if needed.
func NewMatcher(text string, opaque []Span, table References) *Matcher {
	spans := append([]Span(nil), opaque...)
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	m := &Matcher{
		text:     text,
		opaque:   spans,
		table:    table,
		resolved: map[int]Resolution{},
		closers:  map[int]int{},
	}
	m.index()
	m.scan()
	sort.Ints(m.starts)
	return m
}

// At returns the resolved link or image that starts at pos.
func (m *Matcher) At(pos int) (Resolution, bool) {
	r, ok := m.resolved[pos]
	return r, ok
}

// Match returns the first resolved candidate starting at or after pos.
func (m *Matcher) Match(pos int) (Candidate, bool) {
	i := sort.SearchInts(m.starts, pos)
	if i == len(m.starts) {
		return Candidate{}, false
	}
	return m.resolved[m.starts[i]].Candidate, true
}

// NextStart returns the start of the first resolved candidate at or after
// pos, or len(text) when there is none.
func (m *Matcher) NextStart(pos int) int {
	i := sort.SearchInts(m.starts, pos)
	if i == len(m.starts) {
		return len(m.text)
	}
	return m.starts[i]
}

// Resolutions returns every evaluated bracket pair in closing order,
// including the ones that stayed literal.
func (m *Matcher) Resolutions() []Resolution {
	return m.all
}

// index pairs parentheses and records line breaks, tokenizing the text
// the same way parseInlineTarget does.
func (m *Matcher) index() {
	text := m.text
	var open []int
	next := 0

	for i := 0; i < len(text); {
		for next < len(m.opaque) && m.opaque[next].Start < i {
			next++
		}
		if next < len(m.opaque) && m.opaque[next].Start == i && m.opaque[next].End > i {
			i = m.opaque[next].End
			continue
		}

		switch text[i] {
		case '\\':
			if i+1 < len(text) && util.IsPunct(text[i+1]) {
				i += 2
				continue
			}
		case '(':
			open = append(open, i)
		case ')':
			if len(open) > 0 {
				m.closers[open[len(open)-1]] = i
				open = open[:len(open)-1]
			}
		case '\n':
			m.newlines = append(m.newlines, i)
		}
		i++
	}
}

// breakWithin reports whether a line break outside opaque spans lies in
// text[from:to].
func (m *Matcher) breakWithin(from, to int) bool {
	i := sort.SearchInts(m.newlines, from)
	return i < len(m.newlines) && m.newlines[i] < to
}

func (m *Matcher) scan() {
	text := m.text
	var stack []frame
	next := 0

	for i := 0; i < len(text); {
		for next < len(m.opaque) && m.opaque[next].Start < i {
			next++
		}
		if next < len(m.opaque) && m.opaque[next].Start == i {
			span := m.opaque[next]
			if span.Link && len(stack) > 0 {
				stack[len(stack)-1].hasLink = true
			}
			i = max(span.End, i+1)
			continue
		}

		switch text[i] {
		case '\\':
			if i+1 < len(text) && util.IsPunct(text[i+1]) {
				i += 2
				continue
			}

		case '!':
			if i+1 < len(text) && text[i+1] == '[' {
				stack = append(stack, frame{open: i, image: true})
				i += 2
				continue
			}

		case '[':
			stack = append(stack, frame{open: i})

		case ']':
			if len(stack) == 0 {
				break
			}
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			res := m.evaluate(f, i)
			m.all = append(m.all, res)

			linked := f.hasLink
			if res.IsResolved() {
				m.resolved[res.Candidate.Start] = res
				m.starts = append(m.starts, res.Candidate.Start)
				if !f.image {
					linked = true
				}
			}
			if linked && len(stack) > 0 {
				stack[len(stack)-1].hasLink = true
			}
			if res.IsResolved() {
				i = res.Candidate.End
				continue
			}
		}
		i++
	}
}

// evaluate classifies the bracket pair opened by f and closed at closeAt.
func (m *Matcher) evaluate(f frame, closeAt int) Resolution {
	textStart := f.open + 1
	if f.image {
		textStart++
	}
	c := Candidate{
		Image:     f.image,
		Start:     f.open,
		End:       closeAt + 1,
		TextStart: textStart,
		TextEnd:   closeAt,
		Text:      m.text[textStart:closeAt],
	}

	// A link never contains another link.
	if f.hasLink && !f.image {
		c.Kind = ReferenceLinkImplicit
		c.Label = c.Text
		return Resolution{Outcome: Literal, Candidate: c}
	}

	after := closeAt + 1

	if p, ok := m.inlineOpen(after); ok {
		if target, title, end, ok := m.parseInlineTarget(p); ok {
			c.Kind = InlineLink
			c.Target = target
			c.Title = title
			c.End = end
			return Resolve(c, m.table)
		}
	}

	if labelStart, labelEnd, end, ok := m.labelAfter(after); ok {
		explicit := c
		explicit.End = end
		explicit.Label = m.text[labelStart:labelEnd]
		explicit.Kind = ReferenceLink
		if strings.TrimSpace(explicit.Label) == "" {
			explicit.Kind = ReferenceLinkEmpty
			explicit.Label = c.Text
		}
		res := Resolve(explicit, m.table)
		if res.IsResolved() {
			return res
		}
		m.all = append(m.all, res)
	}

	c.Kind = ReferenceLinkImplicit
	c.Label = c.Text
	return Resolve(c, m.table)
}

// inlineOpen reports the position of the '(' that opens an inline target:
// directly after the closing bracket or after one space or tab.
func (m *Matcher) inlineOpen(pos int) (int, bool) {
	text := m.text
	if pos < len(text) && text[pos] == '(' {
		return pos, true
	}
	if pos+1 < len(text) && (text[pos] == ' ' || text[pos] == '\t') && text[pos+1] == '(' {
		return pos + 1, true
	}
	return 0, false
}

// parseInlineTarget parses "(target "title")" starting at the '(' at pos.
// Whitespace around the target is dropped; spaces inside it are kept.
func (m *Matcher) parseInlineTarget(pos int) (target, title string, end int, ok bool) {
	text := m.text
	start := skipWhitespace(text, pos+1)

	if start < len(text) && text[start] == '<' {
		if closeAt, found := angleDestination(text, start); found {
			dest := unescape(text[start+1 : closeAt])
			k := skipWhitespace(text, closeAt+1)
			if k < len(text) && text[k] == ')' {
				return dest, "", k + 1, true
			}
			if t, e, found := m.titleAt(closeAt + 1); found {
				return dest, t, e, true
			}
			return "", "", 0, false
		}
	}

	// The walk stays at nesting depth zero: a nested group is skipped
	// whole through closers and must not span a line break.
	for i := start; i < len(text); {
		if spanEnd, found := m.opaqueEnd(i); found {
			i = spanEnd
			continue
		}

		c := text[i]
		switch {
		case c == '\\' && i+1 < len(text) && util.IsPunct(text[i+1]):
			i += 2
			continue

		case c == ' ' || c == '\t' || c == '\n':
			k := skipWhitespace(text, i)
			if k < len(text) && text[k] == ')' {
				return unescape(text[start:i]), "", k + 1, true
			}
			if t, e, found := m.titleAt(i); found {
				return unescape(text[start:i]), t, e, true
			}
			if m.breakWithin(i, k) {
				return "", "", 0, false
			}
			i = k
			continue

		case c == '(':
			closeAt, found := m.closers[i]
			if !found || m.breakWithin(i, closeAt) {
				return "", "", 0, false
			}
			i = closeAt + 1
			continue

		case c == ')':
			return unescape(text[start:i]), "", i + 1, true
		}
		i++
	}

	return "", "", 0, false
}

// titleAt parses whitespace, a quoted title, optional whitespace and the
// closing ')' starting at pos. It returns the title and the position after ')'.
func (m *Matcher) titleAt(pos int) (string, int, bool) {
	text := m.text
	j := skipWhitespace(text, pos)
	if j == pos || j >= len(text) {
		return "", 0, false
	}

	quote := text[j]
	if quote != '"' && quote != '\'' {
		return "", 0, false
	}

	t, seen := m.titles[j]
	if !seen {
		t = m.scanTitle(j)
		if m.titles == nil {
			m.titles = map[int]titleMatch{}
		}
		m.titles[j] = t
	}
	return t.title, t.end, t.ok
}

// scanTitle parses the quoted title opening at j and the ')' after it.
func (m *Matcher) scanTitle(j int) titleMatch {
	text := m.text
	quote := text[j]
	k := j + 1
	for k < len(text) && text[k] != quote {
		if text[k] == '\\' && k+1 < len(text) {
			k++
		}
		k++
	}
	if k >= len(text) {
		return titleMatch{}
	}

	e := skipWhitespace(text, k+1)
	if e >= len(text) || text[e] != ')' {
		return titleMatch{}
	}
	return titleMatch{title: unescape(text[j+1 : k]), end: e + 1, ok: true}
}

// labelAfter finds an explicit [label] after a closing bracket. Spaces and
// tabs and at most one line break may come first. Labels may not contain
// unescaped brackets.
func (m *Matcher) labelAfter(pos int) (labelStart, labelEnd, end int, ok bool) {
	text := m.text
	i := pos
	newline := false
	for i < len(text) {
		c := text[i]
		if c == ' ' || c == '\t' {
			i++
			continue
		}
		if c == '\n' && !newline {
			newline = true
			i++
			continue
		}
		break
	}
	if i >= len(text) || text[i] != '[' {
		return 0, 0, 0, false
	}

	labelStart = i + 1
	for j := labelStart; j < len(text); j++ {
		if j-labelStart > maxLabelLength {
			return 0, 0, 0, false
		}
		if spanEnd, found := m.opaqueEnd(j); found {
			j = spanEnd - 1
			continue
		}
		switch text[j] {
		case '\\':
			j++
		case '[':
			return 0, 0, 0, false
		case ']':
			return labelStart, j, j + 1, true
		}
	}
	return 0, 0, 0, false
}

// opaqueEnd returns the end of the opaque span starting at pos.
func (m *Matcher) opaqueEnd(pos int) (int, bool) {
	i := sort.Search(len(m.opaque), func(k int) bool { return m.opaque[k].Start >= pos })
	if i < len(m.opaque) && m.opaque[i].Start == pos && m.opaque[i].End > pos {
		return m.opaque[i].End, true
	}
	return 0, false
}

// angleDestination finds the '>' closing a <...> destination at pos.
func angleDestination(text string, pos int) (int, bool) {
	for i := pos + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '>':
			return i, true
		case '<', '\n':
			return 0, false
		}
	}
	return 0, false
}

func skipWhitespace(text string, pos int) int {
	for pos < len(text) && (text[pos] == ' ' || text[pos] == '\t' || text[pos] == '\n') {
		pos++
	}
	return pos
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return string(util.UnescapePunctuations([]byte(s)))
}
