package links

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark/util"
)

// Serialize returns the canonical Markdown for an anchor whose children
// were already serialized to text:
//
//	[text](href)
//	[text](href "title")
//
// Reference and angle forms are never emitted. Unbalanced brackets in text
// are escaped so the result parses back to the same anchor.
func Serialize(a Anchor, text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(a.Href) + len(a.Title) + 8)
	b.WriteByte('[')
	b.WriteString(BalanceBrackets(text))
	b.WriteString("](")
	writeDestination(&b, a)
	b.WriteByte(')')
	return b.String()
}

// SerializeImage returns the canonical Markdown for an image.
func SerializeImage(a Anchor, alt string) string {
	return "!" + Serialize(a, alt)
}

func writeDestination(b *strings.Builder, a Anchor) {
	href := strings.TrimSpace(a.Href)
	switch {
	case href == "" && a.Title != "":
		b.WriteString("<>")
	default:
		b.WriteString(escapeDestination(href))
	}
	if a.Title != "" {
		b.WriteString(` "`)
		b.WriteString(escapeTitle(a.Title))
		b.WriteByte('"')
	}
}

// escapeDestination escapes what would otherwise change how a destination
// parses: a leading '<', backslashes before punctuation, unbalanced
// parentheses and quotes that could open a title.
func escapeDestination(href string) string {
	escape := unbalanced(href, '(', ')')

	var b strings.Builder
	b.Grow(len(href) + len(escape))
	for i := 0; i < len(href); i++ {
		c := href[i]
		switch {
		case c == '\n' || c == '\r':
			b.WriteByte(' ')
			continue
		case i == 0 && c == '<':
			b.WriteByte('\\')
		case c == '\\' && (i+1 == len(href) || util.IsPunct(href[i+1])):
			b.WriteByte('\\')
		case (c == '"' || c == '\'') && i > 0 && util.IsSpace(href[i-1]):
			b.WriteByte('\\')
		case len(escape) > 0 && escape[0] == i:
			escape = escape[1:]
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

func escapeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title) + 2)
	for i := 0; i < len(title); i++ {
		c := title[i]
		if c == '"' || (c == '\\' && (i+1 == len(title) || util.IsPunct(title[i+1]))) {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// BalanceBrackets escapes every bracket in Markdown text that has no
// partner. Escaped brackets and code spans are left alone.
func BalanceBrackets(text string) string {
	var open, unmatched []int
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '`':
			i = skipCodeSpan(text, i) - 1
		case '[':
			open = append(open, i)
		case ']':
			if len(open) == 0 {
				unmatched = append(unmatched, i)
			} else {
				open = open[:len(open)-1]
			}
		}
	}
	unmatched = append(unmatched, open...)
	if len(unmatched) == 0 {
		return text
	}
	sort.Ints(unmatched)

	var b strings.Builder
	b.Grow(len(text) + len(unmatched))
	last := 0
	for _, pos := range unmatched {
		b.WriteString(text[last:pos])
		b.WriteByte('\\')
		last = pos
	}
	b.WriteString(text[last:])
	return b.String()
}

// unbalanced returns, in order, the positions of open/close characters in
// the unescaped string s that have no partner.
func unbalanced(s string, openChar, closeChar byte) []int {
	var open, out []int
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case openChar:
			open = append(open, i)
		case closeChar:
			if len(open) == 0 {
				out = append(out, i)
			} else {
				open = open[:len(open)-1]
			}
		}
	}
	out = append(out, open...)
	sort.Ints(out)
	return out
}

// skipCodeSpan returns the position after the code span whose opening
// backtick run starts at pos, or after the run itself when it is unclosed.
func skipCodeSpan(text string, pos int) int {
	n := runLength(text, pos, '`')
	for i := pos + n; i < len(text); {
		if text[i] != '`' {
			i++
			continue
		}
		m := runLength(text, i, '`')
		if m == n {
			return i + m
		}
		i += m
	}
	return pos + n
}

func runLength(text string, pos int, c byte) int {
	n := 0
	for pos+n < len(text) && text[pos+n] == c {
		n++
	}
	return n
}
