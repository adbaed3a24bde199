package serializer

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leonardomso/gfmlink/internal/autolink"
	"github.com/leonardomso/gfmlink/internal/document"
	"github.com/leonardomso/gfmlink/internal/links"
)

var (
	orderedStart    = regexp.MustCompile(`^[0-9]{1,9}[.)]( |$)`)
	definitionStart = regexp.MustCompile(`^\[[^\]]*\]:`)
)

// inlineWriter serializes inline nodes into one block of text.
type inlineWriter struct {
	s   *Serializer
	buf []byte

	// fresh is true when an empty buffer is at the start of a line.
	fresh bool
	// inAnchor is true inside link text, where anchors are flattened and
	// bare URLs need no escaping.
	inAnchor     bool
	breakAsSpace bool
}

func (s *Serializer) writer(fresh, inAnchor bool) *inlineWriter {
	return &inlineWriter{s: s, fresh: fresh, inAnchor: inAnchor}
}

func (w *inlineWriter) String() string {
	return strings.TrimRight(string(w.buf), " \t\n")
}

func (w *inlineWriter) atLineStart() bool {
	if len(w.buf) == 0 {
		return w.fresh
	}
	return w.buf[len(w.buf)-1] == '\n'
}

// write appends s. Whitespace at the start of a line is dropped, as the
// parser drops it too.
func (w *inlineWriter) write(s string) {
	if w.atLineStart() {
		s = strings.TrimLeft(s, " \t\n")
	}
	w.buf = append(w.buf, s...)
}

func (w *inlineWriter) lastRune() rune {
	if len(w.buf) == 0 {
		return ' '
	}
	r, _ := utf8.DecodeLastRune(w.buf)
	return r
}

func (w *inlineWriter) nodes(ns []*document.Node) {
	for i, n := range ns {
		var next *document.Node
		if i+1 < len(ns) {
			next = ns[i+1]
		}
		w.node(n, next)
	}
}

func (w *inlineWriter) node(n, next *document.Node) {
	switch n.Kind {
	case document.Text:
		w.text(n.Text, next)

	case document.Break:
		w.lineBreak()

	case document.Code:
		w.code(n.Text)

	case document.Strong:
		w.emphasis(n, next, "**")

	case document.Emphasis:
		w.emphasis(n, next, "")

	case document.Anchor:
		if w.inAnchor {
			w.nodes(n.Children)
			return
		}
		text := w.child(n.Children, true)
		w.write(links.Serialize(links.Anchor{Href: n.Href, Title: n.Title}, text))

	case document.Image:
		alt := w.child(n.Children, true)
		w.write(links.SerializeImage(links.Anchor{Href: n.Href, Title: n.Title}, alt))

	default:
		w.nodes(n.Children)
	}
}

// child serializes nodes in a writer of their own.
func (w *inlineWriter) child(ns []*document.Node, inAnchor bool) string {
	c := w.s.writer(false, inAnchor || w.inAnchor)
	c.breakAsSpace = w.breakAsSpace
	c.nodes(ns)
	return string(c.buf)
}

func (w *inlineWriter) lineBreak() {
	if w.breakAsSpace {
		w.write(" ")
		return
	}
	w.buf = bytes.TrimRight(w.buf, " \t")
	if len(w.buf) == 0 || w.buf[len(w.buf)-1] == '\n' {
		return
	}
	w.buf = append(w.buf, '\n')
}

func (w *inlineWriter) code(text string) {
	if text == "" {
		return
	}
	fence := strings.Repeat("`", longestRun(text, '`')+1)
	pad := strings.HasPrefix(text, "`") || strings.HasSuffix(text, "`") ||
		(strings.HasPrefix(text, " ") && strings.HasSuffix(text, " ") && strings.Trim(text, " ") != "")
	if pad {
		text = " " + text + " "
	}
	w.write(fence + text + fence)
}

// emphasis writes a Strong or Emphasis node. Surrounding whitespace in the
// content moves outside the delimiters. An empty delim selects the
// emphasis delimiter: '_' unless a letter or digit touches it.
func (w *inlineWriter) emphasis(n, next *document.Node, delim string) {
	inner := w.child(n.Children, false)
	core := strings.Trim(inner, " \t\n")
	if core == "" {
		w.write(inner)
		return
	}
	lead := inner[:strings.Index(inner, core)]
	trail := inner[len(lead)+len(core):]

	w.write(lead)
	if delim == "" {
		delim = "_"
		if isAlnum(w.lastRune()) || (trail == "" && isAlnum(firstRune(next))) {
			delim = "*"
		}
	}
	w.write(delim + core + delim)
	w.write(trail)
}

func (w *inlineWriter) text(s string, next *document.Node) {
	if w.atLineStart() {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			return
		}
	}

	out := w.s.escape(s, w.lastRune(), firstRune(next), w.inAnchor)
	if w.atLineStart() {
		out = escapeLineStart(out)
	}
	if next != nil && next.Kind == document.Anchor && strings.HasSuffix(out, "!") {
		out = out[:len(out)-1] + `\!`
	}
	w.write(out)
}

// escape backslash-escapes the characters of a text node that would
// otherwise be read as markup.
func (s *Serializer) escape(text string, before, after rune, inAnchor bool) string {
	var b strings.Builder
	b.Grow(len(text) + 4)

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '\\', '*', '`':
			b.WriteByte('\\')

		case '_':
			prev, nextR := before, after
			if i > 0 {
				prev, _ = utf8.DecodeLastRuneInString(text[:i])
			}
			if i+1 < len(text) {
				nextR, _ = utf8.DecodeRuneInString(text[i+1:])
			}
			if !isAlnum(prev) || !isAlnum(nextR) {
				b.WriteByte('\\')
			}

		case ']':
			rest := text[i+1:]
			if strings.HasPrefix(rest, "(") || strings.HasPrefix(rest, " (") || strings.HasPrefix(rest, "\t(") {
				b.WriteByte('\\')
			}

		case '<':
			if _, ok := autolink.MatchAngle(text, i); ok {
				b.WriteByte('\\')
			}

		default:
			if !inAnchor && s.autolinks != nil && isASCIILetter(c) && s.bareAt(text, i) {
				end := i + strings.Index(text[i:], "://")
				b.WriteString(text[i:end])
				b.WriteString(`\://`)
				i = end + len("://") - 1
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// bareAt reports whether the next parse would read a bare URL at pos.
func (s *Serializer) bareAt(text string, pos int) bool {
	_, ok := s.autolinks.MatchBare(text, pos)
	return ok
}

// escapeLineStart escapes text at the start of a line that would start a
// block or a reference definition.
func escapeLineStart(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '#', '>', '+', '-', '~':
		return `\` + s
	}
	if loc := orderedStart.FindStringIndex(s); loc != nil {
		delim := strings.IndexAny(s, ".)")
		return s[:delim] + `\` + s[delim:]
	}
	if definitionStart.MatchString(s) {
		return `\` + s
	}
	return s
}

func firstRune(n *document.Node) rune {
	if n == nil || n.Kind != document.Text || n.Text == "" {
		return ' '
	}
	r, _ := utf8.DecodeRuneInString(n.Text)
	return r
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
