// Package autolink detects absolute URLs written without link syntax.
//
// Two forms are recognized: the angle form <scheme://...> and the bare form
// where a URL with a known scheme appears directly in text. Callers are
// responsible for not calling the matcher inside code spans, code blocks or
// the text and target of a resolved link.
package autolink

import (
	"strings"

	"github.com/yuin/goldmark/util"
)

// DefaultSchemes are the schemes recognized in bare form.
var DefaultSchemes = []string{"http", "https", "ftp"}

// Match is a detected autolink.
type Match struct {
	// Start and End delimit the matched source, including angle brackets.
	Start int
	End   int
	// URL is the link target, byte-identical to the source.
	URL string
	// Angle is true for the <scheme://...> form.
	Angle bool
}

// Matcher detects autolinks for a configured set of bare schemes.
type Matcher struct {
	schemes []string
}

// New creates a Matcher. With no schemes the DefaultSchemes are used.
func New(schemes ...string) *Matcher {
	if len(schemes) == 0 {
		schemes = DefaultSchemes
	}
	normalized := make([]string, 0, len(schemes))
	for _, s := range schemes {
		s = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(s, "://")))
		if s != "" {
			normalized = append(normalized, s)
		}
	}
	return &Matcher{schemes: normalized}
}

// Schemes returns the bare schemes the matcher recognizes.
func (m *Matcher) Schemes() []string {
	return append([]string(nil), m.schemes...)
}

// Match tries the angle form and then the bare form at pos.
func (m *Matcher) Match(text string, pos int) (Match, bool) {
	if pos < len(text) && text[pos] == '<' {
		return MatchAngle(text, pos)
	}
	return m.MatchBare(text, pos)
}

// MatchAngle matches <scheme://...> at pos. Any syntactically valid scheme
// is accepted. The URL may not contain whitespace or angle brackets.
func MatchAngle(text string, pos int) (Match, bool) {
	if pos >= len(text) || text[pos] != '<' {
		return Match{}, false
	}

	start := pos + 1
	n := schemeLength(text, start)
	if n == 0 || !strings.HasPrefix(text[start+n:], "://") {
		return Match{}, false
	}

	body := start + n + len("://")
	for i := body; i < len(text); i++ {
		switch c := text[i]; {
		case c == '>':
			if i == body {
				return Match{}, false
			}
			return Match{Start: pos, End: i + 1, URL: text[start:i], Angle: true}, true
		case c == '<' || util.IsSpace(c) || c < 0x20:
			return Match{}, false
		}
	}
	return Match{}, false
}

// MatchBare matches a bare URL starting at pos. The URL must start at a word
// boundary: the start of text, after whitespace, or after one of *_~(.
func (m *Matcher) MatchBare(text string, pos int) (Match, bool) {
	if pos >= len(text) || !isASCIILetter(text[pos]) {
		return Match{}, false
	}
	if pos > 0 && !isBoundary(text[pos-1]) {
		return Match{}, false
	}

	scheme, ok := m.schemeAt(text, pos)
	if !ok {
		return Match{}, false
	}

	body := pos + len(scheme) + len("://")
	end := body
	for end < len(text) && !util.IsSpace(text[end]) && text[end] != '<' {
		end++
	}
	end = trimTrailing(text, body, end)
	if end <= body {
		return Match{}, false
	}

	return Match{Start: pos, End: end, URL: text[pos:end]}, true
}

// HasSchemeAt reports whether a configured scheme followed by :// starts at pos.
func (m *Matcher) HasSchemeAt(text string, pos int) bool {
	_, ok := m.schemeAt(text, pos)
	return ok
}

func (m *Matcher) schemeAt(text string, pos int) (string, bool) {
	for _, s := range m.schemes {
		end := pos + len(s)
		if end+3 > len(text) {
			continue
		}
		if strings.EqualFold(text[pos:end], s) && text[end:end+3] == "://" {
			return text[pos:end], true
		}
	}
	return "", false
}

// trimTrailing drops trailing punctuation that is not part of the URL and
// closing parentheses or brackets without an opener inside the URL.
func trimTrailing(text string, body, end int) int {
	url := text[body:end]
	parens := strings.Count(url, "(") - strings.Count(url, ")")
	brackets := strings.Count(url, "[") - strings.Count(url, "]")

	for end > body {
		switch text[end-1] {
		case '?', '!', '.', ',', ':', ';', '*', '_', '~', '"', '\'':
		case ')':
			if parens >= 0 {
				return end
			}
			parens++
		case ']':
			if brackets >= 0 {
				return end
			}
			brackets++
		default:
			return end
		}
		end--
	}
	return end
}

// schemeLength returns the length of a URI scheme starting at pos:
// a letter followed by up to 31 letters, digits, '+', '.' or '-'.
func schemeLength(text string, pos int) int {
	if pos >= len(text) || !isASCIILetter(text[pos]) {
		return 0
	}
	i := pos + 1
	for i < len(text) && i-pos < 32 {
		c := text[i]
		if !isASCIILetter(c) && !isDigit(c) && c != '+' && c != '.' && c != '-' {
			break
		}
		i++
	}
	if i-pos < 2 {
		return 0
	}
	return i - pos
}

func isBoundary(c byte) bool {
	return util.IsSpace(c) || c == '*' || c == '_' || c == '~' || c == '('
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
