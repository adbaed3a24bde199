// Package links finds, resolves and serializes Markdown links.
//
// The Matcher pairs brackets in an inline text run with an explicit stack,
// classifies every matched pair as an inline link, a reference link or plain
// text, and resolves it against a reference table. Serialize emits the single
// canonical inline form for a resolved anchor.
package links

import (
	"github.com/leonardomso/gfmlink/internal/refs"
)

// Kind classifies a link candidate by the syntax it was written in.
type Kind int

const (
	// InlineLink is [text](target "title").
	InlineLink Kind = iota
	// ReferenceLink is [text][label].
	ReferenceLink
	// ReferenceLinkEmpty is [text][], using the text as label.
	ReferenceLinkEmpty
	// ReferenceLinkImplicit is [text] alone, using the text as label.
	ReferenceLinkImplicit
	// Autolink is a bare URL in text.
	Autolink
	// AngleAutolink is <scheme://...>.
	AngleAutolink
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case InlineLink:
		return "inline"
	case ReferenceLink:
		return "reference"
	case ReferenceLinkEmpty:
		return "reference-empty"
	case ReferenceLinkImplicit:
		return "reference-implicit"
	case Autolink:
		return "autolink"
	case AngleAutolink:
		return "angle-autolink"
	default:
		return "unknown"
	}
}

// IsReference reports whether the kind resolves through the reference table.
func (k Kind) IsReference() bool {
	return k == ReferenceLink || k == ReferenceLinkEmpty || k == ReferenceLinkImplicit
}

// Span is a byte range of an inline text run.
type Span struct {
	Start int
	End   int
	// Link marks spans that already are links, such as angle autolinks.
	Link bool
}

// Candidate is a possible link found in an inline text run.
type Candidate struct {
	Kind Kind
	// Image is true for ![...] candidates.
	Image bool

	// Start and End delimit the whole candidate, from '[' (or '!') to the
	// end of the consumed target or label.
	Start int
	End   int

	// TextStart and TextEnd delimit the bracket text.
	TextStart int
	TextEnd   int
	Text      string

	// Target and Title are set for inline links and autolinks.
	Target string
	Title  string

	// Label is the reference label for reference kinds.
	Label string
}

// Anchor is a resolved link destination.
type Anchor struct {
	Href string
	// Title is empty when the link has no title.
	Title string
}

// Outcome is the result tag of a resolution.
type Outcome int

const (
	// Literal means the candidate is plain text.
	Literal Outcome = iota
	// Resolved means the candidate is a link.
	Resolved
)

// Resolution is the tagged result of resolving a candidate.
type Resolution struct {
	Outcome   Outcome
	Candidate Candidate
	// Anchor is valid only when Outcome is Resolved.
	Anchor Anchor
}

// IsResolved reports whether the candidate became a link.
func (r Resolution) IsResolved() bool {
	return r.Outcome == Resolved
}

// References looks up reference definitions by label.
type References interface {
	Lookup(label string) (refs.Definition, bool)
}

// Resolve resolves a candidate against the reference table.
// Inline links and autolinks always resolve. Reference kinds resolve when
// their label is defined and no longer than 999 bytes, and degrade to
// Literal otherwise.
func Resolve(c Candidate, table References) Resolution {
	switch c.Kind {
	case InlineLink, Autolink, AngleAutolink:
		return Resolution{
			Outcome:   Resolved,
			Candidate: c,
			Anchor:    Anchor{Href: c.Target, Title: c.Title},
		}

	case ReferenceLink, ReferenceLinkEmpty, ReferenceLinkImplicit:
		label := c.Label
		if label == "" {
			label = c.Text
		}
		if table == nil || len(label) > maxLabelLength {
			break
		}
		if def, ok := table.Lookup(label); ok {
			return Resolution{
				Outcome:   Resolved,
				Candidate: c,
				Anchor:    Anchor{Href: def.Target, Title: def.Title},
			}
		}
	}

	return Resolution{Outcome: Literal, Candidate: c}
}
