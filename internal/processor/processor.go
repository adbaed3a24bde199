// Package processor converts between Markdown source, the document tree and
// HTML. It is the entry point the commands and the batch runner use: every
// call builds its own reference table, so a Processor is safe for
// concurrent use.
package processor

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/leonardomso/gfmlink/internal/autolink"
	"github.com/leonardomso/gfmlink/internal/block"
	"github.com/leonardomso/gfmlink/internal/document"
	"github.com/leonardomso/gfmlink/internal/inline"
	"github.com/leonardomso/gfmlink/internal/logging"
	"github.com/leonardomso/gfmlink/internal/refs"
	"github.com/leonardomso/gfmlink/internal/serializer"
)

// Processor converts documents with a fixed autolink configuration.
type Processor struct {
	autolink bool
	schemes  []string
	logger   *slog.Logger

	matcher    *autolink.Matcher
	serializer *serializer.Serializer
}

// Option configures a Processor.
type Option func(*Processor)

// WithAutolink enables or disables bare URL autolinks. Angle autolinks are
// always recognized.
func WithAutolink(enabled bool) Option {
	return func(p *Processor) {
		p.autolink = enabled
	}
}

// WithSchemes sets the schemes bare autolinks are recognized for.
func WithSchemes(schemes ...string) Option {
	return func(p *Processor) {
		p.schemes = schemes
	}
}

// WithLogger sets the logger for debug diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Processor. Bare autolinks are on by default with the
// default schemes.
func New(opts ...Option) *Processor {
	p := &Processor{
		autolink: true,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.autolink {
		p.matcher = autolink.New(p.schemes...)
	}
	p.serializer = serializer.New(p.matcher)
	return p
}

// LinkRecord describes one anchor or image of a parsed document.
type LinkRecord struct {
	Href  string `json:"href" yaml:"href" toml:"href"`
	Title string `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Text  string `json:"text" yaml:"text" toml:"text"`
	// Kind is the syntax the link was written in, such as "inline" or
	// "reference". Links read from HTML have no kind.
	Kind  string `json:"kind" yaml:"kind" toml:"kind"`
	Image bool   `json:"image,omitempty" yaml:"image,omitempty" toml:"image,omitempty"`
	// Line is one-based; zero when unknown.
	Line int `json:"line" yaml:"line" toml:"line"`
}

// Analysis is everything one parse of a Markdown document yields.
type Analysis struct {
	Root        *document.Node
	Definitions []refs.Definition
	Links       []LinkRecord
	// Missing lists explicit reference links with undefined labels.
	Missing    []inline.Missing
	Normalized string
}

// Changed reports whether normalizing changes source.
func (a *Analysis) Changed(source string) bool {
	return strings.TrimRight(source, "\r\n") != a.Normalized
}

// Analyze parses markdown once and collects its tree, definitions, links,
// undefined references and normalized form.
func (p *Processor) Analyze(markdown string) *Analysis {
	table := refs.BuildString(markdown)
	inl := inline.New(table, p.matcher)
	root := block.Parse(markdown, table, inl.Parse)

	a := &Analysis{
		Root:        root,
		Definitions: table.Definitions(),
		Links:       Links(root),
		Missing:     inl.Missing(),
		Normalized:  p.ToData(root),
	}
	p.logger.Debug("Analyzed document",
		slog.Int("definitions", len(a.Definitions)),
		slog.Int("links", len(a.Links)),
		slog.Int("missing", len(a.Missing)))
	return a
}

// ToView parses Markdown into a document tree.
func (p *Processor) ToView(markdown string) *document.Node {
	table := refs.BuildString(markdown)
	root := block.Parse(markdown, table, inline.New(table, p.matcher).Parse)
	p.logger.Debug("Parsed markdown", logging.Count(len(root.Children)), slog.Int("definitions", table.Len()))
	return root
}

// ToData serializes a document tree as normalized Markdown.
func (p *Processor) ToData(root *document.Node) string {
	return p.serializer.Markdown(root)
}

// ToHTML converts Markdown to HTML.
func (p *Processor) ToHTML(markdown string) string {
	return document.HTML(p.ToView(markdown))
}

// RenderHTML converts Markdown to HTML and writes it to w.
func (p *Processor) RenderHTML(w io.Writer, markdown string) error {
	return document.RenderHTML(w, p.ToView(markdown))
}

// FromHTML reads HTML and returns it as normalized Markdown.
func (p *Processor) FromHTML(r io.Reader) (string, error) {
	root, err := document.ParseHTML(r)
	if err != nil {
		return "", fmt.Errorf("reading html: %w", err)
	}
	p.logger.Debug("Parsed html", logging.Count(len(document.Anchors(root))))
	return p.ToData(root), nil
}

// Normalize rewrites Markdown into canonical form: reference definitions
// are dropped and every link is written inline. Normalizing the result
// returns it unchanged.
func (p *Processor) Normalize(markdown string) string {
	return p.ToData(p.ToView(markdown))
}

// References returns the reference definitions of markdown in source order.
func (p *Processor) References(markdown string) []refs.Definition {
	return refs.BuildString(markdown).Definitions()
}

// Links returns the links of markdown in document order.
func (p *Processor) Links(markdown string) []LinkRecord {
	return Links(p.ToView(markdown))
}

// Links returns the anchors and images of a tree in document order.
func Links(root *document.Node) []LinkRecord {
	anchors := document.Anchors(root)
	out := make([]LinkRecord, 0, len(anchors))
	for _, n := range anchors {
		rec := LinkRecord{
			Href:  n.Href,
			Title: n.Title,
			Text:  document.PlainText(n),
			Kind:  n.Syntax,
			Image: n.Kind == document.Image,
		}
		if n.Syntax != "" {
			rec.Line = n.Line + 1
		}
		out = append(out, rec)
	}
	return out
}
