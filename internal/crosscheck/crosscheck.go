// Package crosscheck compares the links the processor resolves with the
// links goldmark finds in the same source. Disagreement usually points at
// syntax the two parsers read differently, such as raw HTML or bare URLs
// under a custom scheme list.
package crosscheck

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/leonardomso/gfmlink/internal/processor"
)

// Link kinds reported by Extract.
const (
	KindLink     = "link"
	KindImage    = "image"
	KindAutolink = "autolink"
)

// Link is a link found by goldmark.
type Link struct {
	Href string
	Text string
	Kind string
	// Line is one-based.
	Line int
}

// Side names the parser that found a link.
type Side string

const (
	// OnlyProcessor marks links goldmark did not find.
	OnlyProcessor Side = "gfmlink"
	// OnlyGoldmark marks links the processor did not find.
	OnlyGoldmark Side = "goldmark"
)

// Discrepancy is a link only one of the parsers found.
type Discrepancy struct {
	Href  string
	Line  int
	Found Side
}

// Report is the outcome of comparing one document.
type Report struct {
	Agreed        int
	Discrepancies []Discrepancy
}

// OK reports whether both parsers found the same links.
func (r Report) OK() bool {
	return len(r.Discrepancies) == 0
}

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.Linkify, // Auto-link bare URLs
	),
)

// Extract returns the links goldmark finds in content, in document order.
// Links inside code are not reported. The walk stops with ctx's error once
// ctx is done.
func Extract(ctx context.Context, content []byte) ([]Link, error) {
	doc := markdown.Parser().Parse(text.NewReader(content))

	e := &extractor{
		ctx:    ctx,
		source: content,
		lines:  lineIndex(content),
		links:  make([]Link, 0, 16),
	}
	if err := ast.Walk(doc, e.walk); err != nil {
		return nil, fmt.Errorf("walking goldmark tree: %w", err)
	}
	return e.links, nil
}

// Check compares the processor's links in source with goldmark's.
func Check(ctx context.Context, proc *processor.Processor, source string) (Report, error) {
	theirs, err := Extract(ctx, []byte(source))
	if err != nil {
		return Report{}, err
	}
	return Compare(proc.Links(source), theirs), nil
}

// Compare matches links by destination. Each destination is compared as a
// multiset, so a link written twice must be found twice.
func Compare(ours []processor.LinkRecord, theirs []Link) Report {
	pending := make(map[string][]int, len(theirs))
	for _, l := range theirs {
		pending[l.Href] = append(pending[l.Href], l.Line)
	}

	var report Report
	for _, l := range ours {
		if lines := pending[l.Href]; len(lines) > 0 {
			pending[l.Href] = lines[1:]
			report.Agreed++
			continue
		}
		report.Discrepancies = append(report.Discrepancies, Discrepancy{Href: l.Href, Line: l.Line, Found: OnlyProcessor})
	}

	for href, lines := range pending {
		for _, line := range lines {
			report.Discrepancies = append(report.Discrepancies, Discrepancy{Href: href, Line: line, Found: OnlyGoldmark})
		}
	}

	sort.Slice(report.Discrepancies, func(i, j int) bool {
		a, b := report.Discrepancies[i], report.Discrepancies[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Href < b.Href
	})
	return report
}

// extractor walks the AST and collects links.
type extractor struct {
	ctx    context.Context
	source []byte
	lines  []int // byte offset for start of each line
	links  []Link
	// block is the line of the innermost block being walked.
	block int
}

func (e *extractor) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	switch node := n.(type) {
	case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.CodeSpan, *ast.HTMLBlock, *ast.RawHTML:
		return ast.WalkSkipChildren, nil

	case *ast.Link:
		e.add(string(node.Destination), node, KindLink)

	case *ast.Image:
		e.add(string(node.Destination), node, KindImage)

	case *ast.AutoLink:
		label := string(node.Label(e.source))
		e.links = append(e.links, Link{Href: string(node.URL(e.source)), Text: label, Kind: KindAutolink, Line: e.block})
		return ast.WalkSkipChildren, nil

	default:
		if n.Type() == ast.TypeBlock {
			if err := e.ctx.Err(); err != nil {
				return ast.WalkStop, err
			}
			if lines := n.Lines(); lines != nil && lines.Len() > 0 {
				e.block = e.lineOf(lines.At(0).Start)
			}
		}
	}

	return ast.WalkContinue, nil
}

func (e *extractor) add(href string, n ast.Node, kind string) {
	line := e.block
	if seg, ok := firstText(n); ok {
		line = e.lineOf(seg.Start)
	}
	e.links = append(e.links, Link{Href: href, Text: e.nodeText(n), Kind: kind, Line: line})
}

// firstText returns the segment of the first text node below n.
func firstText(n ast.Node) (text.Segment, bool) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			return t.Segment, true
		}
		if seg, ok := firstText(child); ok {
			return seg, true
		}
	}
	return text.Segment{}, false
}

// nodeText extracts text content from a node's children.
func (e *extractor) nodeText(n ast.Node) string {
	var buf bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			buf.Write(t.Segment.Value(e.source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		} else if child.HasChildren() {
			buf.WriteString(e.nodeText(child))
		}
	}
	return buf.String()
}

// lineOf converts a byte offset to a one-based line number.
func (e *extractor) lineOf(offset int) int {
	return sort.Search(len(e.lines), func(i int) bool { return e.lines[i] > offset })
}

// lineIndex returns the byte offset of the start of every line.
func lineIndex(content []byte) []int {
	lines := []int{0}
	for i, c := range content {
		if c == '\n' {
			lines = append(lines, i+1)
		}
	}
	return lines
}
