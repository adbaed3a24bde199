// Package document defines the tree shared by the Markdown parser, the HTML
// renderer, the HTML parser and the Markdown serializer.
package document

import "strings"

// Kind identifies the type of a Node.
type Kind int

// Block kinds.
const (
	Document Kind = iota
	Paragraph
	Heading
	Blockquote
	List
	ListItem
	CodeBlock
	ThematicBreak
	// Raw is a block the tree cannot represent. It keeps the original HTML
	// and a Markdown rendering of it.
	Raw
)

// Inline kinds.
const (
	Text Kind = iota + 100
	Code
	Strong
	Emphasis
	Break
	Anchor
	Image
)

var kindNames = map[Kind]string{
	Document:      "document",
	Paragraph:     "paragraph",
	Heading:       "heading",
	Blockquote:    "blockquote",
	List:          "list",
	ListItem:      "list-item",
	CodeBlock:     "code-block",
	ThematicBreak: "thematic-break",
	Raw:           "raw",
	Text:          "text",
	Code:          "code",
	Strong:        "strong",
	Emphasis:      "emphasis",
	Break:         "break",
	Anchor:        "anchor",
	Image:         "image",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsInline reports whether nodes of this kind appear inside blocks.
func (k Kind) IsInline() bool {
	return k >= Text
}

// Node is one element of a document tree.
// Only the fields relevant to Kind are set.
type Node struct {
	Kind     Kind
	Children []*Node

	// Text is the literal content of Text and Code nodes and of code blocks.
	// For Raw it holds the original HTML.
	Text string

	// Href and Title are set on Anchor and Image nodes.
	Href  string
	Title string

	// Level is the heading level, 1 to 6.
	Level int

	// Ordered, Start and Tight describe a List.
	Ordered bool
	Start   int
	Tight   bool

	// Info is the info string of a fenced code block.
	Info string

	// Markdown is the Markdown rendering of a Raw block.
	Markdown string

	// Syntax records how an anchor was written in the source, for example
	// "inline" or "reference". It is informational only.
	Syntax string

	// Line is the zero-based source line the node starts on, or -1.
	Line int
}

// NewDocument returns an empty document root.
func NewDocument(children ...*Node) *Node {
	return &Node{Kind: Document, Children: children, Line: -1}
}

// NewText returns a text node.
func NewText(s string) *Node {
	return &Node{Kind: Text, Text: s, Line: -1}
}

// NewNode returns a node of the given kind with children.
func NewNode(kind Kind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children, Line: -1}
}

// NewAnchor returns an anchor node.
func NewAnchor(href, title string, children ...*Node) *Node {
	return &Node{Kind: Anchor, Href: href, Title: title, Children: children, Line: -1}
}

// Append adds children to n and returns n.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// WalkFunc is called for every node. Returning false skips the children.
type WalkFunc func(n *Node, depth int) bool

// Walk visits n and its descendants depth first.
func Walk(n *Node, fn WalkFunc) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn WalkFunc) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// Anchors returns every Anchor and Image node in document order.
func Anchors(n *Node) []*Node {
	var out []*Node
	Walk(n, func(c *Node, _ int) bool {
		if c.Kind == Anchor || c.Kind == Image {
			out = append(out, c)
		}
		return true
	})
	return out
}

// PlainText returns the text content of n with all markup removed.
// Breaks become spaces.
func PlainText(n *Node) string {
	var b strings.Builder
	writePlain(&b, n)
	return b.String()
}

func writePlain(b *strings.Builder, n *Node) {
	switch n.Kind {
	case Text, Code:
		b.WriteString(n.Text)
		return
	case Break:
		b.WriteByte(' ')
		return
	}
	for _, c := range n.Children {
		writePlain(b, c)
	}
}

// MergeText joins adjacent Text children in place.
func (n *Node) MergeText() {
	if len(n.Children) < 2 {
		return
	}
	out := n.Children[:0]
	for i := 0; i < len(n.Children); {
		c := n.Children[i]
		j := i + 1
		for c.Kind == Text && j < len(n.Children) && n.Children[j].Kind == Text {
			j++
		}
		if j-i > 1 {
			var sb strings.Builder
			for _, t := range n.Children[i:j] {
				sb.WriteString(t.Text)
			}
			c.Text = sb.String()
		}
		out = append(out, c)
		i = j
	}
	n.Children = out
}
