package document

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML reads editor HTML into a document tree.
//
// Whitespace is collapsed outside <pre>. Container elements such as <div>
// are descended into; block elements the tree cannot represent become Raw
// nodes; unknown inline elements are unwrapped. Nested anchors are unwrapped
// so the tree never holds an anchor inside an anchor.
func ParseHTML(r io.Reader) (*Node, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	body := findElement(root, atom.Body)
	if body == nil {
		body = root
	}

	b := &htmlBuilder{}
	doc := NewDocument(b.blocks(body)...)
	if b.err != nil {
		return nil, b.err
	}
	return doc, nil
}

type htmlBuilder struct {
	// lastSpace is true when the previous emitted text ended in whitespace
	// or nothing was emitted yet in the current block.
	lastSpace bool
	err       error
}

// containerElements are descended into as if their children were siblings.
var containerElements = map[atom.Atom]bool{
	atom.Body:       true,
	atom.Div:        true,
	atom.Section:    true,
	atom.Article:    true,
	atom.Main:       true,
	atom.Header:     true,
	atom.Footer:     true,
	atom.Nav:        true,
	atom.Aside:      true,
	atom.Figure:     true,
	atom.Figcaption: true,
	atom.Address:    true,
}

// rawElements are block elements kept as Raw nodes.
var rawElements = map[atom.Atom]bool{
	atom.Table:    true,
	atom.Dl:       true,
	atom.Details:  true,
	atom.Form:     true,
	atom.Fieldset: true,
	atom.Iframe:   true,
	atom.Video:    true,
	atom.Audio:    true,
	atom.Canvas:   true,
	atom.Svg:      true,
}

var skippedElements = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
	atom.Noscript: true,
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

func isBlockElement(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.P, atom.Blockquote, atom.Ul, atom.Ol, atom.Li, atom.Pre, atom.Hr:
		return true
	}
	_, heading := headingLevels[n.DataAtom]
	return heading || containerElements[n.DataAtom] || rawElements[n.DataAtom]
}

// blocks converts the children of parent into block nodes. Runs of inline
// content between blocks are wrapped in paragraphs.
func (b *htmlBuilder) blocks(parent *html.Node) []*Node {
	var pending []*html.Node
	var nodes []*Node

	flush := func() {
		if len(pending) == 0 {
			return
		}
		if p := b.paragraph(pending); p != nil {
			nodes = append(nodes, p)
		}
		pending = nil
	}

	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && skippedElements[c.DataAtom] {
			continue
		}
		if c.Type == html.CommentNode {
			continue
		}
		if !isBlockElement(c) {
			pending = append(pending, c)
			continue
		}
		flush()
		nodes = append(nodes, b.block(c)...)
	}
	flush()
	return nodes
}

func (b *htmlBuilder) block(n *html.Node) []*Node {
	if level, ok := headingLevels[n.DataAtom]; ok {
		h := NewNode(Heading, b.inlines(n)...)
		h.Level = level
		return []*Node{h}
	}
	if containerElements[n.DataAtom] {
		return b.blocks(n)
	}
	if rawElements[n.DataAtom] {
		return []*Node{b.raw(n)}
	}

	switch n.DataAtom {
	case atom.P:
		if p := b.paragraph(childList(n)); p != nil {
			return []*Node{p}
		}
		return nil

	case atom.Blockquote:
		return []*Node{NewNode(Blockquote, b.blocks(n)...)}

	case atom.Ul, atom.Ol:
		return []*Node{b.list(n)}

	case atom.Li:
		// A stray <li> outside a list becomes a one-item list.
		return []*Node{NewNode(List, NewNode(ListItem, b.blocks(n)...))}

	case atom.Pre:
		return []*Node{codeBlock(n)}

	case atom.Hr:
		return []*Node{NewNode(ThematicBreak)}
	}
	return nil
}

func (b *htmlBuilder) list(n *html.Node) *Node {
	list := NewNode(List)
	list.Ordered = n.DataAtom == atom.Ol
	list.Start = 1
	list.Tight = true
	if list.Ordered {
		if v, err := strconv.Atoi(attr(n, "start")); err == nil {
			list.Start = v
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom != atom.Li {
			// Browsers tolerate nested lists directly in <ul>; keep their items.
			if c.DataAtom == atom.Ul || c.DataAtom == atom.Ol {
				list.Append(NewNode(ListItem, b.list(c)))
			}
			continue
		}
		if findChildElement(c, atom.P) != nil {
			list.Tight = false
		}
		list.Append(NewNode(ListItem, b.blocks(c)...))
	}
	return list
}

func (b *htmlBuilder) paragraph(nodes []*html.Node) *Node {
	children := b.inlineList(nodes)
	if len(children) == 0 {
		return nil
	}
	return NewNode(Paragraph, children...)
}

// raw keeps an unsupported block as HTML plus a Markdown rendering.
func (b *htmlBuilder) raw(n *html.Node) *Node {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		b.fail(fmt.Errorf("rendering <%s>: %w", n.Data, err))
		return NewNode(Raw)
	}

	md, err := htmltomarkdown.ConvertString(sb.String())
	if err != nil {
		b.fail(fmt.Errorf("converting <%s> to markdown: %w", n.Data, err))
	}

	node := NewNode(Raw)
	node.Text = sb.String()
	node.Markdown = strings.TrimSpace(md)
	return node
}

func (b *htmlBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func codeBlock(n *html.Node) *Node {
	node := NewNode(CodeBlock)
	if code := findChildElement(n, atom.Code); code != nil {
		for _, class := range strings.Fields(attr(code, "class")) {
			if lang, ok := strings.CutPrefix(class, "language-"); ok {
				node.Info = lang
				break
			}
		}
	}
	node.Text = strings.TrimSuffix(textContent(n), "\n")
	return node
}

func (b *htmlBuilder) inlines(n *html.Node) []*Node {
	return b.inlineList(childList(n))
}

// inlineList converts inline HTML into inline nodes and normalizes the
// whitespace at the block edges and around breaks.
func (b *htmlBuilder) inlineList(nodes []*html.Node) []*Node {
	b.lastSpace = true
	var out []*Node
	for _, n := range nodes {
		out = append(out, b.inline(n, false)...)
	}
	return finishInlines(out)
}

func (b *htmlBuilder) inline(n *html.Node, inAnchor bool) []*Node {
	switch n.Type {
	case html.TextNode:
		s := collapseSpace(n.Data)
		if b.lastSpace {
			s = strings.TrimLeft(s, " ")
		}
		if s == "" {
			return nil
		}
		b.lastSpace = strings.HasSuffix(s, " ")
		return []*Node{NewText(s)}

	case html.ElementNode:
	default:
		return nil
	}

	if skippedElements[n.DataAtom] {
		return nil
	}

	switch n.DataAtom {
	case atom.Br:
		b.lastSpace = true
		return []*Node{NewNode(Break)}

	case atom.Strong, atom.B:
		return wrap(Strong, b.inlineChildren(n, inAnchor))

	case atom.Em, atom.I:
		return wrap(Emphasis, b.inlineChildren(n, inAnchor))

	case atom.Code, atom.Kbd, atom.Samp, atom.Tt:
		code := NewNode(Code)
		code.Text = collapseSpace(textContent(n))
		b.lastSpace = false
		return []*Node{code}

	case atom.A:
		href, ok := attrOK(n, "href")
		if inAnchor || !ok {
			return b.inlineChildren(n, inAnchor)
		}
		a := NewAnchor(href, attr(n, "title"), b.inlineChildren(n, true)...)
		return []*Node{a}

	case atom.Img:
		img := NewNode(Image)
		img.Href = attr(n, "src")
		img.Title = attr(n, "title")
		if alt := attr(n, "alt"); alt != "" {
			img.Append(NewText(alt))
		}
		b.lastSpace = false
		return []*Node{img}
	}

	return b.inlineChildren(n, inAnchor)
}

func (b *htmlBuilder) inlineChildren(n *html.Node, inAnchor bool) []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, b.inline(c, inAnchor)...)
	}
	return out
}

func wrap(kind Kind, children []*Node) []*Node {
	if len(children) == 0 {
		return nil
	}
	return []*Node{NewNode(kind, children...)}
}

// finishInlines drops spaces before breaks and at the end, and trailing breaks.
func finishInlines(nodes []*Node) []*Node {
	for i, n := range nodes {
		if n.Kind == Break {
			trimTrailingSpace(nodes[:i])
		}
	}
	for {
		trimTrailingSpace(nodes)
		nodes = dropEmptyText(nodes)
		if len(nodes) == 0 || nodes[len(nodes)-1].Kind != Break {
			break
		}
		nodes = nodes[:len(nodes)-1]
	}
	parent := NewNode(Paragraph, nodes...)
	parent.MergeText()
	return parent.Children
}

// trimTrailingSpace removes trailing spaces from the last text in nodes,
// descending into the last formatting or anchor node.
func trimTrailingSpace(nodes []*Node) {
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		switch n.Kind {
		case Text:
			n.Text = strings.TrimRight(n.Text, " ")
			if n.Text != "" {
				return
			}
		case Strong, Emphasis, Anchor:
			trimTrailingSpace(n.Children)
			return
		default:
			return
		}
	}
}

func dropEmptyText(nodes []*Node) []*Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n.Kind == Text && n.Text == "" {
			continue
		}
		out = append(out, n)
	}
	return out
}

func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Br {
			b.WriteByte('\n')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func childList(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func findChildElement(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
	}
	return nil
}
