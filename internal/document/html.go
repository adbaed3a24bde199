package document

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/util"
)

// HTML renders the tree as compact HTML.
func HTML(root *Node) string {
	var b strings.Builder
	_ = RenderHTML(&b, root)
	return b.String()
}

// RenderHTML writes the tree to w as compact HTML. Blocks are not separated
// by newlines; text and attribute values are escaped.
func RenderHTML(w io.Writer, root *Node) error {
	bw := bufio.NewWriter(w)
	r := &htmlRenderer{w: bw}
	r.render(root, false)
	if r.err != nil {
		return fmt.Errorf("rendering html: %w", r.err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}
	return nil
}

type htmlRenderer struct {
	w   *bufio.Writer
	err error
}

func (r *htmlRenderer) raw(s string) {
	if r.err != nil {
		return
	}
	_, r.err = r.w.WriteString(s)
}

func (r *htmlRenderer) escaped(s string) {
	if r.err != nil {
		return
	}
	_, r.err = r.w.Write(util.EscapeHTML([]byte(s)))
}

func (r *htmlRenderer) children(n *Node, tight bool) {
	for _, c := range n.Children {
		r.render(c, tight)
	}
}

// render writes n. tight is true for the direct children of a tight list
// item, whose paragraphs are written without <p>.
func (r *htmlRenderer) render(n *Node, tight bool) {
	switch n.Kind {
	case Document:
		r.children(n, false)

	case Paragraph:
		if tight {
			r.children(n, false)
			return
		}
		r.raw("<p>")
		r.children(n, false)
		r.raw("</p>")

	case Heading:
		level := strconv.Itoa(min(max(n.Level, 1), 6))
		r.raw("<h" + level + ">")
		r.children(n, false)
		r.raw("</h" + level + ">")

	case Blockquote:
		r.raw("<blockquote>")
		r.children(n, false)
		r.raw("</blockquote>")

	case List:
		if !n.Ordered {
			r.raw("<ul>")
			r.children(n, n.Tight)
			r.raw("</ul>")
			return
		}
		if n.Start != 1 {
			r.raw(`<ol start="` + strconv.Itoa(n.Start) + `">`)
		} else {
			r.raw("<ol>")
		}
		r.children(n, n.Tight)
		r.raw("</ol>")

	case ListItem:
		r.raw("<li>")
		r.children(n, tight)
		r.raw("</li>")

	case CodeBlock:
		r.raw("<pre><code")
		if lang := firstWord(n.Info); lang != "" {
			r.raw(` class="language-`)
			r.escaped(lang)
			r.raw(`"`)
		}
		r.raw(">")
		r.escaped(n.Text)
		r.raw("</code></pre>")

	case ThematicBreak:
		r.raw("<hr>")

	case Raw:
		r.raw(n.Text)

	case Text:
		r.escaped(n.Text)

	case Code:
		r.raw("<code>")
		r.escaped(n.Text)
		r.raw("</code>")

	case Strong:
		r.raw("<strong>")
		r.children(n, false)
		r.raw("</strong>")

	case Emphasis:
		r.raw("<em>")
		r.children(n, false)
		r.raw("</em>")

	case Break:
		r.raw("<br>")

	case Anchor:
		r.raw(`<a href="`)
		r.escaped(n.Href)
		r.raw(`"`)
		r.title(n.Title)
		r.raw(">")
		r.children(n, false)
		r.raw("</a>")

	case Image:
		r.raw(`<img src="`)
		r.escaped(n.Href)
		r.raw(`" alt="`)
		r.escaped(PlainText(n))
		r.raw(`"`)
		r.title(n.Title)
		r.raw(">")
	}
}

func (r *htmlRenderer) title(title string) {
	if title == "" {
		return
	}
	r.raw(` title="`)
	r.escaped(title)
	r.raw(`"`)
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
