package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paragraph(children ...*Node) *Node {
	return NewNode(Paragraph, children...)
}

func TestHTML(t *testing.T) {
	t.Parallel()

	code := NewNode(Code)
	code.Text = "<http://example.com/>"

	heading := NewNode(Heading, NewText("Title"))
	heading.Level = 2

	block := NewNode(CodeBlock)
	block.Text = "fmt.Println(1 < 2)"
	block.Info = "go linenos"

	image := NewNode(Image, NewText("alt"))
	image.Href = "/img.png"
	image.Title = "Pic"

	tight := NewNode(List, NewNode(ListItem, paragraph(NewText("a"))), NewNode(ListItem, paragraph(NewText("b"))))
	tight.Tight = true

	loose := NewNode(List, NewNode(ListItem, paragraph(NewText("a"))))
	loose.Ordered = true
	loose.Start = 3

	tests := []struct {
		name string
		root *Node
		want string
	}{
		{
			name: "Anchor",
			root: NewDocument(paragraph(NewText("Link: "), NewAnchor("http://example.com/", "", NewText("http://example.com/")), NewText("."))),
			want: `<p>Link: <a href="http://example.com/">http://example.com/</a>.</p>`,
		},
		{
			name: "AnchorTitleAndAmpersand",
			root: NewDocument(paragraph(NewAnchor("/u?a=1&b=2", "T", NewText("x")))),
			want: `<p><a href="/u?a=1&amp;b=2" title="T">x</a></p>`,
		},
		{
			name: "EmptyHref",
			root: NewDocument(paragraph(NewAnchor("", "", NewText("Empty")))),
			want: `<p><a href="">Empty</a></p>`,
		},
		{
			name: "InlineCodeEscaped",
			root: NewDocument(paragraph(code)),
			want: `<p><code>&lt;http://example.com/&gt;</code></p>`,
		},
		{
			name: "Break",
			root: NewDocument(paragraph(NewText("a"), NewNode(Break), NewText("b"))),
			want: `<p>a<br>b</p>`,
		},
		{
			name: "Formatting",
			root: NewDocument(paragraph(NewNode(Strong, NewText("s")), NewNode(Emphasis, NewText("e")))),
			want: `<p><strong>s</strong><em>e</em></p>`,
		},
		{
			name: "Heading",
			root: NewDocument(heading),
			want: `<h2>Title</h2>`,
		},
		{
			name: "CodeBlock",
			root: NewDocument(block),
			want: `<pre><code class="language-go">fmt.Println(1 &lt; 2)</code></pre>`,
		},
		{
			name: "Image",
			root: NewDocument(paragraph(image)),
			want: `<p><img src="/img.png" alt="alt" title="Pic"></p>`,
		},
		{
			name: "TightList",
			root: NewDocument(tight),
			want: `<ul><li>a</li><li>b</li></ul>`,
		},
		{
			name: "LooseOrderedList",
			root: NewDocument(loose),
			want: `<ol start="3"><li><p>a</p></li></ol>`,
		},
		{
			name: "Blockquote",
			root: NewDocument(NewNode(Blockquote, paragraph(NewText("q"))), NewNode(ThematicBreak)),
			want: `<blockquote><p>q</p></blockquote><hr>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, HTML(tt.root))
		})
	}
}

func TestParseHTML(t *testing.T) {
	t.Parallel()

	t.Run("ParagraphWithAnchor", func(t *testing.T) {
		t.Parallel()
		doc, err := ParseHTML(strings.NewReader(`<p>Foo <a href="/url/" title="Title">bar</a>.</p>`))
		require.NoError(t, err)

		require.Len(t, doc.Children, 1)
		p := doc.Children[0]
		assert.Equal(t, Paragraph, p.Kind)
		require.Len(t, p.Children, 3)
		assert.Equal(t, "Foo ", p.Children[0].Text)
		assert.Equal(t, Anchor, p.Children[1].Kind)
		assert.Equal(t, "/url/", p.Children[1].Href)
		assert.Equal(t, "Title", p.Children[1].Title)
		assert.Equal(t, "bar", PlainText(p.Children[1]))
		assert.Equal(t, ".", p.Children[2].Text)
	})

	t.Run("RoundTripsRenderedHTML", func(t *testing.T) {
		t.Parallel()
		in := `<p>This is <a href="foo">multiline<br>reference</a></p>` +
			`<ul><li><a href="http://example.com/">http://example.com/</a></li></ul>` +
			`<pre><code class="language-go">x := 1</code></pre>`
		doc, err := ParseHTML(strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, in, HTML(doc))
	})

	t.Run("CollapsesWhitespace", func(t *testing.T) {
		t.Parallel()
		doc, err := ParseHTML(strings.NewReader("<p>\n  a   <strong> b </strong>\n c  <br>  d \n</p>"))
		require.NoError(t, err)
		assert.Equal(t, `<p>a <strong>b </strong>c<br>d</p>`, HTML(doc))
	})

	t.Run("NestedAnchorUnwrapped", func(t *testing.T) {
		t.Parallel()
		doc, err := ParseHTML(strings.NewReader(`<p><a href="/a">x <a href="/b">y</a></a></p>`))
		require.NoError(t, err)
		for _, a := range Anchors(doc) {
			for _, c := range a.Children {
				assert.NotEqual(t, Anchor, c.Kind)
			}
		}
	})

	t.Run("LooseTextWrapped", func(t *testing.T) {
		t.Parallel()
		doc, err := ParseHTML(strings.NewReader(`<div>hello <em>world</em><p>next</p></div>`))
		require.NoError(t, err)
		assert.Equal(t, `<p>hello <em>world</em></p><p>next</p>`, HTML(doc))
	})

	t.Run("LooseList", func(t *testing.T) {
		t.Parallel()
		doc, err := ParseHTML(strings.NewReader(`<ol start="2"><li><p>a</p></li><li>b</li></ol>`))
		require.NoError(t, err)
		require.Len(t, doc.Children, 1)
		list := doc.Children[0]
		assert.True(t, list.Ordered)
		assert.False(t, list.Tight)
		assert.Equal(t, 2, list.Start)
	})

	t.Run("UnknownInlineUnwrapped", func(t *testing.T) {
		t.Parallel()
		doc, err := ParseHTML(strings.NewReader(`<p><span class="x">a</span><script>bad()</script></p>`))
		require.NoError(t, err)
		assert.Equal(t, `<p>a</p>`, HTML(doc))
	})

	t.Run("TableBecomesRaw", func(t *testing.T) {
		t.Parallel()
		doc, err := ParseHTML(strings.NewReader(`<table><tr><td>cell</td></tr></table>`))
		require.NoError(t, err)
		require.Len(t, doc.Children, 1)
		raw := doc.Children[0]
		assert.Equal(t, Raw, raw.Kind)
		assert.Contains(t, raw.Text, "<table>")
		assert.Contains(t, raw.Markdown, "cell")
	})
}

func TestPlainTextAndWalk(t *testing.T) {
	t.Parallel()

	doc := NewDocument(paragraph(
		NewText("a"),
		NewNode(Break),
		NewNode(Strong, NewText("b")),
		NewAnchor("/x", "", NewText("c")),
	))

	assert.Equal(t, "a bc", PlainText(doc))
	assert.Len(t, Anchors(doc), 1)

	var kinds []string
	Walk(doc, func(n *Node, depth int) bool {
		kinds = append(kinds, n.Kind.String())
		return n.Kind != Strong
	})
	assert.Equal(t, []string{"document", "paragraph", "text", "break", "strong", "anchor", "text"}, kinds)
}

func TestMergeText(t *testing.T) {
	t.Parallel()

	p := paragraph(NewText("a"), NewText("b"), NewNode(Break), NewText("c"), NewText("d"))
	p.MergeText()
	require.Len(t, p.Children, 3)
	assert.Equal(t, "ab", p.Children[0].Text)
	assert.Equal(t, "cd", p.Children[2].Text)
}
