package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leonardomso/gfmlink/internal/autolink"
	"github.com/leonardomso/gfmlink/internal/document"
)

func text(s string) *document.Node { return document.NewText(s) }

func para(children ...*document.Node) *document.Node {
	return document.NewNode(document.Paragraph, children...)
}

func anchor(href, title string, children ...*document.Node) *document.Node {
	return document.NewAnchor(href, title, children...)
}

func brk() *document.Node { return document.NewNode(document.Break) }

func TestMarkdownBlocks(t *testing.T) {
	t.Parallel()

	heading := document.NewNode(document.Heading, text("Title"), brk(), text("more #"))
	heading.Level = 2

	code := document.NewNode(document.CodeBlock)
	code.Text = "a ``` b"
	code.Info = "go"

	emptyCode := document.NewNode(document.CodeBlock)

	tight := document.NewNode(document.List,
		document.NewNode(document.ListItem, para(anchor("http://example.com/", "", text("http://example.com/")))),
		document.NewNode(document.ListItem, para(text("two"), brk(), text("lines"))),
	)
	tight.Tight = true

	loose := document.NewNode(document.List,
		document.NewNode(document.ListItem, para(text("a")), para(text("b"))),
		document.NewNode(document.ListItem),
	)
	loose.Ordered = true
	loose.Start = 9

	nested := document.NewNode(document.List,
		document.NewNode(document.ListItem, para(text("outer")), func() *document.Node {
			inner := document.NewNode(document.List, document.NewNode(document.ListItem, para(text("inner"))))
			inner.Tight = true
			return inner
		}()),
	)
	nested.Tight = true

	raw := document.NewNode(document.Raw)
	raw.Text = "<table></table>"
	raw.Markdown = "\n| a |\n"

	tests := []struct {
		name string
		root *document.Node
		want string
	}{
		{"Paragraphs", document.NewDocument(para(text("one")), para(text("two"))), "one\n\ntwo"},
		{"Heading", document.NewDocument(heading), `## Title more \#`},
		{"CodeFenceGrows", document.NewDocument(code), "````go\na ``` b\n````"},
		{"EmptyCode", document.NewDocument(emptyCode), "```\n```"},
		{"ThematicBreak", document.NewDocument(document.NewNode(document.ThematicBreak)), "* * *"},
		{"TightList", document.NewDocument(tight), "*   [http://example.com/](http://example.com/)\n*   two\n    lines"},
		{"LooseOrderedList", document.NewDocument(loose), "9.  a\n\n    b\n\n10."},
		{"NestedList", document.NewDocument(nested), "*   outer\n    *   inner"},
		{
			"Blockquote",
			document.NewDocument(document.NewNode(document.Blockquote, para(text("Blockquoted: "), anchor("http://example.com/", "", text("http://example.com/"))), para(text("x")))),
			"> Blockquoted: [http://example.com/](http://example.com/)\n>\n> x",
		},
		{"Raw", document.NewDocument(raw, para(text("after"))), "| a |\n\nafter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Markdown(tt.root))
		})
	}
}

func TestMarkdownInline(t *testing.T) {
	t.Parallel()

	code := func(s string) *document.Node {
		n := document.NewNode(document.Code)
		n.Text = s
		return n
	}
	strong := func(c ...*document.Node) *document.Node { return document.NewNode(document.Strong, c...) }
	em := func(c ...*document.Node) *document.Node { return document.NewNode(document.Emphasis, c...) }
	image := document.NewNode(document.Image, text("alt"))
	image.Href = "/i.png"

	tests := []struct {
		name  string
		nodes []*document.Node
		want  string
	}{
		{"InlineLink", []*document.Node{text("Foo "), anchor("/url/", "Title", text("bar")), text(".")}, `Foo [bar](/url/ "Title").`},
		{"Autolink", []*document.Node{text("Link: "), anchor("http://example.com/", "", text("http://example.com/")), text(".")}, "Link: [http://example.com/](http://example.com/)."},
		{"MultilineText", []*document.Node{text("This is "), anchor("foo", "", text("multiline"), brk(), text("  reference"))}, "This is [multiline\nreference](foo)"},
		{"BracketsStayLiteral", []*document.Node{text("Suppress [this] and [this].")}, "Suppress [this] and [this]."},
		{"NestedBrackets", []*document.Node{text("[a reference inside "), anchor("foo", "", text("this")), text("]")}, "[a reference inside [this](foo)]"},
		{"BracketBeforeParen", []*document.Node{text("[a](b) and [c] (d)")}, `[a\](b) and [c\] (d)`},
		{"EscapesMarkup", []*document.Node{text(`a*b` + "`c` " + `d\e`)}, "a\\*b\\`c\\` d\\\\e"},
		{"Underscore", []*document.Node{text("snake_case _x_")}, `snake_case \_x\_`},
		{"AngleAutolinkText", []*document.Node{text("<http://a.com>")}, `\<http://a.com>`},
		{"BareURLText", []*document.Node{text("see http://a.com")}, `see http\://a.com`},
		{"BangBeforeAnchor", []*document.Node{text("wow!"), anchor("/x", "", text("x"))}, `wow\![x](/x)`},
		{"LineStartHeading", []*document.Node{text("# not a heading")}, `\# not a heading`},
		{"LineStartAfterBreak", []*document.Node{text("a"), brk(), text("  - not a list")}, "a\n\\- not a list"},
		{"LineStartOrdered", []*document.Node{text("2020. was a year")}, `2020\. was a year`},
		{"LineStartDefinition", []*document.Node{text("[x]: /u")}, `\[x]: /u`},
		{"TrailingSpaceBeforeBreak", []*document.Node{text("a  "), brk(), brk(), text("b")}, "a\nb"},
		{"Strong", []*document.Node{strong(text("bold"))}, "**bold**"},
		{"SpacesMoveOutside", []*document.Node{text("a"), strong(text(" b ")), text("c")}, "a **b** c"},
		{"EmphasisUnderscore", []*document.Node{text("an "), em(text("emphasis")), text(".")}, "an _emphasis_."},
		{"EmphasisIntraword", []*document.Node{text("in"), em(text("tra")), text("word")}, "in*tra*word"},
		{"EmptyEmphasis", []*document.Node{text("a"), em(), text("b")}, "ab"},
		{"Code", []*document.Node{code("x")}, "`x`"},
		{"CodeWithBacktick", []*document.Node{code("a`b")}, "``a`b``"},
		{"CodeStartingWithBacktick", []*document.Node{code("`a")}, "`` `a ``"},
		{"CodeSpaces", []*document.Node{code(" a ")}, "`  a  `"},
		{"Image", []*document.Node{image}, "![alt](/i.png)"},
		{"LinkInsideLinkFlattened", []*document.Node{anchor("/a", "", text("x "), anchor("/b", "", text("y")))}, "[x y](/a)"},
		{"StrongInLink", []*document.Node{anchor("http://example.com/", "", strong(text("http://example.com/")))}, "[**http://example.com/**](http://example.com/)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Markdown(document.NewDocument(para(tt.nodes...))))
		})
	}
}

func TestSerializerNoAutolinks(t *testing.T) {
	t.Parallel()
	s := New(nil)
	assert.Equal(t, "see http://a.com", s.Markdown(document.NewDocument(para(text("see http://a.com")))))
	assert.Equal(t, `see irc\://x`, New(autolink.New("irc")).Markdown(document.NewDocument(para(text("see irc://x")))))
}

func TestEscapeLineStart(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"plain":    "plain",
		"> quote":  `\> quote`,
		"+ item":   `\+ item`,
		"~~~":      `\~~~`,
		"1) x":     `1\) x`,
		"1.":       `1\.`,
		"1.5 kg":   "1.5 kg",
		"[a][b]":   "[a][b]",
		"[label]:": `\[label]:`,
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, escapeLineStart(in))
		})
	}
}
