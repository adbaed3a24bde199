package inline

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardomso/gfmlink/internal/autolink"
	"github.com/leonardomso/gfmlink/internal/document"
	"github.com/leonardomso/gfmlink/internal/refs"
)

func render(nodes []*document.Node) string {
	return document.HTML(document.NewNode(document.Paragraph, nodes...))
}

func TestParse(t *testing.T) {
	t.Parallel()

	table := refs.BuildString("[this]: foo\n[1]: /url/ \"Title\"\n[multiline reference]: foo\n[b]: /url/")
	matcher := autolink.New()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"AngleAutolink", "Link: <http://example.com/>.", `<p>Link: <a href="http://example.com/">http://example.com/</a>.</p>`},
		{"BareAutolink", "Link: http://example.com/.", `<p>Link: <a href="http://example.com/">http://example.com/</a>.</p>`},
		{"AutolinkParams", "<http://example.com/?foo=1&bar=2>", `<p><a href="http://example.com/?foo=1&amp;bar=2">http://example.com/?foo=1&amp;bar=2</a></p>`},
		{"NoAutolinkInCode", "`<http://example.com/>`", `<p><code>&lt;http://example.com/&gt;</code></p>`},
		{"AlreadyLinked", "[http://example.com/](http://example.com/)", `<p><a href="http://example.com/">http://example.com/</a></p>`},
		{"AlreadyLinkedStrong", "[**http://example.com/**](http://example.com/)", `<p><a href="http://example.com/"><strong>http://example.com/</strong></a></p>`},
		{"Reference", "Foo [bar] [1].", `<p>Foo <a href="/url/" title="Title">bar</a>.</p>`},
		{"ReferenceNewline", "Foo [bar]\n[1].", `<p>Foo <a href="/url/" title="Title">bar</a>.</p>`},
		{"EmbeddedBrackets", "With [embedded [brackets]] [b].", `<p>With <a href="/url/">embedded [brackets]</a>.</p>`},
		{"UndefinedKeepsMarker", "[missing] []", `<p>[missing] []</p>`},
		{"NestedInBrackets", "[a reference inside [this][]]", `<p>[a reference inside <a href="foo">this</a>]</p>`},
		{"InlineBeatsReference", "[this](/something/else/)", `<p><a href="/something/else/">this</a></p>`},
		{"EscapedBrackets", `Suppress \[this] and [this\].`, `<p>Suppress [this] and [this].</p>`},
		{"MultilineLabel", "This is [multiline \nreference]", `<p>This is <a href="foo">multiline<br>reference</a></p>`},
		{"Image", `![alt *x*](/i.png "T")`, `<p><img src="/i.png" alt="alt x" title="T"></p>`},
		{"Emphasis", "*a* **b** _c_ snake_case_word", `<p><em>a</em> <strong>b</strong> <em>c</em> snake_case_word</p>`},
		{"NestedEmphasis", "***both***", `<p><em><strong>both</strong></em></p>`},
		{"UnclosedEmphasis", "**unclosed", `<p>**unclosed</p>`},
		{"SpacedStar", "a * b", `<p>a * b</p>`},
		{"Break", "a  \n  b", `<p>a<br>b</p>`},
		{"BackslashBreak", "foo\\\nbar", `<p>foo<br>bar</p>`},
		{"CodeSpanStripsSpace", "`` a`b ``", "<p><code>a`b</code></p>"},
		{"UnmatchedBackticks", "``a`", "<p>``a`</p>"},
		{"BareBeforeLink", "http://a.com[x](/y)", `<p><a href="http://a.com">http://a.com</a><a href="/y">x</a></p>`},
		{"NoBareInLinkText", "[see http://a.com](/y)", `<p><a href="/y">see http://a.com</a></p>`},
		{"EscapedStar", `\*not\*`, `<p>*not*</p>`},
		{"BackslashLiteral", `a\b`, `<p>a\b</p>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, render(Parse(tt.text, 0, table, matcher)))
		})
	}
}

func TestParseMetadata(t *testing.T) {
	t.Parallel()

	table := refs.BuildString("[this]: foo")

	t.Run("SyntaxAndLine", func(t *testing.T) {
		t.Parallel()
		nodes := Parse("a\n[x](/u) [this]\n<http://a.b> http://c.d", 5, table, autolink.New())

		anchors := document.Anchors(document.NewNode(document.Paragraph, nodes...))
		require.Len(t, anchors, 4)

		assert.Equal(t, "inline", anchors[0].Syntax)
		assert.Equal(t, 6, anchors[0].Line)
		assert.Equal(t, "reference-implicit", anchors[1].Syntax)
		assert.Equal(t, "angle-autolink", anchors[2].Syntax)
		assert.Equal(t, 7, anchors[2].Line)
		assert.Equal(t, "autolink", anchors[3].Syntax)
	})

	t.Run("BareAutolinksDisabled", func(t *testing.T) {
		t.Parallel()
		p := New(table, nil)
		assert.Equal(t, `<p>see http://a.com or <a href="http://b.com">http://b.com</a></p>`,
			render(p.Parse("see http://a.com or <http://b.com>", 0)))
	})

	t.Run("Missing", func(t *testing.T) {
		t.Parallel()
		p := New(table, nil)
		p.Parse("[a][nope] [this][] [b][]\n[gone] [c][this]", 3)
		assert.Equal(t, []Missing{
			{Label: "nope", Text: "a", Line: 3},
			{Label: "b", Text: "b", Line: 3},
		}, p.Missing())
	})

	t.Run("NoTable", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, `<p>[this]</p>`, render(Parse("[this]", 0, nil, nil)))
	})
}

func TestParseLines(t *testing.T) {
	t.Parallel()

	text := "`a`\nb `c`\n[x](/1) <http://a.b>\n\nc [y](/2)"
	anchors := document.Anchors(document.NewNode(document.Paragraph, Parse(text, 10, nil, nil)...))
	require.Len(t, anchors, 3)

	assert.Equal(t, 12, anchors[0].Line)
	assert.Equal(t, 12, anchors[1].Line)
	assert.Equal(t, 14, anchors[2].Line)
}

func TestParseEmphasisPairs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"Sequence", "*a* *b*", "<p><em>a</em> <em>b</em></p>"},
		{"UnmatchedCloserSkipped", "a* *b*", "<p>a* <em>b</em></p>"},
		{"MixedChars", "*a _b* c_", "<p><em>a _b</em> c_</p>"},
		{"StrongInEmphasis", "*a **b** c*", "<p><em>a <strong>b</strong> c</em></p>"},
		{"LeftoverOpener", "**a*", "<p>*<em>a</em></p>"},
		{"LeftoverCloser", "*a**", "<p><em>a</em>*</p>"},
		{"RuleOfThree", "*foo**bar**baz*", "<p><em>foo<strong>bar</strong>baz</em></p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, render(Parse(tt.text, 0, nil, nil)))
		})
	}
}

func TestParseLinearTime(t *testing.T) {
	t.Parallel()

	const n = 20000
	matcher := autolink.New()
	tests := []struct {
		name string
		text string
	}{
		{"CodeSpansAndAutolinks", strings.Repeat("`a` http://a.com ", n)},
		{"LinksOnManyLines", strings.Repeat("[x](/u) `c`\n", n)},
		{"UnmatchedClosers", strings.Repeat("a* ", n)},
		{"UnmatchedOpeners", strings.Repeat("*a ", n)},
		{"MixedDelimiters", strings.Repeat("_a* ", n)},
		{"EmphasisPairs", strings.Repeat("*a* ", n)},
		{"NestedEmphasis", strings.Repeat("*a ", n) + strings.Repeat("b* ", n)},
		{"TrailingParens", "http://a.com/x" + strings.Repeat(")", 10*n)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			start := time.Now()
			Parse(tt.text, 0, nil, matcher)
			assert.Less(t, time.Since(start), 5*time.Second)
		})
	}
}

func BenchmarkParse(b *testing.B) {
	table := refs.BuildString("[this]: foo\n[1]: /url/")
	matcher := autolink.New()
	text := "Foo **[bar](/url/ \"Title\")** and _[this]_ with `code [x](y)` and http://example.com/ [a [this] b]."
	for b.Loop() {
		Parse(text, 0, table, matcher)
	}
}
