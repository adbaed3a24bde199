package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardomso/gfmlink/internal/document"
	"github.com/leonardomso/gfmlink/internal/refs"
)

func parse(source string) *document.Node {
	return Parse(source, refs.BuildString(source), nil)
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"Paragraph", "one\ntwo", "<p>one\ntwo</p>"},
		{"StripsIndent", "  one\n   two  ", "<p>one\ntwo</p>"},
		{"Paragraphs", "one\n\n\ntwo", "<p>one</p><p>two</p>"},
		{"DefinitionRemoved", "[this]\n[this]: foo", "<p>[this]</p>"},
		{"DefinitionEndsParagraph", "a\n[x]: /u\nb", "<p>a</p><p>b</p>"},
		{"DuplicateDefinitionVisible", "[x]: /a\n[X]: /b", "<p>[X]: /b</p>"},
		{"FourSpaceDefinition", "Indented [four][].\n    [four]: /url", "<p>Indented [four][].</p><pre><code>[four]: /url</code></pre>"},
		{"TabIndentedCode", "\t<http://example.com/>", "<pre><code>&lt;http://example.com/&gt;</code></pre>"},
		{"IndentedCodeBlankLines", "    a\n\n    b\n\n", "<pre><code>a\n\nb</code></pre>"},
		{"FencedCode", "```go\nfmt.Println()\n```", `<pre><code class="language-go">fmt.Println()</code></pre>`},
		{"TildeFence", "~~~\n```\n~~~", "<pre><code>```</code></pre>"},
		{"UnclosedFence", "```\na\nb", "<pre><code>a\nb</code></pre>"},
		{"DefinitionInFence", "```\n[x]: /u\n```", "<pre><code>[x]: /u</code></pre>"},
		{"Heading", "# Title #", "<h1>Title</h1>"},
		{"HeadingLevel", "### Three", "<h3>Three</h3>"},
		{"NotHeading", "#hashtag", "<p>#hashtag</p>"},
		{"ThematicBreak", "text\n* * *\nmore", "<p>text</p><hr><p>more</p>"},
		{"Blockquote", "> Blockquoted: x", "<blockquote><p>Blockquoted: x</p></blockquote>"},
		{"LazyBlockquote", "> a\nb", "<blockquote><p>a\nb</p></blockquote>"},
		{"NestedBlockquote", "> > deep", "<blockquote><blockquote><p>deep</p></blockquote></blockquote>"},
		{"TightList", "* a\n* b", "<ul><li>a</li><li>b</li></ul>"},
		{"LooseList", "* a\n\n* b", "<ul><li><p>a</p></li><li><p>b</p></li></ul>"},
		{"ListTypeChange", "* a\n- b", "<ul><li>a</li></ul><ul><li>b</li></ul>"},
		{"OrderedList", "1. a\n2. b", "<ol><li>a</li><li>b</li></ol>"},
		{"OrderedStart", "3) a", `<ol start="3"><li>a</li></ol>`},
		{"OrderedNoInterrupt", "para\n2. not list", "<p>para\n2. not list</p>"},
		{"BulletInterrupts", "para\n* item", "<p>para</p><ul><li>item</li></ul>"},
		{"NestedList", "* a\n    * b", "<ul><li>a<ul><li>b</li></ul></li></ul>"},
		{"ListContinuation", "* a\n  b\n\n  c", "<ul><li><p>a\nb</p><p>c</p></li></ul>"},
		{"LazyListLine", "* a\nb", "<ul><li>a\nb</li></ul>"},
		{"ListThenParagraph", "* a\n\nafter", "<ul><li>a</li></ul><p>after</p>"},
		{"CodeInList", "* ```\n  x\n  ```", "<ul><li><pre><code>x</code></pre></li></ul>"},
		{"IndentedMarker", "  - a\n  - b", "<ul><li>a</li><li>b</li></ul>"},
		{"EmptyItem", "*\n* b", "<ul><li></li><li>b</li></ul>"},
		{"DefinitionSyntaxInItem", "* [a]: /b", "<ul><li>[a]: /b</li></ul>"},
		{"MarkerOnlyOnce", "* * x", "<ul><li><ul><li>x</li></ul></li></ul>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, document.HTML(parse(tt.source)))
		})
	}
}

func TestParseLines(t *testing.T) {
	t.Parallel()

	var got []int
	inline := func(text string, line int) []*document.Node {
		got = append(got, line)
		return []*document.Node{document.NewText(text)}
	}

	source := "# h\n\npara\nmore\n\n* item\n\n> quote"
	doc := Parse(source, refs.BuildString(source), inline)

	assert.Equal(t, []int{0, 2, 5, 7}, got)
	require.Len(t, doc.Children, 4)
	assert.Equal(t, 2, doc.Children[1].Line)
	assert.Equal(t, 5, doc.Children[2].Line)
}

func TestParseCRLF(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "<p>a\nb</p>", document.HTML(parse("a\r\nb\r\n")))
}

func TestExpandTabs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "    a", expandTabs("\ta"))
	assert.Equal(t, "    a", expandTabs("  \ta"))
	assert.Equal(t, "        a\tb", expandTabs("\t\ta\tb"))
	assert.Equal(t, "plain", expandTabs("plain"))
}

func TestParseMarker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text  string
		ok    bool
		width int
		empty bool
	}{
		{"* a", true, 2, false},
		{"-   a", true, 4, false},
		{"-      a", true, 2, false},
		{"10. a", true, 4, false},
		{"*", true, 2, true},
		{"*a", false, 0, false},
		{"    * a", false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			m, ok := parseMarker(tt.text)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.width, m.width)
			assert.Equal(t, tt.empty, m.empty)
		})
	}
}
