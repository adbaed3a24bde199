package refs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Lowercase", "HI", "hi"},
		{"Trim", "  foo  ", "foo"},
		{"CollapseSpaces", "multiline   reference", "multiline reference"},
		{"CollapseNewline", "multiline\nreference", "multiline reference"},
		{"CollapseTabs", "a\t\tb", "a b"},
		{"Unicode", "ÄÖÜ", "äöü"},
		{"Empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("TargetAndTitle", func(t *testing.T) {
		t.Parallel()
		table := Build([]string{"Foo [bar] [1].", `[1]: /url/  "Title"`})

		def, ok := table.Lookup("1")
		require.True(t, ok)
		assert.Equal(t, "/url/", def.Target)
		assert.Equal(t, "Title", def.Title)
		assert.Equal(t, 1, def.Line)
		assert.True(t, table.Consumed(1))
		assert.False(t, table.Consumed(0))
	})

	t.Run("TitleQuoting", func(t *testing.T) {
		t.Parallel()
		table := Build([]string{
			`[a]: /a "double"`,
			`[b]: /b 'single'`,
			`[c]: /c (paren)`,
			`[d]: <> "empty target"`,
			`[e]: </with space>`,
		})

		for label, want := range map[string][2]string{
			"a": {"/a", "double"},
			"b": {"/b", "single"},
			"c": {"/c", "paren"},
			"d": {"", "empty target"},
			"e": {"/with space", ""},
		} {
			def, ok := table.Lookup(label)
			require.True(t, ok, label)
			assert.Equal(t, want[0], def.Target, label)
			assert.Equal(t, want[1], def.Title, label)
		}
	})

	t.Run("IndentationBoundary", func(t *testing.T) {
		t.Parallel()
		table := Build([]string{
			" [once]: /url",
			"  [twice]: /url",
			"   [trice]: /url",
			"    [four]: /url",
			"\t[tab]: /url",
		})

		assert.Equal(t, 3, table.Len())
		_, ok := table.Lookup("trice")
		assert.True(t, ok)
		_, ok = table.Lookup("four")
		assert.False(t, ok)
		_, ok = table.Lookup("tab")
		assert.False(t, ok)
		assert.False(t, table.Consumed(3))
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		t.Parallel()
		table := Build([]string{"[HI]: /url"})

		def, ok := table.Lookup("hi")
		require.True(t, ok)
		assert.Equal(t, "/url", def.Target)
		assert.Equal(t, "HI", def.Label)
	})

	t.Run("FirstWins", func(t *testing.T) {
		t.Parallel()
		table := Build([]string{"[foo]: /first", "[FOO]: /second"})

		def, ok := table.Lookup("Foo")
		require.True(t, ok)
		assert.Equal(t, "/first", def.Target)
		assert.Equal(t, 1, table.Len())
		assert.True(t, table.Consumed(0))
		assert.False(t, table.Consumed(1), "duplicate stays visible")
	})

	t.Run("SkipsFencedCode", func(t *testing.T) {
		t.Parallel()
		table := Build([]string{
			"```",
			"[inside]: /no",
			"```",
			"~~~~",
			"[tilde]: /no",
			"~~~",
			"~~~~",
			"[after]: /yes",
		})

		_, ok := table.Lookup("inside")
		assert.False(t, ok)
		_, ok = table.Lookup("tilde")
		assert.False(t, ok, "a shorter fence does not close")
		_, ok = table.Lookup("after")
		assert.True(t, ok)
	})

	t.Run("Rejects", func(t *testing.T) {
		t.Parallel()
		table := Build([]string{
			"[^note]: footnote",
			"[]: /empty",
			"[a]: /x trailing junk",
			"[b]:",
			"text [c]: /x",
			"[d [e]]: /x",
		})
		assert.Equal(t, 0, table.Len())
	})

	t.Run("EscapesResolved", func(t *testing.T) {
		t.Parallel()
		table := Build([]string{`[x]: /a\_b "say \"hi\""`})

		def, ok := table.Lookup("x")
		require.True(t, ok)
		assert.Equal(t, "/a_b", def.Target)
		assert.Equal(t, `say "hi"`, def.Title)
	})

	t.Run("DefinitionsInOrder", func(t *testing.T) {
		t.Parallel()
		table := BuildString("[b]: /b\r\n[a]: /a\n")

		defs := table.Definitions()
		require.Len(t, defs, 2)
		assert.Equal(t, "b", defs[0].Label)
		assert.Equal(t, "a", defs[1].Label)
	})

	t.Run("NilTable", func(t *testing.T) {
		t.Parallel()
		var table *Table

		_, ok := table.Lookup("x")
		assert.False(t, ok)
		assert.Zero(t, table.Len())
		assert.False(t, table.Consumed(0))
		assert.Nil(t, table.Definitions())
	})
}

func TestFenceMarker(t *testing.T) {
	t.Parallel()

	char, width, rest, ok := FenceMarker("   ```go")
	require.True(t, ok)
	assert.Equal(t, byte('`'), char)
	assert.Equal(t, 3, width)
	assert.Equal(t, "go", rest)

	_, _, _, ok = FenceMarker("    ```")
	assert.False(t, ok)
	_, _, _, ok = FenceMarker("``")
	assert.False(t, ok)
}
