package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardomso/gfmlink/internal/processor"
)

func writeFiles(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, 0, len(files))
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		paths = append(paths, path)
	}
	return dir, paths
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	assert.Equal(t, DefaultConcurrency, opts.Concurrency)
	assert.True(t, opts.FinalNewline)
}

func TestOptionsWithMethods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		modifier func(Options) Options
		check    func(*testing.T, Options)
	}{
		{
			name:     "WithConcurrency",
			modifier: func(o Options) Options { return o.WithConcurrency(3) },
			check:    func(t *testing.T, o Options) { assert.Equal(t, 3, o.Concurrency) },
		},
		{
			name:     "WithConcurrencyIgnoresZero",
			modifier: func(o Options) Options { return o.WithConcurrency(0) },
			check:    func(t *testing.T, o Options) { assert.Equal(t, DefaultConcurrency, o.Concurrency) },
		},
		{
			name:     "WithFinalNewline",
			modifier: func(o Options) Options { return o.WithFinalNewline(false) },
			check:    func(t *testing.T, o Options) { assert.False(t, o.FinalNewline) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.check(t, tt.modifier(DefaultOptions()))
		})
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status Status
		name   string
		label  string
	}{
		{StatusUnchanged, "unchanged", "OK"},
		{StatusChanged, "changed", "REWRITE"},
		{StatusFailed, "failed", "ERROR"},
		{Status(42), "unknown", "?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.name, tt.status.String())
			assert.Equal(t, tt.label, tt.status.Label())
		})
	}
}

func TestRunAll(t *testing.T) {
	t.Parallel()

	dir, paths := writeFiles(t, map[string]string{
		"a.md": "Foo [bar][1].\n\n[1]: /url/\n",
		"b.md": "Already [canonical](/x).\n",
		"c.md": "See [x][nope].\n",
	})
	paths = append(paths, filepath.Join(dir, "missing.md"))

	r := New(processor.New(), DefaultOptions().WithConcurrency(2), nil)
	results := r.RunAll(context.Background(), paths)
	require.Len(t, results, 4)

	a, b, c, missing := results[0], results[1], results[2], results[3]

	assert.Equal(t, StatusChanged, a.Status)
	assert.Equal(t, "Foo [bar](/url/).\n", a.Normalized)
	assert.Equal(t, 1, a.Definitions)
	assert.Len(t, a.Links, 1)

	assert.Equal(t, StatusUnchanged, b.Status)
	assert.False(t, b.Changed())

	assert.Equal(t, StatusUnchanged, c.Status)
	require.Len(t, c.Missing, 1)
	assert.Equal(t, "nope", c.Missing[0].Label)

	assert.Equal(t, StatusFailed, missing.Status)
	assert.Contains(t, missing.Error, "reading file")

	s := Summarize(results)
	assert.Equal(t, Summary{Total: 4, Changed: 1, Unchanged: 2, Failed: 1, Links: 2, Missing: 1}, s)
	assert.True(t, s.HasIssues())
	assert.Len(t, FilterChanged(results), 1)
}

func TestSourceFinalNewline(t *testing.T) {
	t.Parallel()

	with := New(processor.New(), DefaultOptions(), nil)
	without := New(processor.New(), DefaultOptions().WithFinalNewline(false), nil)

	assert.Equal(t, StatusUnchanged, with.Source("x.md", "text\n").Status)
	assert.Equal(t, StatusChanged, with.Source("x.md", "text").Status)
	assert.Equal(t, StatusUnchanged, without.Source("x.md", "text").Status)
	assert.Equal(t, "", with.Source("empty.md", "").Normalized)
}

func TestRunContextCanceled(t *testing.T) {
	t.Parallel()

	_, paths := writeFiles(t, map[string]string{"a.md": "a", "b.md": "b", "c.md": "c"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got int
	for result := range New(processor.New(), DefaultOptions().WithConcurrency(1), nil).Run(ctx, paths) {
		got++
		if result.Status == StatusFailed {
			assert.Equal(t, "conversion canceled", result.Error)
		}
	}
	assert.LessOrEqual(t, got, len(paths))
}

func TestRunEmpty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, New(processor.New(), DefaultOptions(), nil).RunAll(context.Background(), nil))
}

func BenchmarkSource(b *testing.B) {
	r := New(processor.New(), DefaultOptions(), nil)
	src := "# Title\n\nFoo [bar][1] and <http://example.com/>.\n\n* [a](/a)\n* [b] http://b.com\n\n[1]: /url/ \"T\"\n[b]: /b\n"
	for b.Loop() {
		r.Source("bench.md", src)
	}
}
