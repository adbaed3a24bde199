package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardomso/gfmlink/internal/scanner"
)

func TestIsMarkdown(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"README.md":      true,
		"doc.MARKDOWN":   true,
		"notes.txt":      false,
		"md":             false,
		"dir/x.md.bak":   false,
		"dir/guide.mdx":  false,
		"nested/a/b.md":  true,
		".hidden/c.md":   true,
		"archive.tar.gz": false,
		"notes.mdown":    true,
		"notes.MKD":      true,
		"notes.mkdn":     false,
	}

	for path, want := range tests {
		t.Run(path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, IsMarkdown(path))
		})
	}

	t.Run("AgreesWithScanner", func(t *testing.T) {
		t.Parallel()
		for _, ext := range scanner.MarkdownExtensions {
			assert.True(t, IsMarkdown("doc"+ext), ext)
		}
	})
}

func TestNewMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := New(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestRunDebouncesBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	w, err := New(dir, WithDebounce(200*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batches := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(paths []string) { batches <- paths })
	}()

	a := filepath.Join(dir, "a.md")
	b := filepath.Join(sub, "b.md")
	require.NoError(t, os.WriteFile(a, []byte("one"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("two"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(a, []byte("three"), 0o600))

	select {
	case paths := <-batches:
		assert.Equal(t, []string{a, b}, paths)
	case <-time.After(5 * time.Second):
		t.Fatal("no batch reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunSingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "one.md")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o600))

	w, err := New(target, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batches := make(chan []string, 4)
	go func() {
		_ = w.Run(ctx, func(paths []string) { batches <- paths })
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.md"), []byte("y"), 0o600))
	require.NoError(t, os.WriteFile(target, []byte("z"), 0o600))

	select {
	case paths := <-batches:
		assert.Equal(t, []string{target}, paths)
	case <-time.After(5 * time.Second):
		t.Fatal("no batch reported")
	}
}
