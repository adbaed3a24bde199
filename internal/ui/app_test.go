package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardomso/gfmlink/internal/batch"
	"github.com/leonardomso/gfmlink/internal/fixer"
	"github.com/leonardomso/gfmlink/internal/inline"
	"github.com/leonardomso/gfmlink/internal/processor"
	"github.com/leonardomso/gfmlink/internal/scanner"
)

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drive runs cmd and feeds every resulting message back into the model
// until no command is left.
func drive(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for cmd != nil {
		model, next := m.Update(cmd())
		m = model.(Model)
		cmd = next
	}
	return m
}

func newTestModel(t *testing.T) (Model, string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("See [x][y].\n\n[y]: /u\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("Already [fine](/f).\n"), 0o644))

	runner := batch.New(processor.New(), batch.DefaultOptions(), nil)
	m := New(Options{Scan: scanner.ScanOptions{Root: dir}, Runner: runner})

	model, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 60})
	m = model.(Model)

	return drive(t, m, ScanFilesCmd(m.scan)), dir
}

func TestModel_ConvertAndReview(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)

	assert.Equal(t, stateReview, m.state)
	require.Len(t, m.results, 2)
	assert.Equal(t, 1, m.summary.Changed)
	assert.Equal(t, 1, m.summary.Unchanged)
	assert.Len(t, m.pendingChanges(), 1)
	assert.Len(t, m.getFilteredResults(), 1)

	view := m.View()
	assert.Contains(t, view, "⚠ 1 to rewrite")
	assert.Contains(t, view, "Pending Rewrites")
	assert.Contains(t, view, "a.md")
}

func TestModel_WriteAll(t *testing.T) {
	t.Parallel()

	m, dir := newTestModel(t)

	model, cmd := m.Update(keyPress("a"))
	m = model.(Model)
	assert.Equal(t, stateWriting, m.state)
	require.NotNil(t, cmd)

	m = drive(t, m, cmd)
	assert.Equal(t, stateReview, m.state)
	assert.Empty(t, m.pendingChanges())
	assert.Contains(t, m.notice, "Normalized 1 file(s).")

	content, err := os.ReadFile(filepath.Join(dir, "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "See [x](/u).\n", string(content))

	// Nothing left to write.
	_, cmd = m.Update(keyPress("a"))
	assert.Nil(t, cmd)
}

func TestModel_Keys(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)

	model, _ := m.Update(keyPress("f"))
	m = model.(Model)
	assert.Equal(t, filterMissing, m.filter)

	model, _ = m.Update(keyPress("d"))
	m = model.(Model)
	assert.False(t, m.showDiff)

	model, _ = m.Update(keyPress("?"))
	m = model.(Model)
	assert.True(t, m.showHelp)

	model, cmd := m.Update(keyPress("q"))
	m = model.(Model)
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
	assert.Equal(t, "Goodbye!\n", m.View())
}

func TestModel_ScanError(t *testing.T) {
	t.Parallel()

	m := New(Options{Scan: scanner.ScanOptions{Root: filepath.Join(t.TempDir(), "missing")}})
	m = drive(t, m, ScanFilesCmd(m.scan))

	require.Error(t, m.err)
	assert.Contains(t, m.View(), "Error:")
}

func TestFilterType(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	f := filterPending
	for range filterCount {
		seen[f.String()] = true
		f = f.Next()
	}
	assert.Equal(t, filterPending, f)
	assert.Len(t, seen, filterCount)
	assert.Equal(t, "Unknown", filterType(99).String())
}

func TestResultItem_Description(t *testing.T) {
	t.Parallel()

	links := []processor.LinkRecord{{Href: "/a"}, {Href: "/b"}}

	tests := []struct {
		name string
		item ResultItem
		want string
	}{
		{
			name: "Changed",
			item: ResultItem{
				Result: batch.Result{Status: batch.StatusChanged, Links: links, Missing: []inline.Missing{{Label: "x"}}},
				Change: fixer.FileChange{Added: 1, Removed: 3},
			},
			want: "+1 -3 | 2 links, 1 undefined",
		},
		{
			name: "Written",
			item: ResultItem{Result: batch.Result{Status: batch.StatusChanged, Links: links[:1]}, Written: true},
			want: "written | 1 link",
		},
		{
			name: "Unchanged",
			item: ResultItem{Result: batch.Result{Status: batch.StatusUnchanged}},
			want: "normalized | 0 links",
		},
		{
			name: "Failed",
			item: ResultItem{Result: batch.Result{Status: batch.StatusFailed, Error: "reading file: denied"}},
			want: "Error: reading file: denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.item.Description())
		})
	}
}

func TestDiffLines(t *testing.T) {
	t.Parallel()

	diff := "--- a\n+++ b\n@@ -1 +1 @@\n-old\n+new\n same\n"

	lines := diffLines(diff, 20)
	require.Len(t, lines, 6)
	assert.Contains(t, lines[3], "-old")
	assert.Contains(t, lines[4], "+new")

	cut := diffLines(diff, 2)
	require.Len(t, cut, 3)
	assert.True(t, strings.Contains(cut[2], "4 more line(s)"))
}
