// Package ui implements the interactive review of pending rewrites: files
// are scanned and converted in the background, then every file the
// normalizer would change can be inspected as a diff and written back.
package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/leonardomso/gfmlink/internal/batch"
	"github.com/leonardomso/gfmlink/internal/fixer"
	"github.com/leonardomso/gfmlink/internal/scanner"
)

// =============================================================================
// STATE MACHINE
// =============================================================================

type appState int

const (
	stateScanning   appState = iota // Finding markdown files
	stateConverting                 // Normalizing files in the background
	stateReview                     // Showing results (list view)
	stateWriting                    // Writing rewrites to disk
)

// =============================================================================
// FILTER TYPES
// =============================================================================

type filterType int

const (
	filterPending filterType = iota // Rewrites not yet written
	filterMissing                   // Files with undefined references
	filterFailed                    // Files that could not be read
	filterAll                       // Every file
)

const filterCount = 4

func (f filterType) String() string {
	switch f {
	case filterPending:
		return "Pending Rewrites"
	case filterMissing:
		return "Undefined References"
	case filterFailed:
		return "Failed"
	case filterAll:
		return "All Files"
	default:
		return "Unknown"
	}
}

func (f filterType) Next() filterType {
	return (f + 1) % filterCount
}

// =============================================================================
// MODEL
// =============================================================================

// Options configures the interactive session.
type Options struct {
	Scan   scanner.ScanOptions
	Runner *batch.Runner
}

// Model is the main application model.
type Model struct {
	// State
	state    appState
	quitting bool
	err      error

	// Data
	files   []string
	results []batch.Result
	changes map[string]fixer.FileChange
	written map[string]bool
	summary batch.Summary
	notice  string

	// Filter
	filter filterType

	// Components
	spinner spinner.Model
	list    list.Model
	help    help.Model
	keys    KeyMap

	fixer  *fixer.Fixer
	runner *batch.Runner
	// runnerState is shared by every copy of the model.
	runnerState *RunnerState

	// UI state
	width    int
	height   int
	showHelp bool
	showDiff bool

	scan scanner.ScanOptions
}

// New creates and returns a new Model.
func New(opts Options) Model {
	if opts.Scan.Root == "" {
		opts.Scan.Root = "."
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle()

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.Styles.SelectedTitle = SelectedStyle
	delegate.Styles.SelectedDesc = StatusStyle

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Files"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false) // We use our own help
	l.Styles.Title = TitleStyle

	return Model{
		state:       stateScanning,
		changes:     map[string]fixer.FileChange{},
		written:     map[string]bool{},
		spinner:     s,
		list:        l,
		help:        help.New(),
		keys:        DefaultKeyMap(),
		filter:      filterPending,
		fixer:       fixer.New(),
		runner:      opts.Runner,
		runnerState: &RunnerState{},
		showDiff:    true,
		scan:        opts.Scan,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, ScanFilesCmd(m.scan))
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Reserve space for header, summary, and detail panel
		listHeight := max(msg.Height-(maxDiffLines+14), 5)
		m.list.SetSize(msg.Width, listHeight)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case FilesFoundMsg:
		return m.handleFilesFound(msg)

	case FileConvertedMsg:
		return m.handleFileConverted(msg)

	case AllConvertedMsg:
		return m.handleAllConverted()

	case FilesWrittenMsg:
		return m.handleFilesWritten(msg)
	}

	// Pass other messages to list if in review state
	if m.state == stateReview {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys that work in any state
	if key.Matches(msg, m.keys.Quit) {
		if m.runnerState.CancelFunc != nil {
			m.runnerState.CancelFunc()
		}
		m.quitting = true
		return m, tea.Quit
	}

	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return m, nil
	}

	if m.state != stateReview {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Filter):
		m.filter = m.filter.Next()
		m.updateListItems()
		return m, nil

	case key.Matches(msg, m.keys.Diff):
		m.showDiff = !m.showDiff
		return m, nil

	case key.Matches(msg, m.keys.Write):
		item, ok := m.list.SelectedItem().(ResultItem)
		if !ok || !item.Result.Changed() || item.Written {
			return m, nil
		}
		m.state = stateWriting
		return m, WriteFilesCmd(m.fixer, []fixer.FileChange{item.Change})

	case key.Matches(msg, m.keys.WriteAll):
		pending := m.pendingChanges()
		if len(pending) == 0 {
			return m, nil
		}
		m.state = stateWriting
		return m, WriteFilesCmd(m.fixer, pending)
	}

	// Pass navigation keys to list
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleFilesFound(msg FilesFoundMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.err = msg.Err
		m.state = stateReview
		return m, nil
	}
	m.files = msg.Files
	if len(m.files) == 0 || m.runner == nil {
		m.state = stateReview
		return m, nil
	}
	m.state = stateConverting
	return m, StartConvertCmd(m.runner, m.files, m.runnerState)
}

func (m Model) handleFileConverted(msg FileConvertedMsg) (tea.Model, tea.Cmd) {
	r := msg.Result
	m.results = append(m.results, r)
	if r.Changed() {
		for _, fc := range m.fixer.FindChanges([]batch.Result{r}) {
			m.changes[fc.FilePath] = fc
		}
	}
	return m, WaitForNextResultCmd(m.runnerState)
}

func (m Model) handleAllConverted() (tea.Model, tea.Cmd) {
	m.state = stateReview
	m.runnerState.ResultsChan = nil
	m.summary = batch.Summarize(m.results)
	m.updateListItems()
	return m, nil
}

func (m Model) handleFilesWritten(msg FilesWrittenMsg) (tea.Model, tea.Cmd) {
	for _, r := range msg.Results {
		if r.Written {
			m.written[r.FilePath] = true
		}
	}
	m.notice = fixer.Summary(msg.Results)
	m.state = stateReview
	m.updateListItems()
	return m, nil
}

// pendingChanges returns the rewrites not yet written, in result order.
func (m *Model) pendingChanges() []fixer.FileChange {
	var pending []fixer.FileChange
	for _, r := range m.results {
		if fc, ok := m.changes[r.Path]; ok && !m.written[r.Path] {
			pending = append(pending, fc)
		}
	}
	return pending
}

// updateListItems updates the list with filtered results.
func (m *Model) updateListItems() {
	filtered := m.getFilteredResults()
	items := make([]list.Item, len(filtered))
	for i, r := range filtered {
		items[i] = ResultItem{Result: r, Change: m.changes[r.Path], Written: m.written[r.Path]}
	}
	m.list.SetItems(items)
}

// getFilteredResults returns results based on current filter.
func (m *Model) getFilteredResults() []batch.Result {
	var out []batch.Result
	for _, r := range m.results {
		var keep bool
		switch m.filter {
		case filterPending:
			keep = r.Changed() && !m.written[r.Path]
		case filterMissing:
			keep = len(r.Missing) > 0
		case filterFailed:
			keep = r.Status == batch.StatusFailed
		case filterAll:
			keep = true
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var s string

	// Header
	s += TitleStyle.Render("gfmlink - Markdown Link Normalizer")
	s += "\n\n"

	// Error state
	if m.err != nil {
		s += ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
		s += "\n"
		s += HelpStyle.Render("Press q to quit")
		return s
	}

	switch m.state {
	case stateScanning:
		s += m.spinner.View() + " Scanning for markdown files..."

	case stateConverting:
		s += m.spinner.View() + fmt.Sprintf(" Converting files... %d/%d", len(m.results), len(m.files))
		s += "\n\n"
		s += fmt.Sprintf("  %s", WarningStyle.Render(fmt.Sprintf("%d to rewrite", len(m.changes))))

	case stateWriting:
		s += m.spinner.View() + " Writing files..."

	case stateReview:
		s += m.renderResults()
	}

	// Help
	if m.showHelp {
		s += "\n\n" + m.help.View(m.keys)
	} else {
		s += "\n\n" + m.renderShortHelp()
	}

	return s
}

func (m Model) renderResults() string {
	var s string

	s += fmt.Sprintf("Scanned %d file(s), found %d link(s)\n\n", len(m.files), m.summary.Links)

	pending := len(m.pendingChanges())
	s += fmt.Sprintf("%s | %s | %s | %s\n\n",
		SuccessStyle.Render(fmt.Sprintf("✓ %d normalized", m.summary.Unchanged+len(m.written))),
		WarningStyle.Render(fmt.Sprintf("⚠ %d to rewrite", pending)),
		MutedStyle.Render(fmt.Sprintf("? %d undefined", m.summary.Missing)),
		ErrorStyle.Render(fmt.Sprintf("✗ %d failed", m.summary.Failed)))

	if m.notice != "" {
		s += MutedStyle.Render(m.notice) + "\n"
	}

	if pending == 0 && m.summary.Failed == 0 && m.summary.Missing == 0 && m.filter != filterAll {
		s += SuccessStyle.Render("All files are normalized!")
		return s
	}

	s += fmt.Sprintf("Filter: %s (%d/%d)\n\n",
		SelectedStyle.Render(m.filter.String()),
		len(m.getFilteredResults()),
		len(m.results))

	s += m.list.View()

	// Detail panel for selected item
	if item, ok := m.list.SelectedItem().(ResultItem); ok {
		s += "\n" + item.DetailView(m.fixer, m.showDiff)
	}

	return s
}

func (Model) renderShortHelp() string {
	return HelpStyle.Render("↑/↓ navigate • w write • a write all • d diff • f filter • ? help • q quit")
}
