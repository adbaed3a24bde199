package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leonardomso/gfmlink/internal/batch"
	"github.com/leonardomso/gfmlink/internal/fixer"
	"github.com/leonardomso/gfmlink/internal/scanner"
)

// ScanFilesCmd returns a command that scans for markdown files.
func ScanFilesCmd(opts scanner.ScanOptions) tea.Cmd {
	return func() tea.Msg {
		files, err := scanner.FindFilesWithOptions(opts)
		return FilesFoundMsg{Files: files, Err: err}
	}
}

// RunnerState holds the state of a conversion in flight so the commands
// can stay stateless functions.
type RunnerState struct {
	ResultsChan <-chan batch.Result
	CancelFunc  context.CancelFunc
}

// StartConvertCmd starts converting files and returns the first result.
func StartConvertCmd(runner *batch.Runner, files []string, state *RunnerState) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		state.CancelFunc = cancel
		state.ResultsChan = runner.Run(ctx, files)

		result, ok := <-state.ResultsChan
		if !ok {
			return AllConvertedMsg{}
		}
		return FileConvertedMsg{Result: result}
	}
}

// WaitForNextResultCmd waits for the next result from the channel.
func WaitForNextResultCmd(state *RunnerState) tea.Cmd {
	return func() tea.Msg {
		if state.ResultsChan == nil {
			return AllConvertedMsg{}
		}

		result, ok := <-state.ResultsChan
		if !ok {
			return AllConvertedMsg{}
		}
		return FileConvertedMsg{Result: result}
	}
}

// WriteFilesCmd writes the given changes to disk.
func WriteFilesCmd(f *fixer.Fixer, changes []fixer.FileChange) tea.Cmd {
	return func() tea.Msg {
		return FilesWrittenMsg{Results: f.ApplyAll(changes)}
	}
}
