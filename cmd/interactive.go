package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/leonardomso/gfmlink/internal/batch"
	"github.com/leonardomso/gfmlink/internal/logging"
	"github.com/leonardomso/gfmlink/internal/processor"
	"github.com/leonardomso/gfmlink/internal/ui"
)

// interactiveCmd represents the interactive command.
var interactiveCmd = &cobra.Command{
	Use:   "interactive [path]",
	Short: "Launch interactive TUI to review and rewrite files",
	Long: `Launch an interactive terminal UI that converts every markdown file
under path, shows the diff of each rewrite and writes the ones you pick.

Controls:
  ↑/↓ or j/k    Navigate through files
  d             Toggle the diff
  w             Write the selected file
  a             Write every pending file
  f             Cycle the filter
  ?             Toggle help
  q             Quit`,
	Args: cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		path := getPathArg(args)

		lc, err := LoadConfig(path, noConfig)
		exitOnError(err, "Error loading config")

		// Log records would corrupt the alternate screen.
		logger := logging.Discard()
		proc := processor.New(append(lc.BuildProcessorOptions(), processor.WithLogger(logger))...)
		runner := batch.New(proc, lc.BuildBatchOptions(batch.DefaultConcurrency), logger)

		model := ui.New(ui.Options{Scan: lc.BuildScanOptions(path), Runner: runner})
		p := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Printf("Error running interactive mode: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
