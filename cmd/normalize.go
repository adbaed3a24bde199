package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leonardomso/gfmlink/internal/batch"
	"github.com/leonardomso/gfmlink/internal/fixer"
	"github.com/leonardomso/gfmlink/internal/processor"
	"github.com/leonardomso/gfmlink/internal/stats"
)

// Flag variables for the normalize command.
var (
	normalizeDryRun      bool
	normalizeYes         bool
	normalizeConcurrency int
	normalizeShowStats   bool
)

// normalizeCmd represents the normalize command.
var normalizeCmd = &cobra.Command{
	Use:   "normalize [path]",
	Short: "Rewrite markdown files with every link in inline form",
	Long: `Rewrite markdown files in their normalized form.

Reference links become inline links, reference definitions are dropped
and the rest of each document is written in a canonical style. Undefined
references stay as literal text.

By default, shows a diff for each file and prompts before applying.

Examples:
  gfmlink normalize                  # Normalize files in current directory
  gfmlink normalize ./docs           # Normalize files in a specific directory
  gfmlink normalize --dry-run        # Preview changes without applying
  gfmlink normalize --yes            # Apply all changes without prompting
  gfmlink normalize --stats          # Show run statistics

Interactive mode options:
  y - Rewrite this file
  n - Skip this file
  a - Rewrite this file and all remaining files
  q - Quit without rewriting remaining files
  ? - Show help`,
	Args: cobra.MaximumNArgs(1),
	Run:  runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().BoolVarP(&normalizeDryRun, "dry-run", "n", false,
		"Preview changes without modifying files")
	normalizeCmd.Flags().BoolVarP(&normalizeYes, "yes", "y", false,
		"Apply all changes without prompting")
	normalizeCmd.Flags().IntVarP(&normalizeConcurrency, "concurrency", "c", batch.DefaultConcurrency,
		"Number of files converted at once")
	normalizeCmd.Flags().BoolVar(&normalizeShowStats, "stats", false,
		"Show run statistics")
}

func runNormalize(_ *cobra.Command, args []string) {
	perf := stats.New()
	path := getPathArg(args)

	lc, err := LoadConfig(path, noConfig)
	exitOnError(err, "Error loading config")
	normalizeShowStats = lc.GetShowStats(normalizeShowStats)

	logger := newLogger()
	proc := processor.New(append(lc.BuildProcessorOptions(), processor.WithLogger(logger))...)

	// Phase 1: Scan for files
	files := scanFiles(lc.BuildScanOptions(path), perf, false)

	// Phase 2: Convert
	runner := batch.New(proc, lc.BuildBatchOptions(normalizeConcurrency), logger)
	results := convertFiles(runner, files, nil, perf)

	for _, r := range batch.FilterByStatus(results, batch.StatusFailed) {
		fmt.Fprintf(os.Stderr, "Skipping %s: %s\n", r.Path, r.Error)
	}

	f := fixer.New()
	changes := f.FindChanges(results)

	if len(changes) == 0 {
		fmt.Println("\nAll files are already normalized.")
		printNormalizeStats(perf)
		return
	}

	fmt.Println()
	fmt.Print(f.Preview(changes))

	if normalizeDryRun {
		fmt.Println("Dry-run mode: no files were modified.")
		printNormalizeStats(perf)
		return
	}

	// Phase 3: Write
	perf.StartWrite()
	var written []fixer.FixResult
	if normalizeYes {
		written = f.ApplyAll(changes)
		fmt.Println(fixer.Summary(written))
	} else {
		var quit bool
		written, quit = promptChanges(f, changes, os.Stdin, os.Stdout)
		fmt.Println()
		fmt.Println(fixer.Summary(written))
		if quit {
			perf.EndWrite(countWritten(written))
			printNormalizeStats(perf)
			os.Exit(2)
		}
	}
	perf.EndWrite(countWritten(written))
	printNormalizeStats(perf)
}

func printNormalizeStats(perf *stats.Stats) {
	if normalizeShowStats {
		perf.Finish()
		fmt.Print(perf.String())
	}
}

func countWritten(results []fixer.FixResult) int {
	n := 0
	for _, r := range results {
		if r.Written {
			n++
		}
	}
	return n
}

// promptChanges asks before each file is rewritten. It reports whether the
// user quit before answering for every file.
func promptChanges(f *fixer.Fixer, changes []fixer.FileChange, in io.Reader, out io.Writer) ([]fixer.FixResult, bool) {
	reader := bufio.NewReader(in)
	results := make([]fixer.FixResult, 0, len(changes))
	applyAll := false

	apply := func(fc fixer.FileChange) {
		result, err := f.ApplyToFile(fc)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		} else if result.Written {
			fmt.Fprintf(out, "Rewrote %s\n", fc.FilePath)
		}
		results = append(results, *result)
	}

	for i := 0; i < len(changes); i++ {
		fc := changes[i]

		if applyAll {
			apply(fc)
			continue
		}

		fmt.Fprintf(out, "\nRewrite %s? (+%d -%d) [y/n/a/q/?] ", fc.FilePath, fc.Added, fc.Removed)

		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			fmt.Fprintln(out, "\nNo more input. Remaining files were not modified.")
			return appendSkipped(results, changes[i:]), true
		}

		switch strings.TrimSpace(strings.ToLower(input)) {
		case "y", "yes":
			apply(fc)

		case "n", "no":
			fmt.Fprintf(out, "Skipped %s\n", fc.FilePath)
			results = append(results, fixer.FixResult{FilePath: fc.FilePath, Skipped: true})

		case "a", "all":
			apply(fc)
			applyAll = true

		case "q", "quit":
			fmt.Fprintln(out, "\nQuitting. Remaining files were not modified.")
			return appendSkipped(results, changes[i:]), true

		case "?", "help":
			printPromptHelp(out)
			i--

		default:
			fmt.Fprintln(out, "Invalid input. Use y/n/a/q/? (or type 'help')")
			i--
		}
	}
	return results, false
}

func appendSkipped(results []fixer.FixResult, rest []fixer.FileChange) []fixer.FixResult {
	for _, fc := range rest {
		results = append(results, fixer.FixResult{FilePath: fc.FilePath, Skipped: true})
	}
	return results
}

func printPromptHelp(out io.Writer) {
	fmt.Fprintln(out, `
Interactive mode options:
  y, yes  - Rewrite this file
  n, no   - Skip this file
  a, all  - Rewrite this file and all remaining files
  q, quit - Quit without rewriting remaining files
  ?, help - Show this help`)
}

// normalizePaths converts and writes paths without prompting. It is used by
// the watch command.
func normalizePaths(ctx context.Context, runner *batch.Runner, f *fixer.Fixer, paths []string) []fixer.FixResult {
	return f.ApplyAll(f.FindChanges(runner.RunAll(ctx, paths)))
}
