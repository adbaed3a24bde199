package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leonardomso/gfmlink/internal/batch"
	"github.com/leonardomso/gfmlink/internal/filter"
	"github.com/leonardomso/gfmlink/internal/output"
	"github.com/leonardomso/gfmlink/internal/processor"
	"github.com/leonardomso/gfmlink/internal/scanner"
	"github.com/leonardomso/gfmlink/internal/stats"
)

// Flag variables for the check command.
var (
	outputFormat string
	outputFile   string
	concurrency  int
	showStats    bool
	crossCheck   bool

	// Ignore flags.
	ignoreDomains  []string
	ignorePatterns []string
	ignoreRegex    []string
	showIgnored    bool
)

// checkCmd represents the check command.
var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Report markdown files that are not normalized",
	Long: `Scan a directory for markdown files and report every file whose
normalized form differs from its source, every undefined reference
and every file that could not be read.

If no path is provided, scans the current directory.

Exit codes:
  0 - All files are normalized
  1 - Files need rewriting, could not be read, or disagree with goldmark

Examples:
  gfmlink check                         # Scan current directory
  gfmlink check ./docs                  # Scan specific directory
  gfmlink check --format=json           # Output JSON to stdout
  gfmlink check --format=toml           # Output TOML to stdout
  gfmlink check --output=report.md      # Write Markdown report to file
  gfmlink check --output=report.junit.xml  # Write JUnit XML for CI/CD
  gfmlink check --crosscheck            # Compare links with goldmark
  gfmlink check --stats                 # Show run statistics

Note: --format and --output are mutually exclusive.

Ignore patterns:
  gfmlink check --ignore-domain=localhost,example.com
  gfmlink check --ignore-pattern="*.local/*"
  gfmlink check --ignore-regex=".*\\.test$"
  gfmlink check --show-ignored          # Show which links were ignored`,
	Args: cobra.MaximumNArgs(1),
	Run:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Output options
	checkCmd.Flags().StringVarP(&outputFormat, "format", "f", "",
		"Output format for stdout: "+strings.Join(output.ValidFormats(), ", "))
	checkCmd.Flags().StringVarP(&outputFile, "output", "o", "",
		"Write report to file (format inferred from extension: .json, .yaml, .toml, .xml, .junit.xml, .md)")

	checkCmd.Flags().IntVarP(&concurrency, "concurrency", "c", batch.DefaultConcurrency,
		"Number of files converted at once")
	checkCmd.Flags().BoolVar(&showStats, "stats", false,
		"Show run statistics")
	checkCmd.Flags().BoolVar(&crossCheck, "crosscheck", false,
		"Compare the links found with the links goldmark finds")

	// Ignore options
	checkCmd.Flags().StringSliceVar(&ignoreDomains, "ignore-domain", nil,
		"Domains to ignore, includes subdomains (can be repeated or comma-separated)")
	checkCmd.Flags().StringSliceVar(&ignorePatterns, "ignore-pattern", nil,
		"Glob patterns to ignore (can be repeated)")
	checkCmd.Flags().StringSliceVar(&ignoreRegex, "ignore-regex", nil,
		"Regex patterns to ignore (can be repeated)")
	checkCmd.Flags().BoolVar(&showIgnored, "show-ignored", false,
		"Show which links were ignored and why")
}

// runCheck is the main entry point for the check command.
func runCheck(_ *cobra.Command, args []string) {
	perf := stats.New()
	path := getPathArg(args)

	lc, err := LoadConfig(path, noConfig)
	exitOnError(err, "Error loading config")

	if outputFile == "" {
		outputFormat = lc.GetOutputFormat(outputFormat)
	}
	showStats = lc.GetShowStats(showStats)
	exitOnError(validateCheckFlags(), "Invalid flags")
	useStructuredOutput := outputFormat != ""

	logger := newLogger()
	proc := processor.New(append(lc.BuildProcessorOptions(), processor.WithLogger(logger))...)

	// Phase 1: Scan for files
	files := scanFiles(lc.BuildScanOptions(path), perf, useStructuredOutput)

	// Phase 2: Convert every file
	urlFilter, err := CreateFilterWithConfig(lc.Config(), ignoreDomains, ignorePatterns, ignoreRegex)
	exitOnError(err, "Error creating filter")

	runner := batch.New(proc, lc.BuildBatchOptions(concurrency), logger)
	results := convertFiles(runner, files, urlFilter, perf)
	summary := batch.Summarize(results)

	disagreements := 0
	if crossCheck {
		disagreements = runCrossCheck(context.Background(), proc, results, logger, useStructuredOutput)
	}

	// Phase 3: Output results
	perf.Finish()
	routeOutput(files, results, summary, urlFilter, perf, useStructuredOutput)

	if summary.HasIssues() || disagreements > 0 {
		os.Exit(1)
	}
}

// scanFiles scans for markdown files and returns the list.
func scanFiles(opts scanner.ScanOptions, perf *stats.Stats, useStructuredOutput bool) []string {
	perf.StartScan()
	files, err := scanner.FindFilesWithOptions(opts)
	exitOnError(err, "Error scanning directory")
	perf.EndScan(len(files))

	if !useStructuredOutput {
		fmt.Printf("Found %d markdown file(s)\n", len(files))
	}
	return files
}

// convertFiles normalizes every file and drops ignored links from the
// results.
func convertFiles(runner *batch.Runner, files []string, urlFilter *filter.Filter, perf *stats.Stats) []batch.Result {
	perf.StartConvert()
	results := runner.RunAll(context.Background(), files)

	definitions := 0
	for i := range results {
		if urlFilter != nil {
			results[i].Links = urlFilter.Apply(results[i].Path, results[i].Links)
		}
		definitions += results[i].Definitions
	}

	summary := batch.Summarize(results)
	ignored := 0
	if urlFilter != nil {
		ignored = urlFilter.IgnoredCount()
	}
	perf.EndConvert(summary.Changed, summary.Links, CountUniqueHrefs(results), definitions, summary.Missing)
	perf.Ignored = ignored
	return results
}

// validateCheckFlags checks for invalid flag combinations.
func validateCheckFlags() error {
	if outputFormat != "" && outputFile != "" {
		return errors.New("--format and --output are mutually exclusive; " +
			"use --format for stdout output, or --output for file output")
	}

	if outputFormat != "" && !output.IsValidFormat(outputFormat) {
		return fmt.Errorf("invalid format %q; valid formats: %s",
			outputFormat, strings.Join(output.ValidFormats(), ", "))
	}

	return nil
}
