package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leonardomso/gfmlink/internal/batch"
	"github.com/leonardomso/gfmlink/internal/crosscheck"
	"github.com/leonardomso/gfmlink/internal/filter"
	"github.com/leonardomso/gfmlink/internal/helpers"
	"github.com/leonardomso/gfmlink/internal/logging"
	"github.com/leonardomso/gfmlink/internal/output"
	"github.com/leonardomso/gfmlink/internal/processor"
	"github.com/leonardomso/gfmlink/internal/stats"
)

// buildReport creates an output.Report from batch results.
func buildReport(files []string, results []batch.Result, summary batch.Summary, urlFilter *filter.Filter) *output.Report {
	report := &output.Report{
		GeneratedAt: time.Now(),
		Files:       files,
		UniqueHrefs: CountUniqueHrefs(results),
		Summary:     summary,
		Results:     results,
	}

	if showIgnored && urlFilter != nil {
		report.Ignored = ignoredLinks(urlFilter)
	}
	return report
}

// ignoredLinks converts the links a filter left out for reporting.
func ignoredLinks(urlFilter *filter.Filter) []output.IgnoredLink {
	reasons := urlFilter.IgnoredLinks()
	ignored := make([]output.IgnoredLink, 0, len(reasons))
	for _, ig := range reasons {
		ignored = append(ignored, output.IgnoredLink{
			Href:   ig.Href,
			File:   ig.File,
			Line:   ig.Line,
			Reason: string(ig.Type),
			Rule:   ig.Rule,
		})
	}
	return ignored
}

// routeOutput handles output based on format flags.
func routeOutput(
	files []string, results []batch.Result, summary batch.Summary,
	urlFilter *filter.Filter, perf *stats.Stats, useStructuredOutput bool,
) {
	switch {
	case useStructuredOutput:
		report := buildReport(files, results, summary, urlFilter)
		data, err := output.FormatReport(report, output.Format(outputFormat))
		exitOnError(err, "Error formatting output")
		fmt.Print(string(data))

	case outputFile != "":
		report := buildReport(files, results, summary, urlFilter)
		exitOnError(output.WriteToFile(report, outputFile), "Error writing file")
		fmt.Printf("Wrote report to %s\n", outputFile)
		printSummaryLine(summary, urlFilter)
		if showStats {
			fmt.Print(perf.String())
		}

	default:
		outputText(results, summary, urlFilter)
		if showStats {
			fmt.Print(perf.String())
		}
	}
}

// printSummaryLine prints the one-line summary of a check.
func printSummaryLine(summary batch.Summary, urlFilter *filter.Filter) {
	fmt.Printf("\nSummary: %d normalized | %d need rewrite | %d failed | %d undefined refs",
		summary.Unchanged, summary.Changed, summary.Failed, summary.Missing)
	if urlFilter != nil && urlFilter.IgnoredCount() > 0 {
		fmt.Printf(" | %d ignored", urlFilter.IgnoredCount())
	}
	fmt.Println()
}

// outputText prints results as human-readable text to stdout.
func outputText(results []batch.Result, summary batch.Summary, urlFilter *filter.Filter) {
	printSummaryLine(summary, urlFilter)
	fmt.Println()

	if !summary.HasIssues() && summary.Missing == 0 {
		fmt.Println("All files are normalized!")
	}

	printSection("Needs Rewrite", batch.FilterChanged(results), func(r batch.Result) {
		fmt.Printf("  %s  (%d %s, %d %s)\n", r.Path,
			len(r.Links), helpers.Plural(len(r.Links), "link"),
			r.Definitions, helpers.Plural(r.Definitions, "definition"))
	})

	var missing []batch.Result
	for _, r := range results {
		if len(r.Missing) > 0 {
			missing = append(missing, r)
		}
	}
	printSection("Undefined References", missing, func(r batch.Result) {
		for _, m := range r.Missing {
			fmt.Printf("  %s:%d  [%s]\n", r.Path, m.Line+1, helpers.TruncateText(m.Label, 60))
		}
	})

	printSection("Failed", batch.FilterByStatus(results, batch.StatusFailed), func(r batch.Result) {
		fmt.Printf("  %s\n    Error: %s\n", r.Path, r.Error)
	})

	if showIgnored && urlFilter != nil {
		printIgnoredLinks(urlFilter)
	}
}

// printSection prints a titled section of results if any exist.
func printSection(title string, results []batch.Result, printer func(batch.Result)) {
	if len(results) == 0 {
		return
	}
	fmt.Printf("=== %s (%d) ===\n\n", title, len(results))
	for _, r := range results {
		printer(r)
	}
	fmt.Println()
}

// printIgnoredLinks lists the links filter rules left out.
func printIgnoredLinks(urlFilter *filter.Filter) {
	ignored := urlFilter.IgnoredLinks()
	if len(ignored) == 0 {
		return
	}

	fmt.Printf("=== Ignored (%d) ===\n\n", len(ignored))
	for _, ig := range ignored {
		fmt.Printf("  %s\n", helpers.TruncateHref(ig.Href, 80))
		fmt.Printf("    File: %s:%d\n", ig.File, ig.Line)
		fmt.Printf("    Rule: %s %q\n\n", ig.Type, ig.Rule)
	}
}

// runCrossCheck compares the links of every readable file with the links
// goldmark finds and returns the number of files that disagree or could
// not be compared.
func runCrossCheck(ctx context.Context, proc *processor.Processor, results []batch.Result, logger *slog.Logger, quiet bool) int {
	disagreements := 0
	for _, r := range results {
		if r.Status == batch.StatusFailed {
			continue
		}

		report, err := crosscheck.Check(ctx, proc, r.Original)
		if err != nil {
			disagreements++
			logger.Warn("Crosscheck failed", logging.File(r.Path), logging.Err(err))
			continue
		}
		if report.OK() {
			logger.Debug("Crosscheck agreed", logging.File(r.Path), logging.Count(report.Agreed))
			continue
		}

		disagreements++
		for _, d := range report.Discrepancies {
			logger.Warn("Crosscheck discrepancy",
				logging.File(r.Path), logging.Line(d.Line),
				slog.String("href", d.Href), slog.String("found_by", string(d.Found)))
		}
		if !quiet {
			n := len(report.Discrepancies)
			fmt.Printf("Crosscheck: %s has %d %s only one parser found\n",
				r.Path, n, helpers.Plural(n, "link"))
		}
	}
	return disagreements
}
