package cmd

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leonardomso/gfmlink/internal/batch"
	"github.com/leonardomso/gfmlink/internal/helpers"
	"github.com/leonardomso/gfmlink/internal/processor"
	"github.com/leonardomso/gfmlink/internal/stats"
)

// Flag variables for the links command.
var (
	linksFormat         string
	linksIgnoreDomains  []string
	linksIgnorePatterns []string
	linksIgnoreRegex    []string
	linksShowIgnored    bool
)

// linkFormats are the structured formats the links command writes.
var linkFormats = []string{"json", "yaml", "toml"}

// linksCmd represents the links command.
var linksCmd = &cobra.Command{
	Use:   "links [path]",
	Short: "List the links of markdown files",
	Long: `List every resolved link and image of the markdown files under path,
with the syntax it was written in and its line.

Examples:
  gfmlink links                          # List links in current directory
  gfmlink links README.md                # List links of one file
  gfmlink links --format=json            # Output JSON to stdout
  gfmlink links --ignore-domain=localhost
  gfmlink links --show-ignored           # Show which links were ignored`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLinks,
}

func init() {
	rootCmd.AddCommand(linksCmd)

	linksCmd.Flags().StringVarP(&linksFormat, "format", "f", "",
		"Output format for stdout: "+strings.Join(linkFormats, ", "))
	linksCmd.Flags().StringSliceVar(&linksIgnoreDomains, "ignore-domain", nil,
		"Domains to ignore, includes subdomains (can be repeated or comma-separated)")
	linksCmd.Flags().StringSliceVar(&linksIgnorePatterns, "ignore-pattern", nil,
		"Glob patterns to ignore (can be repeated)")
	linksCmd.Flags().StringSliceVar(&linksIgnoreRegex, "ignore-regex", nil,
		"Regex patterns to ignore (can be repeated)")
	linksCmd.Flags().BoolVar(&linksShowIgnored, "show-ignored", false,
		"Show which links were ignored and why")
}

// fileLinks are the links of one file.
type fileLinks struct {
	File  string                 `json:"file" yaml:"file" toml:"file"`
	Links []processor.LinkRecord `json:"links" yaml:"links" toml:"links"`
}

// linkListing is the structured output of the links command.
type linkListing struct {
	Files []fileLinks `json:"files" yaml:"files" toml:"files"`
}

func runLinks(_ *cobra.Command, args []string) {
	path := getPathArg(args)
	structured := linksFormat != ""
	if structured && !slices.Contains(linkFormats, linksFormat) {
		exitOnError(fmt.Errorf("invalid format %q; valid formats: %s",
			linksFormat, strings.Join(linkFormats, ", ")), "Invalid flags")
	}

	lc, err := LoadConfig(path, noConfig)
	exitOnError(err, "Error loading config")

	logger := newLogger()
	proc := processor.New(append(lc.BuildProcessorOptions(), processor.WithLogger(logger))...)

	urlFilter, err := CreateFilterWithConfig(lc.Config(), linksIgnoreDomains, linksIgnorePatterns, linksIgnoreRegex)
	exitOnError(err, "Error creating filter")

	perf := stats.New()
	files := scanFiles(lc.BuildScanOptions(path), perf, structured)
	runner := batch.New(proc, lc.BuildBatchOptions(batch.DefaultConcurrency), logger)
	results := convertFiles(runner, files, urlFilter, perf)

	listing := linkListing{Files: make([]fileLinks, 0, len(results))}
	for _, r := range results {
		if r.Status == batch.StatusFailed || len(r.Links) == 0 {
			continue
		}
		listing.Files = append(listing.Files, fileLinks{File: r.Path, Links: r.Links})
	}

	if structured {
		data, err := marshalListing(listing, linksFormat)
		exitOnError(err, "Error formatting output")
		fmt.Print(string(data))
		return
	}

	printLinks(listing)
	if linksShowIgnored && urlFilter != nil {
		printIgnoredLinks(urlFilter)
	}
}

func marshalListing(listing linkListing, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(listing, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml":
		return yaml.Marshal(listing)
	case "toml":
		return toml.Marshal(listing)
	}
	return nil, fmt.Errorf("unknown format: %s", format)
}

func printLinks(listing linkListing) {
	total := 0
	for _, fl := range listing.Files {
		total += len(fl.Links)
	}
	if total == 0 {
		fmt.Println("No links found.")
		return
	}

	fmt.Printf("Found %d %s\n\n", total, helpers.Plural(total, "link"))
	for _, fl := range listing.Files {
		fmt.Printf("=== %s (%d) ===\n\n", fl.File, len(fl.Links))
		for _, l := range fl.Links {
			kind := l.Kind
			if l.Image {
				kind += " image"
			}
			fmt.Printf("  %4d  %-16s %s\n", l.Line, kind, helpers.TruncateHref(l.Href, 80))
			if text := helpers.TruncateText(l.Text, 60); text != "" {
				fmt.Printf("        Text: %s\n", text)
			}
		}
		fmt.Println()
	}
}

