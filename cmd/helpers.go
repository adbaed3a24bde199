package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/leonardomso/gfmlink/internal/batch"
	"github.com/leonardomso/gfmlink/internal/config"
	"github.com/leonardomso/gfmlink/internal/filter"
	"github.com/leonardomso/gfmlink/internal/helpers"
	"github.com/leonardomso/gfmlink/internal/processor"
	"github.com/leonardomso/gfmlink/internal/scanner"
)

// LoadedConfig wraps a loaded configuration and provides helper methods
// for getting effective values that respect CLI overrides.
type LoadedConfig struct {
	cfg      *config.Config
	noConfig bool
}

// LoadConfig finds the configuration file for path unless noConfig is true.
// The search starts at path, or its directory when path is a file, and
// walks up to the filesystem root.
// Returns an error if the config file exists but is invalid.
func LoadConfig(path string, noConfig bool) (*LoadedConfig, error) {
	if noConfig {
		return &LoadedConfig{cfg: &config.Config{}, noConfig: true}, nil
	}

	cfg, err := config.FindAndLoad(configDir(path))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &LoadedConfig{cfg: cfg}, nil
}

// configDir returns the directory the config search starts from.
func configDir(path string) string {
	if path == "" || path == "-" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return filepath.Dir(abs)
	}
	return abs
}

// Config returns the underlying config for direct access.
func (lc *LoadedConfig) Config() *config.Config {
	return lc.cfg
}

// GetConcurrency returns the effective concurrency.
// CLI overrides config if it differs from the default.
func (lc *LoadedConfig) GetConcurrency(cliValue, defaultValue int) int {
	if cliValue != defaultValue {
		return cliValue
	}
	if lc.cfg.Normalize.Concurrency > 0 {
		return lc.cfg.Normalize.Concurrency
	}
	return defaultValue
}

// GetOutputFormat returns the effective output format.
// CLI overrides config if set. The config value "text" means no
// structured output.
func (lc *LoadedConfig) GetOutputFormat(cliValue string) string {
	if cliValue != "" {
		return cliValue
	}
	if lc.cfg.Output.Format == "text" {
		return ""
	}
	return lc.cfg.Output.Format
}

// GetShowStats returns the effective showStats setting.
// CLI true overrides config.
func (lc *LoadedConfig) GetShowStats(cliValue bool) bool {
	if cliValue {
		return true
	}
	return lc.cfg.Output.ShowStats
}

// BuildProcessorOptions returns the processor options the config selects.
func (lc *LoadedConfig) BuildProcessorOptions() []processor.Option {
	opts := []processor.Option{processor.WithAutolink(lc.cfg.AutolinkEnabled())}
	if len(lc.cfg.Autolink.Schemes) > 0 {
		opts = append(opts, processor.WithSchemes(lc.cfg.Autolink.Schemes...))
	}
	return opts
}

// BuildBatchOptions creates batch.Options from config and CLI values.
func (lc *LoadedConfig) BuildBatchOptions(cliConcurrency int) batch.Options {
	return batch.DefaultOptions().
		WithConcurrency(lc.GetConcurrency(cliConcurrency, batch.DefaultConcurrency)).
		WithFinalNewline(lc.cfg.FinalNewline())
}

// BuildScanOptions creates scanner.ScanOptions from config and path.
func (lc *LoadedConfig) BuildScanOptions(path string) scanner.ScanOptions {
	return scanner.ScanOptions{
		Root:    path,
		Include: lc.cfg.Scan.Include,
		Exclude: lc.cfg.Scan.Exclude,
	}
}

// CreateFilterWithConfig builds a link filter using a pre-loaded config.
// CLI flags are merged additively with the config settings.
// Returns nil if no filter rules are defined.
func CreateFilterWithConfig(cfg *config.Config, cliDomains, cliPatterns, cliRegex []string) (*filter.Filter, error) {
	domains := append(append([]string{}, cfg.Ignore.Domains...), cliDomains...)
	patterns := append(append([]string{}, cfg.Ignore.Patterns...), cliPatterns...)
	regex := append(append([]string{}, cfg.Ignore.Regex...), cliRegex...)

	if len(domains) == 0 && len(patterns) == 0 && len(regex) == 0 {
		return nil, nil
	}

	return filter.New(filter.Config{
		Domains:       domains,
		GlobPatterns:  patterns,
		RegexPatterns: regex,
	})
}

// CountUniqueHrefs returns the number of distinct hrefs across results.
func CountUniqueHrefs(results []batch.Result) int {
	var hrefs []string
	for _, r := range results {
		for _, l := range r.Links {
			hrefs = append(hrefs, l.Href)
		}
	}
	return helpers.CountUnique(hrefs)
}

// exitOnError prints an error message and exits if err is not nil.
func exitOnError(err error, message string) {
	if err != nil {
		if message != "" {
			fmt.Fprintf(os.Stderr, "%s: %v\n", message, err)
		} else {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(1)
	}
}

// getPathArg returns the path argument or "." as default.
func getPathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// inputPath returns the file named by args, or "." when the input is
// stdin.
func inputPath(args []string) string {
	if len(args) == 0 || args[0] == "-" {
		return "."
	}
	return args[0]
}

// readInput reads the file named by args, or stdin when there is no
// argument or the argument is "-".
func readInput(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(args[0])
}
