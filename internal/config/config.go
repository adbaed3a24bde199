// Package config handles loading configuration from .gfmlinkrc files.
// YAML and TOML files are supported; the decoder is chosen by extension.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFileName is the default configuration file name.
const DefaultConfigFileName = ".gfmlinkrc.yaml"

// ConfigFileNames are the names searched for, in order of preference.
var ConfigFileNames = []string{DefaultConfigFileName, ".gfmlinkrc.yml", ".gfmlinkrc.toml"}

// ErrUnknownFormat is returned for config files with an unsupported extension.
var ErrUnknownFormat = errors.New("unknown config format")

// OutputFormats are the report formats accepted in output.format.
var OutputFormats = []string{"text", "json", "yaml", "toml", "xml", "junit", "markdown"}

// Config represents the complete configuration structure.
type Config struct {
	Scan      ScanConfig      `yaml:"scan" toml:"scan"`
	Autolink  AutolinkConfig  `yaml:"autolink" toml:"autolink"`
	Output    OutputConfig    `yaml:"output" toml:"output"`
	Normalize NormalizeConfig `yaml:"normalize" toml:"normalize"`
	Ignore    IgnoreConfig    `yaml:"ignore" toml:"ignore"`
}

// ScanConfig selects the files commands operate on.
type ScanConfig struct {
	// Include are glob patterns a file path must match. Empty matches all.
	Include []string `yaml:"include" toml:"include"`
	// Exclude are glob patterns that remove files.
	// Example: "vendor/**", "**/CHANGELOG.md"
	Exclude []string `yaml:"exclude" toml:"exclude"`
}

// AutolinkConfig controls bare URL autolinks.
type AutolinkConfig struct {
	// Enabled turns bare autolinks on or off. Defaults to true.
	Enabled *bool `yaml:"enabled" toml:"enabled"`
	// Schemes are the schemes bare autolinks are recognized for.
	// Example: "http", "https", "ftp"
	Schemes []string `yaml:"schemes" toml:"schemes"`
}

// OutputConfig controls reports.
type OutputConfig struct {
	Format    string `yaml:"format" toml:"format"`
	ShowStats bool   `yaml:"show_stats" toml:"show_stats"`
}

// NormalizeConfig controls batch normalization.
type NormalizeConfig struct {
	Concurrency int `yaml:"concurrency" toml:"concurrency"`
	// FinalNewline ends every rewritten file with a newline. Defaults to true.
	FinalNewline *bool `yaml:"final_newline" toml:"final_newline"`
}

// IgnoreConfig holds the rules that hide links from the links report.
type IgnoreConfig struct {
	// Domains to ignore (automatically includes subdomains).
	// Example: "example.com" will also match "www.example.com", "api.example.com".
	Domains []string `yaml:"domains" toml:"domains"`

	// Patterns are glob patterns for URL matching.
	// Example: "*.local/*", "*/internal/*"
	Patterns []string `yaml:"patterns" toml:"patterns"`

	// Regex are regular expression patterns for URL matching.
	// Example: ".*\\.test$", ".*/v[0-9]+/draft/.*"
	Regex []string `yaml:"regex" toml:"regex"`
}

// Load reads configuration from the current directory.
// Returns an empty config if no file exists (not an error).
func Load() (*Config, error) {
	for _, name := range ConfigFileNames {
		if _, err := os.Stat(name); err == nil {
			return LoadFrom(name)
		}
	}
	return &Config{}, nil
}

// LoadFrom reads configuration from a specific path.
// Returns an empty config if the file doesn't exist (not an error).
// Returns an error only if the file exists but cannot be parsed.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	var unmarshal func([]byte, any) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	case ".toml":
		unmarshal = toml.Unmarshal
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// File not found is not an error - just return empty config
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Find searches for a config file starting from startDir and walking up to
// parent directories. It returns the path of the first file found.
func Find(startDir string) (string, bool) {
	dir := startDir
	for {
		for _, name := range ConfigFileNames {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// FindAndLoad loads the config file Find locates from startDir. This
// allows project-specific configs to be found from subdirectories.
func FindAndLoad(startDir string) (*Config, error) {
	path, ok := Find(startDir)
	if !ok {
		return &Config{}, nil
	}
	return LoadFrom(path)
}

// Validate checks that every pattern compiles and the output format is known.
func (c *Config) Validate() error {
	var errs []error

	globs := slices.Concat(c.Scan.Include, c.Scan.Exclude, c.Ignore.Patterns)
	for _, p := range globs {
		if _, err := glob.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("invalid glob %q: %w", p, err))
		}
	}
	for _, r := range c.Ignore.Regex {
		if _, err := regexp.Compile(r); err != nil {
			errs = append(errs, fmt.Errorf("invalid regex %q: %w", r, err))
		}
	}
	if f := c.Output.Format; f != "" && !slices.Contains(OutputFormats, f) {
		errs = append(errs, fmt.Errorf("invalid output format %q (valid: %s)", f, strings.Join(OutputFormats, ", ")))
	}
	if c.Normalize.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("invalid concurrency %d", c.Normalize.Concurrency))
	}
	for _, s := range c.Autolink.Schemes {
		if strings.TrimSpace(strings.TrimSuffix(s, "://")) == "" {
			errs = append(errs, errors.New("empty autolink scheme"))
		}
	}

	return errors.Join(errs...)
}

// AutolinkEnabled reports whether bare autolinks are on.
func (c *Config) AutolinkEnabled() bool {
	return c.Autolink.Enabled == nil || *c.Autolink.Enabled
}

// FinalNewline reports whether rewritten files end with a newline.
func (c *Config) FinalNewline() bool {
	return c.Normalize.FinalNewline == nil || *c.Normalize.FinalNewline
}

// HasIgnoreRules reports whether any ignore rule is defined.
func (c *Config) HasIgnoreRules() bool {
	return len(c.Ignore.Domains) > 0 ||
		len(c.Ignore.Patterns) > 0 ||
		len(c.Ignore.Regex) > 0
}

// IsEmpty returns true if the config sets nothing.
func (c *Config) IsEmpty() bool {
	return !c.HasIgnoreRules() &&
		len(c.Scan.Include) == 0 &&
		len(c.Scan.Exclude) == 0 &&
		c.Autolink.Enabled == nil &&
		len(c.Autolink.Schemes) == 0 &&
		c.Output == (OutputConfig{}) &&
		c.Normalize.Concurrency == 0 &&
		c.Normalize.FinalNewline == nil
}

// Merge combines the ignore rules of another config into this one
// (additive). This is useful for merging CLI flags with file config.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	c.Ignore.Domains = append(c.Ignore.Domains, other.Ignore.Domains...)
	c.Ignore.Patterns = append(c.Ignore.Patterns, other.Ignore.Patterns...)
	c.Ignore.Regex = append(c.Ignore.Regex, other.Ignore.Regex...)
}
