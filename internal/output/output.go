// Package output provides formatting and file writing for normalization
// reports.
package output

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leonardomso/gfmlink/internal/batch"
)

// Format represents an output format type.
type Format string

const (
	// FormatJSON outputs as JSON.
	FormatJSON Format = "json"
	// FormatYAML outputs as YAML.
	FormatYAML Format = "yaml"
	// FormatTOML outputs as TOML.
	FormatTOML Format = "toml"
	// FormatXML outputs as generic XML.
	FormatXML Format = "xml"
	// FormatJUnit outputs as JUnit XML for CI/CD integration.
	FormatJUnit Format = "junit"
	// FormatMarkdown outputs as a Markdown report.
	FormatMarkdown Format = "markdown"
)

// ValidFormats returns all valid format strings.
func ValidFormats() []string {
	return []string{
		string(FormatJSON),
		string(FormatYAML),
		string(FormatTOML),
		string(FormatXML),
		string(FormatJUnit),
		string(FormatMarkdown),
	}
}

// IsValidFormat checks if a format string is valid.
func IsValidFormat(s string) bool {
	switch Format(strings.ToLower(s)) {
	case FormatJSON, FormatYAML, FormatTOML, FormatXML, FormatJUnit, FormatMarkdown:
		return true
	default:
		return false
	}
}

// IgnoredLink represents a link that was left out by filter rules.
type IgnoredLink struct {
	Href   string
	File   string
	Line   int
	Reason string // "domain", "pattern", or "regex"
	Rule   string // The rule that matched
}

// Report contains all data needed for output formatting.
type Report struct {
	GeneratedAt time.Time
	Files       []string
	UniqueHrefs int
	Summary     batch.Summary
	Results     []batch.Result
	Ignored     []IgnoredLink
}

// Formatter is the interface that output formatters implement.
type Formatter interface {
	Format(report *Report) ([]byte, error)
}

// GetFormatter returns the appropriate formatter for a format.
func GetFormatter(format Format) (Formatter, error) {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatTOML:
		return &TOMLFormatter{}, nil
	case FormatXML:
		return &XMLFormatter{}, nil
	case FormatJUnit:
		return &JUnitFormatter{}, nil
	case FormatMarkdown:
		return &MarkdownFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// FormatReport formats a report using the specified format.
func FormatReport(report *Report, format Format) ([]byte, error) {
	formatter, err := GetFormatter(format)
	if err != nil {
		return nil, err
	}
	return formatter.Format(report)
}

// InferFormat determines the output format from a filename extension.
func InferFormat(filename string) (Format, error) {
	// Handle special case for JUnit
	if strings.HasSuffix(strings.ToLower(filename), ".junit.xml") {
		return FormatJUnit, nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".xml":
		return FormatXML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf(
			"cannot infer format from extension %q (supported: .json, .yaml, .yml, .toml, .xml, .junit.xml, .md, .markdown)",
			ext,
		)
	}
}

// WriteToFile writes a formatted report to a file.
func WriteToFile(report *Report, filename string) error {
	format, err := InferFormat(filename)
	if err != nil {
		return err
	}

	data, err := FormatReport(report, format)
	if err != nil {
		return fmt.Errorf("formatting report: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// document is the encoded shape of a Report shared by the JSON, YAML,
// TOML and XML formatters.
type document struct {
	XMLName     xml.Name    `json:"-" yaml:"-" toml:"-" xml:"report"`
	GeneratedAt string      `json:"generated_at" yaml:"generated_at" toml:"generated_at" xml:"generated_at,attr"`
	TotalFiles  int         `json:"total_files" yaml:"total_files" toml:"total_files" xml:"total_files,attr"`
	UniqueHrefs int         `json:"unique_hrefs" yaml:"unique_hrefs" toml:"unique_hrefs" xml:"unique_hrefs,attr"`
	Summary     docSummary  `json:"summary" yaml:"summary" toml:"summary" xml:"summary"`
	Files       []docFile   `json:"files" yaml:"files" toml:"files" xml:"files>file"`
	Ignored     []docIgnore `json:"ignored,omitempty" yaml:"ignored,omitempty" toml:"ignored,omitempty" xml:"ignored>item,omitempty"`
}

type docSummary struct {
	Changed   int `json:"changed" yaml:"changed" toml:"changed" xml:"changed"`
	Unchanged int `json:"unchanged" yaml:"unchanged" toml:"unchanged" xml:"unchanged"`
	Failed    int `json:"failed" yaml:"failed" toml:"failed" xml:"failed"`
	Links     int `json:"links" yaml:"links" toml:"links" xml:"links"`
	Missing   int `json:"missing" yaml:"missing" toml:"missing" xml:"missing"`
	Ignored   int `json:"ignored,omitempty" yaml:"ignored,omitempty" toml:"ignored,omitempty" xml:"ignored,omitempty"`
}

type docFile struct {
	Path        string       `json:"path" yaml:"path" toml:"path" xml:"path,attr"`
	Status      string       `json:"status" yaml:"status" toml:"status" xml:"status,attr"`
	Definitions int          `json:"definitions" yaml:"definitions" toml:"definitions" xml:"definitions,attr"`
	Error       string       `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty" xml:"error,omitempty"`
	Links       []docLink    `json:"links,omitempty" yaml:"links,omitempty" toml:"links,omitempty" xml:"links>link,omitempty"`
	Missing     []docMissing `json:"missing,omitempty" yaml:"missing,omitempty" toml:"missing,omitempty" xml:"missing>ref,omitempty"`
}

type docLink struct {
	Href  string `json:"href" yaml:"href" toml:"href" xml:"href"`
	Title string `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty" xml:"title,omitempty"`
	Text  string `json:"text" yaml:"text" toml:"text" xml:"text"`
	Kind  string `json:"kind" yaml:"kind" toml:"kind" xml:"kind,attr"`
	Image bool   `json:"image,omitempty" yaml:"image,omitempty" toml:"image,omitempty" xml:"image,attr,omitempty"`
	Line  int    `json:"line" yaml:"line" toml:"line" xml:"line,attr"`
}

type docMissing struct {
	Label string `json:"label" yaml:"label" toml:"label" xml:"label,attr"`
	Text  string `json:"text" yaml:"text" toml:"text" xml:",chardata"`
	Line  int    `json:"line" yaml:"line" toml:"line" xml:"line,attr"`
}

type docIgnore struct {
	Href   string `json:"href" yaml:"href" toml:"href" xml:"href"`
	File   string `json:"file" yaml:"file" toml:"file" xml:"file"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty" toml:"line,omitempty" xml:"line,omitempty"`
	Reason string `json:"reason" yaml:"reason" toml:"reason" xml:"reason"`
	Rule   string `json:"rule" yaml:"rule" toml:"rule" xml:"rule"`
}

func newDocument(report *Report) document {
	doc := document{
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		TotalFiles:  len(report.Files),
		UniqueHrefs: report.UniqueHrefs,
		Summary: docSummary{
			Changed:   report.Summary.Changed,
			Unchanged: report.Summary.Unchanged,
			Failed:    report.Summary.Failed,
			Links:     report.Summary.Links,
			Missing:   report.Summary.Missing,
			Ignored:   len(report.Ignored),
		},
		Files: make([]docFile, 0, len(report.Results)),
	}

	for _, r := range report.Results {
		f := docFile{
			Path:        r.Path,
			Status:      r.Status.String(),
			Definitions: r.Definitions,
			Error:       r.Error,
		}
		for _, l := range r.Links {
			f.Links = append(f.Links, docLink(l))
		}
		for _, m := range r.Missing {
			// Missing lines are zero-based.
			f.Missing = append(f.Missing, docMissing{Label: m.Label, Text: m.Text, Line: m.Line + 1})
		}
		doc.Files = append(doc.Files, f)
	}

	for _, ig := range report.Ignored {
		doc.Ignored = append(doc.Ignored, docIgnore(ig))
	}

	return doc
}
