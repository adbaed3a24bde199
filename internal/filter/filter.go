// Package filter hides links from reports based on domains and patterns.
package filter

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	"github.com/leonardomso/gfmlink/internal/processor"
)

// RuleType names the kind of rule that matched a link.
type RuleType string

// Rule types, in the order they are checked.
const (
	RuleDomain  RuleType = "domain"
	RulePattern RuleType = "pattern"
	RuleRegex   RuleType = "regex"
)

// IgnoreReason describes why a link was ignored.
type IgnoreReason struct {
	Type RuleType
	Rule string // The rule that matched
	Href string
	File string
	Line int
}

// Filter decides which links are left out of reports.
type Filter struct {
	// domains maps lowercase domain names; each also matches its subdomains.
	domains map[string]bool

	globPatterns  []compiledGlob
	regexPatterns []compiledRegex

	ignored []IgnoreReason
}

type compiledGlob struct {
	pattern  glob.Glob
	original string
}

type compiledRegex struct {
	pattern  *regexp.Regexp
	original string
}

// Config holds filter configuration.
type Config struct {
	Domains       []string // Domains to ignore (includes subdomains)
	GlobPatterns  []string // Glob patterns (e.g., "*.local/*")
	RegexPatterns []string // Regex patterns (e.g., ".*\\.internal\\..*")
}

// New creates a Filter. Returns an error if any pattern fails to compile.
func New(cfg Config) (*Filter, error) {
	f := &Filter{domains: map[string]bool{}}

	for _, d := range cfg.Domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			f.domains[d] = true
		}
	}

	for _, p := range cfg.GlobPatterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", p, err)
		}
		f.globPatterns = append(f.globPatterns, compiledGlob{pattern: g, original: p})
	}

	for _, p := range cfg.RegexPatterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", p, err)
		}
		f.regexPatterns = append(f.regexPatterns, compiledRegex{pattern: r, original: p})
	}

	return f, nil
}

// ShouldIgnore reports whether href is left out and records the reason.
// Check order (fastest first): domain, glob, regex.
func (f *Filter) ShouldIgnore(href, file string, line int) bool {
	if f == nil {
		return false
	}

	typ, rule, ok := f.match(href)
	if !ok {
		return false
	}
	f.ignored = append(f.ignored, IgnoreReason{Type: typ, Rule: rule, Href: href, File: file, Line: line})
	return true
}

func (f *Filter) match(href string) (RuleType, string, bool) {
	if rule, ok := f.matchesDomain(href); ok {
		return RuleDomain, rule, true
	}
	for _, g := range f.globPatterns {
		if g.pattern.Match(href) {
			return RulePattern, g.original, true
		}
	}
	for _, r := range f.regexPatterns {
		if r.pattern.MatchString(href) {
			return RuleRegex, r.original, true
		}
	}
	return "", "", false
}

// Apply returns the links of file that are not ignored.
func (f *Filter) Apply(file string, links []processor.LinkRecord) []processor.LinkRecord {
	if !f.HasRules() {
		return links
	}
	kept := make([]processor.LinkRecord, 0, len(links))
	for _, l := range links {
		if !f.ShouldIgnore(l.Href, file, l.Line) {
			kept = append(kept, l)
		}
	}
	return kept
}

// matchesDomain checks the host of href, or the address domain of a mailto
// link, against the ignored domains and their subdomains. Relative links
// have no host and never match.
func (f *Filter) matchesDomain(href string) (string, bool) {
	if len(f.domains) == 0 {
		return "", false
	}

	host := hostOf(href)
	if host == "" {
		return "", false
	}

	if f.domains[host] {
		return host, true
	}
	for domain := range f.domains {
		if strings.HasSuffix(host, "."+domain) {
			return domain, true
		}
	}
	return "", false
}

func hostOf(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.EqualFold(parsed.Scheme, "mailto") {
		if at := strings.LastIndexByte(parsed.Opaque, '@'); at >= 0 {
			return strings.ToLower(parsed.Opaque[at+1:])
		}
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// IgnoredCount returns the number of links that were ignored.
func (f *Filter) IgnoredCount() int {
	if f == nil {
		return 0
	}
	return len(f.ignored)
}

// IgnoredLinks returns all ignored links with their reasons.
func (f *Filter) IgnoredLinks() []IgnoreReason {
	if f == nil {
		return nil
	}
	return f.ignored
}

// Reset clears the list of ignored links.
func (f *Filter) Reset() {
	if f != nil {
		f.ignored = f.ignored[:0]
	}
}

// HasRules returns true if the filter has any rules defined.
func (f *Filter) HasRules() bool {
	if f == nil {
		return false
	}
	return len(f.domains) > 0 || len(f.globPatterns) > 0 || len(f.regexPatterns) > 0
}

// Stats returns a summary of the filter's rules.
func (f *Filter) Stats() (domains, globs, regexes int) {
	if f == nil {
		return 0, 0, 0
	}
	return len(f.domains), len(f.globPatterns), len(f.regexPatterns)
}
