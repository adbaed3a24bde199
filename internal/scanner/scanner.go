// Package scanner finds Markdown files in a directory tree.
package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// MarkdownExtensions are the extensions FindMarkdownFiles matches.
var MarkdownExtensions = []string{".md", ".markdown", ".mdown", ".mkd"}

// FindMarkdownFiles walks a directory and returns all Markdown file paths.
// It skips hidden directories (starting with .) like .git.
func FindMarkdownFiles(root string) ([]string, error) {
	return FindFiles(root, MarkdownExtensions)
}

// FindFiles walks a directory and returns all files matching the given extensions.
// Extensions should include the leading dot (e.g., ".md").
// It skips hidden directories (starting with .) like .git. A root that is a
// file is returned as is when its extension matches.
func FindFiles(root string, extensions []string) ([]string, error) {
	if len(extensions) == 0 {
		return nil, nil
	}

	normalizedExts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		normalizedExts[strings.ToLower(ext)] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() && strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}

		if !d.IsDir() && normalizedExts[strings.ToLower(filepath.Ext(d.Name()))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// ScanOptions holds options for scanning files with filtering.
type ScanOptions struct {
	// Root is the directory or file to scan.
	Root string

	// Extensions to include. Empty means MarkdownExtensions.
	Extensions []string

	// Include patterns (glob) - if set, only matching files are included.
	Include []string

	// Exclude patterns (glob) - matching files are excluded.
	Exclude []string
}

// FindFilesWithOptions scans for files with include/exclude filtering.
// Patterns match the path relative to Root with forward slashes.
func FindFilesWithOptions(opts ScanOptions) ([]string, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = MarkdownExtensions
	}

	files, err := FindFiles(opts.Root, exts)
	if err != nil {
		return nil, err
	}

	if len(opts.Include) > 0 {
		files, err = filterByGlobPatterns(files, opts.Root, opts.Include, true)
		if err != nil {
			return nil, err
		}
	}

	if len(opts.Exclude) > 0 {
		files, err = filterByGlobPatterns(files, opts.Root, opts.Exclude, false)
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// filterByGlobPatterns keeps files matching any pattern when include is
// true and removes them otherwise.
func filterByGlobPatterns(files []string, root string, patterns []string, include bool) ([]string, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, g)
	}

	result := make([]string, 0, len(files))
	for _, f := range files {
		relPath, err := filepath.Rel(root, f)
		if err != nil || relPath == "." {
			relPath = f
		}
		relPath = filepath.ToSlash(relPath)

		if matchesAnyGlob(relPath, compiled) == include {
			result = append(result, f)
		}
	}

	return result, nil
}

func matchesAnyGlob(path string, patterns []glob.Glob) bool {
	for _, g := range patterns {
		if g.Match(path) {
			return true
		}
	}
	return false
}
