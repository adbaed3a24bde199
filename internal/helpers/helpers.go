// Package helpers provides small formatting functions shared by the
// command line and the interactive view.
package helpers

import (
	"strings"
	"unicode/utf8"
)

const ellipsis = "..."

// TruncateText collapses whitespace runs (link text may span lines) and
// shortens the result to maxLen runes, ending it with "..." when cut.
// A maxLen below 4 leaves the text uncut.
func TruncateText(text string, maxLen int) string {
	text = strings.Join(strings.Fields(text), " ")
	if maxLen < len(ellipsis)+1 || utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLen-len(ellipsis)]) + ellipsis
}

// TruncateHref shortens a link destination to maxLen bytes by eliding its
// middle, so both the host and the final path segment stay readable.
func TruncateHref(href string, maxLen int) string {
	if maxLen < 2*len(ellipsis) || len(href) <= maxLen {
		return href
	}
	keep := maxLen - len(ellipsis)
	head := keep - keep/2
	return href[:head] + ellipsis + href[len(href)-keep/2:]
}

// CountUnique returns the number of distinct values in items.
func CountUnique[T comparable](items []T) int {
	seen := make(map[T]struct{}, len(items))
	for _, item := range items {
		seen[item] = struct{}{}
	}
	return len(seen)
}

// Plural returns word with an "s" appended unless n is 1.
func Plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
