// Package slug derives URL-safe page identifiers from titles.
package slug

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyTitle is returned when the input title is blank.
	ErrEmptyTitle = errors.New("slug: title is empty")
	// ErrUnusable is returned when normalization strips every character,
	// e.g. a title made entirely of punctuation.
	ErrUnusable = errors.New("slug: title produces an empty slug")
)

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9 -]`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// Make converts a page title into its canonical slug: lowercase, strip
// everything outside [a-z0-9 -], collapse whitespace runs to single
// hyphens, collapse hyphen runs, trim boundary hyphens. The derivation is
// deterministic so the same title always addresses the same page.
func Make(title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", ErrEmptyTitle
	}

	s := strings.ToLower(title)
	s = invalidChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		return "", ErrUnusable
	}
	return s, nil
}

// IsValid reports whether value is already a canonical slug.
func IsValid(value string) bool {
	if value == "" {
		return false
	}
	derived, err := Make(value)
	return err == nil && derived == value
}
