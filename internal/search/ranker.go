// Package search scores free-text queries against page fields and builds
// bounded match snippets. It operates on plain values so any backend can
// rank whatever page set it assembled.
package search

import (
	"strings"
	"unicode"
)

// Field match weights. Scores for a page are the sum over all matching
// fields; pages that match nothing score zero and are excluded.
const (
	TitleWeight   = 10
	TagWeight     = 5
	ExcerptWeight = 3
)

// SnippetRadius is the number of characters kept on each side of the
// first match when building MatchedContent.
const SnippetRadius = 50

const ellipsis = "..."

// Score computes the relevance of a page for query. Matching is
// case-insensitive substring containment; each matching tag contributes
// independently.
func Score(title string, tags []string, excerpt, query string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	score := 0
	if strings.Contains(strings.ToLower(title), q) {
		score += TitleWeight
	}
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), q) {
			score += TagWeight
		}
	}
	if strings.Contains(strings.ToLower(excerpt), q) {
		score += ExcerptWeight
	}
	return score
}

// Snippet returns the text surrounding the first case-insensitive
// occurrence of query, bounded by SnippetRadius runes on each side so
// multibyte text is never cut mid-rune. Truncated edges are marked with
// an ellipsis. When the query does not occur the head of the text is
// returned instead.
func Snippet(text, query string) string {
	q := strings.TrimSpace(query)
	if text == "" {
		return ""
	}

	runes := []rune(text)
	idx, qlen := -1, 0
	if q != "" {
		needle := lowerRunes([]rune(q))
		idx = indexRunes(lowerRunes(runes), needle)
		qlen = len(needle)
	}
	if idx < 0 {
		if len(runes) <= 2*SnippetRadius {
			return text
		}
		return string(runes[:2*SnippetRadius]) + ellipsis
	}

	start := idx - SnippetRadius
	prefix := ""
	if start < 0 {
		start = 0
	} else if start > 0 {
		prefix = ellipsis
	}

	end := idx + qlen + SnippetRadius
	suffix := ""
	if end > len(runes) {
		end = len(runes)
	} else if end < len(runes) {
		suffix = ellipsis
	}

	return prefix + string(runes[start:end]) + suffix
}

func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, r := range needle {
			if haystack[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
