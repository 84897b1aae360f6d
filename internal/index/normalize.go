package index

import (
	"regexp"
	"strings"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reNonAlnum   = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeToken case-folds, trims and collapses internal whitespace.
// The same normalization runs at index-build time and at query time.
func NormalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return reWhitespace.ReplaceAllString(s, " ")
}

// WordTokens splits a normalized string on non-alphanumeric boundaries.
func WordTokens(s string) []string {
	parts := reNonAlnum.Split(NormalizeToken(s), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// QueryTokens produces the token set for a search query: the individual
// words plus the full normalized query as a single token, so multi-word
// skill names ("machine learning") are matchable as a unit. Duplicates
// are removed, first occurrence wins.
func QueryTokens(query string) []string {
	tokens := WordTokens(query)
	if full := NormalizeToken(query); full != "" {
		tokens = append(tokens, full)
	}

	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
