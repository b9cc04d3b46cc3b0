// Package resolve provides fuzzy matching for command and argument names,
// used to build "did you mean" hints.
package resolve

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

type loweredSource []string

func (s loweredSource) String(i int) string { return strings.ToLower(s[i]) }
func (s loweredSource) Len() int            { return len(s) }

// Suggest returns the best candidate for a mistyped name, or "" when
// nothing matches. Exact case-insensitive matches win over fuzzy ones.
func Suggest(query string, candidates []string) string {
	query = strings.TrimSpace(query)
	if query == "" || len(candidates) == 0 {
		return ""
	}

	for _, c := range candidates {
		if strings.EqualFold(c, query) {
			return c
		}
	}

	results := fuzzy.FindFrom(strings.ToLower(query), loweredSource(candidates))
	if len(results) == 0 {
		return ""
	}
	return candidates[results[0].Index]
}

// SuggestAll returns up to limit candidates ranked by score (best first).
func SuggestAll(query string, candidates []string, limit int) []string {
	query = strings.TrimSpace(query)
	if query == "" || len(candidates) == 0 || limit <= 0 {
		return nil
	}

	results := fuzzy.FindFrom(strings.ToLower(query), loweredSource(candidates))
	if len(results) > limit {
		results = results[:limit]
	}
	matches := make([]string, len(results))
	for i, r := range results {
		matches[i] = candidates[r.Index]
	}
	return matches
}
