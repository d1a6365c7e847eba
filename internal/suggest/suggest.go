// Package suggest produces a single best-effort correction for a
// hallucinated name. The algorithm is deliberately crude: the first
// candidate, in index insertion order, where either string contains the
// other case-insensitively. No ranking, no distance metric. Consumers
// depend on the output being stable for a fixed index.
package suggest

import "strings"

// Suggest returns the first candidate overlapping name, or "" when none
// does.
func Suggest(name string, candidates []string) string {
	lower := strings.ToLower(name)
	for _, c := range candidates {
		cl := strings.ToLower(c)
		if strings.Contains(cl, lower) || strings.Contains(lower, cl) {
			return c
		}
	}
	return ""
}

// Format renders a suggestion clause for a finding message, empty when
// there is nothing to suggest.
func Format(name string, candidates []string) string {
	s := Suggest(name, candidates)
	if s == "" {
		return ""
	}
	return "did you mean '" + s + "'?"
}
