// Package claims implements claim normalization (C2) and the enumerated
// ClaimTerm/ClaimSet bitset representation adopted by REDESIGN FLAG R1 in
// place of raw substring scanning.
package claims

import (
	"strings"
)

// synonyms collapses textual variants onto one canonical phrase. Order
// matters: longer phrases are replaced before their substrings so that,
// e.g., "100 percent grass fed" first becomes "100% grass-fed" rather than
// partially matching "grass fed" alone.
var synonyms = []struct {
	from string
	to   string
}{
	{"100 percent", "100%"},
	{"grass fed", "grass-fed"},
	{"grassfed", "grass-fed"},
	{"grass finished", "grass-finished"},
	{"grassfinished", "grass-finished"},
	{"pasture raised", "pasture-raised"},
	{"pastureraised", "pasture-raised"},
	{"no cafo", "no cafo"},
	{"never confined", "never confined"},
	{"single-origin", "single origin"},
}

// Normalize applies the fixed C2 pipeline to one raw claim string: trim,
// lowercase, strip non-alphanumeric (except spaces and the %/- that survive
// the synonym table), collapse whitespace, apply synonyms.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ToLower(s)
	s = stripPunctuation(s)
	s = collapseWhitespace(s)
	for _, syn := range synonyms {
		s = strings.ReplaceAll(s, syn.from, syn.to)
	}
	return s
}

// NormalizeAll normalizes a list of raw claims and collapses duplicates.
// Order is irrelevant to the classifier, so the result is not sorted —
// callers that need determinism for display should sort separately.
func NormalizeAll(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		n := Normalize(r)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '%', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
