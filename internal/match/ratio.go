package match

import "strings"

// EmptyListRatio is returned when a requirement category has no items.
// Absence of a category should neither reward nor penalize, so it scores as
// the midpoint rather than 0 or 100.
const EmptyListRatio = 50.0

// RatioHit computes the percentage of requirement items fully covered by the
// candidate's token set, in [0,100], using the default lexicon.
func RatioHit(candidate TokenSet, items []string) float64 {
	return defaultLexicon.RatioHit(candidate, items)
}

// RatioHit deduplicates and normalizes the items, then credits each item only
// when every one of its canonical tokens appears in the candidate set. There
// is no partial credit per item.
func (l *Lexicon) RatioHit(candidate TokenSet, items []string) float64 {
	seen := make(map[string]struct{}, len(items))
	normalized := make([]string, 0, len(items))
	for _, item := range items {
		cleaned := strings.ToLower(strings.TrimSpace(item))
		if cleaned == "" {
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		normalized = append(normalized, cleaned)
	}
	if len(normalized) == 0 {
		return EmptyListRatio
	}

	matched := 0
	for _, item := range normalized {
		tokens := l.Canonicalize(Tokenize(item))
		if len(tokens) > 0 && candidate.ContainsAll(tokens) {
			matched++
		}
	}
	return float64(matched) / float64(len(normalized)) * 100.0
}
