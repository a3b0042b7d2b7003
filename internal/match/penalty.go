package match

// Length tier thresholds on the total (non-deduplicated) canonical token
// count of the candidate document. Short résumés are assumed
// under-informative regardless of their contents.
const (
	shortDocTokens   = 150
	partialDocTokens = 280

	shortDocPenalty   = 10.0
	partialDocPenalty = 5.0
)

// MustHaveCapValue is the ceiling applied when a job declares must-have
// requirements and the candidate satisfies none of them. Two historical
// revisions of this policy used 70.0 and 60.0; 70.0 is the canonical value
// and can be tuned via scoring.mustHaveCap in the configuration.
const MustHaveCapValue = 70.0

// Penalty tier labels reported by the inspection endpoint.
const (
	TierNone = "NONE"
	TierSoft = "SOFT"
	TierHard = "HARD"
)

// LengthPenalty returns the flat deduction for a document of the given
// canonical token count.
func LengthPenalty(tokenCount int) float64 {
	switch {
	case tokenCount < shortDocTokens:
		return shortDocPenalty
	case tokenCount < partialDocTokens:
		return partialDocPenalty
	default:
		return 0.0
	}
}

// PenaltyTier names the length tier a token count falls into.
func PenaltyTier(tokenCount int) string {
	switch {
	case tokenCount < shortDocTokens:
		return TierHard
	case tokenCount < partialDocTokens:
		return TierSoft
	default:
		return TierNone
	}
}

// MustHaveCap evaluates the must-have gate. When mustHaves is non-empty and
// the candidate set satisfies none of the items, it returns the given cap and
// true; otherwise no ceiling applies. Each item is tested with the same full
// subset containment rule as coverage scoring.
func MustHaveCap(candidate TokenSet, mustHaves []string, cap float64) (float64, bool) {
	return defaultLexicon.MustHaveCap(candidate, mustHaves, cap)
}

// MustHaveCap evaluates the gate using this lexicon's alias table.
func (l *Lexicon) MustHaveCap(candidate TokenSet, mustHaves []string, cap float64) (float64, bool) {
	if len(mustHaves) == 0 {
		return 0, false
	}
	for _, item := range mustHaves {
		tokens := l.Canonicalize(Tokenize(item))
		if len(tokens) > 0 && candidate.ContainsAll(tokens) {
			return 0, false
		}
	}
	return cap, true
}
