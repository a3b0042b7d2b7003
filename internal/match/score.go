package match

import "math"

// Weights for the base score. Languages are detected and reported but carry
// no weight; they are descriptive metadata only.
type Weights struct {
	Similarity   float64
	Skills       float64
	Requirements float64
	Profile      float64
}

// DefaultWeights returns the production weighting.
func DefaultWeights() Weights {
	return Weights{
		Similarity:   0.40,
		Skills:       0.25,
		Requirements: 0.25,
		Profile:      0.10,
	}
}

// Components is the full breakdown behind a final score. It is a pure value
// recomputed on every invocation.
type Components struct {
	Similarity        float64  `json:"similarity"`
	SkillsRatio       float64  `json:"skills_ratio"`
	RequirementsRatio float64  `json:"requirements_ratio"`
	ProfileRatio      float64  `json:"profile_ratio"`
	LanguagesRatio    float64  `json:"languages_ratio"`
	LengthPenalty     float64  `json:"length_penalty"`
	MustHaveCap       *float64 `json:"must_have_cap,omitempty"`
	BaseScore         float64  `json:"base_score"`

	// TokenCount is the total canonical token count of the candidate text;
	// KeywordCount is the size of the deduplicated keyword set.
	TokenCount   int `json:"token_count"`
	KeywordCount int `json:"keyword_count"`
}

// Inputs carries the job-side requirement lists fed into coverage scoring.
type Inputs struct {
	Skills       []string
	Requirements []string
	Profile      []string
	Languages    []string
	MustHaves    []string
}

// Score computes the component breakdown for a candidate document against a
// job's requirement lists. similarity must already be mapped into [0,100].
// cap is the ceiling applied when the must-have gate fails.
func Score(candidateText string, similarity float64, in Inputs, w Weights, cap float64) Components {
	return defaultLexicon.Score(candidateText, similarity, in, w, cap)
}

// Score computes the breakdown using this lexicon's alias table.
func (l *Lexicon) Score(candidateText string, similarity float64, in Inputs, w Weights, cap float64) Components {
	keywords, tokenCount := l.Normalize(candidateText)

	c := Components{
		Similarity:        similarity,
		SkillsRatio:       l.RatioHit(keywords, in.Skills),
		RequirementsRatio: l.RatioHit(keywords, in.Requirements),
		ProfileRatio:      l.RatioHit(keywords, in.Profile),
		LanguagesRatio:    l.RatioHit(keywords, in.Languages),
		LengthPenalty:     LengthPenalty(tokenCount),
		TokenCount:        tokenCount,
		KeywordCount:      len(keywords),
	}
	c.BaseScore = w.Similarity*c.Similarity +
		w.Skills*c.SkillsRatio +
		w.Requirements*c.RequirementsRatio +
		w.Profile*c.ProfileRatio

	if v, capped := l.MustHaveCap(keywords, in.MustHaves, cap); capped {
		c.MustHaveCap = &v
	}
	return c
}

// Final derives the score in [0,100] from the breakdown: base minus length
// penalty, capped by the must-have gate, clamped and rounded to 2 decimals.
func (c Components) Final() float64 {
	final := c.BaseScore - c.LengthPenalty
	if c.MustHaveCap != nil {
		final = math.Min(final, *c.MustHaveCap)
	}
	return Round2(clamp(final, 0, 100))
}

// Round2 rounds to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
