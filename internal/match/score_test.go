package match

import (
	"strings"
	"testing"
)

func TestRatioHit(t *testing.T) {
	tests := []struct {
		name      string
		candidate []string
		items     []string
		want      float64
	}{
		{
			name:      "empty list is neutral",
			candidate: []string{"react", "node"},
			items:     nil,
			want:      50.0,
		},
		{
			name:      "full match through canonicalization",
			candidate: []string{"react", "node"},
			items:     []string{"React", "Node.js"},
			want:      100.0,
		},
		{
			name:      "one of two matched",
			candidate: []string{"react"},
			items:     []string{"React", "Node.js"},
			want:      50.0,
		},
		{
			name:      "multi token item needs every token",
			candidate: []string{"react", "native"},
			items:     []string{"react native", "vue router"},
			want:      50.0,
		},
		{
			name:      "duplicates and empties collapse",
			candidate: []string{"docker"},
			items:     []string{"Docker", "docker", "  ", ""},
			want:      100.0,
		},
		{
			name:      "all empty items fall back to neutral",
			candidate: []string{"docker"},
			items:     []string{"", "   "},
			want:      50.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RatioHit(NewTokenSet(tt.candidate), tt.items)
			if got != tt.want {
				t.Errorf("RatioHit = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLengthPenalty(t *testing.T) {
	tests := []struct {
		count    int
		want     float64
		wantTier string
	}{
		{0, 10.0, TierHard},
		{149, 10.0, TierHard},
		{150, 5.0, TierSoft},
		{279, 5.0, TierSoft},
		{280, 0.0, TierNone},
		{1000, 0.0, TierNone},
	}

	for _, tt := range tests {
		if got := LengthPenalty(tt.count); got != tt.want {
			t.Errorf("LengthPenalty(%d) = %v, want %v", tt.count, got, tt.want)
		}
		if got := PenaltyTier(tt.count); got != tt.wantTier {
			t.Errorf("PenaltyTier(%d) = %v, want %v", tt.count, got, tt.wantTier)
		}
	}
}

func TestMustHaveCap(t *testing.T) {
	withDocker := NewTokenSet([]string{"docker", "react"})
	withoutDocker := NewTokenSet([]string{"react"})

	if _, capped := MustHaveCap(withDocker, []string{"docker"}, MustHaveCapValue); capped {
		t.Error("expected no cap when a must-have is satisfied")
	}
	if v, capped := MustHaveCap(withoutDocker, []string{"docker"}, MustHaveCapValue); !capped || v != MustHaveCapValue {
		t.Errorf("expected cap %v, got %v (capped=%v)", MustHaveCapValue, v, capped)
	}
	if _, capped := MustHaveCap(withoutDocker, nil, MustHaveCapValue); capped {
		t.Error("expected no cap for empty must-have list")
	}
	// A single satisfied item lifts the gate even if others fail.
	if _, capped := MustHaveCap(withDocker, []string{"kubernetes", "docker"}, MustHaveCapValue); capped {
		t.Error("expected no cap when at least one must-have is satisfied")
	}
}

// candidateText builds a document with exactly n canonical tokens.
func candidateText(n int, seed string) string {
	words := make([]string, 0, n)
	words = append(words, strings.Fields(seed)...)
	for i := len(words); i < n; i++ {
		words = append(words, "kubernetes")
	}
	return strings.Join(words, " ")
}

func TestScoreEndToEnd(t *testing.T) {
	text := candidateText(300, "react node docker")
	in := Inputs{
		Skills:       []string{"React", "Node.js"},
		Requirements: []string{"docker", "react"},
	}

	c := Score(text, 90.0, in, DefaultWeights(), MustHaveCapValue)

	if c.TokenCount != 300 {
		t.Fatalf("TokenCount = %d, want 300", c.TokenCount)
	}
	if c.SkillsRatio != 100.0 || c.RequirementsRatio != 100.0 {
		t.Errorf("coverage = %v/%v, want full", c.SkillsRatio, c.RequirementsRatio)
	}
	if c.ProfileRatio != 50.0 || c.LanguagesRatio != 50.0 {
		t.Errorf("empty categories = %v/%v, want 50", c.ProfileRatio, c.LanguagesRatio)
	}
	if c.LengthPenalty != 0.0 {
		t.Errorf("LengthPenalty = %v, want 0", c.LengthPenalty)
	}
	if c.MustHaveCap != nil {
		t.Errorf("unexpected must-have cap %v", *c.MustHaveCap)
	}
	// 0.40*90 + 0.25*100 + 0.25*100 + 0.10*50
	if c.BaseScore != 91.0 {
		t.Errorf("BaseScore = %v, want 91.0", c.BaseScore)
	}
	if got := c.Final(); got != 91.00 {
		t.Errorf("Final = %v, want 91.00", got)
	}
}

func TestScoreAppliesPenaltyAndCap(t *testing.T) {
	// Short document missing the only must-have.
	c := Score("react developer", 100.0, Inputs{
		Skills:    []string{"react"},
		MustHaves: []string{"docker"},
	}, DefaultWeights(), MustHaveCapValue)

	if c.LengthPenalty != 10.0 {
		t.Errorf("LengthPenalty = %v, want 10.0", c.LengthPenalty)
	}
	if c.MustHaveCap == nil || *c.MustHaveCap != MustHaveCapValue {
		t.Fatalf("expected must-have cap %v, got %v", MustHaveCapValue, c.MustHaveCap)
	}
	if got := c.Final(); got > MustHaveCapValue {
		t.Errorf("Final = %v, want <= %v", got, MustHaveCapValue)
	}
}

func TestFinalScoreBounds(t *testing.T) {
	low := Components{BaseScore: 3.0, LengthPenalty: 10.0}
	if got := low.Final(); got != 0.0 {
		t.Errorf("Final = %v, want clamp to 0", got)
	}

	high := Components{BaseScore: 153.7}
	if got := high.Final(); got != 100.0 {
		t.Errorf("Final = %v, want clamp to 100", got)
	}
}

func TestScoreIdempotent(t *testing.T) {
	text := candidateText(200, "python sklearn docker anglais")
	in := Inputs{
		Skills:       []string{"python", "scikit-learn"},
		Requirements: []string{"docker"},
		Profile:      []string{"communication"},
		Languages:    []string{"english"},
		MustHaves:    []string{"python"},
	}

	first := Score(text, 73.5, in, DefaultWeights(), MustHaveCapValue)
	for i := 0; i < 5; i++ {
		if again := Score(text, 73.5, in, DefaultWeights(), MustHaveCapValue); again.Final() != first.Final() {
			t.Fatalf("score not stable: %v vs %v", again.Final(), first.Final())
		}
	}
}
