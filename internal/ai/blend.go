package ai

import (
	"math"
	"strings"
)

// MapCosineTo0100 converts a cosine similarity to a 0-100 score. The input is
// clamped to [-1,1] before the linear mapping and the result is clamped to
// [0,100]; downstream weighting assumes exactly this transform.
func MapCosineTo0100(similarity float64) float64 {
	if similarity < -1.0 {
		similarity = -1.0
	} else if similarity > 1.0 {
		similarity = 1.0
	}

	score := (similarity + 1.0) * 50.0

	if score < 0.0 {
		return 0.0
	}
	if score > 100.0 {
		return 100.0
	}
	return score
}

// sigmoid squashes a raw reranker logit into (0,1).
func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// wordCount counts whitespace-separated words.
func wordCount(text string) int {
	return len(strings.Fields(text))
}
