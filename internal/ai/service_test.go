package ai

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
)

type fakeProvider struct {
	similarity float64
	err        error
	calls      int
}

func (f *fakeProvider) EmbedSimilarity(ctx context.Context, textA, textB string) (float64, error) {
	f.calls++
	return f.similarity, f.err
}

func (f *fakeProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	return &ModelInfo{Name: "fake", Available: true}
}

func (f *fakeProvider) Close() error { return nil }

type fakeReranker struct {
	logit float64
	err   error
	calls int
}

func (f *fakeReranker) RerankScore(ctx context.Context, query, document string) (float64, error) {
	f.calls++
	return f.logit, f.err
}

func longText(words int) string {
	return strings.Repeat("word ", words)
}

func TestSimilarityWithoutReranker(t *testing.T) {
	provider := &fakeProvider{similarity: 0.42}
	oracle := NewOracleWithProviders(provider, nil, 10, 0.7, nil)

	got, err := oracle.Similarity(context.Background(), longText(20), longText(20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.42 {
		t.Errorf("Similarity = %v, want 0.42", got)
	}
}

func TestSimilarityBlendsReranker(t *testing.T) {
	provider := &fakeProvider{similarity: 0.5}
	reranker := &fakeReranker{logit: 0.0} // sigmoid(0) = 0.5
	oracle := NewOracleWithProviders(provider, reranker, 10, 0.7, nil)

	got, err := oracle.Similarity(context.Background(), longText(20), longText(20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 0.7*0.5 + 0.3*0.5
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Similarity = %v, want %v", got, want)
	}
	if reranker.calls != 1 {
		t.Errorf("reranker calls = %d, want 1", reranker.calls)
	}
}

func TestSimilaritySkipsRerankerForShortTexts(t *testing.T) {
	provider := &fakeProvider{similarity: 0.3}
	reranker := &fakeReranker{logit: 5.0}
	oracle := NewOracleWithProviders(provider, reranker, 10, 0.7, nil)

	got, err := oracle.Similarity(context.Background(), "short text", longText(20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.3 {
		t.Errorf("Similarity = %v, want embedding-only 0.3", got)
	}
	if reranker.calls != 0 {
		t.Errorf("reranker calls = %d, want 0", reranker.calls)
	}
}

func TestSimilarityFallsBackOnRerankerFailure(t *testing.T) {
	provider := &fakeProvider{similarity: 0.6}
	reranker := &fakeReranker{err: fmt.Errorf("model unavailable")}
	oracle := NewOracleWithProviders(provider, reranker, 10, 0.7, nil)

	got, err := oracle.Similarity(context.Background(), longText(20), longText(20))
	if err != nil {
		t.Fatalf("reranker failure must not propagate, got: %v", err)
	}
	if got != 0.6 {
		t.Errorf("Similarity = %v, want fallback 0.6", got)
	}
}

func TestSimilarityPropagatesPrimaryFailure(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("unreachable")}
	oracle := NewOracleWithProviders(provider, nil, 10, 0.7, nil)

	if _, err := oracle.Similarity(context.Background(), "a", "b"); err == nil {
		t.Fatal("expected error from primary provider")
	}
}

func TestSimilarity0100(t *testing.T) {
	provider := &fakeProvider{similarity: 0.8}
	oracle := NewOracleWithProviders(provider, nil, 10, 0.7, nil)

	got, err := oracle.Similarity0100(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 90.0 {
		t.Errorf("Similarity0100 = %v, want 90.0", got)
	}
}

func TestWarmupIgnoresFailure(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("cold start")}
	oracle := NewOracleWithProviders(provider, nil, 10, 0.7, nil)

	oracle.Warmup(context.Background())
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float32
		want    float64
		wantErr bool
	}{
		{name: "identical", a: []float32{1, 0}, b: []float32{1, 0}, want: 1.0},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0.0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1.0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0.0},
		{name: "dimension mismatch", a: []float32{1}, b: []float32{1, 0}, wantErr: true},
		{name: "empty", a: nil, b: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cosineSimilarity(tt.a, tt.b)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}
