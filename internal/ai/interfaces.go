package ai

import "context"

// SimilarityProvider computes semantic closeness between two texts as the
// cosine similarity of their embeddings, in [-1,1]. Empty inputs are legal
// and must not fail.
type SimilarityProvider interface {
	EmbedSimilarity(ctx context.Context, textA, textB string) (float64, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// Reranker scores the relevance of a document to a query and returns a raw
// logit. It is an optional refinement on top of SimilarityProvider; callers
// must tolerate its absence and its failures.
type Reranker interface {
	RerankScore(ctx context.Context, query, document string) (float64, error)
}
