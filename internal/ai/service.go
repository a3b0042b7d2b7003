package ai

import (
	"context"

	"smartrecruit/internal/config"
	"smartrecruit/internal/errors"
)

// Oracle is the similarity oracle used by the scoring engine. It combines a
// primary embedding provider with an optional reranker: when both texts are
// long enough the reranker's logistic score is blended in, and any reranker
// failure silently falls back to the primary similarity alone.
type Oracle struct {
	Provider SimilarityProvider // Exported for access from server package
	reranker Reranker

	minBlendWords int
	rerankWeight  float64
	logger        *errors.Logger
}

// NewOracle creates the similarity oracle from configuration. The returned
// oracle owns the provider and should be closed on shutdown.
func NewOracle(cfg *config.Config, logger *errors.Logger) (*Oracle, error) {
	embedCfg := cfg.GetEmbedConfig()
	rerankCfg := cfg.GetRerankConfig()

	logger.Debug("Initializing similarity oracle",
		"provider", embedCfg.Provider,
		"embed_model", embedCfg.Model,
		"rerank_model", rerankCfg.Model,
		"min_blend_words", cfg.Scoring.MinBlendWords,
		"rerank_weight", cfg.Scoring.RerankWeight)

	var provider *GeminiProvider
	var err error
	switch embedCfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(&embedCfg, &rerankCfg, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"Unsupported oracle provider: "+embedCfg.Provider, nil)
	}
	if err != nil {
		return nil, err
	}

	return &Oracle{
		Provider:      provider,
		reranker:      provider,
		minBlendWords: cfg.Scoring.MinBlendWords,
		rerankWeight:  cfg.Scoring.RerankWeight,
		logger:        logger,
	}, nil
}

// NewOracleWithProviders builds an oracle from explicit providers. reranker
// may be nil to disable blending.
func NewOracleWithProviders(provider SimilarityProvider, reranker Reranker, minBlendWords int, rerankWeight float64, logger *errors.Logger) *Oracle {
	return &Oracle{
		Provider:      provider,
		reranker:      reranker,
		minBlendWords: minBlendWords,
		rerankWeight:  rerankWeight,
		logger:        logger,
	}
}

// Similarity returns the semantic closeness of the two texts in [-1,1]. An
// error is returned only when the primary provider fails; reranker problems
// never propagate.
func (o *Oracle) Similarity(ctx context.Context, textA, textB string) (float64, error) {
	similarity, err := o.Provider.EmbedSimilarity(ctx, textA, textB)
	if err != nil {
		return 0, err
	}

	if o.reranker == nil || wordCount(textA) < o.minBlendWords || wordCount(textB) < o.minBlendWords {
		return similarity, nil
	}

	logit, err := o.reranker.RerankScore(ctx, textB, textA)
	if err != nil {
		if o.logger != nil {
			o.logger.Warn("Reranker failed, falling back to embedding similarity",
				"error", err.Error())
		}
		return similarity, nil
	}

	return o.rerankWeight*sigmoid(logit) + (1-o.rerankWeight)*similarity, nil
}

// Similarity0100 maps Similarity onto the 0-100 scale used by scoring.
func (o *Oracle) Similarity0100(ctx context.Context, textA, textB string) (float64, error) {
	similarity, err := o.Similarity(ctx, textA, textB)
	if err != nil {
		return 0, err
	}
	return MapCosineTo0100(similarity), nil
}

// Warmup runs one dummy comparison to pull model latency out of the first
// real request. Failures are logged and ignored.
func (o *Oracle) Warmup(ctx context.Context) {
	if _, err := o.Provider.EmbedSimilarity(ctx, "warmup", "warmup"); err != nil {
		if o.logger != nil {
			o.logger.Warn("Oracle warmup failed", "error", err.Error())
		}
	}
}

// GetModelInfo returns embedding model information for health checks
func (o *Oracle) GetModelInfo(ctx context.Context) any {
	return o.Provider.GetModelInfo(ctx)
}

// Close releases the underlying provider
func (o *Oracle) Close() error {
	return o.Provider.Close()
}
