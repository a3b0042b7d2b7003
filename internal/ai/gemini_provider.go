package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"smartrecruit/internal/config"
	"smartrecruit/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider backs the similarity oracle with Google Gemini: text
// embeddings for the primary similarity signal and a lightweight generation
// model for rerank scoring.
type GeminiProvider struct {
	client *genai.Client

	embedConfig  *config.OperationAIConfig
	rerankConfig *config.OperationAIConfig

	embedBreaker  *OracleCircuitBreaker[*genai.EmbedContentResponse]
	rerankBreaker *OracleCircuitBreaker[*genai.GenerateContentResponse]
	modelBreaker  *ModelCircuitBreaker

	logger *errors.Logger
}

// Ensure GeminiProvider implements both oracle roles
var (
	_ SimilarityProvider = (*GeminiProvider)(nil)
	_ Reranker           = (*GeminiProvider)(nil)
)

// NewGeminiProvider creates a Gemini-backed oracle provider. Both operation
// configurations must carry an API key (usually the same one).
func NewGeminiProvider(embedCfg, rerankCfg *config.OperationAIConfig, logger *errors.Logger) (*GeminiProvider, error) {
	if embedCfg.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"Gemini API key is required (set SMARTRECRUIT_AI_APIKEY)", nil)
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: embedCfg.APIKey,
	})
	if err != nil {
		return nil, errors.NewOracleError(errors.ErrCodeOracleFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:        client,
		embedConfig:   embedCfg,
		rerankConfig:  rerankCfg,
		embedBreaker:  NewOracleCircuitBreaker[*genai.EmbedContentResponse]("Embed", embedCfg, logger),
		rerankBreaker: NewOracleCircuitBreaker[*genai.GenerateContentResponse]("Rerank", rerankCfg, logger),
		modelBreaker:  NewModelCircuitBreaker("Embed", embedCfg, logger),
		logger:        logger,
	}, nil
}

// ModelInfo represents information about the oracle model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the embedding model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.embedConfig.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.embedConfig.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.embedConfig.Model,
			"provider", g.embedConfig.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	return modelInfo
}

// EmbedSimilarity returns the cosine similarity of the two texts' embeddings,
// in [-1,1]. Empty inputs embed as empty strings rather than failing.
func (g *GeminiProvider) EmbedSimilarity(ctx context.Context, textA, textB string) (float64, error) {
	tracer := otel.Tracer("smartrecruit.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.embed_similarity")
	defer span.End()

	span.SetAttributes(
		attribute.String("oracle.provider", "gemini"),
		attribute.String("oracle.model", g.embedConfig.Model),
		attribute.Int("input.text_a_length", len(textA)),
		attribute.Int("input.text_b_length", len(textB)),
	)

	contents := []*genai.Content{
		genai.NewContentFromText(textA, genai.RoleUser),
		genai.NewContentFromText(textB, genai.RoleUser),
	}
	embedConfig := &genai.EmbedContentConfig{
		TaskType: "SEMANTIC_SIMILARITY",
	}

	result, err := g.embedBreaker.Execute(func() (*genai.EmbedContentResponse, error) {
		return executeWithRetry(ctx, g.logger, *g.embedConfig.MaxRetries, "embed_similarity",
			func() (*genai.EmbedContentResponse, error) {
				return g.client.Models.EmbedContent(ctx, g.embedConfig.Model, contents, embedConfig)
			})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return 0, errors.NewOracleError(errors.ErrCodeOracleFailed,
			"Failed to embed texts", err)
	}

	if len(result.Embeddings) < 2 {
		err := fmt.Errorf("expected 2 embeddings, got %d", len(result.Embeddings))
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return 0, errors.NewOracleError(errors.ErrCodeOracleFailed,
			"Malformed embedding response", err)
	}

	similarity, err := cosineSimilarity(result.Embeddings[0].Values, result.Embeddings[1].Values)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return 0, errors.NewOracleError(errors.ErrCodeOracleFailed,
			"Malformed embedding response", err)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Float64("oracle.cosine_similarity", similarity),
	)
	return similarity, nil
}

// RerankScore asks the rerank model for a relevance logit of document against
// query. Raw logits keep the caller in charge of the logistic transform.
func (g *GeminiProvider) RerankScore(ctx context.Context, query, document string) (float64, error) {
	tracer := otel.Tracer("smartrecruit.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.rerank_score")
	defer span.End()

	span.SetAttributes(
		attribute.String("oracle.provider", "gemini"),
		attribute.String("oracle.model", g.rerankConfig.Model),
		attribute.Int("input.query_length", len(query)),
		attribute.Int("input.document_length", len(document)),
	)

	prompt := fmt.Sprintf(
		"Rate how relevant the candidate document is to the query on an unbounded logit scale, "+
			"where large negative means irrelevant and large positive means highly relevant.\n\n"+
			"Query:\n%s\n\nDocument:\n%s", query, document)

	temperature := float32(0.0)
	genConfig := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"logit": {Type: genai.TypeNumber},
			},
			Required: []string{"logit"},
		},
	}

	result, err := g.rerankBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return executeWithRetry(ctx, g.logger, *g.rerankConfig.MaxRetries, "rerank_score",
			func() (*genai.GenerateContentResponse, error) {
				return g.client.Models.GenerateContent(ctx, g.rerankConfig.Model, genai.Text(prompt), genConfig)
			})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return 0, errors.NewOracleError(errors.ErrCodeOracleFailed,
			"Failed to rerank texts", err)
	}

	var output struct {
		Logit float64 `json:"logit"`
	}
	if err := json.Unmarshal([]byte(result.Text()), &output); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return 0, errors.NewOracleError(errors.ErrCodeOracleFailed,
			"Failed to parse rerank response", err)
	}

	if usage := extractTokenUsage(result); usage != nil {
		span.SetAttributes(
			attribute.Int64("oracle.tokens.input", usage.InputTokens),
			attribute.Int64("oracle.tokens.output", usage.OutputTokens),
			attribute.Int64("oracle.tokens.total", usage.TotalTokens),
		)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Float64("oracle.rerank_logit", output.Logit),
	)
	return output.Logit, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics for all operations
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"embed_operations":  g.embedBreaker.GetStats(),
		"rerank_operations": g.rerankBreaker.GetStats(),
		"model_operations":  g.modelBreaker.GetModelStats(),
	}

	stats["overall_healthy"] = g.embedBreaker.IsHealthy() &&
		g.rerankBreaker.IsHealthy() &&
		g.modelBreaker.IsModelHealthy()

	return stats
}

// Close implements SimilarityProvider
func (g *GeminiProvider) Close() error {
	// Gemini client has no Close in current single-shot usage
	return nil
}

// executeWithRetry executes an oracle call with retry logic and exponential backoff
func executeWithRetry[T any](ctx context.Context, logger *errors.Logger, maxRetries int, operation string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			logger.Warn("Retrying oracle operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			jitter := time.Duration(jitterBig.Int64())
			// Cap maximum backoff at 30 seconds
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				logger.Info("Oracle operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry on certain errors (auth, invalid input, etc.)
		if !isRetryableError(err) {
			logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	logger.LogError(lastErr, "Oracle operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", maxRetries+1)

	return zero, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, maxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Network errors (timeouts, connection issues) are retryable
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	// Google API errors with transient HTTP status codes
	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// cosineSimilarity computes the cosine of the angle between two vectors
func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimensions mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// TokenUsage represents token usage information from oracle responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from a Gemini response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
