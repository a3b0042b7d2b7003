package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"smartrecruit/internal/ai"
)

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	if t := s.AppConfig.Observability.HealthCheck.Timeout; t > 0 {
		return t
	}
	return 5 * time.Second
}

// healthHandler provides a health check endpoint including oracle model status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "smartrecruit",
		"version": s.Version,
	}

	oracleStatus := s.checkOracleHealth()
	response["oracle"] = oracleStatus

	if breakers := s.checkCircuitBreakerHealth(); breakers != nil {
		response["circuit_breakers"] = breakers
	}

	response["lexicon_watcher"] = map[string]any{
		"running": s.lexiconWatcher != nil && s.lexiconWatcher.IsRunning(),
	}

	overallHealthy := true
	if modelInfo, ok := oracleStatus["model"].(*ai.ModelInfo); ok && modelInfo != nil && !modelInfo.Available {
		overallHealthy = false
	}

	if !overallHealthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// checkOracleHealth reports embedding model availability
func (s *Server) checkOracleHealth() map[string]any {
	ctx, cancel := context.WithTimeout(context.Background(), s.getHealthCheckTimeout())
	defer cancel()

	status := make(map[string]any)
	if s.Oracle == nil {
		status["available"] = false
		status["error"] = "oracle not configured"
		return status
	}

	status["model"] = s.Oracle.GetModelInfo(ctx)
	return status
}

// checkCircuitBreakerHealth reports breaker state when the provider exposes it
func (s *Server) checkCircuitBreakerHealth() map[string]any {
	if s.Oracle == nil {
		return nil
	}
	type breakerStats interface {
		GetCircuitBreakerStats() map[string]any
	}
	if provider, ok := s.Oracle.Provider.(breakerStats); ok {
		return provider.GetCircuitBreakerStats()
	}
	return nil
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "smartrecruit",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	response["scoring"] = map[string]any{
		"must_have_cap":   s.AppConfig.Scoring.MustHaveCap,
		"rerank_weight":   s.AppConfig.Scoring.RerankWeight,
		"min_blend_words": s.AppConfig.Scoring.MinBlendWords,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode stats response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
