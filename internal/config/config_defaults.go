package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Oracle Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-embedding-001")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)

	// Oracle Configuration - Embed operation defaults
	v.SetDefault("ai.embed.provider", "gemini")
	v.SetDefault("ai.embed.model", "")
	v.SetDefault("ai.embed.timeout", 30*time.Second)
	v.SetDefault("ai.embed.apiKey", "")
	v.SetDefault("ai.embed.maxRetries", 3)

	// Oracle Configuration - Rerank operation defaults
	v.SetDefault("ai.rerank.provider", "gemini")
	v.SetDefault("ai.rerank.model", "gemini-2.0-flash-lite")
	v.SetDefault("ai.rerank.timeout", 45*time.Second)
	v.SetDefault("ai.rerank.apiKey", "")
	v.SetDefault("ai.rerank.maxRetries", 2)

	// Circuit Breaker Configuration defaults for both operations
	v.SetDefault("ai.embed.circuitBreaker.enabled", true)
	v.SetDefault("ai.embed.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.embed.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.embed.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.embed.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.embed.circuitBreaker.failureThreshold", 0.6)

	v.SetDefault("ai.rerank.circuitBreaker.enabled", true)
	v.SetDefault("ai.rerank.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.rerank.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.rerank.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.rerank.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.rerank.circuitBreaker.failureThreshold", 0.6)

	// Scoring Configuration
	v.SetDefault("scoring.mustHaveCap", 70.0)
	v.SetDefault("scoring.weights.similarity", 0.40)
	v.SetDefault("scoring.weights.skills", 0.25)
	v.SetDefault("scoring.weights.requirements", 0.25)
	v.SetDefault("scoring.weights.profile", 0.10)
	v.SetDefault("scoring.minBlendWords", 10)
	v.SetDefault("scoring.rerankWeight", 0.7)
	v.SetDefault("scoring.oracleTimeout", 30*time.Second)
	v.SetDefault("scoring.lexiconOverridesFile", "")

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxBodySize", 1024*1024) // 1MB
	// API Authentication defaults
	v.SetDefault("server.apiKeys", []string{})
	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// Store Configuration
	v.SetDefault("store.path", "smartrecruit.db")

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "smartrecruit")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	// Tracing Configuration
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	// Metrics Configuration
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Custom Metrics Configuration
	v.SetDefault("observability.customMetrics.oracleOperations.enabled", true)
	v.SetDefault("observability.customMetrics.oracleOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.oracleOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.oracleOperations.trackModelInfo", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackSuccessRates", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackScoreSpread", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)

	// Console Configuration
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	// Prometheus Configuration
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// OTLP Configuration
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	// Health Check Configuration
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.modelCheckTimeout", 10*time.Second)
}
