package config

import (
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"smartrecruit/internal/errors"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (SMARTRECRUIT_AI_APIKEY, etc.)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Scoring       ScoringConfig       `mapstructure:"scoring"`
	Server        ServerConfig        `mapstructure:"server"`
	Store         StoreConfig         `mapstructure:"store"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds similarity oracle configuration
type AIConfig struct {
	// Global/fallback configuration
	Provider   string        `mapstructure:"provider"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
	APIKey     string        `mapstructure:"apiKey"`
	MaxRetries int           `mapstructure:"maxRetries"`

	// Operation-specific configurations
	Embed  OperationAIConfig `mapstructure:"embed"`
	Rerank OperationAIConfig `mapstructure:"rerank"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// OperationAIConfig holds oracle configuration for a specific operation
type OperationAIConfig struct {
	Provider       string               `mapstructure:"provider"`
	Model          string               `mapstructure:"model"`
	Timeout        *time.Duration       `mapstructure:"timeout"`
	APIKey         string               `mapstructure:"apiKey"`
	MaxRetries     *int                 `mapstructure:"maxRetries"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// ScoringConfig holds the tunable constants of the scoring engine
type ScoringConfig struct {
	// MustHaveCap is the ceiling applied when no must-have requirement
	// is satisfied
	MustHaveCap float64 `mapstructure:"mustHaveCap"`

	// Weights for the base score components
	Weights WeightsConfig `mapstructure:"weights"`

	// MinBlendWords is the per-text word count both inputs must reach
	// before the reranker blend is attempted
	MinBlendWords int `mapstructure:"minBlendWords"`

	// RerankWeight is the reranker share of the blended similarity
	RerankWeight float64 `mapstructure:"rerankWeight"`

	// OracleTimeout bounds a single similarity oracle call during
	// background scoring
	OracleTimeout time.Duration `mapstructure:"oracleTimeout"`

	// LexiconOverridesFile optionally points at a JSON file of extra
	// token aliases, hot-reloaded while serving
	LexiconOverridesFile string `mapstructure:"lexiconOverridesFile"`
}

// WeightsConfig holds the weighted-sum coefficients
type WeightsConfig struct {
	Similarity   float64 `mapstructure:"similarity"`
	Skills       float64 `mapstructure:"skills"`
	Requirements float64 `mapstructure:"requirements"`
	Profile      float64 `mapstructure:"profile"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	// MaxBodySize bounds request bodies in bytes
	MaxBodySize int64 `mapstructure:"maxBodySize"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"` // Valid API keys for authentication

	// Rate Limiting Configuration
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`        // Enable/disable rate limiting
	RequestsPerMin int           `mapstructure:"requestsPerMin"` // Requests allowed per minute
	BurstCapacity  int           `mapstructure:"burstCapacity"`  // Burst capacity for token bucket
	ByIP           bool          `mapstructure:"byIP"`           // Enable per-IP rate limiting
	ByAPIKey       bool          `mapstructure:"byAPIKey"`       // Enable per-API-key rate limiting
	Window         time.Duration `mapstructure:"window"`         // Rate limiting window duration
}

// StoreConfig holds persistence configuration
type StoreConfig struct {
	// Path to the SQLite database file
	Path string `mapstructure:"path"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Tracing         TracingConfig       `mapstructure:"tracing"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig   `mapstructure:"healthCheck"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig holds fine-grained custom metrics configuration
type CustomMetricsConfig struct {
	OracleOperations OracleMetricsConfig         `mapstructure:"oracleOperations"`
	BusinessMetrics  BusinessMetricsConfig       `mapstructure:"businessMetrics"`
	Infrastructure   InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

// OracleMetricsConfig holds similarity oracle metrics configuration
type OracleMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackDuration   bool `mapstructure:"trackDuration"`
	TrackTokenUsage bool `mapstructure:"trackTokenUsage"`
	TrackModelInfo  bool `mapstructure:"trackModelInfo"`
}

// BusinessMetricsConfig holds business metrics configuration
type BusinessMetricsConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	TrackSuccessRates bool `mapstructure:"trackSuccessRates"`
	TrackScoreSpread  bool `mapstructure:"trackScoreSpread"`
}

// InfrastructureMetricsConfig holds infrastructure metrics configuration
type InfrastructureMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackRateLimits bool `mapstructure:"trackRateLimits"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	ModelCheckTimeout time.Duration `mapstructure:"modelCheckTimeout"`
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set up environment variable handling
	v.SetEnvPrefix("SMARTRECRUIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set up config file handling
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/smartrecruit/")
	v.AddConfigPath("$HOME/.smartrecruit")
	v.AddConfigPath(".")

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		log.Printf("[CONFIG] Successfully loaded config file: %s", v.ConfigFileUsed())
	}

	// Unmarshal the configuration into the Config struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply fallback logic
	config.applyFallbacks()

	// Load secrets from Vault when enabled; Vault values win over file and env
	if config.Vault.Enabled {
		vaultLogger := errors.NewLogger(slog.LevelInfo)
		if err := ApplyVaultSecrets(&config, vaultLogger); err != nil {
			return nil, fmt.Errorf("failed to apply vault secrets: %w", err)
		}
	}

	// Validate the configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("oracle timeout must be positive")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Store.Path == "" {
		return fmt.Errorf("store path is required")
	}

	if c.Scoring.MustHaveCap < 0 || c.Scoring.MustHaveCap > 100 {
		return fmt.Errorf("scoring mustHaveCap must be in [0,100], got %v", c.Scoring.MustHaveCap)
	}

	if c.Scoring.RerankWeight < 0 || c.Scoring.RerankWeight > 1 {
		return fmt.Errorf("scoring rerankWeight must be in [0,1], got %v", c.Scoring.RerankWeight)
	}

	w := c.Scoring.Weights
	for name, value := range map[string]float64{
		"similarity":   w.Similarity,
		"skills":       w.Skills,
		"requirements": w.Requirements,
		"profile":      w.Profile,
	} {
		if value < 0 || value > 1 {
			return fmt.Errorf("scoring weight %s must be in [0,1], got %v", name, value)
		}
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	return nil
}

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
}

// GetEmbedConfig returns the oracle configuration for embedding operations
// with fallback to global config
func (c *Config) GetEmbedConfig() OperationAIConfig {
	config := c.AI.Embed
	c.applyOperationDefaults(&config)
	return config
}

// GetRerankConfig returns the oracle configuration for reranking operations
// with fallback to global config
func (c *Config) GetRerankConfig() OperationAIConfig {
	config := c.AI.Rerank
	c.applyOperationDefaults(&config)
	return config
}
