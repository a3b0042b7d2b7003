package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTestConfig(t *testing.T) *Config {
	t.Helper()

	v := viper.New()
	setDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	cfg.applyFallbacks()
	return &cfg
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := defaultTestConfig(t)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "gemini-embedding-001", cfg.AI.Model)
	assert.Equal(t, 70.0, cfg.Scoring.MustHaveCap)
	assert.Equal(t, 0.40, cfg.Scoring.Weights.Similarity)
	assert.Equal(t, 0.25, cfg.Scoring.Weights.Skills)
	assert.Equal(t, 0.25, cfg.Scoring.Weights.Requirements)
	assert.Equal(t, 0.10, cfg.Scoring.Weights.Profile)
	assert.Equal(t, 10, cfg.Scoring.MinBlendWords)
	assert.Equal(t, 0.7, cfg.Scoring.RerankWeight)
	assert.Equal(t, 30*time.Second, cfg.Scoring.OracleTimeout)
	assert.Equal(t, "smartrecruit.db", cfg.Store.Path)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestOperationConfigFallbacks(t *testing.T) {
	cfg := defaultTestConfig(t)
	cfg.AI.APIKey = "global-key"

	embed := cfg.GetEmbedConfig()
	assert.Equal(t, "gemini", embed.Provider)
	// Empty operation model falls back to the global model
	assert.Equal(t, "gemini-embedding-001", embed.Model)
	assert.Equal(t, "global-key", embed.APIKey)
	require.NotNil(t, embed.Timeout)
	assert.Equal(t, 30*time.Second, *embed.Timeout)
	require.NotNil(t, embed.MaxRetries)
	assert.Equal(t, 3, *embed.MaxRetries)

	rerank := cfg.GetRerankConfig()
	// Rerank declares its own model
	assert.Equal(t, "gemini-2.0-flash-lite", rerank.Model)
	assert.Equal(t, "global-key", rerank.APIKey)
	require.NotNil(t, rerank.MaxRetries)
	assert.Equal(t, 2, *rerank.MaxRetries)
}

func TestOperationConfigOverrides(t *testing.T) {
	cfg := defaultTestConfig(t)
	cfg.AI.APIKey = "global-key"
	cfg.AI.Embed.APIKey = "embed-key"
	cfg.AI.Embed.Model = "custom-embedder"

	embed := cfg.GetEmbedConfig()
	assert.Equal(t, "embed-key", embed.APIKey)
	assert.Equal(t, "custom-embedder", embed.Model)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero oracle timeout", func(c *Config) { c.AI.Timeout = 0 }},
		{"empty server port", func(c *Config) { c.Server.Port = "" }},
		{"empty store path", func(c *Config) { c.Store.Path = "" }},
		{"cap above range", func(c *Config) { c.Scoring.MustHaveCap = 150 }},
		{"negative cap", func(c *Config) { c.Scoring.MustHaveCap = -1 }},
		{"rerank weight above one", func(c *Config) { c.Scoring.RerankWeight = 1.5 }},
		{"weight out of range", func(c *Config) { c.Scoring.Weights.Skills = 2.0 }},
		{"unknown default format", func(c *Config) { c.App.DefaultFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultTestConfig(t)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestVaultKeyApplication(t *testing.T) {
	cfg := defaultTestConfig(t)
	cfg.AI.Embed.APIKey = "explicit-embed-key"

	applyGeminiKeyToConfig(cfg, "vault-key")

	assert.Equal(t, "vault-key", cfg.AI.APIKey)
	// Explicit operation keys are not overwritten
	assert.Equal(t, "explicit-embed-key", cfg.AI.Embed.APIKey)
	assert.Equal(t, "vault-key", cfg.AI.Rerank.APIKey)
}
