package server

import (
	"time"

	"smartrecruit/internal/ai"
	"smartrecruit/internal/config"
	smartrecruitErrors "smartrecruit/internal/errors"
	"smartrecruit/internal/match"
	"smartrecruit/internal/scoring"
	"smartrecruit/internal/store"
)

// ScoreRequest is the body of the synchronous scoring endpoint: a raw
// candidate text scored against an ad-hoc job that is never persisted.
type ScoreRequest struct {
	CVText string   `json:"cvText"`
	Job    JobInput `json:"job"`
}

// JobInput mirrors the persisted job shape for request bodies.
type JobInput struct {
	Title               string   `json:"title"`
	Description         string   `json:"description,omitempty"`
	OfferDescription    string   `json:"offerDescription,omitempty"`
	Skills              []string `json:"skills,omitempty"`
	Missions            []string `json:"missions,omitempty"`
	ProfileRequirements string   `json:"profileRequirements,omitempty"`
}

// CVInput is the body for registering a candidate document. Text must
// already be extracted and cleaned.
type CVInput struct {
	CandidateName string `json:"candidateName,omitempty"`
	Text          string `json:"text"`
}

// ApplicationRequest links an existing CV to an existing job.
type ApplicationRequest struct {
	CVID  string `json:"cvId"`
	JobID string `json:"jobId"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// Collaborators
	Store   *store.Store
	Oracle  *ai.Oracle
	Lexicon *match.Lexicon

	// Background scoring worker, created at startup once observability
	// is available
	worker *scoring.Worker

	// Lexicon override reloading
	lexiconWatcher *match.LexiconWatcher

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Logger
	Logger *smartrecruitErrors.Logger
}

// NewServer creates a new Server instance wired to its collaborators
func NewServer(cfg *config.Config, st *store.Store, oracle *ai.Oracle, lexicon *match.Lexicon, version string, logger *smartrecruitErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.Server.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.Server.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.Server.RateLimit.RequestsPerMin,
			cfg.Server.RateLimit.BurstCapacity,
			logger,
		)
	}

	if lexicon == nil {
		lexicon = match.NewLexicon()
	}

	return &Server{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		AppConfig:      cfg,
		Store:          st,
		Oracle:         oracle,
		Lexicon:        lexicon,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxBodySize,
		RateLimit:      &cfg.Server.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}
}
