package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartrecruit/internal/match"
	"smartrecruit/internal/observability"
	"smartrecruit/internal/scoring"
)

// Start starts the HTTP server with all configured components
func (s *Server) Start() error {
	om, err := s.initializeObservability()
	if err != nil {
		return err
	}
	defer s.shutdownObservability(om)

	s.worker = scoring.NewWorker(s.Store, s.Oracle, s.Lexicon, s.AppConfig, s.Logger, om)

	if err := s.startLexiconWatcher(); err != nil {
		return err
	}

	// First oracle request pays the model spin-up cost; do it now
	warmupCtx, cancel := context.WithTimeout(context.Background(), s.AppConfig.Scoring.OracleTimeout)
	s.Oracle.Warmup(warmupCtx)
	cancel()

	httpServer := s.setupHTTPServer(om)

	s.Logger.Info("Scoring service configured",
		"address", httpServer.Addr,
		"store", s.AppConfig.Store.Path,
		"auth_enabled", len(s.APIKeys) > 0,
		"rate_limit_enabled", s.RateLimit != nil && s.RateLimit.Enabled)

	return s.startWithGracefulShutdown(httpServer)
}

// initializeObservability sets up observability components
func (s *Server) initializeObservability() (*observability.ObservabilityManager, error) {
	obsConfig := observability.GetObservabilityConfig(s.AppConfig, s.Version)

	om, err := observability.NewObservabilityManager(obsConfig, s.AppConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	return om, nil
}

// shutdownObservability handles observability cleanup
func (s *Server) shutdownObservability(om *observability.ObservabilityManager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// startLexiconWatcher starts live reloading of alias overrides when a file
// is configured
func (s *Server) startLexiconWatcher() error {
	path := s.AppConfig.Scoring.LexiconOverridesFile
	if path == "" {
		return nil
	}

	s.lexiconWatcher = match.NewLexiconWatcher(path, s.Lexicon, 0, s.Logger)
	if err := s.lexiconWatcher.Start(); err != nil {
		return fmt.Errorf("failed to start lexicon watcher: %w", err)
	}

	s.Logger.Info("Lexicon watcher started", "path", path)
	return nil
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer(om *observability.ObservabilityManager) *http.Server {
	mux := s.setupRoutes(om)
	handler := om.HTTPMiddleware()(mux)
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(server *http.Server) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server", "address", server.Addr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.Logger.Info("Received shutdown signal, starting graceful shutdown",
			"signal", sig.String())

		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.lexiconWatcher != nil {
		if err := s.lexiconWatcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop lexicon watcher")
		}
	}

	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	// Let in-flight background scoring finish before collaborators close
	s.Logger.Info("Waiting for background scoring to complete...")
	s.worker.Wait()

	if err := s.Oracle.Close(); err != nil {
		s.Logger.LogError(err, "Failed to close oracle")
	}
	if err := s.Store.Close(); err != nil {
		s.Logger.LogError(err, "Failed to close store")
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}
