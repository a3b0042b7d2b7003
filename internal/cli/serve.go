package cli

import (
	"fmt"

	"smartrecruit/internal/ai"
	"smartrecruit/internal/server"
	"smartrecruit/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for CV relevance scoring",
	Long: `Start an HTTP server that provides REST API endpoints for CV scoring.

Available endpoints:
- POST /jobs: Register a job offer
- POST /cvs: Register an extracted CV
- POST /applications: Create an application and score it in the background
- GET /applications/{id}: Fetch an application with its score breakdown
- POST /score: Score a CV against an inline job offer
- GET /debug/score: Recompute a stored application's score with derived diagnostics
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("store", "", "SQLite database path (overrides config)")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
	bindFlag("store.path", "store")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	oracle, err := ai.NewOracle(cfg, logger)
	if err != nil {
		if closeErr := st.Close(); closeErr != nil {
			logger.Warn("Failed to close store", "error", closeErr)
		}
		return fmt.Errorf("failed to create similarity oracle: %w", err)
	}

	return server.NewServer(cfg, st, oracle, nil, Version, logger).Start()
}
