package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"smartrecruit/internal/ai"
	"smartrecruit/internal/common"
	"smartrecruit/internal/errors"
	"smartrecruit/internal/match"
	"smartrecruit/internal/scoring"
	"smartrecruit/internal/store"
	"smartrecruit/internal/utils"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score [cv-file] [job-file]",
	Short: "Score a CV against a job offer",
	Long: `Score how well a candidate CV matches a job offer.

The CV file is plain text (already extracted from the original document).
The job file is JSON with the fields title, description, offer_description,
skills, missions and profile_requirements.

The output contains the final score on a 0-100 scale together with the
component breakdown: semantic similarity, skills coverage, requirements
coverage, profile coverage and any length penalty or must-have cap applied.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if scoreConfig.OutputFormat == "" {
			scoreConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(scoreConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runScore,
}

var scoreConfig common.CommandConfig

func init() {
	scoreCmd.Flags().StringVarP(&scoreConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	scoreCmd.Flags().StringVar(&scoreConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = scoreCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// scoreInput pairs the CV text with the decoded job offer.
type scoreInput struct {
	cvText string
	job    *store.Job
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	oracle, err := ai.NewOracle(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create similarity oracle: %w", err)
	}
	defer func() {
		if err := oracle.Close(); err != nil {
			logger.Warn("Failed to close oracle", "error", err)
		}
	}()

	lexicon, err := buildLexicon(cfg.Scoring.LexiconOverridesFile, logger)
	if err != nil {
		return err
	}

	worker := scoring.NewWorker(nil, oracle, lexicon, cfg, logger, nil)

	createInput := func(contents []string) (scoreInput, error) {
		if len(contents) != 2 {
			return scoreInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		var job store.Job
		if err := json.Unmarshal([]byte(contents[1]), &job); err != nil {
			return scoreInput{}, fmt.Errorf("failed to parse job file %s: %w", args[1], err)
		}
		return scoreInput{cvText: contents[0], job: &job}, nil
	}

	logDetails := func(input scoreInput, cmdCfg common.CommandConfig) {
		logger.Info("Starting CV scoring",
			"cv_size", utils.FormatFileSize(int64(len(input.cvText))),
			"job_title", input.job.Title,
			"output_format", cmdCfg.OutputFormat)
	}

	scoreOperation := func(ctx context.Context, input scoreInput) (*scoring.Result, error) {
		return worker.ScoreJob(ctx, input.cvText, input.job)
	}

	err = common.RunScoringCommand(
		cmd.Context(),
		logger,
		scoreConfig,
		args,
		createInput,
		scoreOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to score CV: %w", err)
	}
	logger.Info("CV scoring completed successfully")
	return nil
}

// buildLexicon returns a lexicon with the optional override file applied.
// A missing file is not an error for one-shot commands.
func buildLexicon(overridesFile string, logger *errors.Logger) (*match.Lexicon, error) {
	lexicon := match.NewLexicon()
	if overridesFile == "" {
		return lexicon, nil
	}
	if err := match.LoadOverrides(overridesFile, lexicon); err != nil {
		if os.IsNotExist(err) {
			logger.Warn("Lexicon overrides file not found, continuing without overrides",
				"path", overridesFile)
			return lexicon, nil
		}
		return nil, fmt.Errorf("failed to load lexicon overrides: %w", err)
	}
	return lexicon, nil
}
