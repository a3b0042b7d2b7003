package cli

import (
	"context"
	"fmt"
	"strings"

	"smartrecruit/internal/common"
	"smartrecruit/internal/match"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [requirements-file]",
	Short: "Parse free-form profile requirements into structured lists",
	Long: `Parse a job offer's free-form profile requirements text into structured
lists: nice-to-have profile clauses, hard must-have tokens and spoken
languages. This is the same segmentation the scoring engine applies, exposed
for inspecting how a job's requirement blob will be interpreted.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if parseConfig.OutputFormat == "" {
			parseConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(parseConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runParse,
}

var parseConfig common.CommandConfig

var parseSkills []string

func init() {
	parseCmd.Flags().StringVarP(&parseConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	parseCmd.Flags().StringVar(&parseConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	parseCmd.Flags().StringSliceVar(&parseSkills, "skills", nil, "Known skills used to anchor must-have token extraction")

	// Add completion for format flag
	_ = parseCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	lexicon, err := buildLexicon(cfg.Scoring.LexiconOverridesFile, logger)
	if err != nil {
		return err
	}

	createInput := func(contents []string) (string, error) {
		if len(contents) != 1 {
			return "", fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		return contents[0], nil
	}

	logDetails := func(text string, cmdCfg common.CommandConfig) {
		logger.Info("Starting requirements parsing",
			"text_chars", len(text),
			"known_skills", strings.Join(parseSkills, ","),
			"output_format", cmdCfg.OutputFormat)
	}

	parseOperation := func(ctx context.Context, text string) (match.ParsedRequirements, error) {
		return lexicon.ParseProfileRequirements(text, parseSkills), nil
	}

	err = common.RunScoringCommand(
		cmd.Context(),
		logger,
		parseConfig,
		args,
		createInput,
		parseOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to parse requirements: %w", err)
	}
	logger.Info("Requirements parsing completed successfully")
	return nil
}
