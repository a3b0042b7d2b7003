package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"smartrecruit/internal/match"
	"smartrecruit/internal/scoring"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "ScoreResult", &ScoreTextFormatter{})
	registry.RegisterFormatter("markdown", "ScoreResult", &ScoreMarkdownFormatter{})
	registry.RegisterFormatter("text", "ParsedRequirements", &RequirementsTextFormatter{})
	registry.RegisterFormatter("markdown", "ParsedRequirements", &RequirementsMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case *scoring.Result:
		return "ScoreResult"
	case match.ParsedRequirements:
		return "ParsedRequirements"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ScoreTextFormatter handles text formatting for scoring results
type ScoreTextFormatter struct{}

func (stf *ScoreTextFormatter) Format(data any) (string, error) {
	result, ok := data.(*scoring.Result)
	if !ok {
		return "", fmt.Errorf("expected *scoring.Result, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== RELEVANCE SCORE ===\n\n")
	output.WriteString(fmt.Sprintf("Final Score: %.2f/100\n\n", result.FinalScore))

	output.WriteString("=== COMPONENTS ===\n")
	c := result.Components
	output.WriteString(fmt.Sprintf("Similarity:         %.2f\n", c.Similarity))
	output.WriteString(fmt.Sprintf("Skills Ratio:       %.2f\n", c.SkillsRatio))
	output.WriteString(fmt.Sprintf("Requirements Ratio: %.2f\n", c.RequirementsRatio))
	output.WriteString(fmt.Sprintf("Profile Ratio:      %.2f\n", c.ProfileRatio))
	output.WriteString(fmt.Sprintf("Languages Ratio:    %.2f\n", c.LanguagesRatio))
	output.WriteString(fmt.Sprintf("Base Score:         %.2f\n", c.BaseScore))
	output.WriteString(fmt.Sprintf("Length Penalty:     %.2f\n", c.LengthPenalty))
	if c.MustHaveCap != nil {
		output.WriteString(fmt.Sprintf("Must-Have Cap:      %.2f\n", *c.MustHaveCap))
	}
	output.WriteString(fmt.Sprintf("Token Count:        %d\n", c.TokenCount))
	output.WriteString("\n")

	writeParsedText(&output, result.Parsed)

	return output.String(), nil
}

func (stf *ScoreTextFormatter) SupportedType() string {
	return "ScoreResult"
}

// ScoreMarkdownFormatter handles markdown formatting for scoring results
type ScoreMarkdownFormatter struct{}

func (smf *ScoreMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(*scoring.Result)
	if !ok {
		return "", fmt.Errorf("expected *scoring.Result, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Relevance Score\n\n")
	output.WriteString(fmt.Sprintf("**Final Score:** %.2f/100\n\n", result.FinalScore))

	output.WriteString("## Components\n\n")
	c := result.Components
	output.WriteString("| Component | Value |\n")
	output.WriteString("|-----------|-------|\n")
	output.WriteString(fmt.Sprintf("| Similarity | %.2f |\n", c.Similarity))
	output.WriteString(fmt.Sprintf("| Skills Ratio | %.2f |\n", c.SkillsRatio))
	output.WriteString(fmt.Sprintf("| Requirements Ratio | %.2f |\n", c.RequirementsRatio))
	output.WriteString(fmt.Sprintf("| Profile Ratio | %.2f |\n", c.ProfileRatio))
	output.WriteString(fmt.Sprintf("| Languages Ratio | %.2f |\n", c.LanguagesRatio))
	output.WriteString(fmt.Sprintf("| Base Score | %.2f |\n", c.BaseScore))
	output.WriteString(fmt.Sprintf("| Length Penalty | %.2f |\n", c.LengthPenalty))
	if c.MustHaveCap != nil {
		output.WriteString(fmt.Sprintf("| Must-Have Cap | %.2f |\n", *c.MustHaveCap))
	}
	output.WriteString(fmt.Sprintf("| Token Count | %d |\n", c.TokenCount))
	output.WriteString("\n")

	writeParsedMarkdown(&output, result.Parsed)

	return output.String(), nil
}

func (smf *ScoreMarkdownFormatter) SupportedType() string {
	return "ScoreResult"
}

// RequirementsTextFormatter handles text formatting for parsed requirements
type RequirementsTextFormatter struct{}

func (rtf *RequirementsTextFormatter) Format(data any) (string, error) {
	parsed, ok := data.(match.ParsedRequirements)
	if !ok {
		return "", fmt.Errorf("expected match.ParsedRequirements, got %T", data)
	}

	var output strings.Builder
	writeParsedText(&output, parsed)
	return output.String(), nil
}

func (rtf *RequirementsTextFormatter) SupportedType() string {
	return "ParsedRequirements"
}

// RequirementsMarkdownFormatter handles markdown formatting for parsed requirements
type RequirementsMarkdownFormatter struct{}

func (rmf *RequirementsMarkdownFormatter) Format(data any) (string, error) {
	parsed, ok := data.(match.ParsedRequirements)
	if !ok {
		return "", fmt.Errorf("expected match.ParsedRequirements, got %T", data)
	}

	var output strings.Builder
	writeParsedMarkdown(&output, parsed)
	return output.String(), nil
}

func (rmf *RequirementsMarkdownFormatter) SupportedType() string {
	return "ParsedRequirements"
}

func writeParsedText(output *strings.Builder, parsed match.ParsedRequirements) {
	output.WriteString("=== PARSED REQUIREMENTS ===\n\n")

	if len(parsed.MustHaves) > 0 {
		output.WriteString("Must-Haves:\n")
		for _, token := range parsed.MustHaves {
			output.WriteString(fmt.Sprintf("- %s\n", token))
		}
		output.WriteString("\n")
	}

	if len(parsed.Profile) > 0 {
		output.WriteString("Profile:\n")
		for _, clause := range parsed.Profile {
			output.WriteString(fmt.Sprintf("- %s\n", clause))
		}
		output.WriteString("\n")
	}

	if len(parsed.Languages) > 0 {
		output.WriteString("Languages:\n")
		for _, lang := range parsed.Languages {
			output.WriteString(fmt.Sprintf("- %s\n", lang))
		}
		output.WriteString("\n")
	}

	if len(parsed.MustHaves) == 0 && len(parsed.Profile) == 0 && len(parsed.Languages) == 0 {
		output.WriteString("No requirements detected.\n")
	}
}

func writeParsedMarkdown(output *strings.Builder, parsed match.ParsedRequirements) {
	output.WriteString("## Parsed Requirements\n\n")

	if len(parsed.MustHaves) > 0 {
		output.WriteString("### Must-Haves\n")
		for _, token := range parsed.MustHaves {
			output.WriteString(fmt.Sprintf("- %s\n", token))
		}
		output.WriteString("\n")
	}

	if len(parsed.Profile) > 0 {
		output.WriteString("### Profile\n")
		for _, clause := range parsed.Profile {
			output.WriteString(fmt.Sprintf("- %s\n", clause))
		}
		output.WriteString("\n")
	}

	if len(parsed.Languages) > 0 {
		output.WriteString("### Languages\n")
		for _, lang := range parsed.Languages {
			output.WriteString(fmt.Sprintf("- %s\n", lang))
		}
		output.WriteString("\n")
	}

	if len(parsed.MustHaves) == 0 && len(parsed.Profile) == 0 && len(parsed.Languages) == 0 {
		output.WriteString("No requirements detected.\n")
	}
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
