package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumelift/internal/types"
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
	registry.RegisterFormatter("text", "OptimizationResult", &OptimizationTextFormatter{})
	registry.RegisterFormatter("markdown", "OptimizationResult", &OptimizationMarkdownFormatter{})
	registry.RegisterFormatter("text", "BatchResult", &BatchTextFormatter{})
	registry.RegisterFormatter("markdown", "BatchResult", &BatchMarkdownFormatter{})

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

// BatchResult pairs each optimization with the job description block it
// was generated against, for runs with multiple target postings.
type BatchResult struct {
	Entries []BatchEntry `json:"entries"`
}

// BatchEntry is a single job description and its optimization result.
type BatchEntry struct {
	JobDescription string                   `json:"jobDescription"`
	Result         types.OptimizationResult `json:"result"`
}

func getDataType(data any) string {
	switch data.(type) {
	case types.OptimizationResult:
		return "OptimizationResult"
	case BatchResult:
		return "BatchResult"
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

// OptimizationTextFormatter handles text formatting for optimization results
type OptimizationTextFormatter struct{}

func (otf *OptimizationTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.OptimizationResult)
	if !ok {
		return "", fmt.Errorf("expected OptimizationResult, got %T", data)
	}

	var output strings.Builder

	writeResultText(&output, result)

	return output.String(), nil
}

func (otf *OptimizationTextFormatter) SupportedType() string {
	return "OptimizationResult"
}

func writeResultText(output *strings.Builder, result types.OptimizationResult) {
	output.WriteString("=== OPTIMIZED RESUME ===\n\n")
	output.WriteString(result.ResumeText)
	output.WriteString("\n")

	if result.CoverLetterText != "" {
		output.WriteString("\n=== COVER LETTER ===\n\n")
		output.WriteString(result.CoverLetterText)
		output.WriteString("\n")
	}

	output.WriteString("\nLanguage: ")
	output.WriteString(result.Language)
	output.WriteString("\n")
	if result.UsedFallback {
		output.WriteString("Note: generated without AI assistance (deterministic fallback).\n")
	}
}

// OptimizationMarkdownFormatter handles markdown formatting for optimization results
type OptimizationMarkdownFormatter struct{}

func (omf *OptimizationMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.OptimizationResult)
	if !ok {
		return "", fmt.Errorf("expected OptimizationResult, got %T", data)
	}

	var output strings.Builder

	writeResultMarkdown(&output, result, "#")

	return output.String(), nil
}

func (omf *OptimizationMarkdownFormatter) SupportedType() string {
	return "OptimizationResult"
}

func writeResultMarkdown(output *strings.Builder, result types.OptimizationResult, headingPrefix string) {
	output.WriteString(headingPrefix)
	output.WriteString(" Optimized Resume\n\n")
	output.WriteString(result.ResumeText)
	output.WriteString("\n")

	if result.CoverLetterText != "" {
		output.WriteString("\n")
		output.WriteString(headingPrefix)
		output.WriteString(" Cover Letter\n\n")
		output.WriteString(result.CoverLetterText)
		output.WriteString("\n")
	}

	output.WriteString(fmt.Sprintf("\n**Language:** %s\n", result.Language))
	if result.UsedFallback {
		output.WriteString("\n> Generated without AI assistance (deterministic fallback).\n")
	}
}

// BatchTextFormatter handles text formatting for multi-posting runs
type BatchTextFormatter struct{}

func (btf *BatchTextFormatter) Format(data any) (string, error) {
	batch, ok := data.(BatchResult)
	if !ok {
		return "", fmt.Errorf("expected BatchResult, got %T", data)
	}

	var output strings.Builder

	for i, entry := range batch.Entries {
		if i > 0 {
			output.WriteString("\n")
		}
		output.WriteString(fmt.Sprintf("=== TARGET POSTING %d/%d ===\n\n", i+1, len(batch.Entries)))
		output.WriteString(summarizePosting(entry.JobDescription))
		output.WriteString("\n\n")
		writeResultText(&output, entry.Result)
	}

	return output.String(), nil
}

func (btf *BatchTextFormatter) SupportedType() string {
	return "BatchResult"
}

// BatchMarkdownFormatter handles markdown formatting for multi-posting runs
type BatchMarkdownFormatter struct{}

func (bmf *BatchMarkdownFormatter) Format(data any) (string, error) {
	batch, ok := data.(BatchResult)
	if !ok {
		return "", fmt.Errorf("expected BatchResult, got %T", data)
	}

	var output strings.Builder

	for i, entry := range batch.Entries {
		if i > 0 {
			output.WriteString("\n---\n\n")
		}
		output.WriteString(fmt.Sprintf("# Target Posting %d of %d\n\n", i+1, len(batch.Entries)))
		output.WriteString(summarizePosting(entry.JobDescription))
		output.WriteString("\n\n")
		writeResultMarkdown(&output, entry.Result, "##")
	}

	return output.String(), nil
}

func (bmf *BatchMarkdownFormatter) SupportedType() string {
	return "BatchResult"
}

// summarizePosting returns the first line of a job description, truncated
// so batch output stays scannable.
func summarizePosting(jd string) string {
	line := strings.TrimSpace(jd)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	const maxLen = 120
	runes := []rune(line)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return line
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
