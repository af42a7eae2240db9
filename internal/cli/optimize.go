package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"resumelift/internal/analytics"
	"resumelift/internal/common"
	"resumelift/internal/formatters"
	"resumelift/internal/language"
	"resumelift/internal/pipeline"
	"resumelift/internal/types"

	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize [resume-file] [job-description-file]",
	Short: "Optimize a resume, optionally targeting a job description",
	Long: `Optimize a PDF or DOCX resume using AI. The first argument is the
resume file; the optional second argument is a plain text job description
file. A job description file may contain several postings separated by
blank lines, in which case one optimization is produced per posting.

Without a configured AI credential the command still succeeds and
produces a clearly labeled offline rendition of the resume.`,
	Args: cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if optimizeConfig.OutputFormat == "" {
			optimizeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(optimizeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runOptimize,
}

var optimizeConfig common.CommandConfig

var (
	optimizeNotes       string
	optimizeTags        string
	optimizeCoverLetter bool
	optimizeOCR         bool
	optimizeExport      string
)

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	optimizeCmd.Flags().StringVar(&optimizeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	optimizeCmd.Flags().StringVar(&optimizeNotes, "notes", "", "Free-form guidance for the rewrite")
	optimizeCmd.Flags().StringVar(&optimizeTags, "tags", "", "Comma-separated focus tags (e.g. 'business impact,leadership')")
	optimizeCmd.Flags().BoolVar(&optimizeCoverLetter, "cover-letter", false, "Also generate a matching cover letter")
	optimizeCmd.Flags().BoolVar(&optimizeOCR, "ocr", false, "Run OCR on scanned PDFs with no extractable text")
	optimizeCmd.Flags().StringVar(&optimizeExport, "export", "", "Also write the optimized resume as a DOCX file at this path")

	// Add completion for format flag
	_ = optimizeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	pipe, _, cleanup, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	fileProcessor := common.NewFileProcessor(logger)
	doc, err := fileProcessor.ReadDocument(args[0], cfg.App.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	// A job description file may hold several postings separated by
	// blank lines; each gets its own optimization run.
	postings := []string{""}
	if len(args) == 2 {
		contents, err := fileProcessor.ValidateAndReadFiles(args[1])
		if err != nil {
			return fmt.Errorf("failed to read job description: %w", err)
		}
		if blocks := pipeline.SplitInstructionBlocks(contents[0]); len(blocks) > 0 {
			postings = blocks
		}
	}

	logger.Info("Starting resume optimization",
		"resume", doc.Name,
		"resume_bytes", len(doc.Bytes),
		"postings", len(postings),
		"cover_letter", optimizeCoverLetter,
		"output_format", optimizeConfig.OutputFormat)

	session := analytics.NewSession()
	results := make([]formatters.BatchEntry, 0, len(postings))
	for _, posting := range postings {
		prefs := types.Preferences{
			JobDescription:  posting,
			Notes:           optimizeNotes,
			FocusTags:       splitTagList(optimizeTags),
			WantCoverLetter: optimizeCoverLetter,
			UseOCR:          optimizeOCR,
		}
		result, err := pipe.Run(ctx, doc, prefs, session)
		if err != nil {
			return fmt.Errorf("failed to optimize resume: %w", err)
		}
		results = append(results, formatters.BatchEntry{JobDescription: posting, Result: result})
	}

	outputHandler := common.NewOutputHandler(logger)
	if len(results) == 1 {
		err = outputHandler.HandleOutput(results[0].Result, optimizeConfig)
	} else {
		err = outputHandler.HandleOutput(formatters.BatchResult{Entries: results}, optimizeConfig)
	}
	if err != nil {
		return err
	}

	if optimizeExport != "" {
		if err := exportResults(ctx, pipe, session, fileProcessor, results); err != nil {
			return err
		}
	}

	logger.Info("Resume optimization completed successfully")
	return nil
}

// exportResults writes each optimization as a DOCX document. Batch runs
// get an index suffix so postings don't overwrite each other.
func exportResults(ctx context.Context, pipe *pipeline.Pipeline, session *analytics.Session, fileProcessor *common.FileProcessor, results []formatters.BatchEntry) error {
	for i, entry := range results {
		tag := language.English
		if entry.Result.Language == string(language.Chinese) {
			tag = language.Chinese
		}
		export, err := pipe.ExportDocx(ctx, session, entry.Result.ResumeText, tag)
		if err != nil {
			return fmt.Errorf("failed to export resume: %w", err)
		}
		path := optimizeExport
		if len(results) > 1 {
			ext := filepath.Ext(path)
			path = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(path, ext), i+1, ext)
		}
		if err := fileProcessor.WriteBinaryFile(path, export.Bytes); err != nil {
			return err
		}
	}
	return nil
}

// splitTagList splits a comma-separated tag flag, dropping empties.
func splitTagList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
