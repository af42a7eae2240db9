package cli

import (
	"fmt"

	"resumelift/internal/common"
	"resumelift/internal/extract"
	"resumelift/internal/language"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [resume-file]",
	Short: "Extract the raw text from a resume file",
	Long: `Extract the plain text from a PDF or DOCX resume and print it, without
invoking the AI. Useful for checking what the optimizer will actually
see, especially for scanned PDFs where OCR may be needed.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var (
	extractOutput string
	extractOCR    bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().BoolVar(&extractOCR, "ocr", false, "Run OCR on scanned PDFs with no extractable text")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	fileProcessor := common.NewFileProcessor(logger)
	doc, err := fileProcessor.ReadDocument(args[0], cfg.App.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	extractor := extract.New(newOCRProvider(cfg), logger)
	text, err := extractor.Text(ctx, doc, extractOCR)
	if err != nil {
		return fmt.Errorf("failed to extract text: %w", err)
	}

	logger.Info("Text extraction completed",
		"resume", doc.Name,
		"chars", len(text),
		"non_whitespace_chars", extract.NonWhitespaceLen(text),
		"language", string(language.Classify(text)))

	if extractOutput != "" {
		return fileProcessor.WriteFile(extractOutput, text)
	}
	fmt.Print(text)
	return nil
}
