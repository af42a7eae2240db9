package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Provider recognizes text in scanned PDF documents. Implementations
// must be safe for concurrent use.
type Provider interface {
	// Available reports whether the provider can actually run on this
	// host. Callers check it before attempting recognition.
	Available() bool
	// RecognizePDF renders the document and returns the recognized text
	// for all pages, in page order.
	RecognizePDF(ctx context.Context, data []byte) (string, error)
}

// NoopProvider is the stand-in when OCR is not configured. Available
// always reports false, so the extractor never calls RecognizePDF.
type NoopProvider struct{}

func (NoopProvider) Available() bool { return false }

func (NoopProvider) RecognizePDF(_ context.Context, _ []byte) (string, error) {
	return "", fmt.Errorf("OCR is not configured")
}

// TesseractProvider shells out to pdftoppm and tesseract. Both binaries
// must be on PATH; language packs are tesseract's own concern.
type TesseractProvider struct {
	// Languages is the tesseract -l argument, e.g. "eng+chi_sim".
	Languages string
}

func NewTesseractProvider(languages string) *TesseractProvider {
	if languages == "" {
		languages = "eng+chi_sim"
	}
	return &TesseractProvider{Languages: languages}
}

func (p *TesseractProvider) Available() bool {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return false
	}
	if _, err := exec.LookPath("tesseract"); err != nil {
		return false
	}
	return true
}

// RecognizePDF renders each page to a PNG in a temp directory, runs
// tesseract over the pages in filename order, and concatenates the
// per-page output.
func (p *TesseractProvider) RecognizePDF(ctx context.Context, data []byte) (string, error) {
	dir, err := os.MkdirTemp("", "resumelift-ocr-")
	if err != nil {
		return "", fmt.Errorf("failed to create OCR work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	pdfPath := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write OCR input: %w", err)
	}

	render := exec.CommandContext(ctx, "pdftoppm", "-r", "300", "-png", pdfPath, filepath.Join(dir, "page"))
	if out, err := render.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	pages, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil || len(pages) == 0 {
		return "", fmt.Errorf("pdftoppm produced no page images")
	}
	sort.Strings(pages)

	var b strings.Builder
	for _, img := range pages {
		// "stdout" makes tesseract print recognized text instead of
		// writing an output file.
		cmd := exec.CommandContext(ctx, "tesseract", img, "stdout", "-l", p.Languages)
		out, err := cmd.Output()
		if err != nil {
			return "", fmt.Errorf("tesseract failed on %s: %w", filepath.Base(img), err)
		}
		b.Write(out)
		b.WriteString("\n")
	}
	return b.String(), nil
}
