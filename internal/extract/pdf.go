package extract

import (
	"bytes"
	"context"
	"strings"

	"github.com/ledongthuc/pdf"

	"resumelift/internal/errors"
)

// pdfText reads the text layer of every page. Pages whose text objects
// fail to decode are skipped rather than failing the whole document.
// When the text layer yields too little and OCR is enabled, the OCR
// output replaces the direct extraction only if it is longer.
func (e *Extractor) pdfText(ctx context.Context, data []byte, useOCR bool) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewExtractionError(
			errors.ErrCodeMalformedDocument,
			"failed to open PDF document",
			err,
		)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			if e.logger != nil {
				e.logger.Debug("skipping undecodable PDF page", "page", i, "error", err.Error())
			}
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	return e.resolveOCR(ctx, b.String(), data, useOCR), nil
}

// resolveOCR decides between the direct text layer and an OCR pass.
// OCR runs only when the direct result is below the trigger length, OCR
// was requested, and a provider is available; its output is kept only
// when it beats the direct extraction. OCR failure is best effort and
// falls back to whatever the text layer produced.
func (e *Extractor) resolveOCR(ctx context.Context, direct string, data []byte, useOCR bool) string {
	if NonWhitespaceLen(direct) >= OCRTriggerLength || !useOCR || !e.ocr.Available() {
		return direct
	}

	if e.logger != nil {
		e.logger.Info("PDF text layer too short, running OCR",
			"direct_length", NonWhitespaceLen(direct))
	}
	ocrText, err := e.ocr.RecognizePDF(ctx, data)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("OCR recognition failed, keeping direct extraction", "error", err.Error())
		}
		return direct
	}
	if NonWhitespaceLen(ocrText) > NonWhitespaceLen(direct) {
		return ocrText
	}
	return direct
}
