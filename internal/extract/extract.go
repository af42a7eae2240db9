// Package extract turns uploaded resume documents into plain text.
// PDF text layers and DOCX paragraph bodies are handled natively; pages
// without a text layer can fall back to an OCR provider when one is
// configured.
package extract

import (
	"context"
	"strings"
	"unicode"

	"resumelift/internal/errors"
	"resumelift/internal/types"
)

// OCRTriggerLength is the minimum number of non-whitespace characters a
// PDF text layer must yield before OCR is skipped. Below it, an enabled
// OCR provider gets a chance to do better.
const OCRTriggerLength = 50

// Extractor dispatches uploads to the format-specific readers.
type Extractor struct {
	ocr    Provider
	logger *errors.Logger
}

// New returns an Extractor using the given OCR provider. A nil provider
// is replaced with the no-op provider, so callers never need to branch
// on OCR availability.
func New(ocr Provider, logger *errors.Logger) *Extractor {
	if ocr == nil {
		ocr = NoopProvider{}
	}
	return &Extractor{ocr: ocr, logger: logger}
}

// Text extracts plain text from an uploaded document. A well-formed but
// empty document yields an empty string, not an error; errors are
// reserved for malformed input and unsupported kinds. Callers decide
// what "too little text" means for them.
//
// When useOCR is set and the document is a PDF whose text layer comes
// back short, the OCR provider is consulted and its output kept if it
// yields more text than the direct extraction.
func (e *Extractor) Text(ctx context.Context, doc types.UploadedDocument, useOCR bool) (string, error) {
	switch doc.Kind {
	case types.KindPDF:
		return e.pdfText(ctx, doc.Bytes, useOCR)
	case types.KindDOCX:
		return DocxText(doc.Bytes)
	default:
		return "", errors.NewValidationError(
			errors.ErrCodeUnsupportedKind,
			"unsupported document kind",
			nil,
		).WithContext("kind", string(doc.Kind)).WithContext("name", doc.Name)
	}
}

// NonWhitespaceLen counts the characters in s that are not Unicode
// whitespace.
func NonWhitespaceLen(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// KindForFilename maps a filename extension to a document kind. The
// second return is false for anything other than .pdf and .docx.
func KindForFilename(name string) (types.DocumentKind, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return types.KindPDF, true
	case strings.HasSuffix(lower, ".docx"):
		return types.KindDOCX, true
	default:
		return "", false
	}
}
