package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"resumelift/internal/errors"
)

// docx body model: only the elements that carry text are mapped.
// Paragraph text is the concatenation of its runs' <w:t> elements.
type docxDocument struct {
	Body docxBody `xml:"body"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"p"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Texts []string `xml:"t"`
}

// DocxText reads word/document.xml from the DOCX archive and returns the
// non-empty paragraphs joined with single newlines.
func DocxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewExtractionError(
			errors.ErrCodeMalformedDocument,
			"failed to open DOCX archive",
			err,
		)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", errors.NewExtractionError(
				errors.ErrCodeMalformedDocument,
				"failed to open word/document.xml",
				err,
			)
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", errors.NewExtractionError(
				errors.ErrCodeMalformedDocument,
				"failed to read word/document.xml",
				err,
			)
		}
		break
	}
	if docXML == nil {
		return "", errors.NewExtractionError(
			errors.ErrCodeMalformedDocument,
			"DOCX archive has no word/document.xml",
			nil,
		)
	}

	var doc docxDocument
	if err := xml.Unmarshal(docXML, &doc); err != nil {
		return "", errors.NewExtractionError(
			errors.ErrCodeMalformedDocument,
			"failed to parse word/document.xml",
			err,
		)
	}

	paragraphs := make([]string, 0, len(doc.Body.Paragraphs))
	for _, p := range doc.Body.Paragraphs {
		var b strings.Builder
		for _, r := range p.Runs {
			for _, t := range r.Texts {
				b.WriteString(t)
			}
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			paragraphs = append(paragraphs, s)
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}
