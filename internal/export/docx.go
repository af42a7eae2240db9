// Package export packages optimized text back into downloadable
// documents. The DOCX writer emits a minimal WordprocessingML package:
// one paragraph per blank-line-separated block of the input text.
package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"strings"

	"resumelift/internal/errors"
	"resumelift/internal/types"
)

const docxMIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// ToDocx converts plain text into a DOCX export. Paragraph boundaries
// are blank lines; single newlines inside a block stay within one
// paragraph as separate runs would be overkill, so they are joined with
// spaces the way word processors reflow text.
func ToDocx(text, filename string) (types.Export, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entries := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentXML(text)},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return types.Export{}, errors.NewInternalError(
				errors.ErrCodeExportFailed, "failed to create archive entry", err,
			).WithContext("entry", e.name)
		}
		if _, err := w.Write([]byte(e.body)); err != nil {
			return types.Export{}, errors.NewInternalError(
				errors.ErrCodeExportFailed, "failed to write archive entry", err,
			).WithContext("entry", e.name)
		}
	}
	if err := zw.Close(); err != nil {
		return types.Export{}, errors.NewInternalError(
			errors.ErrCodeExportFailed, "failed to finalize archive", err)
	}

	if filename == "" {
		filename = "optimized_resume.docx"
	} else if !strings.HasSuffix(strings.ToLower(filename), ".docx") {
		filename += ".docx"
	}

	return types.Export{
		Bytes:    buf.Bytes(),
		MIMEType: docxMIMEType,
		Filename: filename,
	}, nil
}

// SplitParagraphs splits text into paragraph blocks on blank lines.
// Lines within a block are joined with a single space; whitespace-only
// blocks are dropped.
func SplitParagraphs(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	blocks := strings.Split(normalized, "\n\n")
	out := make([]string, 0, len(blocks))
	for _, block := range blocks {
		lines := strings.Split(block, "\n")
		parts := make([]string, 0, len(lines))
		for _, line := range lines {
			if s := strings.TrimSpace(line); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			out = append(out, strings.Join(parts, " "))
		}
	}
	return out
}

func documentXML(text string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString("\n")
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range SplitParagraphs(text) {
		b.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		xml.EscapeText(&b, []byte(p))
		b.WriteString(`</w:t></w:r></w:p>`)
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}
