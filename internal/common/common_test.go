package common

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	stderrors "errors"

	"resumelift/internal/errors"
	"resumelift/internal/types"
)

var testLogger = errors.NewLogger(slog.LevelDebug)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name             string
		format           string
		supportedFormats []string
		expectError      bool
	}{
		{
			name:             "valid format - json",
			format:           "json",
			supportedFormats: []string{"json", "text", "markdown"},
			expectError:      false,
		},
		{
			name:             "valid format - markdown",
			format:           "markdown",
			supportedFormats: []string{"json", "text", "markdown"},
			expectError:      false,
		},
		{
			name:             "invalid format - xml",
			format:           "xml",
			supportedFormats: []string{"json", "text", "markdown"},
			expectError:      true,
		},
		{
			name:             "case sensitive - JSON uppercase",
			format:           "JSON",
			supportedFormats: []string{"json", "text", "markdown"},
			expectError:      true,
		},
		{
			name:             "empty supported formats - should allow all",
			format:           "xml",
			supportedFormats: []string{},
			expectError:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supportedFormats)
			if tt.expectError && err == nil {
				t.Errorf("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestReadDocument(t *testing.T) {
	dir := t.TempDir()
	fp := NewFileProcessor(testLogger)

	pdfPath := filepath.Join(dir, "resume.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.4 stub content"), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	t.Run("pdf extension maps to pdf kind", func(t *testing.T) {
		doc, err := fp.ReadDocument(pdfPath, 0)
		if err != nil {
			t.Fatalf("ReadDocument failed: %v", err)
		}
		if doc.Kind != types.KindPDF {
			t.Errorf("kind = %v, want %v", doc.Kind, types.KindPDF)
		}
		if doc.Name != "resume.pdf" {
			t.Errorf("name = %q", doc.Name)
		}
		if len(doc.Bytes) == 0 {
			t.Error("document bytes are empty")
		}
	})

	t.Run("unsupported extension rejected before reading", func(t *testing.T) {
		txtPath := filepath.Join(dir, "resume.txt")
		if err := os.WriteFile(txtPath, []byte("plain text"), 0600); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}
		_, err := fp.ReadDocument(txtPath, 0)
		var appErr *errors.AppError
		if !stderrors.As(err, &appErr) {
			t.Fatalf("expected AppError, got %T: %v", err, err)
		}
		if appErr.Code != errors.ErrCodeUnsupportedKind {
			t.Errorf("code = %q, want %q", appErr.Code, errors.ErrCodeUnsupportedKind)
		}
	})

	t.Run("oversized file rejected", func(t *testing.T) {
		_, err := fp.ReadDocument(pdfPath, 4)
		var appErr *errors.AppError
		if !stderrors.As(err, &appErr) {
			t.Fatalf("expected AppError, got %T: %v", err, err)
		}
		if appErr.Code != errors.ErrCodeUploadTooLarge {
			t.Errorf("code = %q, want %q", appErr.Code, errors.ErrCodeUploadTooLarge)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := fp.ReadDocument(filepath.Join(dir, "missing.pdf"), 0)
		var appErr *errors.AppError
		if !stderrors.As(err, &appErr) {
			t.Fatalf("expected AppError, got %T: %v", err, err)
		}
		if appErr.Code != errors.ErrCodeFileNotFound {
			t.Errorf("code = %q, want %q", appErr.Code, errors.ErrCodeFileNotFound)
		}
	})
}

func TestWriteBinaryFileCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	fp := NewFileProcessor(testLogger)

	target := filepath.Join(dir, "exports", "out.docx")
	if err := fp.WriteBinaryFile(target, []byte{0x50, 0x4b, 0x03, 0x04}); err != nil {
		t.Fatalf("WriteBinaryFile failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("written file not readable: %v", err)
	}
	if len(data) != 4 {
		t.Errorf("wrote %d bytes, want 4", len(data))
	}
}

func TestHandleOutputFormatsResult(t *testing.T) {
	dir := t.TempDir()
	oh := NewOutputHandler(testLogger)

	result := types.OptimizationResult{
		ResumeText:   "Rewritten resume.",
		UsedFallback: true,
		Language:     "en",
	}

	outPath := filepath.Join(dir, "result.md")
	err := oh.HandleOutput(result, CommandConfig{
		OutputFile:   outPath,
		OutputFormat: "markdown",
	})
	if err != nil {
		t.Fatalf("HandleOutput failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output file not readable: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "# Optimized Resume") {
		t.Errorf("markdown heading missing: %q", content)
	}
	if !strings.Contains(content, "deterministic fallback") {
		t.Errorf("fallback disclosure missing: %q", content)
	}
}

func TestHandleOutputRejectsUnknownFormat(t *testing.T) {
	oh := NewOutputHandler(testLogger)

	err := oh.HandleOutput(types.OptimizationResult{ResumeText: "x"}, CommandConfig{
		OutputFormat: "yaml",
	})
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != errors.ErrCodeInvalidFormat {
		t.Errorf("code = %q, want %q", appErr.Code, errors.ErrCodeInvalidFormat)
	}
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	supportedFormats := []string{"json", "text", "markdown"}

	b.Run("valid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("json", supportedFormats)
		}
	})

	b.Run("invalid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("xml", supportedFormats)
		}
	})
}
