package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"resumelift/internal/errors"
	"resumelift/internal/extract"
	"resumelift/internal/types"
	"resumelift/internal/utils"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger *errors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// ReadFile reads content from a text file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	data, err := fp.readBytes(filename)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadDocument reads a resume file and wraps it as an uploaded document.
// The document kind is derived from the file extension; unknown
// extensions are rejected before any bytes are read.
func (fp *FileProcessor) ReadDocument(filename string, maxSize int64) (types.UploadedDocument, error) {
	kind, ok := extract.KindForFilename(filename)
	if !ok {
		return types.UploadedDocument{}, errors.NewValidationError(errors.ErrCodeUnsupportedKind,
			fmt.Sprintf("Unsupported resume format: %s (expected .pdf or .docx)", filename), nil)
	}

	if maxSize > 0 {
		info, err := os.Stat(filename)
		if err == nil && info.Size() > maxSize {
			return types.UploadedDocument{}, errors.NewValidationError(errors.ErrCodeUploadTooLarge,
				fmt.Sprintf("File %s exceeds the %s limit", filename, utils.FormatFileSize(maxSize)), nil)
		}
	}

	data, err := fp.readBytes(filename)
	if err != nil {
		return types.UploadedDocument{}, err
	}

	return types.UploadedDocument{
		Bytes: data,
		Kind:  kind,
		Name:  filepath.Base(filename),
	}, nil
}

func (fp *FileProcessor) readBytes(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			// Log the error but don't override the main operation result
			if fp.logger != nil {
				fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
			}
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	return content, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	return fp.WriteBinaryFile(filename, []byte(content))
}

// WriteBinaryFile writes raw bytes to a file with directory creation
func (fp *FileProcessor) WriteBinaryFile(filename string, data []byte) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, data, 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateAndReadFiles validates and reads multiple text input files
func (fp *FileProcessor) ValidateAndReadFiles(filenames ...string) ([]string, error) {
	contents := make([]string, len(filenames))

	for i, filename := range filenames {
		// Validate input file
		if err := utils.ValidateInputFile(filename); err != nil {
			return nil, errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid file %s", filename), err)
		}

		// Warn about non-text files
		if !utils.IsTextFile(filename) {
			if fp.logger != nil {
				fp.logger.Warn("File may not be a text file",
					"filename", filename)
			} else {
				fmt.Fprintf(os.Stderr, "Warning: %s may not be a text file\n", filename)
			}
		}

		// Read file content
		content, err := fp.ReadFile(filename)
		if err != nil {
			return nil, err // Error already wrapped by ReadFile
		}

		contents[i] = content
	}

	return contents, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
