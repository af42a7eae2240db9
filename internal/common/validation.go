package common

import (
	"fmt"
	"slices"
)

// ValidateOutputFormat checks a requested result format against the
// formats configured for optimization output
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s' for optimization results. Supported formats: %v",
		format, supportedFormats)
}

// GetSupportedFormats returns the list of supported result formats
func GetSupportedFormats(supportedFormats []string) []string {
	return supportedFormats
}
