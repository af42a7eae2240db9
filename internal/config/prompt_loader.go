package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// promptFileSlots enumerates the file-backed template slots so loading,
// validation, and watching all iterate the same list.
func (c *Config) promptFileSlots() []struct {
	path string
	name string
	set  func(*LoadedPromptTemplates, string)
} {
	p := &c.AI.CustomPrompts
	return []struct {
		path string
		name string
		set  func(*LoadedPromptTemplates, string)
	}{
		{p.ResumeENFile, "resume/en", func(t *LoadedPromptTemplates, s string) { t.ResumeEN = s }},
		{p.ResumeZHFile, "resume/zh", func(t *LoadedPromptTemplates, s string) { t.ResumeZH = s }},
		{p.CoverENFile, "cover/en", func(t *LoadedPromptTemplates, s string) { t.CoverEN = s }},
		{p.CoverZHFile, "cover/zh", func(t *LoadedPromptTemplates, s string) { t.CoverZH = s }},
	}
}

// loadPromptsFromFiles loads custom prompt templates from external files
// if file paths are specified, replacing the loaded set atomically.
func (c *Config) loadPromptsFromFiles() error {
	var loaded LoadedPromptTemplates
	count := 0

	for _, slot := range c.promptFileSlots() {
		if slot.path == "" {
			continue
		}
		content, err := c.loadPromptFromFile(slot.path, slot.name)
		if err != nil {
			return err
		}
		slot.set(&loaded, content)
		count++
	}

	setLoadedPrompts(loaded)
	if count > 0 {
		log.Printf("[CONFIG] Loaded %d custom prompt template(s) from files", count)
	}
	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling
func (c *Config) loadPromptFromFile(filePath, name string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s prompt file '%s': %w", name, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s prompt file not found: %s", name, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", name, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", name, absPath)
	}

	log.Printf("[CONFIG] Loaded %s prompt template from file: %s (%d characters)",
		name, absPath, len(trimmedContent))
	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	for _, slot := range c.promptFileSlots() {
		if slot.path == "" {
			continue
		}
		absPath, err := filepath.Abs(slot.path)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s prompt: %s", slot.name, slot.path))
			continue
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s prompt file not found: %s", slot.name, absPath))
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}
	return nil
}

// PromptFilePaths returns the configured prompt template file paths, for
// the file watcher.
func (c *Config) PromptFilePaths() []string {
	var paths []string
	for _, slot := range c.promptFileSlots() {
		if slot.path != "" {
			paths = append(paths, slot.path)
		}
	}
	return paths
}

// ReloadPrompts re-reads the configured prompt template files. Called by
// the file watcher when a template changes on disk.
func (c *Config) ReloadPrompts() error {
	return c.loadPromptsFromFiles()
}
