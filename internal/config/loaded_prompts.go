package config

import (
	"sync"
)

var (
	loadedPromptsMu sync.RWMutex
	loadedPrompts   LoadedPromptTemplates
)

// LoadedPromptTemplates holds prompt template content loaded from files.
// Fields left empty mean no file override is in effect for that slot.
type LoadedPromptTemplates struct {
	ResumeEN string
	ResumeZH string
	CoverEN  string
	CoverZH  string
}

// GetLoadedPrompts returns a copy of the currently loaded prompt
// templates. Safe for concurrent use with the file watcher.
func GetLoadedPrompts() LoadedPromptTemplates {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts
}

// setLoadedPrompts atomically replaces the loaded template set
func setLoadedPrompts(p LoadedPromptTemplates) {
	loadedPromptsMu.Lock()
	defer loadedPromptsMu.Unlock()
	loadedPrompts = p
}
