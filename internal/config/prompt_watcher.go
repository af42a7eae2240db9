package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"resumelift/internal/errors"
)

// PromptWatcher watches prompt template files for changes and reloads
// them without a restart. Editors often write atomically (write to a
// temp file, then rename), so the containing directories are watched
// too.
type PromptWatcher struct {
	mu sync.Mutex

	cfg   *Config
	files []string

	lastModTime map[string]time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	logger *errors.Logger

	running bool
}

// NewPromptWatcher creates a watcher over the configured prompt files.
// Returns nil when no prompt files are configured; callers treat a nil
// watcher as "nothing to watch".
func NewPromptWatcher(cfg *Config, debounceDelay time.Duration, logger *errors.Logger) *PromptWatcher {
	files := cfg.PromptFilePaths()
	if len(files) == 0 {
		return nil
	}
	if debounceDelay == 0 {
		debounceDelay = time.Second
	}

	return &PromptWatcher{
		cfg:           cfg,
		files:         files,
		lastModTime:   make(map[string]time.Time),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		logger:        logger,
	}
}

// Start begins watching prompt files for changes
func (pw *PromptWatcher) Start() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.running {
		return fmt.Errorf("prompt watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	pw.fsWatcher = watcher
	pw.updateModTimes()

	for _, file := range pw.files {
		if err := pw.addFileToWatcher(file); err != nil {
			pw.logger.Warn("Failed to watch prompt file", "file", file, "error", err)
		}
	}

	pw.running = true
	go pw.watchLoop()

	pw.logger.Info("Prompt template watcher started",
		"files", pw.files,
		"debounce_delay", pw.debounceDelay)
	return nil
}

// Stop stops the prompt file watcher
func (pw *PromptWatcher) Stop() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if !pw.running {
		return nil
	}

	close(pw.stopChan)
	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}
	if pw.fsWatcher != nil {
		if err := pw.fsWatcher.Close(); err != nil {
			pw.logger.LogError(err, "Failed to close prompt file watcher")
			return err
		}
	}

	pw.running = false
	pw.logger.Info("Prompt template watcher stopped")
	return nil
}

func (pw *PromptWatcher) addFileToWatcher(file string) error {
	if err := pw.fsWatcher.Add(file); err != nil {
		if os.IsNotExist(err) {
			dir := filepath.Dir(file)
			if err := pw.fsWatcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch directory %s: %w", dir, err)
			}
			return nil
		}
		return fmt.Errorf("failed to watch file %s: %w", file, err)
	}

	// Also watch the directory to catch atomic writes (rename operations)
	dir := filepath.Dir(file)
	if err := pw.fsWatcher.Add(dir); err != nil {
		pw.logger.Warn("Failed to watch directory for atomic writes",
			"directory", dir, "error", err)
	}
	return nil
}

func (pw *PromptWatcher) updateModTimes() {
	for _, file := range pw.files {
		if stat, err := os.Stat(file); err == nil {
			pw.lastModTime[file] = stat.ModTime()
		}
	}
}

func (pw *PromptWatcher) hasFileChanged(file string) bool {
	stat, err := os.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			if _, exists := pw.lastModTime[file]; exists {
				delete(pw.lastModTime, file)
				return true
			}
		}
		return false
	}

	lastMod, exists := pw.lastModTime[file]
	if !exists || stat.ModTime().After(lastMod) {
		pw.lastModTime[file] = stat.ModTime()
		return true
	}
	return false
}

func (pw *PromptWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-pw.fsWatcher.Events:
			if !ok {
				return
			}
			if pw.shouldProcessEvent(event) {
				pw.scheduleReload()
			}

		case err, ok := <-pw.fsWatcher.Errors:
			if !ok {
				return
			}
			pw.logger.LogError(err, "Prompt file watcher error")

		case <-pw.reloadChan:
			if pw.hasAnyFileChanged() {
				pw.logger.Info("Prompt template files changed, reloading")
				if err := pw.cfg.ReloadPrompts(); err != nil {
					pw.logger.LogError(err, "Failed to reload prompt templates, keeping previous set")
				}
			}

		case <-pw.stopChan:
			return
		}
	}
}

func (pw *PromptWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	isWatchedFile := slices.ContainsFunc(pw.files, func(file string) bool {
		return event.Name == file || filepath.Base(event.Name) == filepath.Base(file)
	})
	if !isWatchedFile {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (pw *PromptWatcher) hasAnyFileChanged() bool {
	return slices.ContainsFunc(pw.files, pw.hasFileChanged)
}

func (pw *PromptWatcher) scheduleReload() {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}
	pw.debounceTimer = time.AfterFunc(pw.debounceDelay, func() {
		select {
		case pw.reloadChan <- struct{}{}:
		default:
		}
	})
}

// IsRunning returns whether the watcher is currently running
func (pw *PromptWatcher) IsRunning() bool {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	return pw.running
}
