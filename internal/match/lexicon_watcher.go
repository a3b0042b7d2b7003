package match

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"smartrecruit/internal/errors"
)

// LexiconWatcher watches a JSON alias-override file and applies changes to a
// lexicon without a restart. The file maps raw tokens to canonical tokens,
// e.g. {"golang": "go", "k8s": "kubernetes"}.
type LexiconWatcher struct {
	mu sync.Mutex

	path    string
	lexicon *Lexicon
	logger  *errors.Logger

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	running bool
}

// NewLexiconWatcher creates a watcher that keeps lexicon in sync with the
// override file at path. The file does not need to exist yet; its directory
// is watched so the overrides apply as soon as it appears.
func NewLexiconWatcher(path string, lexicon *Lexicon, debounceDelay time.Duration, logger *errors.Logger) *LexiconWatcher {
	if debounceDelay == 0 {
		debounceDelay = time.Second
	}
	return &LexiconWatcher{
		path:          path,
		lexicon:       lexicon,
		logger:        logger,
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
	}
}

// Start loads the override file once and begins watching it for changes.
func (lw *LexiconWatcher) Start() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if lw.running {
		return fmt.Errorf("lexicon watcher is already running")
	}

	if err := lw.reload(); err != nil && !os.IsNotExist(err) {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	lw.fsWatcher = watcher

	// Watch the directory rather than the file so atomic writes (write to
	// temp file, rename over) and late file creation are both observed.
	if err := watcher.Add(filepath.Dir(lw.path)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil && lw.logger != nil {
			lw.logger.LogError(closeErr, "Failed to close file watcher during cleanup")
		}
		return fmt.Errorf("failed to watch directory %s: %w", filepath.Dir(lw.path), err)
	}

	lw.running = true
	go lw.watchLoop()

	if lw.logger != nil {
		lw.logger.Info("Lexicon override watcher started",
			"file", lw.path,
			"debounce_delay", lw.debounceDelay)
	}
	return nil
}

// Stop stops the watcher.
func (lw *LexiconWatcher) Stop() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if !lw.running {
		return nil
	}

	close(lw.stopChan)
	if lw.debounceTimer != nil {
		lw.debounceTimer.Stop()
	}
	if err := lw.fsWatcher.Close(); err != nil {
		if lw.logger != nil {
			lw.logger.LogError(err, "Failed to close file system watcher")
		}
		return err
	}
	lw.running = false

	if lw.logger != nil {
		lw.logger.Info("Lexicon override watcher stopped")
	}
	return nil
}

// IsRunning reports whether the watcher is active.
func (lw *LexiconWatcher) IsRunning() bool {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.running
}

func (lw *LexiconWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-lw.fsWatcher.Events:
			if !ok {
				return
			}
			if lw.shouldProcessEvent(event) {
				lw.scheduleReload()
			}

		case err, ok := <-lw.fsWatcher.Errors:
			if !ok {
				return
			}
			if lw.logger != nil {
				lw.logger.LogError(err, "File watcher error")
			}

		case <-lw.reloadChan:
			if err := lw.reload(); err != nil {
				if lw.logger != nil {
					lw.logger.LogError(err, "Failed to reload lexicon overrides", "file", lw.path)
				}
				continue
			}
			if lw.logger != nil {
				lw.logger.Info("Lexicon overrides reloaded", "file", lw.path)
			}

		case <-lw.stopChan:
			return
		}
	}
}

func (lw *LexiconWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != filepath.Base(lw.path) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (lw *LexiconWatcher) scheduleReload() {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if lw.debounceTimer != nil {
		lw.debounceTimer.Stop()
	}
	lw.debounceTimer = time.AfterFunc(lw.debounceDelay, func() {
		select {
		case lw.reloadChan <- struct{}{}:
		default:
		}
	})
}

// reload reads the override file and swaps the merged table into the lexicon.
// A deleted file clears all overrides.
func (lw *LexiconWatcher) reload() error {
	if err := LoadOverrides(lw.path, lw.lexicon); err != nil {
		if os.IsNotExist(err) {
			lw.lexicon.SetOverrides(nil)
		}
		return err
	}
	return nil
}

// LoadOverrides reads a JSON alias file and installs the normalized table on
// the lexicon. Keys and values are accent-folded and lowercased the same way
// canonicalization folds tokens.
func LoadOverrides(path string, lexicon *Lexicon) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse lexicon overrides %s: %w", path, err)
	}

	overrides := make(map[string]string, len(raw))
	for from, to := range raw {
		from = strings.ToLower(strings.TrimSpace(StripAccents(from)))
		to = strings.ToLower(strings.TrimSpace(StripAccents(to)))
		if from == "" || to == "" {
			continue
		}
		overrides[from] = to
	}
	lexicon.SetOverrides(overrides)
	return nil
}
