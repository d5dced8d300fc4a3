package commands

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces editor save bursts into one re-run.
const watchDebounce = 150 * time.Millisecond

// sourceWatcher reports changes to manifests and Go model files.
type sourceWatcher struct {
	watcher   *fsnotify.Watcher
	manifests map[string]bool
	modelsDir string
	debounce  time.Duration
	logger    *slog.Logger
}

// newSourceWatcher watches the directories holding the manifests, and the
// models directory recursively. Directories rather than files are watched
// so editors that save by rename keep being seen.
func newSourceWatcher(manifests []string, modelsDir string, logger *slog.Logger) (*sourceWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &sourceWatcher{
		watcher:   watcher,
		manifests: make(map[string]bool, len(manifests)),
		debounce:  watchDebounce,
		logger:    logger,
	}

	dirs := make(map[string]bool)
	for _, m := range manifests {
		abs, err := filepath.Abs(m)
		if err != nil {
			abs = m
		}
		w.manifests[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	if modelsDir != "" {
		if abs, err := filepath.Abs(modelsDir); err == nil {
			modelsDir = abs
		}
		w.modelsDir = modelsDir
		if err := w.addTree(modelsDir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch models dir: %w", err)
		}
	}

	return w, nil
}

// addTree recursively adds a directory to the watcher.
func (w *sourceWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || d.Name() == "vendor" || d.Name() == "testdata") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// relevant reports whether a change to name affects the loaded models.
func (w *sourceWatcher) relevant(name string) bool {
	if w.manifests[name] {
		return true
	}
	if w.modelsDir == "" {
		return false
	}
	rel, err := filepath.Rel(w.modelsDir, name)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
}

// Run calls onChange once per burst of relevant changes until ctx is done.
func (w *sourceWatcher) Run(ctx context.Context, onChange func(changed string)) error {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		changed string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}

			if event.Op&fsnotify.Create != 0 && w.modelsDir != "" {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", slog.String("path", event.Name), slog.String("error", err.Error()))
					}
					continue
				}
			}

			if !w.relevant(event.Name) {
				continue
			}
			w.logger.Debug("source changed", slog.String("path", event.Name), slog.String("op", event.Op.String()))

			changed = event.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			onChange(changed)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}

// Close stops watching.
func (w *sourceWatcher) Close() error {
	return w.watcher.Close()
}
