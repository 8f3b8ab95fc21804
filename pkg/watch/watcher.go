// Package watch re-runs work when files below a directory change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period a file must see before it is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a directory tree and reports files whose content changed.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	accept    func(path string) bool
	callback  func(paths []string)
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time
	hashes  map[string]uint64
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithFilter limits reported files to those accept returns true for.
func WithFilter(accept func(path string) bool) Option {
	return func(w *Watcher) {
		w.accept = accept
	}
}

// WithLogger sets the logger for watch errors and skipped events.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// NewWatcher creates a new file watcher.
func NewWatcher(path string, debounce time.Duration, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		path:      path,
		debounce:  debounce,
		accept:    func(string) bool { return true },
		logger:    slog.New(slog.DiscardHandler),
		pending:   make(map[string]time.Time),
		hashes:    make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// SetCallback sets the function called with each batch of changed files.
// Paths in a batch are sorted.
func (w *Watcher) SetCallback(cb func(paths []string)) {
	w.callback = cb
}

// Start watches until ctx is done. Every directory below the root is
// watched, hidden ones excepted, and directories created later are added.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.path); err != nil {
		return err
	}

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// addTree watches root and its subdirectories and records the content hash
// of every accepted file so unchanged saves are not reported.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		}
		if w.accept(path) {
			if sum, ok := hashFile(path); ok {
				w.mu.Lock()
				w.hashes[path] = sum
				w.mu.Unlock()
			}
		}
		return nil
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Only care about writes and creates
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	path := event.Name
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addTree(path); err != nil {
				w.logger.Warn("failed to watch directory", "dir", path, "error", err)
			}
			return
		}
	}

	if !w.accept(path) {
		w.logger.Debug("ignoring change", "file", path)
		return
	}

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ready := w.takeReady(time.Now()); len(ready) > 0 && w.callback != nil {
				w.callback(ready)
			}
		}
	}
}

// takeReady removes files that have been stable for the debounce period
// and returns those whose content differs from the last seen version.
func (w *Watcher) takeReady(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, lastMod := range w.pending {
		if now.Sub(lastMod) < w.debounce {
			continue
		}
		delete(w.pending, path)
		if w.changedLocked(path) {
			ready = append(ready, path)
		}
	}
	slices.Sort(ready)
	return ready
}

func (w *Watcher) changedLocked(path string) bool {
	sum, ok := hashFile(path)
	if !ok {
		// Removed before the debounce expired.
		delete(w.hashes, path)
		return false
	}
	if prev, seen := w.hashes[path]; seen && prev == sum {
		return false
	}
	w.hashes[path] = sum
	return true
}

func hashFile(path string) (uint64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	return xxhash.Sum64(data), true
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedDirs returns the list of watched directories.
func (w *Watcher) WatchedDirs() []string {
	return w.fsWatcher.WatchList()
}
