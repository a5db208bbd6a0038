// Package watcher rescans directories when files under them change.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/logger"
)

// Triggerer starts a scan of one root directory.
// driving.RescanScheduler satisfies it.
type Triggerer interface {
	Trigger(ctx context.Context, root string) error
}

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period after the last event before a rescan.
	Debounce time.Duration

	// Extensions limits which files trigger rescans. Empty means all.
	Extensions []string
}

// Watcher turns filesystem events into debounced rescans, one per root.
type Watcher struct {
	roots    []string
	trigger  Triggerer
	debounce time.Duration
	exts     map[string]bool

	mu      sync.Mutex
	timers  map[string]*time.Timer
	closed  bool
	fsw     *fsnotify.Watcher
	pending sync.WaitGroup
}

// New creates a watcher over roots. Nothing is watched until Run.
func New(roots []string, trigger Triggerer, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = domain.DefaultWatchDebounce
	}

	exts := make(map[string]bool, len(opts.Extensions))
	for _, e := range opts.Extensions {
		exts[strings.ToLower(e)] = true
	}

	return &Watcher{
		roots:    roots,
		trigger:  trigger,
		debounce: opts.Debounce,
		exts:     exts,
		timers:   make(map[string]*time.Timer),
	}
}

// Run watches every root recursively until ctx is cancelled.
// It fails with domain.ErrDirectoryNotFound if a root is not a directory.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := w.start()
	if err != nil {
		return err
	}
	defer w.Close() //nolint:errcheck

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) start() (*fsnotify.Watcher, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, errors.New("watcher is closed")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	for i, root := range w.roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("root path error: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			fsw.Close()
			return nil, fmt.Errorf("%w: root path error: %s", domain.ErrDirectoryNotFound, root)
		}
		w.roots[i] = abs
		if err := addRecursive(fsw, abs); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	w.fsw = fsw
	logger.Info("Watching %d directories", len(w.roots))
	return fsw, nil
}

// Close stops watching and waits for rescans already started.
// Pending debounced rescans are dropped. Close is idempotent.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for root, t := range w.timers {
		if t.Stop() {
			w.pending.Done()
		}
		delete(w.timers, root)
	}
	fsw := w.fsw
	w.mu.Unlock()

	w.pending.Wait()
	if fsw != nil {
		return fsw.Close()
	}
	return nil
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	root := w.rootFor(event.Name)
	if root == "" {
		return
	}
	rel, err := filepath.Rel(root, event.Name)
	if err != nil || isHidden(rel) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.mu.Lock()
			fsw := w.fsw
			w.mu.Unlock()
			if fsw != nil {
				if err := addRecursive(fsw, event.Name); err != nil {
					logger.Warn("Cannot watch %s: %v", event.Name, err)
				}
			}
			// Files copied in with the directory produced no events of their own.
			w.schedule(ctx, root)
			return
		}
	}

	if w.relevant(event) {
		w.schedule(ctx, root)
	}
}

// relevant reports whether an event on a visible path should cause a rescan.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), "~$") {
		return false
	}
	if len(w.exts) > 0 && !w.exts[strings.ToLower(filepath.Ext(event.Name))] {
		return false
	}
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			return false
		}
	}
	return true
}

// rootFor returns the watched root containing path, preferring the deepest.
func (w *Watcher) rootFor(path string) string {
	best := ""
	for _, root := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			if len(root) > len(best) {
				best = root
			}
		}
	}
	return best
}

// schedule (re)arms the debounce timer for root.
func (w *Watcher) schedule(ctx context.Context, root string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if t, ok := w.timers[root]; ok {
		if t.Stop() {
			w.pending.Done()
		}
	}

	w.pending.Add(1)
	w.timers[root] = time.AfterFunc(w.debounce, func() {
		defer w.pending.Done()
		w.fire(ctx, root)
	})
}

func (w *Watcher) fire(ctx context.Context, root string) {
	w.mu.Lock()
	delete(w.timers, root)
	w.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	logger.Debug("Change detected under %s, rescanning", root)
	err := w.trigger.Trigger(ctx, root)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrScanInProgress):
		// The running scan may have missed this change.
		w.schedule(ctx, root)
	case ctx.Err() == nil:
		logger.Error(err, "Rescan of %s failed", root)
	}
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
