package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docask/internal/core/domain"
)

type recordingTrigger struct {
	mu    sync.Mutex
	roots []string
	busy  int
	ch    chan string
}

func newRecordingTrigger() *recordingTrigger {
	return &recordingTrigger{ch: make(chan string, 16)}
}

func (r *recordingTrigger) Trigger(_ context.Context, root string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy > 0 {
		r.busy--
		return fmt.Errorf("%w: %s", domain.ErrScanInProgress, root)
	}
	r.roots = append(r.roots, root)
	r.ch <- root
	return nil
}

func (r *recordingTrigger) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.roots)
}

func runWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Give Run time to register the directories.
	time.Sleep(100 * time.Millisecond)
}

func waitTrigger(t *testing.T, tr *recordingTrigger) string {
	t.Helper()
	select {
	case root := <-tr.ch:
		return root
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for rescan")
		return ""
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"dir/.hidden/file.pdf", true},
		{"file.pdf", false},
		{"dir/file.pdf", false},
		{".", false},
		{"..", false},
		{"../file.pdf", false},
		{"file.hidden", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	file := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	w := New([]string{dir}, newRecordingTrigger(), Options{Extensions: []string{".pdf", ".docx"}})

	tests := []struct {
		name     string
		event    fsnotify.Event
		expected bool
	}{
		{"create", fsnotify.Event{Name: file, Op: fsnotify.Create}, true},
		{"write", fsnotify.Event{Name: file, Op: fsnotify.Write}, true},
		{"remove", fsnotify.Event{Name: filepath.Join(dir, "gone.docx"), Op: fsnotify.Remove}, true},
		{"rename", fsnotify.Event{Name: filepath.Join(dir, "old.PDF"), Op: fsnotify.Rename}, true},
		{"chmod", fsnotify.Event{Name: file, Op: fsnotify.Chmod}, false},
		{"unsupported extension", fsnotify.Event{Name: filepath.Join(dir, "a.png"), Op: fsnotify.Write}, false},
		{"office lock file", fsnotify.Event{Name: filepath.Join(dir, "~$report.docx"), Op: fsnotify.Create}, false},
		{"directory write", fsnotify.Event{Name: sub, Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, w.relevant(tt.event))
		})
	}
}

func TestRootFor_PrefersDeepest(t *testing.T) {
	w := New([]string{"/docs", "/docs/work", "/docs2"}, newRecordingTrigger(), Options{})

	assert.Equal(t, "/docs/work", w.rootFor("/docs/work/a.pdf"))
	assert.Equal(t, "/docs", w.rootFor("/docs/home/a.pdf"))
	assert.Equal(t, "/docs2", w.rootFor("/docs2/a.pdf"))
	assert.Equal(t, "", w.rootFor("/other/a.pdf"))
}

func TestRun_MissingRoot(t *testing.T) {
	w := New([]string{filepath.Join(t.TempDir(), "missing")}, newRecordingTrigger(), Options{})

	err := w.Run(context.Background())

	assert.ErrorIs(t, err, domain.ErrDirectoryNotFound)
}

func TestRun_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	tr := newRecordingTrigger()
	w := New([]string{dir}, tr, Options{Debounce: 150 * time.Millisecond})
	runWatcher(t, w)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("f%d.txt", i)), []byte("x"), 0644))
	}

	root, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, root, waitTrigger(t, tr))

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, tr.count())
}

func TestRun_WatchesNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	tr := newRecordingTrigger()
	w := New([]string{dir}, tr, Options{Debounce: 50 * time.Millisecond})
	runWatcher(t, w)

	sub := filepath.Join(dir, "new")
	require.NoError(t, os.Mkdir(sub, 0755))
	waitTrigger(t, tr)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "a.txt"), []byte("x"), 0644))
	waitTrigger(t, tr)
}

func TestRun_IgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	tr := newRecordingTrigger()
	w := New([]string{dir}, tr, Options{Debounce: 50 * time.Millisecond})
	runWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".swap"), []byte("x"), 0644))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 0, tr.count())
}

func TestRun_RetriesWhileScanInProgress(t *testing.T) {
	dir := t.TempDir()
	tr := newRecordingTrigger()
	tr.busy = 2
	w := New([]string{dir}, tr, Options{Debounce: 30 * time.Millisecond})
	runWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0644))

	waitTrigger(t, tr)
	assert.Equal(t, 1, tr.count())
}

func TestClose_Idempotent(t *testing.T) {
	w := New([]string{t.TempDir()}, newRecordingTrigger(), Options{})

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
	assert.Error(t, w.Run(context.Background()))
}
