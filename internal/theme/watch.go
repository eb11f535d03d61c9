package theme

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/hitbox"
)

const watchDebounce = 200 * time.Millisecond

// loadTable is replaced in tests.
var loadTable = Load

// Watcher reloads a style table when its file changes on disk.
//
// The containing directory is watched rather than the file itself so that
// editors which replace the file by rename are still observed.
type Watcher struct {
	watcher *fsnotify.Watcher

	path     string
	onChange func(*Table)
	debounce time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	closed    bool
	closeOnce sync.Once
}

// NewWatcher starts watching path. onChange receives every table that parses
// successfully; files that fail to parse are logged and skipped.
func NewWatcher(path string, onChange func(*Table)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		path:     filepath.Clean(path),
		onChange: onChange,
		debounce: watchDebounce,
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.isTableEvent(event) {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			hitbox.Logger().Warn("theme: watch error", "path", w.path, "error", err)
		}
	}
}

// Close stops the watcher. It is safe to call more than once. A reload
// that finishes loading after Close is dropped; Close does not wait for a
// callback that is already running.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		if w.timer != nil {
			w.timer.Stop()
			w.timer = nil
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) isTableEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.fire)
	} else {
		w.timer.Reset(w.debounce)
	}
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.mu.Unlock()

	t, err := loadTable(w.path)
	if err != nil {
		hitbox.Logger().Warn("theme: reload failed", "path", w.path, "error", err)
		return
	}
	if w.onChange == nil || w.isClosed() {
		return
	}
	w.onChange(t)
}

func (w *Watcher) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Watch blocks until ctx is done, calling onChange for every reloaded table.
func Watch(ctx context.Context, path string, onChange func(*Table)) error {
	w, err := NewWatcher(path, onChange)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	return w.Run(ctx)
}
