package cli

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchEvent reports that the snapshot file changed on disk.
type WatchEvent struct {
	Path string
	Op   fsnotify.Op
}

// SnapshotWatcher watches the directory holding a store's snapshot file
// and emits a debounced event each time that file is rewritten. The
// store persists via temp-file-plus-rename (see internal/store/snapshot.go),
// so a single logical save can surface as a Create followed by a
// Rename; debouncing collapses those into one WatchEvent for `changes --follow`.
type SnapshotWatcher struct {
	path           string
	debounceWindow time.Duration

	events chan WatchEvent
	errors chan error

	mu      sync.Mutex
	pending fsnotify.Op
	timer   *time.Timer

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSnapshotWatcher builds a watcher for the snapshot file at path.
func NewSnapshotWatcher(path string) (*SnapshotWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &SnapshotWatcher{
		path:           path,
		debounceWindow: 150 * time.Millisecond,
		events:         make(chan WatchEvent, 8),
		errors:         make(chan error, 1),
		watcher:        w,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}, nil
}

// Events returns the channel of debounced change notifications.
func (w *SnapshotWatcher) Events() <-chan WatchEvent { return w.events }

// Errors returns the channel of watcher errors (e.g. the directory
// being removed out from under it).
func (w *SnapshotWatcher) Errors() <-chan error { return w.errors }

// Start begins watching in the background.
func (w *SnapshotWatcher) Start() {
	go w.loop()
}

// Stop tears down the underlying fsnotify watcher and waits for the
// background goroutine to exit.
func (w *SnapshotWatcher) Stop() error {
	close(w.stopCh)
	err := w.watcher.Close()
	<-w.doneCh
	return err
}

func (w *SnapshotWatcher) loop() {
	defer close(w.doneCh)
	name := filepath.Base(w.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			w.record(event.Op)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		case <-w.stopCh:
			return
		}
	}
}

func (w *SnapshotWatcher) record(op fsnotify.Op) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending |= op
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceWindow, w.flush)
}

func (w *SnapshotWatcher) flush() {
	w.mu.Lock()
	op := w.pending
	w.pending = 0
	w.mu.Unlock()

	if op == 0 {
		return
	}
	select {
	case w.events <- WatchEvent{Path: w.path, Op: op}:
	case <-w.stopCh:
	}
}
