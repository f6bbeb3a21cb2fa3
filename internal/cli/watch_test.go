package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSnapshotWatcherDebounceAggregatesOps(t *testing.T) {
	w := &SnapshotWatcher{
		path:           "/tmp/store.json",
		debounceWindow: 50 * time.Millisecond,
		events:         make(chan WatchEvent, 10),
		errors:         make(chan error, 1),
		stopCh:         make(chan struct{}),
	}

	w.record(1) // fsnotify.Create
	w.record(2) // fsnotify.Write
	w.flush()

	select {
	case ev := <-w.events:
		if ev.Path != "/tmp/store.json" {
			t.Fatalf("unexpected event path: %s", ev.Path)
		}
		if ev.Op != 3 {
			t.Fatalf("event op = %v, want Create|Write aggregated", ev.Op)
		}
	default:
		t.Fatal("expected a debounced event after flush")
	}
}

func TestSnapshotWatcherEmitsEventOnRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	w, err := NewSnapshotWatcher(path)
	if err != nil {
		t.Fatalf("NewSnapshotWatcher: %v", err)
	}
	w.debounceWindow = 20 * time.Millisecond
	w.Start()
	t.Cleanup(func() { _ = w.Stop() })

	if err := os.WriteFile(path, []byte(`{"n":1}`), 0o644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}

	select {
	case ev := <-w.Events():
		if filepath.Base(ev.Path) != "store.json" {
			t.Fatalf("unexpected event path: %s", ev.Path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watcher event")
	}
}

func TestNewSnapshotWatcherMissingDir(t *testing.T) {
	_, err := NewSnapshotWatcher("/nonexistent-dir-xyz/store.json")
	if err == nil {
		t.Fatal("expected error when the snapshot directory doesn't exist")
	}
}
