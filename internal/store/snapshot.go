package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cenkalti/backoff/v4"
)

// lastTxIDField is the reserved top-level key in the snapshot that
// carries the transaction-id counter alongside the per-collection
// document maps.
const lastTxIDField = "last_transaction_id"

// watermarkField is a reserved top-level key that persists the
// rollback watermark alongside the id counter, so a restart doesn't
// lose track of which history has been hard-evicted (see DESIGN.md).
const watermarkField = "highest_removed_tombstone_id"

// Persistence is the snapshot backend: load the whole store plus the
// id counter and rollback watermark, and save it back.
type Persistence interface {
	// Load returns the raw snapshot bytes, or (nil, nil) if no
	// snapshot exists yet.
	Load() ([]byte, error)
	// Save persists the raw snapshot bytes.
	Save(data []byte) error
	// Path returns the on-disk location of the snapshot, for display.
	Path() string
}

// FilePersistence stores the snapshot as a single JSON file. Writes go
// through a temp-file-plus-rename so a crash mid-write can never leave
// a half-written snapshot in place.
type FilePersistence struct {
	path string
}

// NewFilePersistence returns a FilePersistence rooted at path.
func NewFilePersistence(path string) *FilePersistence {
	return &FilePersistence{path: path}
}

func (f *FilePersistence) Path() string { return f.path }

func (f *FilePersistence) Load() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", f.path, err)
	}
	return data, nil
}

func (f *FilePersistence) Save(data []byte) error {
	dir := filepath.Dir(f.path)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("renaming snapshot into place: %w", err)
	}
	return nil
}

// loadSnapshot loads the store from its attached Persistence. Load
// errors reset the store to empty with a logged warning rather than
// propagating.
func (s *Store) loadSnapshot() {
	data, err := s.persistence.Load()
	if err != nil {
		s.logger.Printf("store: snapshot load failed, starting empty: %v", err)
		return
	}
	if data == nil {
		return
	}

	collections, lastTxID, watermark, err := decodeSnapshot(data)
	if err != nil {
		s.logger.Printf("store: snapshot decode failed, starting empty: %v", err)
		s.collections = make(map[string]map[string]*versionLog)
		s.currentTxID = 0
		s.highestRemovedTombstoneID = 0
		return
	}
	s.collections = collections
	s.currentTxID = lastTxID
	s.highestRemovedTombstoneID = watermark
}

// decodeSnapshot parses the flat
//
//	{ "<collection>": {...}, "last_transaction_id": N, "highest_removed_tombstone_id": N }
//
// document into per-collection version logs plus the two scalars.
func decodeSnapshot(data []byte) (map[string]map[string]*versionLog, TxID, TxID, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, 0, fmt.Errorf("unmarshaling snapshot: %w", err)
	}

	var lastTxID TxID
	if idRaw, ok := raw[lastTxIDField]; ok {
		if err := json.Unmarshal(idRaw, &lastTxID); err != nil {
			return nil, 0, 0, fmt.Errorf("unmarshaling %s: %w", lastTxIDField, err)
		}
		delete(raw, lastTxIDField)
	}

	var watermark TxID
	if wmRaw, ok := raw[watermarkField]; ok {
		if err := json.Unmarshal(wmRaw, &watermark); err != nil {
			return nil, 0, 0, fmt.Errorf("unmarshaling %s: %w", watermarkField, err)
		}
		delete(raw, watermarkField)
	}

	collections := make(map[string]map[string]*versionLog, len(raw))
	for name, colRaw := range raw {
		var flat map[string][]*Record
		if err := json.Unmarshal(colRaw, &flat); err != nil {
			return nil, 0, 0, fmt.Errorf("unmarshaling collection %s: %w", name, err)
		}
		col := make(map[string]*versionLog, len(flat))
		for key, records := range flat {
			col[key] = &versionLog{records: records}
		}
		collections[name] = col
	}
	return collections, lastTxID, watermark, nil
}

// persistLocked encodes and saves the current state. It must be called
// with s.mu held for writing. Save errors are retried briefly, then
// logged and swallowed — they are never surfaced to write callers.
func (s *Store) persistLocked() {
	if s.persistence == nil {
		return
	}

	data, err := s.encodeSnapshotLocked()
	if err != nil {
		s.logger.Printf("store: snapshot encode failed: %v", err)
		return
	}

	retry := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)
	if err := backoff.Retry(func() error { return s.persistence.Save(data) }, retry); err != nil {
		s.logger.Printf("store: snapshot save failed after retries: %v", err)
	}
}

func (s *Store) encodeSnapshotLocked() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.collections)+2)
	for name, col := range s.collections {
		flat := make(map[string][]*Record, len(col))
		for key, vlog := range col {
			flat[key] = vlog.all()
		}
		b, err := json.Marshal(flat)
		if err != nil {
			return nil, fmt.Errorf("marshaling collection %s: %w", name, err)
		}
		out[name] = b
	}

	idBytes, err := json.Marshal(s.currentTxID)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", lastTxIDField, err)
	}
	out[lastTxIDField] = idBytes

	wmBytes, err := json.Marshal(s.highestRemovedTombstoneID)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", watermarkField, err)
	}
	out[watermarkField] = wmBytes

	full, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshaling snapshot: %w", err)
	}
	return full, nil
}
