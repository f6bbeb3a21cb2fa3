package store

import (
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"
)

// Store is the global document store: a mapping from collection name
// to collection, plus the transaction-id counter and the rollback
// watermark. One logical writer lock protects all three; readers take
// the read side of the same lock and never run concurrently with a
// writer.
type Store struct {
	mu sync.RWMutex

	collections map[string]map[string]*versionLog
	currentTxID TxID
	// highestRemovedTombstoneID upper-bounds the txids of records no
	// longer reconstructible from the store.
	highestRemovedTombstoneID TxID

	clock       func() time.Time
	logger      *log.Logger
	persistence Persistence
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithPersistence attaches a Persistence backend. Save is invoked
// after every successful write mutation; load/save failures are
// logged, never returned to the caller.
func WithPersistence(p Persistence) Option {
	return func(s *Store) { s.persistence = p }
}

// WithLogger overrides the default stderr logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// withClock overrides the wall clock; used by tests to make timestamps
// and GC age checks deterministic.
func withClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// New creates an empty Store and, if a Persistence backend is
// attached, loads its existing snapshot.
func New(opts ...Option) *Store {
	s := &Store{
		collections: make(map[string]map[string]*versionLog),
		clock:       time.Now,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.persistence != nil {
		s.loadSnapshot()
	}
	return s
}

// CurrentTxID returns the last transaction id handed out.
func (s *Store) CurrentTxID() TxID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentTxID
}

// HighestRemovedTombstoneID returns the rollback watermark.
func (s *Store) HighestRemovedTombstoneID() TxID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.highestRemovedTombstoneID
}

func (s *Store) nextTxID() TxID {
	s.currentTxID++
	return s.currentTxID
}

// Upsert inserts or updates a document, appending a new version to its
// log. value may be any JSON, including a literal null (callers should
// prefer Delete for deletes, but an explicit null upsert is accepted).
func (s *Store) Upsert(collection, key string, value json.RawMessage) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	vlog := s.logFor(collection, key)
	rec := &Record{
		Key:       key,
		Value:     value,
		Version:   vlog.len() + 1,
		Timestamp: s.clock().Unix(),
		TxID:      s.nextTxID(),
	}
	vlog.append(rec)
	s.persistLocked()
	return rec
}

// logFor returns the version log for (collection, key), creating the
// collection and an empty log if they don't exist yet.
func (s *Store) logFor(collection, key string) *versionLog {
	col, ok := s.collections[collection]
	if !ok {
		col = make(map[string]*versionLog)
		s.collections[collection] = col
	}
	vlog, ok := col[key]
	if !ok {
		vlog = &versionLog{}
		col[key] = vlog
	}
	return vlog
}

// Get returns a document. If version is nil, the latest live version
// is returned; otherwise the exact version is looked up. A tombstoned
// result, an absent key, or an absent collection are all NotFound.
func (s *Store) Get(collection, key string, version *int) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vlog, ok := s.findLog(collection, key)
	if !ok {
		return nil, errNotFound("%s/%s: not found", collection, key)
	}

	var rec *Record
	if version == nil {
		rec = vlog.latestLive()
	} else {
		rec = vlog.atVersion(*version)
	}
	if rec == nil {
		return nil, errNotFound("%s/%s: not found", collection, key)
	}
	return rec, nil
}

func (s *Store) findLog(collection, key string) (*versionLog, bool) {
	col, ok := s.collections[collection]
	if !ok {
		return nil, false
	}
	vlog, ok := col[key]
	return vlog, ok
}

// Delete appends a tombstone. Deleting an already-deleted key appends
// another tombstone, since the feed must always record the intent.
// Returns false if the key doesn't exist.
func (s *Store) Delete(collection, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	vlog, ok := s.findLog(collection, key)
	if !ok {
		return false
	}
	rec := &Record{
		Key:       key,
		Value:     nil,
		Version:   vlog.len() + 1,
		Timestamp: s.clock().Unix(),
		TxID:      s.nextTxID(),
	}
	vlog.append(rec)
	s.persistLocked()
	return true
}

// Evict hard-removes a key's entire history: no tombstone is written,
// and the rollback watermark advances to the log's last txid so
// readers tailing the feed know to rebuild state.
func (s *Store) Evict(collection, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		return false
	}
	vlog, ok := col[key]
	if !ok {
		return false
	}

	if last := vlog.lastTxID(); last > s.highestRemovedTombstoneID {
		s.highestRemovedTombstoneID = last
	}
	delete(col, key)
	if len(col) == 0 {
		delete(s.collections, collection)
	}
	s.persistLocked()
	return true
}

// DocumentSet is one key's matching records, as returned by
// ListDocuments and QueryDocuments.
type DocumentSet struct {
	Key     string
	Records []*Record
}

// ListDocuments returns, for every key in collection, either the full
// log (latestOnly=false) or the latest live record only (tombstones
// excluded). An unknown collection yields an empty result.
func (s *Store) ListDocuments(collection string, latestOnly bool) []DocumentSet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col := s.collections[collection]
	keys := sortedKeys(col)
	out := make([]DocumentSet, 0, len(keys))
	for _, key := range keys {
		vlog := col[key]
		if latestOnly {
			rec := vlog.latestLive()
			if rec == nil {
				continue
			}
			out = append(out, DocumentSet{Key: key, Records: []*Record{rec}})
		} else {
			records := append([]*Record(nil), vlog.all()...)
			out = append(out, DocumentSet{Key: key, Records: records})
		}
	}
	return out
}

// QueryDocuments filters each log's records by pred before applying
// the same latestOnly shaping as ListDocuments. A key with no matching
// records is omitted. When latestOnly is true, the returned record is
// the highest-version match, which may be older than the key's true
// latest version.
func (s *Store) QueryDocuments(collection string, pred *Predicate, latestOnly bool) []DocumentSet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col := s.collections[collection]
	keys := sortedKeys(col)
	out := make([]DocumentSet, 0, len(keys))
	for _, key := range keys {
		vlog := col[key]
		var matched []*Record
		for _, r := range vlog.all() {
			if pred.Eval(r) {
				matched = append(matched, r)
			}
		}
		if len(matched) == 0 {
			continue
		}
		if latestOnly {
			best := matched[0]
			for _, r := range matched[1:] {
				if r.Version > best.Version {
					best = r
				}
			}
			out = append(out, DocumentSet{Key: key, Records: []*Record{best}})
		} else {
			out = append(out, DocumentSet{Key: key, Records: matched})
		}
	}
	return out
}

func sortedKeys(col map[string]*versionLog) []string {
	keys := make([]string, 0, len(col))
	for k := range col {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
