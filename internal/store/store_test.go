package store

import (
	"encoding/json"
	"testing"
	"time"
)

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func newTestStore() *Store {
	return New(withClock(func() time.Time { return time.Unix(1000, 0) }))
}

// S1 — basic upsert and versioning.
func TestUpsertVersioning(t *testing.T) {
	s := newTestStore()

	r1 := s.Upsert("users", "u1", rawJSON(t, map[string]string{"n": "A"}))
	if r1.Version != 1 || r1.TxID != 1 || r1.Operation() != OpInsert {
		t.Fatalf("r1 = %+v, want version=1 txid=1 op=insert", r1)
	}

	r2 := s.Upsert("users", "u1", rawJSON(t, map[string]string{"n": "B"}))
	if r2.Version != 2 || r2.TxID != 2 || r2.Operation() != OpUpdate {
		t.Fatalf("r2 = %+v, want version=2 txid=2 op=update", r2)
	}

	got, err := s.Get("users", "u1", nil)
	if err != nil {
		t.Fatalf("Get latest: %v", err)
	}
	if string(got.Value) != `{"n":"B"}` {
		t.Errorf("latest value = %s, want {\"n\":\"B\"}", got.Value)
	}

	v1 := 1
	got1, err := s.Get("users", "u1", &v1)
	if err != nil {
		t.Fatalf("Get version 1: %v", err)
	}
	if string(got1.Value) != `{"n":"A"}` {
		t.Errorf("version 1 value = %s, want {\"n\":\"A\"}", got1.Value)
	}
}

// S2 — tombstone and feed.
func TestDeleteTombstoneAndFeed(t *testing.T) {
	s := newTestStore()
	s.Upsert("c", "k", rawJSON(t, map[string]int{"x": 1}))
	if ok := s.Delete("c", "k"); !ok {
		t.Fatal("Delete returned false")
	}

	if _, err := s.Get("c", "k", nil); !IsNotFound(err) {
		t.Errorf("Get after delete = %v, want NotFound", err)
	}

	feed := s.GetChangesAfter(0, 10, nil, nil)
	if len(feed.Changes) != 2 {
		t.Fatalf("len(changes) = %d, want 2", len(feed.Changes))
	}
	if feed.Changes[0].Record.TxID != 1 || feed.Changes[0].Operation != OpInsert {
		t.Errorf("changes[0] = %+v, want txid=1 insert", feed.Changes[0])
	}
	if feed.Changes[1].Record.TxID != 2 || feed.Changes[1].Operation != OpDelete {
		t.Errorf("changes[1] = %+v, want txid=2 delete", feed.Changes[1])
	}
	if feed.Changes[1].Record.Value != nil {
		t.Errorf("tombstone value = %s, want nil", feed.Changes[1].Record.Value)
	}
}

// Deleting an already-deleted key appends another tombstone.
func TestDeleteIsIdempotentlyVersioned(t *testing.T) {
	s := newTestStore()
	s.Upsert("c", "k", rawJSON(t, 1))
	s.Delete("c", "k")
	if ok := s.Delete("c", "k"); !ok {
		t.Fatal("second Delete returned false")
	}

	feed := s.GetChangesAfter(0, 10, nil, nil)
	if len(feed.Changes) != 3 {
		t.Fatalf("len(changes) = %d, want 3", len(feed.Changes))
	}
	if feed.Changes[2].Record.Version != 3 {
		t.Errorf("second tombstone version = %d, want 3", feed.Changes[2].Record.Version)
	}
}

// S3 — predicate filter.
func TestQueryDocumentsPredicateFilter(t *testing.T) {
	s := newTestStore()
	s.Upsert("users", "u1", rawJSON(t, map[string]int{"age": 30}))
	s.Upsert("users", "u2", rawJSON(t, map[string]int{"age": 20}))
	s.Upsert("users", "u3", rawJSON(t, map[string]int{"age": 40}))

	pred, err := ParsePredicate("value.age > 25")
	if err != nil {
		t.Fatalf("ParsePredicate: %v", err)
	}

	results := s.QueryDocuments("users", pred, true)
	got := map[string]bool{}
	for _, r := range results {
		got[r.Key] = true
	}
	if len(got) != 2 || !got["u1"] || !got["u3"] {
		t.Errorf("query results = %v, want {u1, u3}", got)
	}
}

// S4 — IN list.
func TestQueryDocumentsInList(t *testing.T) {
	s := newTestStore()
	s.Upsert("c", "a", rawJSON(t, map[string]string{"s": "active"}))
	s.Upsert("c", "b", rawJSON(t, map[string]string{"s": "pending"}))
	s.Upsert("c", "c", rawJSON(t, map[string]string{"s": "off"}))

	pred, err := ParsePredicate("value.s IN ('active','pending')")
	if err != nil {
		t.Fatalf("ParsePredicate: %v", err)
	}

	results := s.QueryDocuments("c", pred, true)
	got := map[string]bool{}
	for _, r := range results {
		got[r.Key] = true
	}
	if len(got) != 2 || !got["a"] || !got["b"] {
		t.Errorf("query results = %v, want {a, b}", got)
	}
}

// S6 — ordering across keys: feed orders by txid, not grouped by key.
func TestFeedOrdersByTxIDAcrossKeys(t *testing.T) {
	s := newTestStore()
	s.Upsert("a", "x", rawJSON(t, 1)) // txid 1
	s.Upsert("b", "y", rawJSON(t, 1)) // txid 2
	s.Upsert("a", "x", rawJSON(t, 2)) // txid 3

	feed := s.GetChangesAfter(0, 10, nil, nil)
	if len(feed.Changes) != 3 {
		t.Fatalf("len(changes) = %d, want 3", len(feed.Changes))
	}
	wantTxIDs := []TxID{1, 2, 3}
	for i, want := range wantTxIDs {
		if feed.Changes[i].Record.TxID != want {
			t.Errorf("changes[%d].TxID = %d, want %d", i, feed.Changes[i].Record.TxID, want)
		}
	}
}

func TestEvictAdvancesWatermarkAndRemovesHistory(t *testing.T) {
	s := newTestStore()
	s.Upsert("c", "k", rawJSON(t, 1))
	s.Upsert("c", "k", rawJSON(t, 2))

	if ok := s.Evict("c", "k"); !ok {
		t.Fatal("Evict returned false")
	}
	if s.HighestRemovedTombstoneID() < 2 {
		t.Errorf("watermark = %d, want >= 2", s.HighestRemovedTombstoneID())
	}
	if _, err := s.Get("c", "k", nil); !IsNotFound(err) {
		t.Errorf("Get after evict = %v, want NotFound", err)
	}
	// collection should be removed once empty
	if len(s.ListDocuments("c", false)) != 0 {
		t.Errorf("collection c should be empty after evicting its only key")
	}
}

func TestListDocumentsLatestOnlyExcludesTombstones(t *testing.T) {
	s := newTestStore()
	s.Upsert("c", "k1", rawJSON(t, 1))
	s.Upsert("c", "k2", rawJSON(t, 1))
	s.Delete("c", "k2")

	results := s.ListDocuments("c", true)
	if len(results) != 1 || results[0].Key != "k1" {
		t.Errorf("ListDocuments(latestOnly) = %+v, want only k1", results)
	}
}

func TestListDocumentsUnknownCollectionIsEmpty(t *testing.T) {
	s := newTestStore()
	if got := s.ListDocuments("nope", false); len(got) != 0 {
		t.Errorf("ListDocuments on unknown collection = %v, want empty", got)
	}
}

func TestUpsertAllocatesStrictlyIncreasingTxIDs(t *testing.T) {
	s := newTestStore()
	var last TxID
	for i := 0; i < 50; i++ {
		rec := s.Upsert("c", "k", rawJSON(t, i))
		if rec.TxID <= last {
			t.Fatalf("txid %d did not increase past %d", rec.TxID, last)
		}
		last = rec.TxID
	}
}
