package store

import "sort"

// Change pairs a record with its derived operation and the collection
// it came from, the unit the change feed returns.
type Change struct {
	Collection string
	Record     *Record
	Operation  Operation
}

// ChangeFeed is the result of GetChangesAfter. When NeedsRollback is
// true, Changes is always empty and the caller must re-read full state
// and resume from MaxTxID.
type ChangeFeed struct {
	Changes       []Change
	NeedsRollback bool
	MaxTxID       TxID
}

// GetChangesAfter returns, in ascending-txid order, every record with
// a transaction id greater than start (optionally filtered by
// collection and/or predicate), capped at limit. If start is behind
// the rollback watermark, the caller's cursor is known incomplete and
// an empty, rollback-flagged result is returned instead.
//
// limit < 0 means unlimited.
func (s *Store) GetChangesAfter(start TxID, limit int, pred *Predicate, collection *string) ChangeFeed {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if start < s.highestRemovedTombstoneID {
		return ChangeFeed{NeedsRollback: true, MaxTxID: s.currentTxID}
	}

	var names []string
	if collection != nil {
		names = []string{*collection}
	} else {
		names = make([]string, 0, len(s.collections))
		for name := range s.collections {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	var changes []Change
	for _, name := range names {
		col, ok := s.collections[name]
		if !ok {
			continue
		}
		for _, vlog := range col {
			for _, r := range vlog.all() {
				if r.TxID <= start {
					continue
				}
				if pred != nil && !pred.Eval(r) {
					continue
				}
				changes = append(changes, Change{Collection: name, Record: r, Operation: r.Operation()})
			}
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Record.TxID < changes[j].Record.TxID })

	if limit >= 0 && len(changes) > limit {
		changes = changes[:limit]
	}
	return ChangeFeed{Changes: changes, MaxTxID: s.currentTxID}
}
