package store

import (
	"sort"
	"time"
)

// GarbageCollect prunes old versions from every log in the store,
// keeping at most maxVersions per key and, if maxAge is non-nil,
// additionally discarding any retained record older than maxAge. It
// iterates collection-then-key, never flattening collections and keys
// into a single pass.
//
// Removed tombstones advance the rollback watermark; GC never removes
// a collection or an empty log, even when every version of a key has
// been pruned.
func (s *Store) GarbageCollect(maxVersions int, maxAge *time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.clock()

	for _, col := range s.collections {
		for _, vlog := range col {
			recs := append([]*Record(nil), vlog.all()...)
			sort.Slice(recs, func(i, j int) bool { return recs[i].Version < recs[j].Version })

			var discarded []*Record
			keep := recs
			if len(keep) > maxVersions {
				discarded = append(discarded, keep[:len(keep)-maxVersions]...)
				keep = keep[len(keep)-maxVersions:]
			}

			if maxAge != nil {
				retained := keep[:0:0]
				for _, r := range keep {
					if now.Sub(time.Unix(r.Timestamp, 0)) <= *maxAge {
						retained = append(retained, r)
					} else {
						discarded = append(discarded, r)
					}
				}
				keep = retained
			}

			vlog.records = keep
			removed += len(discarded)

			for _, r := range discarded {
				if r.IsTombstone() && r.TxID > s.highestRemovedTombstoneID {
					s.highestRemovedTombstoneID = r.TxID
				}
			}
		}
	}

	s.persistLocked()
	return removed
}
