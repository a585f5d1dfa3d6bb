package cache

import (
	"sort"
	"sync"
)

// Access pairs a node id with its visit count.
type Access struct {
	ID    string `json:"id"`
	Count uint64 `json:"count"`
}

// AccessStats counts how often each node id is resolved by a query.
// Diagnostics only: counters never drive eviction. Counts are exact under
// the mutex but queries do not need to be linearizable with lookups.
type AccessStats struct {
	mu     sync.Mutex
	counts map[string]uint64
	total  uint64
}

// NewAccessStats creates empty counters.
func NewAccessStats() *AccessStats {
	return &AccessStats{counts: make(map[string]uint64)}
}

// Record increments the counter for each id.
func (s *AccessStats) Record(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.counts[id]++
		s.total++
	}
}

// Count returns the counter for id.
func (s *AccessStats) Count(id string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[id]
}

// Total returns the sum of all counters.
func (s *AccessStats) Total() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// TopN returns the n highest counters, ordered by descending count with
// ties broken by ascending id.
func (s *AccessStats) TopN(n int) []Access {
	s.mu.Lock()
	all := make([]Access, 0, len(s.counts))
	for id, count := range s.counts {
		all = append(all, Access{ID: id, Count: count})
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].ID < all[j].ID
	})
	if n < len(all) {
		all = all[:n]
	}
	return all
}
