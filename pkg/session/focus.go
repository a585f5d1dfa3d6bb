// Package session holds per-session query state: the focus lens and the
// set of nodes pending synchronization.
package session

import (
	"sort"
	"sync"
)

// FocusSet narrows query results to a chosen subset of node ids. An empty
// set means unrestricted. Focus is a query lens, not a graph mutation:
// ids are not validated against the graph, an unknown id simply matches
// nothing.
type FocusSet struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewFocusSet creates an unrestricted focus.
func NewFocusSet() *FocusSet {
	return &FocusSet{ids: make(map[string]struct{})}
}

// Set atomically replaces the focus with the given ids and returns the
// resulting size. Calling with no ids clears the focus. The new set is
// never merged with the old one.
func (f *FocusSet) Set(ids ...string) int {
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}
	f.mu.Lock()
	f.ids = next
	f.mu.Unlock()
	return len(next)
}

// Size returns the number of focused ids.
func (f *FocusSet) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.ids)
}

// IDs returns the focused ids, sorted.
func (f *FocusSet) IDs() []string {
	f.mu.RLock()
	out := make([]string, 0, len(f.ids))
	for id := range f.ids {
		out = append(out, id)
	}
	f.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Filter returns the ids that pass the lens, preserving relative order.
// With an empty focus everything passes.
func (f *FocusSet) Filter(ids []string) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.ids) == 0 {
		return ids
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := f.ids[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
