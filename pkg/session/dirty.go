package session

import (
	"sort"
	"sync"
)

// DirtyTracker is the set of node ids modified since the last successful
// sync. Existence checks against the current snapshot belong to the
// service layer; the tracker itself is a plain serialized set.
type DirtyTracker struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewDirtyTracker creates an empty tracker.
func NewDirtyTracker() *DirtyTracker {
	return &DirtyTracker{ids: make(map[string]struct{})}
}

// Mark adds ids to the set. Marking an already-dirty id is a no-op, so
// the operation is idempotent.
func (d *DirtyTracker) Mark(ids ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range ids {
		d.ids[id] = struct{}{}
	}
}

// Has reports whether id is dirty.
func (d *DirtyTracker) Has(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.ids[id]
	return ok
}

// Count returns the number of dirty ids.
func (d *DirtyTracker) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ids)
}

// Snapshot returns the dirty ids, sorted. The flush persists exactly this
// set; marks arriving afterwards stay for the next cycle.
func (d *DirtyTracker) Snapshot() []string {
	d.mu.Lock()
	out := make([]string, 0, len(d.ids))
	for id := range d.ids {
		out = append(out, id)
	}
	d.mu.Unlock()
	sort.Strings(out)
	return out
}

// Clear removes exactly the given ids, leaving marks that arrived after
// the snapshot intact. Called only after a confirmed persist.
func (d *DirtyTracker) Clear(ids []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range ids {
		delete(d.ids, id)
	}
}
