// Package cache holds the memoization structures of the hot graph:
// the path cache and the per-node access counters.
package cache

import (
	"sync"

	"github.com/synthline/hotgraph/pkg/model"
)

// PathKey identifies one memoized path query.
type PathKey struct {
	Start   string
	End     string
	MaxHops int
}

type pathEntry struct {
	path     []string
	revision model.Revision
}

// PathCache memoizes computed paths. Every entry carries the revision it
// was computed against; an entry from an older revision is stale and is
// evicted on access rather than returned. Marking a node dirty evicts
// every cached path through that node immediately.
type PathCache struct {
	mu      sync.Mutex
	entries map[PathKey]pathEntry
	byNode  map[string]map[PathKey]struct{}
}

// NewPathCache creates an empty path cache.
func NewPathCache() *PathCache {
	return &PathCache{
		entries: make(map[PathKey]pathEntry),
		byNode:  make(map[string]map[PathKey]struct{}),
	}
}

// Get returns the cached path for key if it was computed at rev. A stale
// entry is evicted and reported as a miss.
func (c *PathCache) Get(key PathKey, rev model.Revision) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if e.revision != rev {
		c.evictLocked(key)
		return nil, false
	}
	out := make([]string, len(e.path))
	copy(out, e.path)
	return out, true
}

// Put stores a computed path under key at rev, replacing any stale entry
// for the same key.
func (c *PathCache) Put(key PathKey, path []string, rev model.Revision) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.evictLocked(key)
	}
	stored := make([]string, len(path))
	copy(stored, path)
	c.entries[key] = pathEntry{path: stored, revision: rev}
	for _, id := range stored {
		keys, ok := c.byNode[id]
		if !ok {
			keys = make(map[PathKey]struct{})
			c.byNode[id] = keys
		}
		keys[key] = struct{}{}
	}
}

// InvalidateNode evicts every entry whose path contains id and returns
// the number of evicted entries.
func (c *PathCache) InvalidateNode(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.byNode[id]
	n := len(keys)
	for key := range keys {
		c.evictLocked(key)
	}
	return n
}

// Purge discards every entry. Called when a new snapshot is published,
// since all cached paths are then bound to the old revision.
func (c *PathCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[PathKey]pathEntry)
	c.byNode = make(map[string]map[PathKey]struct{})
}

// Len returns the number of cached entries.
func (c *PathCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *PathCache) evictLocked(key PathKey) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	for _, id := range e.path {
		if keys, ok := c.byNode[id]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.byNode, id)
			}
		}
	}
}
