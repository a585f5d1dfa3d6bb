// Package hotgraph implements the hot cache over the design graph: an
// immutable indexed snapshot, memoized path queries, dirty tracking and
// store synchronization. A Service is constructed explicitly around a
// GraphStore and a logger; there is no process-wide instance.
package hotgraph

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/synthline/hotgraph/pkg/cache"
	"github.com/synthline/hotgraph/pkg/graph"
	"github.com/synthline/hotgraph/pkg/model"
	"github.com/synthline/hotgraph/pkg/session"
	"github.com/synthline/hotgraph/pkg/store"
)

// snapshot bundles the graph and its index at one revision. Readers load
// the pointer once and keep using the same snapshot for the whole query,
// so an in-flight query never observes a half-published rebuild.
type snapshot struct {
	graph *model.Graph
	index *graph.Index
}

// Service is the hot graph cache. All methods are safe for concurrent
// use; queries run against the current snapshot while at most one sync
// may be rebuilding the next one.
type Service struct {
	store  store.GraphStore
	logger *slog.Logger

	snap  atomic.Pointer[snapshot]
	paths *cache.PathCache
	stats *cache.AccessStats
	focus *session.FocusSet
	dirty *session.DirtyTracker

	syncMu sync.Mutex // at most one sync/reload in flight
	state  atomic.Value

	// OnSyncState, when set, is called synchronously on every sync state
	// transition. Used by the web layer to publish progress events.
	OnSyncState func(state SyncState, rev model.Revision)
}

// New loads the graph from the store, builds the initial snapshot and
// returns a ready service. A nil logger discards everything.
func New(ctx context.Context, st store.GraphStore, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		store:  st,
		logger: logger,
		paths:  cache.NewPathCache(),
		stats:  cache.NewAccessStats(),
		focus:  session.NewFocusSet(),
		dirty:  session.NewDirtyTracker(),
	}
	s.state.Store(StateIdle)

	g, rev, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}
	ix, err := graph.Build(g, rev)
	if err != nil {
		return nil, err
	}
	s.snap.Store(&snapshot{graph: g, index: ix})
	logger.Info("graph loaded",
		"revision", uint64(rev),
		"nodes", ix.NodeCount(),
		"edges", ix.EdgeCount(),
		"zones", len(ix.ZoneNames()),
	)
	return s, nil
}

// Revision returns the revision of the current snapshot.
func (s *Service) Revision() model.Revision {
	return s.snap.Load().index.Revision()
}

// Focus atomically replaces the active focus with the given ids and
// returns the focus size. An empty call clears the focus. Ids are not
// validated; an id outside the graph just matches nothing.
func (s *Service) Focus(ids ...string) int {
	n := s.focus.Set(ids...)
	s.logger.Debug("focus replaced", "size", n)
	return n
}

// Neighbors returns the adjacency list of id in edge insertion order,
// narrowed by the active focus. Unknown ids fail with NotFoundError.
func (s *Service) Neighbors(id string) ([]string, error) {
	snap := s.snap.Load()
	nbrs, err := snap.index.Neighbors(id)
	if err != nil {
		return nil, err
	}
	s.stats.Record(id)
	return s.focus.Filter(nbrs), nil
}

// Path returns a shortest path from start to end using at most maxHops
// edges, serving from the path cache when a fresh entry exists. Focus
// does not apply here: cache keys carry no lens, so a focused path could
// poison later unfocused queries.
func (s *Service) Path(start, end string, maxHops int) ([]string, error) {
	snap := s.snap.Load()
	rev := snap.index.Revision()
	key := cache.PathKey{Start: start, End: end, MaxHops: maxHops}

	if p, ok := s.paths.Get(key, rev); ok {
		s.logger.Debug("path cache hit", "start", start, "end", end, "maxHops", maxHops)
		s.stats.Record(p...)
		return p, nil
	}

	p, err := snap.index.Path(start, end, maxHops)
	if err != nil {
		return nil, err
	}
	s.paths.Put(key, p, rev)
	s.stats.Record(p...)
	return p, nil
}

// ZoneMembers returns the sorted members of a declared zone, narrowed by
// the active focus. Undeclared zones fail with NotFoundError.
func (s *Service) ZoneMembers(name string) ([]string, error) {
	snap := s.snap.Load()
	members, err := snap.index.Zone(name)
	if err != nil {
		return nil, err
	}
	members = s.focus.Filter(members)
	s.stats.Record(members...)
	return members, nil
}

// ZoneNames returns the declared zone names in the current snapshot.
func (s *Service) ZoneNames() []string {
	return s.snap.Load().index.ZoneNames()
}

// MarkDirty records the given nodes as modified since the last sync and
// immediately evicts every cached path passing through them. If any id is
// absent from the current graph the whole call fails with NotFoundError
// and nothing is marked.
func (s *Service) MarkDirty(ids ...string) (int, error) {
	snap := s.snap.Load()
	for _, id := range ids {
		if !snap.index.HasNode(id) {
			return s.dirty.Count(), &model.NotFoundError{Kind: "node", ID: id}
		}
	}
	for _, id := range ids {
		s.dirty.Mark(id)
		if n := s.paths.InvalidateNode(id); n > 0 {
			s.logger.Debug("evicted cached paths", "node", id, "entries", n)
		}
	}
	return s.dirty.Count(), nil
}

// IsDirty reports whether id is pending synchronization.
func (s *Service) IsDirty(id string) bool { return s.dirty.Has(id) }

// DirtyCount returns the number of nodes pending synchronization.
func (s *Service) DirtyCount() int { return s.dirty.Count() }

// Stats is the diagnostics summary returned by the stats operation.
type Stats struct {
	Revision      model.Revision `json:"revision"`
	Nodes         int            `json:"nodes"`
	Edges         int            `json:"edges"`
	FocusSize     int            `json:"focus_size"`
	PathCacheSize int            `json:"path_cache_size"`
	TotalAccesses uint64         `json:"total_accesses"`
	DirtyCount    int            `json:"dirty_count"`
	SyncState     SyncState      `json:"sync_state"`
	TopAccessed   []cache.Access `json:"top_accessed"`
}

// Stats returns the current diagnostics summary.
func (s *Service) Stats() Stats {
	ix := s.snap.Load().index
	return Stats{
		Revision:      ix.Revision(),
		Nodes:         ix.NodeCount(),
		Edges:         ix.EdgeCount(),
		FocusSize:     s.focus.Size(),
		PathCacheSize: s.paths.Len(),
		TotalAccesses: s.stats.Total(),
		DirtyCount:    s.dirty.Count(),
		SyncState:     s.State(),
		TopAccessed:   s.stats.TopN(5),
	}
}
