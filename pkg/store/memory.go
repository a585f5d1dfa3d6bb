package store

import (
	"context"
	"sync"

	"github.com/synthline/hotgraph/pkg/model"
)

// MemStore is an in-memory GraphStore for tests and demos.
//
// LoadErr and PersistErr, when set, are returned from the corresponding
// call to simulate I/O failures. OnPersist, when set, runs after the
// delta is merged but before the revision is assigned, so tests can
// simulate store-side edits (for example a node removed between flush
// and reload).
type MemStore struct {
	mu         sync.Mutex
	graph      *model.Graph
	revision   model.Revision
	LoadErr    error
	PersistErr error
	OnPersist  func(g *model.Graph)
}

// NewMemStore creates a store seeded with the given graph at revision 1.
func NewMemStore(g *model.Graph) *MemStore {
	return &MemStore{graph: cloneGraph(g), revision: 1}
}

func (s *MemStore) Load(ctx context.Context) (*model.Graph, model.Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, 0, &model.PersistenceError{Op: "load", Err: s.LoadErr}
	}
	return cloneGraph(s.graph), s.revision, nil
}

func (s *MemStore) Persist(ctx context.Context, delta []model.Node, expect model.Revision) (model.Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PersistErr != nil {
		return 0, &model.PersistenceError{Op: "persist", Err: s.PersistErr}
	}
	if expect != 0 && expect != s.revision {
		return 0, &model.ConflictError{Expected: expect, Current: s.revision}
	}
	for _, n := range delta {
		s.graph.AddNode(n)
	}
	if s.OnPersist != nil {
		s.OnPersist(s.graph)
	}
	s.revision++
	return s.revision, nil
}

// Revision returns the store's current revision.
func (s *MemStore) Revision() model.Revision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func cloneGraph(g *model.Graph) *model.Graph {
	c := &model.Graph{
		Nodes: make([]model.Node, len(g.Nodes)),
		Edges: make([]model.Edge, len(g.Edges)),
		Zones: make([]model.ZoneRule, len(g.Zones)),
	}
	copy(c.Nodes, g.Nodes)
	copy(c.Edges, g.Edges)
	copy(c.Zones, g.Zones)
	return c
}
