package hotgraph

import (
	"context"

	"github.com/synthline/hotgraph/pkg/graph"
	"github.com/synthline/hotgraph/pkg/model"
)

// SyncState is the synchronization state machine position.
type SyncState string

const (
	StateIdle       SyncState = "idle"
	StateFlushing   SyncState = "flushing"
	StateRebuilding SyncState = "rebuilding"
	StateFailed     SyncState = "failed"
)

// State returns the current sync state.
func (s *Service) State() SyncState {
	return s.state.Load().(SyncState)
}

func (s *Service) setState(st SyncState, rev model.Revision) {
	s.state.Store(st)
	if s.OnSyncState != nil {
		s.OnSyncState(st, rev)
	}
}

// Sync flushes the dirty set to the store, then rebuilds the snapshot
// from the store's new authoritative revision. With an empty dirty set it
// is a no-op returning the current revision. A non-zero expect revision
// is passed through to the store's conflict check.
//
// On any failure the dirty set is left intact and the previous snapshot
// stays published, so the caller may simply retry. The service never
// retries on its own.
func (s *Service) Sync(ctx context.Context, expect model.Revision) (model.Revision, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	// The dirty snapshot is taken under the tracker's lock: a mark racing
	// with this read lands either in this flush or in the next cycle,
	// never nowhere.
	ids := s.dirty.Snapshot()
	if len(ids) == 0 {
		return s.Revision(), nil
	}

	snap := s.snap.Load()
	delta := make([]model.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := snap.graph.Node(id); ok {
			delta = append(delta, n)
		}
	}

	s.setState(StateFlushing, snap.index.Revision())
	s.logger.Info("flushing dirty nodes", "count", len(delta), "revision", uint64(snap.index.Revision()))

	newRev, err := s.store.Persist(ctx, delta, expect)
	if err != nil {
		s.setState(StateFailed, snap.index.Revision())
		s.logger.Error("flush failed", "error", err)
		return 0, err
	}

	s.setState(StateRebuilding, newRev)
	if err := s.rebuild(ctx); err != nil {
		s.setState(StateFailed, snap.index.Revision())
		s.logger.Error("rebuild failed", "error", err)
		return 0, err
	}

	// Clear exactly the flushed ids; marks that arrived during the flush
	// stay dirty for the next cycle.
	s.dirty.Clear(ids)
	s.paths.Purge()
	rev := s.Revision()
	s.setState(StateIdle, rev)
	s.logger.Info("sync complete", "revision", uint64(rev))
	return rev, nil
}

// Reload rebuilds the snapshot from the store without flushing anything.
// Used after external edits to the store document. The dirty set is
// untouched; the path cache is purged because the revision changes.
func (s *Service) Reload(ctx context.Context) error {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	if err := s.rebuild(ctx); err != nil {
		return err
	}
	s.paths.Purge()
	s.logger.Info("graph reloaded", "revision", uint64(s.Revision()))
	return nil
}

// rebuild loads the authoritative graph and publishes a fresh snapshot
// atomically. On failure the previous snapshot stays in place.
func (s *Service) rebuild(ctx context.Context) error {
	g, rev, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	ix, err := graph.Build(g, rev)
	if err != nil {
		return err
	}
	s.snap.Store(&snapshot{graph: g, index: ix})
	return nil
}
