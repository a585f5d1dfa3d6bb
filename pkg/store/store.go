// Package store defines the persistent graph store boundary and its
// implementations. The cache layer never touches design files directly;
// everything goes through GraphStore.
package store

import (
	"context"

	"github.com/synthline/hotgraph/pkg/model"
)

// GraphStore is the authoritative, versioned home of the design graph.
type GraphStore interface {
	// Load returns the full graph and the revision it was written at.
	Load(ctx context.Context) (*model.Graph, model.Revision, error)

	// Persist merges the delta nodes into the stored graph and returns
	// the new revision. A non-zero expect revision is checked against
	// the store's current revision; a mismatch fails with ConflictError
	// and commits nothing. Persist is all-or-nothing per call.
	Persist(ctx context.Context, delta []model.Node, expect model.Revision) (model.Revision, error)
}
