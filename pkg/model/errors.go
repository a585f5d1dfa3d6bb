package model

import "fmt"

// NotFoundError reports a reference to an id or zone that does not exist
// in the current snapshot. Safe to return to callers as-is.
type NotFoundError struct {
	Kind string // "node" or "zone"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NotReachableError reports that path search exhausted its hop bound
// without reaching the target. Not a system fault.
type NotReachableError struct {
	Start   string
	End     string
	MaxHops int
}

func (e *NotReachableError) Error() string {
	return fmt.Sprintf("no path from %q to %q within %d hops", e.Start, e.End, e.MaxHops)
}

// MalformedGraphError reports a structural violation found while building
// the index, such as an edge referencing an unknown node.
type MalformedGraphError struct {
	Detail string
}

func (e *MalformedGraphError) Error() string {
	return "malformed graph: " + e.Detail
}

// PersistenceError wraps an I/O failure from the graph store. The dirty
// set is preserved so the caller may retry the sync.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("graph store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConflictError reports that the revision supplied to a persist no longer
// matches the store's current revision. The caller should reload and retry.
type ConflictError struct {
	Expected Revision
	Current  Revision
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("revision conflict: expected %d, store is at %d", e.Expected, e.Current)
}
