package model

import "fmt"

// NodeKind classifies a component as a hardware block or a software module.
type NodeKind string

const (
	KindHardware NodeKind = "hardware"
	KindSoftware NodeKind = "software"
)

// EdgeKind classifies the relationship carried by an edge.
type EdgeKind string

const (
	EdgeElectrical EdgeKind = "electrical"
	EdgeLogical    EdgeKind = "logical"
	EdgeData       EdgeKind = "data"
)

// DefaultWeight is the weight assumed for edges that do not declare one.
const DefaultWeight = 1.0

// Revision is the version stamp assigned by the store on each successful
// persist. It only ever increases.
type Revision uint64

// Node is a component in the design graph. Nodes are immutable once loaded;
// a sync replaces them wholesale.
type Node struct {
	ID    string            `json:"id"`
	Kind  NodeKind          `json:"kind"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Edge is a relationship between two components. Weight defaults to
// DefaultWeight when the document omits it.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`
	Weight float64  `json:"weight,omitempty"`
}

// EffectiveWeight returns the edge weight, substituting the default for
// an unset (zero) value.
func (e Edge) EffectiveWeight() float64 {
	if e.Weight == 0 {
		return DefaultWeight
	}
	return e.Weight
}

// ZoneRule declares a named grouping of components. Membership is the
// union of the explicit member list and every node matching Kind (when
// set) and all Match attribute pairs. Rules are re-evaluated on every
// index rebuild, never incrementally.
type ZoneRule struct {
	Name    string            `json:"name"`
	Members []string          `json:"members,omitempty"`
	Kind    NodeKind          `json:"kind,omitempty"`
	Match   map[string]string `json:"match,omitempty"`
}

// Graph is a full snapshot of the design graph at one revision. Edge order
// is meaningful: adjacency lists preserve it so query results are stable.
type Graph struct {
	Nodes []Node     `json:"nodes"`
	Edges []Edge     `json:"edges"`
	Zones []ZoneRule `json:"zones,omitempty"`
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}
}

// AddNode appends a node. A node with a duplicate ID replaces the
// earlier one in place.
func (g *Graph) AddNode(n Node) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == n.ID {
			g.Nodes[i] = n
			return
		}
	}
	g.Nodes = append(g.Nodes, n)
}

// AddEdge appends an edge. Endpoint integrity is checked at index build
// time, not here.
func (g *Graph) AddEdge(e Edge) {
	g.Edges = append(g.Edges, e)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// RemoveNode deletes a node and every edge touching it. It reports
// whether the node was present.
func (g *Graph) RemoveNode(id string) bool {
	found := false
	nodes := g.Nodes[:0]
	for _, n := range g.Nodes {
		if n.ID == id {
			found = true
			continue
		}
		nodes = append(nodes, n)
	}
	g.Nodes = nodes
	if !found {
		return false
	}
	edges := g.Edges[:0]
	for _, e := range g.Edges {
		if e.Source == id || e.Target == id {
			continue
		}
		edges = append(edges, e)
	}
	g.Edges = edges
	return true
}

// Validate checks enum fields on nodes and edges. Structural checks
// (dangling endpoints) belong to the index build.
func (g *Graph) Validate() error {
	for _, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node with empty id")
		}
		switch n.Kind {
		case KindHardware, KindSoftware:
		default:
			return fmt.Errorf("node %q: unknown kind %q", n.ID, n.Kind)
		}
	}
	for _, e := range g.Edges {
		switch e.Kind {
		case EdgeElectrical, EdgeLogical, EdgeData:
		default:
			return fmt.Errorf("edge %s-%s: unknown kind %q", e.Source, e.Target, e.Kind)
		}
		if e.Weight < 0 {
			return fmt.Errorf("edge %s-%s: negative weight %g", e.Source, e.Target, e.Weight)
		}
	}
	return nil
}
