// Package graph builds the immutable in-memory index over a loaded graph
// snapshot: adjacency lists, zone membership and bounded path search.
package graph

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/synthline/hotgraph/pkg/model"
)

// Index is a read-only adjacency structure built from one graph revision.
// It is never mutated after Build returns; a sync publishes a new Index.
type Index struct {
	revision model.Revision
	graph    *simple.WeightedUndirectedGraph
	ids      map[string]int64  // node id -> gonum id
	names    map[int64]string  // gonum id -> node id
	nodes    map[string]model.Node
	order    []string            // node ids in document order
	adj      map[string][]string // neighbor ids in edge insertion order
	weighted bool                // any edge with a non-default weight
	zones    map[string][]string // zone name -> sorted member ids
}

// Build constructs the index for a graph at the given revision. Every edge
// endpoint must reference a known node; a dangling reference fails the
// whole build with MalformedGraphError.
func Build(g *model.Graph, rev model.Revision) (*Index, error) {
	ix := &Index{
		revision: rev,
		graph:    simple.NewWeightedUndirectedGraph(0, 0),
		ids:      make(map[string]int64, len(g.Nodes)),
		names:    make(map[int64]string, len(g.Nodes)),
		nodes:    make(map[string]model.Node, len(g.Nodes)),
		order:    make([]string, 0, len(g.Nodes)),
		adj:      make(map[string][]string, len(g.Nodes)),
	}

	var nextID int64
	for _, n := range g.Nodes {
		if _, dup := ix.ids[n.ID]; dup {
			return nil, &model.MalformedGraphError{Detail: fmt.Sprintf("duplicate node id %q", n.ID)}
		}
		ix.ids[n.ID] = nextID
		ix.names[nextID] = n.ID
		ix.nodes[n.ID] = n
		ix.order = append(ix.order, n.ID)
		ix.graph.AddNode(simple.Node(nextID))
		nextID++
	}

	for _, e := range g.Edges {
		sid, ok := ix.ids[e.Source]
		if !ok {
			return nil, &model.MalformedGraphError{
				Detail: fmt.Sprintf("edge %s-%s references unknown node %q", e.Source, e.Target, e.Source),
			}
		}
		tid, ok := ix.ids[e.Target]
		if !ok {
			return nil, &model.MalformedGraphError{
				Detail: fmt.Sprintf("edge %s-%s references unknown node %q", e.Source, e.Target, e.Target),
			}
		}
		if sid == tid {
			return nil, &model.MalformedGraphError{
				Detail: fmt.Sprintf("self edge on node %q", e.Source),
			}
		}
		// Duplicate edges keep the first occurrence, weight included; a
		// discarded duplicate must not flip the search strategy.
		if !ix.graph.HasEdgeBetween(sid, tid) {
			w := e.EffectiveWeight()
			if w != model.DefaultWeight {
				ix.weighted = true
			}
			ix.graph.SetWeightedEdge(ix.graph.NewWeightedEdge(simple.Node(sid), simple.Node(tid), w))
			ix.adj[e.Source] = append(ix.adj[e.Source], e.Target)
			ix.adj[e.Target] = append(ix.adj[e.Target], e.Source)
		}
	}

	ix.buildZones(g.Zones)
	return ix, nil
}

// Revision returns the revision this index was built from.
func (ix *Index) Revision() model.Revision { return ix.revision }

// HasNode reports whether id exists in this revision.
func (ix *Index) HasNode(id string) bool {
	_, ok := ix.nodes[id]
	return ok
}

// Node returns the node for id.
func (ix *Index) Node(id string) (model.Node, bool) {
	n, ok := ix.nodes[id]
	return n, ok
}

// NodeIDs returns every node id in document order.
func (ix *Index) NodeIDs() []string {
	out := make([]string, len(ix.order))
	copy(out, ix.order)
	return out
}

// NodeCount returns the number of nodes in this revision.
func (ix *Index) NodeCount() int { return len(ix.order) }

// EdgeCount returns the number of distinct edges in this revision.
func (ix *Index) EdgeCount() int { return ix.graph.Edges().Len() }

// Weighted reports whether any edge carries a non-default weight, which
// selects the weighted search strategy.
func (ix *Index) Weighted() bool { return ix.weighted }

// Neighbors returns the adjacency list for id in edge insertion order.
// The returned slice is a copy and safe to retain.
func (ix *Index) Neighbors(id string) ([]string, error) {
	if !ix.HasNode(id) {
		return nil, &model.NotFoundError{Kind: "node", ID: id}
	}
	out := make([]string, len(ix.adj[id]))
	copy(out, ix.adj[id])
	return out, nil
}

// Weight returns the weight of the edge between two adjacent nodes.
func (ix *Index) Weight(u, v string) float64 {
	w, ok := ix.graph.Weight(ix.ids[u], ix.ids[v])
	if !ok {
		return 0
	}
	return w
}

// Zone returns the sorted member ids of a named zone. Membership is
// recomputed at build time and always a subset of current node ids.
func (ix *Index) Zone(name string) ([]string, error) {
	members, ok := ix.zones[name]
	if !ok {
		return nil, &model.NotFoundError{Kind: "zone", ID: name}
	}
	out := make([]string, len(members))
	copy(out, members)
	return out, nil
}

// ZoneNames returns the declared zone names, sorted.
func (ix *Index) ZoneNames() []string {
	names := make([]string, 0, len(ix.zones))
	for name := range ix.zones {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (ix *Index) buildZones(rules []model.ZoneRule) {
	ix.zones = make(map[string][]string, len(rules))
	for _, rule := range rules {
		seen := make(map[string]struct{})
		for _, id := range rule.Members {
			if _, ok := ix.nodes[id]; ok {
				seen[id] = struct{}{}
			}
		}
		if rule.Kind != "" || len(rule.Match) > 0 {
			for _, id := range ix.order {
				if matchRule(ix.nodes[id], rule) {
					seen[id] = struct{}{}
				}
			}
		}
		members := make([]string, 0, len(seen))
		for id := range seen {
			members = append(members, id)
		}
		sort.Strings(members)
		ix.zones[rule.Name] = members
	}
}

// matchRule reports whether a node satisfies the predicate half of a zone
// rule: the kind selector (when set) and every attribute pair.
func matchRule(n model.Node, rule model.ZoneRule) bool {
	if rule.Kind != "" && n.Kind != rule.Kind {
		return false
	}
	if len(rule.Match) == 0 && rule.Kind == "" {
		return false
	}
	for k, v := range rule.Match {
		if n.Attrs[k] != v {
			return false
		}
	}
	return true
}
