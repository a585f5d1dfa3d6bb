package graph

import (
	"container/heap"

	"github.com/synthline/hotgraph/pkg/model"
)

// Path finds a shortest path from start to end using at most maxHops
// edges. When every edge carries the default weight the search is a plain
// breadth-first search; otherwise it is a hop-bounded Dijkstra over
// non-negative weights. Neighbors are always explored in adjacency order,
// so ties resolve deterministically. If no path fits the bound the search
// fails with NotReachableError, never a partial path.
func (ix *Index) Path(start, end string, maxHops int) ([]string, error) {
	if !ix.HasNode(start) {
		return nil, &model.NotFoundError{Kind: "node", ID: start}
	}
	if !ix.HasNode(end) {
		return nil, &model.NotFoundError{Kind: "node", ID: end}
	}
	if start == end {
		return []string{start}, nil
	}
	if maxHops < 1 {
		return nil, &model.NotReachableError{Start: start, End: end, MaxHops: maxHops}
	}
	if ix.weighted {
		return ix.dijkstraPath(start, end, maxHops)
	}
	return ix.bfsPath(start, end, maxHops)
}

func (ix *Index) bfsPath(start, end string, maxHops int) ([]string, error) {
	parent := map[string]string{start: ""}
	depth := map[string]int{start: 0}
	queue := []string{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if depth[cur] == maxHops {
			continue
		}
		for _, nb := range ix.adj[cur] {
			if _, visited := parent[nb]; visited {
				continue
			}
			parent[nb] = cur
			depth[nb] = depth[cur] + 1
			if nb == end {
				return reconstruct(parent, end), nil
			}
			queue = append(queue, nb)
		}
	}
	return nil, &model.NotReachableError{Start: start, End: end, MaxHops: maxHops}
}

func reconstruct(parent map[string]string, end string) []string {
	var rev []string
	for cur := end; cur != ""; cur = parent[cur] {
		rev = append(rev, cur)
	}
	path := make([]string, len(rev))
	for i, id := range rev {
		path[len(rev)-1-i] = id
	}
	return path
}

// hopState distinguishes visits to the same node at different hop counts:
// with a hop bound, a costlier path using fewer hops can still be the one
// that reaches the target.
type hopState struct {
	node string
	hops int
}

type searchItem struct {
	state hopState
	dist  float64
	seq   int // insertion sequence, breaks distance ties deterministically
}

type searchQueue []*searchItem

func (q searchQueue) Len() int { return len(q) }

func (q searchQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].seq < q[j].seq
}

func (q searchQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *searchQueue) Push(x any) { *q = append(*q, x.(*searchItem)) }

func (q *searchQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

func (ix *Index) dijkstraPath(start, end string, maxHops int) ([]string, error) {
	best := map[hopState]float64{{start, 0}: 0}
	prev := make(map[hopState]hopState)

	seq := 0
	pq := &searchQueue{{state: hopState{start, 0}, dist: 0, seq: seq}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*searchItem)
		cur := item.state
		if item.dist > best[cur] {
			continue // superseded entry
		}
		if cur.node == end {
			return reconstructStates(prev, cur), nil
		}
		if cur.hops == maxHops {
			continue
		}
		for _, nb := range ix.adj[cur.node] {
			next := hopState{nb, cur.hops + 1}
			dist := item.dist + ix.Weight(cur.node, nb)
			if known, ok := best[next]; ok && known <= dist {
				continue
			}
			best[next] = dist
			prev[next] = cur
			seq++
			heap.Push(pq, &searchItem{state: next, dist: dist, seq: seq})
		}
	}
	return nil, &model.NotReachableError{Start: start, End: end, MaxHops: maxHops}
}

func reconstructStates(prev map[hopState]hopState, end hopState) []string {
	var rev []string
	cur := end
	for {
		rev = append(rev, cur.node)
		p, ok := prev[cur]
		if !ok {
			break
		}
		cur = p
	}
	path := make([]string, len(rev))
	for i, id := range rev {
		path[len(rev)-1-i] = id
	}
	return path
}
