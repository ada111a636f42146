package pathfinder

import (
	"container/heap"

	"github.com/go-mclib/bot/world"
)

// node is one visited/open A* vertex.
type node struct {
	pos      world.BlockPos
	g        float64 // cost from start
	h        float64 // heuristic to nearest goal point
	edge     world.Edge
	parent   *node
	hasEdge  bool
	index    int // heap index, maintained by container/heap
}

func (n *node) f() float64 { return n.g + n.h }

// openQueue is a container/heap.Interface min-heap ordered by f, ties broken
// by lower h.
type openQueue []*node

func (q openQueue) Len() int { return len(q) }
func (q openQueue) Less(i, j int) bool {
	fi, fj := q[i].f(), q[j].f()
	if fi != fj {
		return fi < fj
	}
	return q[i].h < q[j].h
}
func (q openQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index, q[j].index = i, j
}
func (q *openQueue) Push(x any) {
	n := x.(*node)
	n.index = len(*q)
	*q = append(*q, n)
}
func (q *openQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// maxExpansions bounds how many nodes a single search may expand, a backstop
// against runaway search over an unbounded or disconnected graph.
const maxExpansions = 20000

// Search runs A* from start against goal, returning the path as a sequence of
// edges to follow. If no goal-satisfying node is reached before the open set
// empties (or maxExpansions is hit), it returns the partial path to whichever
// visited node had the smallest heuristic value, plus found=false.
func Search(w *world.World, start world.BlockPos, goal world.Goal) (path []world.Edge, found bool) {
	startNode := &node{pos: start, g: 0, h: goal.Heuristic(start)}

	visited := map[world.BlockPos]*node{start: startNode}
	open := &openQueue{startNode}
	heap.Init(open)

	best := startNode

	expansions := 0
	for open.Len() > 0 && expansions < maxExpansions {
		expansions++
		current := heap.Pop(open).(*node)

		if current.h < best.h {
			best = current
		}

		if goal.Reached(current.pos) {
			return reconstruct(current), true
		}

		for _, edge := range edgesFrom(w, current.pos) {
			tentativeG := current.g + edge.Cost
			existing, ok := visited[edge.Target]
			if ok && existing.g <= tentativeG {
				continue
			}

			n := existing
			if !ok {
				n = &node{pos: edge.Target}
				visited[edge.Target] = n
			}
			n.g = tentativeG
			n.h = goal.Heuristic(edge.Target)
			n.edge = edge
			n.hasEdge = true
			n.parent = current

			if n.index >= 0 && ok {
				heap.Fix(open, n.index)
			} else {
				heap.Push(open, n)
			}
		}
	}

	return reconstruct(best), false
}

func reconstruct(n *node) []world.Edge {
	var edges []world.Edge
	for cur := n; cur != nil && cur.hasEdge; cur = cur.parent {
		edges = append(edges, cur.edge)
	}
	// edges were collected tail-to-head; reverse in place.
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
	return edges
}
