package jobs

import (
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-bom/internal/bom"
)

// graph is an adjacency list over item ids. order keeps first-seen order so
// scan results are stable across runs.
type graph struct {
	order    []uuid.UUID
	children map[uuid.UUID][]uuid.UUID
	indegree map[uuid.UUID]int
	edges    int
}

func newGraph() *graph {
	return &graph{children: map[uuid.UUID][]uuid.UUID{}, indegree: map[uuid.UUID]int{}}
}

func (g *graph) touch(id uuid.UUID) {
	if _, ok := g.indegree[id]; !ok {
		g.indegree[id] = 0
		g.order = append(g.order, id)
	}
}

func (g *graph) add(parent, child uuid.UUID) {
	g.touch(parent)
	g.touch(child)
	g.children[parent] = append(g.children[parent], child)
	g.indegree[child]++
	g.edges++
}

func (g *graph) has(id uuid.UUID) bool {
	_, ok := g.indegree[id]
	return ok
}

// reachableFrom returns the subgraph reachable from root.
func (g *graph) reachableFrom(root uuid.UUID) *graph {
	sub := newGraph()
	if !g.has(root) {
		return sub
	}
	seen := map[uuid.UUID]bool{root: true}
	queue := []uuid.UUID{root}
	sub.touch(root)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range g.children[current] {
			sub.add(current, child)
			if !seen[child] {
				seen[child] = true
				queue = append(queue, child)
			}
		}
	}
	return sub
}

// roots returns items that are never used as a component.
func (g *graph) roots() []uuid.UUID {
	roots := []uuid.UUID{}
	for _, id := range g.order {
		if g.indegree[id] == 0 && len(g.children[id]) > 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// cycles returns the strongly connected components that contain a cycle,
// using Tarjan's algorithm.
func (g *graph) cycles() [][]uuid.UUID {
	var (
		index   int
		stack   []uuid.UUID
		onStack = map[uuid.UUID]bool{}
		indices = map[uuid.UUID]int{}
		lowlink = map[uuid.UUID]int{}
		result  = [][]uuid.UUID{}
	)

	var connect func(v uuid.UUID)
	connect = func(v uuid.UUID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		selfLoop := false
		for _, w := range g.children[v] {
			if w == v {
				selfLoop = true
			}
			if _, visited := indices[w]; !visited {
				connect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] != indices[v] {
			return
		}
		var component []uuid.UUID
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			component = append(component, w)
			if w == v {
				break
			}
		}
		if len(component) > 1 || selfLoop {
			result = append(result, component)
		}
	}

	for _, v := range g.order {
		if _, visited := indices[v]; !visited {
			connect(v)
		}
	}
	return result
}

// height returns the longest chain length in edges below id, ignoring items
// that sit on a cycle. memo is shared across calls.
func (g *graph) height(id uuid.UUID, skip map[uuid.UUID]bool, memo map[uuid.UUID]int) int {
	if h, ok := memo[id]; ok {
		return h
	}
	h := 0
	for _, child := range g.children[id] {
		if skip[child] {
			continue
		}
		h = max(h, 1+g.height(child, skip, memo))
	}
	memo[id] = h
	return h
}

// filterEdges keeps the refs whose parent belongs to the graph.
func (g *graph) filterEdges(refs []bom.EdgeRef) []bom.EdgeRef {
	kept := []bom.EdgeRef{}
	for _, ref := range refs {
		if len(g.children[ref.ParentItemID]) > 0 {
			kept = append(kept, ref)
		}
	}
	return kept
}
