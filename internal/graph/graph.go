// Package graph maintains the directed dependency structure between form
// fields and computes the breadth-first propagation order for a change.
//
// Edges are declared backwards ("B depends on A") and inverted internally so
// that forward propagation (A changed, who must re-validate?) is a direct
// adjacency walk. The walk tolerates self-edges, cycles and diamonds: the
// visited set is seeded with the changed roots, so every dependent is
// produced at most once and traversal always terminates.
package graph

import "sort"

// Graph tracks field dependencies. Not safe for concurrent use; the owning
// controller serializes access.
type Graph struct {
	dependsOn  map[string][]string // node -> declared dependencies
	dependents map[string][]string // dependency -> dependent nodes
	order      map[string]int      // node -> registration sequence
	seq        int
}

// New returns an empty dependency graph.
func New() *Graph {
	return &Graph{
		dependsOn:  make(map[string][]string),
		dependents: make(map[string][]string),
		order:      make(map[string]int),
	}
}

// Add declares node's dependency list, replacing any previous declaration.
// Re-adding an existing node keeps its original registration rank so that
// propagation order stays stable across re-registration.
func (g *Graph) Add(node string, dependsOn []string) {
	if _, known := g.order[node]; !known {
		g.order[node] = g.seq
		g.seq++
	}
	g.removeEdges(node)
	deps := make([]string, 0, len(dependsOn))
	seen := make(map[string]bool, len(dependsOn))
	for _, d := range dependsOn {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		deps = append(deps, d)
		g.dependents[d] = append(g.dependents[d], node)
	}
	g.dependsOn[node] = deps
}

// Remove deletes the node and all edges touching it. Edges from other nodes
// depending on the removed node stay declared on those nodes and re-link if
// the node is added again.
func (g *Graph) Remove(node string) {
	g.removeEdges(node)
	delete(g.dependsOn, node)
	delete(g.order, node)
}

func (g *Graph) removeEdges(node string) {
	for _, d := range g.dependsOn[node] {
		deps := g.dependents[d]
		for i, n := range deps {
			if n == node {
				g.dependents[d] = append(deps[:i:i], deps[i+1:]...)
				break
			}
		}
		if len(g.dependents[d]) == 0 {
			delete(g.dependents, d)
		}
	}
}

// DependsOn returns the declared dependencies of node.
func (g *Graph) DependsOn(node string) []string {
	return append([]string(nil), g.dependsOn[node]...)
}

// DirectDependents returns the nodes declaring a dependency on node, in
// registration order.
func (g *Graph) DirectDependents(node string) []string {
	out := append([]string(nil), g.dependents[node]...)
	g.sortByRank(out)
	return out
}

// Dependents computes the transitive dependents of the given roots in
// breadth-first order. The visited set is seeded with the roots themselves,
// which makes self-dependencies free, cycles terminating, and diamond shapes
// single-visit. Multiple roots model a patch: a dependent reachable from two
// patched fields appears exactly once.
func (g *Graph) Dependents(roots ...string) []string {
	w := &walker{
		graph:   g,
		visited: make(map[string]bool, len(roots)*2),
	}
	for _, r := range roots {
		w.visited[r] = true
	}
	for _, r := range roots {
		w.enqueueDependentsOf(r)
	}
	w.loop()
	return w.out
}

// walker encapsulates mutable BFS state for one propagation round.
type walker struct {
	graph   *Graph
	queue   []string
	visited map[string]bool
	out     []string
}

func (w *walker) enqueueDependentsOf(node string) {
	next := w.graph.dependents[node]
	if len(next) == 0 {
		return
	}
	batch := make([]string, 0, len(next))
	for _, n := range next {
		if w.visited[n] {
			continue
		}
		w.visited[n] = true
		batch = append(batch, n)
	}
	// Deterministic expansion: siblings propagate in registration order.
	w.graph.sortByRank(batch)
	w.queue = append(w.queue, batch...)
	w.out = append(w.out, batch...)
}

func (w *walker) loop() {
	for len(w.queue) > 0 {
		node := w.queue[0]
		w.queue = w.queue[1:]
		w.enqueueDependentsOf(node)
	}
}

func (g *Graph) sortByRank(nodes []string) {
	sort.SliceStable(nodes, func(i, j int) bool {
		ri, iok := g.order[nodes[i]]
		rj, jok := g.order[nodes[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		default:
			return nodes[i] < nodes[j]
		}
	})
}
