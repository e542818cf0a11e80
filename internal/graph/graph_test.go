package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quharo/formwork/internal/graph"
)

// position returns index of v in slice or -1 if not found
func position(order []string, v string) int {
	for i, x := range order {
		if x == v {
			return i
		}
	}

	return -1
}

// TestDependents_Linear covers a simple chain a <- b <- c.
func TestDependents_Linear(t *testing.T) {
	g := graph.New()
	g.Add("a", nil)
	g.Add("b", []string{"a"})
	g.Add("c", []string{"b"})

	assert.Equal(t, []string{"b", "c"}, g.Dependents("a"))
	assert.Equal(t, []string{"c"}, g.Dependents("b"))
	assert.Empty(t, g.Dependents("c"))
}

// TestDependents_Diamond ensures a node reachable over two paths is produced
// exactly once.
func TestDependents_Diamond(t *testing.T) {
	g := graph.New()
	g.Add("a", nil)
	g.Add("b", []string{"a"})
	g.Add("c", []string{"a"})
	g.Add("d", []string{"b", "c"})

	order := g.Dependents("a")
	assert.ElementsMatch(t, []string{"b", "c", "d"}, order)
	// BFS layering: both direct dependents precede the join node.
	assert.Less(t, position(order, "b"), position(order, "d"))
	assert.Less(t, position(order, "c"), position(order, "d"))
}

// TestDependents_Cycle verifies a two-node cycle terminates and excludes the
// changed root from its own propagation.
func TestDependents_Cycle(t *testing.T) {
	g := graph.New()
	g.Add("a", []string{"b"})
	g.Add("b", []string{"a"})

	assert.Equal(t, []string{"b"}, g.Dependents("a"))
	assert.Equal(t, []string{"a"}, g.Dependents("b"))
}

// TestDependents_SelfEdge verifies a self-dependency never re-enqueues the
// root.
func TestDependents_SelfEdge(t *testing.T) {
	g := graph.New()
	g.Add("a", []string{"a"})

	assert.Empty(t, g.Dependents("a"))
}

// TestDependents_MultiRoot models a patch touching two fields feeding one
// shared dependent: the dependent appears once and the roots never appear.
func TestDependents_MultiRoot(t *testing.T) {
	g := graph.New()
	g.Add("first", nil)
	g.Add("last", nil)
	g.Add("full", []string{"first", "last"})

	order := g.Dependents("first", "last")
	assert.Equal(t, []string{"full"}, order)
}

// TestDependents_RegistrationOrder pins sibling expansion to registration
// order regardless of declaration order inside the dependency lists.
func TestDependents_RegistrationOrder(t *testing.T) {
	g := graph.New()
	g.Add("src", nil)
	g.Add("z", []string{"src"})
	g.Add("m", []string{"src"})
	g.Add("a", []string{"src"})

	assert.Equal(t, []string{"z", "m", "a"}, g.Dependents("src"))
}

// TestAdd_ReplacesEdges ensures re-adding a node swaps its dependency list
// without duplicating dependent links.
func TestAdd_ReplacesEdges(t *testing.T) {
	g := graph.New()
	g.Add("a", nil)
	g.Add("b", nil)
	g.Add("c", []string{"a"})
	g.Add("c", []string{"b"})

	assert.Empty(t, g.Dependents("a"))
	assert.Equal(t, []string{"c"}, g.Dependents("b"))
	assert.Equal(t, []string{"b"}, g.DependsOn("c"))
}

// TestAdd_DropsDuplicateDeps verifies duplicate declarations collapse to one
// edge so propagation cannot double-visit.
func TestAdd_DropsDuplicateDeps(t *testing.T) {
	g := graph.New()
	g.Add("a", nil)
	g.Add("b", []string{"a", "a", ""})

	assert.Equal(t, []string{"a"}, g.DependsOn("b"))
	assert.Equal(t, []string{"b"}, g.Dependents("a"))
}

// TestRemove detaches the node but keeps other declarations intact.
func TestRemove(t *testing.T) {
	g := graph.New()
	g.Add("a", nil)
	g.Add("b", []string{"a"})
	g.Add("c", []string{"a"})
	g.Remove("b")

	assert.Equal(t, []string{"c"}, g.Dependents("a"))
	assert.Empty(t, g.DependsOn("b"))
}

// TestDirectDependents returns only the first hop.
func TestDirectDependents(t *testing.T) {
	g := graph.New()
	g.Add("a", nil)
	g.Add("b", []string{"a"})
	g.Add("c", []string{"b"})

	assert.Equal(t, []string{"b"}, g.DirectDependents("a"))
}
