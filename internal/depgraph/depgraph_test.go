package depgraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTopoSort_DependenciesFirst(t *testing.T) {
	t.Parallel()
	g := New()
	for _, id := range []string{"c", "b", "a"} {
		g.AddNode(id)
	}
	// c reads b, b reads a.
	require.NoError(t, g.AddEdge("c", "b"))
	require.NoError(t, g.AddEdge("b", "a"))

	order, err := g.TopoSort()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestTopoSort_DeterministicForIndependentNodes(t *testing.T) {
	t.Parallel()
	g := New()
	for _, id := range []string{"z", "m", "a"} {
		g.AddNode(id)
	}

	order, err := g.TopoSort()
	require.NoError(t, err)
	// No dependencies: insertion order is preserved.
	require.Equal(t, []string{"z", "m", "a"}, order)
}

func TestTopoSort_CycleDetected(t *testing.T) {
	t.Parallel()
	g := New()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))
	require.NoError(t, g.AddEdge("c", "a"))

	_, err := g.TopoSort()

	var cyclic *CyclicDependencyError
	require.ErrorAs(t, err, &cyclic)
	require.GreaterOrEqual(t, len(cyclic.Cycle), 3)
	require.Equal(t, cyclic.Cycle[0], cyclic.Cycle[len(cyclic.Cycle)-1])
}

func TestAddEdge_SelfReferenceRejected(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddNode("a")

	err := g.AddEdge("a", "a")

	var cyclic *CyclicDependencyError
	require.ErrorAs(t, err, &cyclic)
}

func TestAddEdge_UnknownNode(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddNode("a")
	require.Error(t, g.AddEdge("a", "nope"))
	require.Error(t, g.AddEdge("nope", "a"))
}
