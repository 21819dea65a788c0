package dag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/data-eco/eco-go/pkg/dag"
)

// singleNodeGraph creates a graph holding one root stage.
func singleNodeGraph(t *testing.T, id, label string) *dag.Graph {
	t.Helper()

	graph := dag.New()
	_, err := graph.AddNode(newNode(id, label))
	require.NoError(t, err)

	return graph
}

func Test_Merge_DisjointGraphs(t *testing.T) {
	t.Parallel()

	left := singleNodeGraph(t, "a", "load-counts")
	right := singleNodeGraph(t, "b", "load-metadata")

	merged, err := left.Merge(right)
	require.NoError(t, err)

	assert.Equal(t, 2, merged.Len())
	assert.Empty(t, merged.Edges())

	// Inputs are left untouched.
	assert.Equal(t, 1, left.Len())
	assert.Equal(t, 1, right.Len())
}

func Test_Merge_DeduplicatesSharedAncestry(t *testing.T) {
	t.Parallel()

	// Both lineages descend from the same "load" stage.
	buildLineage := func(t *testing.T, childID, childLabel string) *dag.Graph {
		t.Helper()

		graph := dag.New()
		_, err := graph.AddNode(newNode("load", "load"))
		require.NoError(t, err)
		_, err = graph.AddNode(newNode(childID, childLabel))
		require.NoError(t, err)
		require.NoError(t, graph.AddEdge("load", childID))

		return graph
	}

	left := buildLineage(t, "subset-genes", "subset genes")
	right := buildLineage(t, "subset-samples", "subset samples")

	merged, err := left.Merge(right)
	require.NoError(t, err)

	// The shared ancestor appears exactly once.
	assert.Equal(t, 3, merged.Len())
	assert.Len(t, merged.Edges(), 2)
}

func Test_Merge_CommutativeAndAssociative(t *testing.T) {
	t.Parallel()

	a := singleNodeGraph(t, "a", "load-a")
	b := singleNodeGraph(t, "b", "load-b")
	c := singleNodeGraph(t, "c", "load-c")

	ab, err := a.Merge(b)
	require.NoError(t, err)
	ba, err := b.Merge(a)
	require.NoError(t, err)
	assert.Equal(t, ab.Nodes(), ba.Nodes())
	assert.Equal(t, ab.Edges(), ba.Edges())

	abThenC, err := ab.Merge(c)
	require.NoError(t, err)
	bc, err := b.Merge(c)
	require.NoError(t, err)
	aThenBC, err := a.Merge(bc)
	require.NoError(t, err)

	assert.Equal(t, abThenC.Nodes(), aThenBC.Nodes())
	assert.Equal(t, abThenC.Edges(), aThenBC.Edges())
}

func Test_Merge_CollidingContentFails(t *testing.T) {
	t.Parallel()

	left := singleNodeGraph(t, "x", "load")
	right := singleNodeGraph(t, "x", "clean")

	_, err := left.Merge(right)
	require.Error(t, err)
	assert.ErrorIs(t, err, dag.ErrIDCollision)
}

func Test_Merge_IdenticalContentIsNotACollision(t *testing.T) {
	t.Parallel()

	left := singleNodeGraph(t, "x", "load")
	right := singleNodeGraph(t, "x", "load")

	merged, err := left.Merge(right)
	require.NoError(t, err)
	assert.Equal(t, 1, merged.Len())
}
