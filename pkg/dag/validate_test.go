package dag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/data-eco/eco-go/pkg/dag"
)

func Test_Validate_EmptyGraphIsInvalid(t *testing.T) {
	t.Parallel()

	violations := dag.Validate(dag.New())

	require.Len(t, violations, 1)
	assert.Equal(t, dag.ViolationEmptyGraph, violations[0].Kind)
}

func Test_Validate_LegalMutationSequencePasses(t *testing.T) {
	t.Parallel()

	graph := buildLinear(t)

	assert.Empty(t, dag.Validate(graph))
	assert.NoError(t, dag.Check(graph))
}

func Test_Validate_ReportsCycleIntroducedByMerge(t *testing.T) {
	t.Parallel()

	// Each input graph is acyclic on its own, but their union contains the
	// cycle a -> b -> a. Only the full validation pass can catch this.
	left := dag.New()
	for _, node := range []dag.Node{newNode("a", "load"), newNode("b", "clean"), newNode("t1", "tail-left")} {
		_, err := left.AddNode(node)
		require.NoError(t, err)
	}
	require.NoError(t, left.AddEdge("a", "b"))
	require.NoError(t, left.AddEdge("b", "t1"))

	right := dag.New()
	for _, node := range []dag.Node{newNode("a", "load"), newNode("b", "clean"), newNode("t2", "tail-right")} {
		_, err := right.AddNode(node)
		require.NoError(t, err)
	}
	require.NoError(t, right.AddEdge("b", "a"))
	require.NoError(t, right.AddEdge("a", "t2"))

	merged, err := left.Merge(right)
	require.NoError(t, err)

	violations := dag.Validate(merged)
	require.NotEmpty(t, violations)
	assert.Equal(t, dag.ViolationCycle, violations[0].Kind)
	assert.Equal(t, []string{"a", "b", "t1", "t2"}, violations[0].IDs)

	err = dag.Check(merged)
	require.Error(t, err)
	assert.ErrorIs(t, err, dag.ErrValidation)
}

func Test_Validate_ReportsAmbiguousFrontier(t *testing.T) {
	t.Parallel()

	graph := dag.New()
	for _, node := range []dag.Node{newNode("a", "load"), newNode("b", "subset-left"), newNode("c", "subset-right")} {
		_, err := graph.AddNode(node)
		require.NoError(t, err)
	}
	require.NoError(t, graph.AddEdge("a", "b"))
	require.NoError(t, graph.AddEdge("a", "c"))

	violations := dag.Validate(graph)
	require.Len(t, violations, 1)
	assert.Equal(t, dag.ViolationFrontier, violations[0].Kind)
	assert.Equal(t, []string{"b", "c"}, violations[0].IDs)
}

func Test_Validate_CollectsAllViolationsInOnePass(t *testing.T) {
	t.Parallel()

	// Disconnected pair of roots: two frontiers. Merged with a cyclic pair:
	// both violation kinds must be reported together.
	left := dag.New()
	for _, node := range []dag.Node{newNode("a", "load"), newNode("b", "clean")} {
		_, err := left.AddNode(node)
		require.NoError(t, err)
	}
	require.NoError(t, left.AddEdge("a", "b"))

	right := dag.New()
	for _, node := range []dag.Node{newNode("a", "load"), newNode("b", "clean")} {
		_, err := right.AddNode(node)
		require.NoError(t, err)
	}
	require.NoError(t, right.AddEdge("b", "a"))

	merged, err := left.Merge(right)
	require.NoError(t, err)

	violations := dag.Validate(merged)

	kinds := make([]dag.ViolationKind, len(violations))
	for i, violation := range violations {
		kinds[i] = violation.Kind
	}

	assert.Contains(t, kinds, dag.ViolationCycle)
	assert.Contains(t, kinds, dag.ViolationFrontier)
}
