package extend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/data-eco/eco-go/pkg/extend"
)

func Test_RandomIDs_Unique(t *testing.T) {
	t.Parallel()

	generator := extend.RandomIDs{}

	first, err := generator.NodeID(extend.Stage{Label: "load"}, nil)
	require.NoError(t, err)

	second, err := generator.NodeID(extend.Stage{Label: "load"}, nil)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func Test_ContentIDs_DeterministicAndOrderInsensitive(t *testing.T) {
	t.Parallel()

	generator := extend.ContentIDs{}
	stage := extend.Stage{Label: "join", CreatedAt: "2022-01-08T10:00:00Z"}

	first, err := generator.NodeID(stage, []string{"a", "b"})
	require.NoError(t, err)

	// Parent order does not matter, fan-in inputs form a set.
	second, err := generator.NodeID(stage, []string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func Test_ContentIDs_SensitiveToContent(t *testing.T) {
	t.Parallel()

	generator := extend.ContentIDs{}

	base, err := generator.NodeID(extend.Stage{Label: "clean", CreatedAt: "t0"}, []string{"a"})
	require.NoError(t, err)

	relabeled, err := generator.NodeID(extend.Stage{Label: "normalize", CreatedAt: "t0"}, []string{"a"})
	require.NoError(t, err)
	assert.NotEqual(t, base, relabeled)

	reparented, err := generator.NodeID(extend.Stage{Label: "clean", CreatedAt: "t0"}, []string{"b"})
	require.NoError(t, err)
	assert.NotEqual(t, base, reparented)
}
