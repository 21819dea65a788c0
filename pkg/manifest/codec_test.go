package manifest_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/data-eco/eco-go/pkg/dag"
	"github.com/data-eco/eco-go/pkg/manifest"
)

func buildManifest(t *testing.T) manifest.Manifest {
	t.Helper()

	graph := dag.New()

	for _, node := range []dag.Node{
		{
			ID:        "load",
			Label:     "load_penguins",
			CreatedAt: "2022-01-08T10:00:00Z",
			Annotations: []dag.Annotation{
				{Format: "markdown", Content: "Raw penguins dataset."},
			},
			Views: []dag.View{},
			Stats: dag.Stats{"num_rows": json.RawMessage(`344`)},
		},
		{
			ID:          "clean",
			Label:       "drop_missing",
			CreatedAt:   "2022-01-08T10:05:00Z",
			Annotations: []dag.Annotation{},
			Views:       []dag.View{},
			Stats:       dag.Stats{},
		},
	} {
		_, err := graph.AddNode(node)
		require.NoError(t, err)
	}

	require.NoError(t, graph.AddEdge("load", "clean"))

	return manifest.Manifest{
		Graph: graph,
		Passthrough: map[string]json.RawMessage{
			"name":      json.RawMessage(`"penguins"`),
			"resources": json.RawMessage(`[{"path":"data.csv","format":"csv"}]`),
			"profile":   json.RawMessage(`"tabular-data-package"`),
		},
	}
}

func Test_Codec_RoundTrip(t *testing.T) {
	t.Parallel()

	original := buildManifest(t)

	encoded, err := manifest.Encode(original)
	require.NoError(t, err)

	decoded, err := manifest.Decode(encoded, manifest.DecodeOpts{})
	require.NoError(t, err)

	assert.Equal(t, original.Graph.Nodes(), decoded.Graph.Nodes())
	assert.Equal(t, original.Graph.Edges(), decoded.Graph.Edges())

	// Passthrough members survive a full round-trip byte-for-byte once
	// re-encoded.
	reencoded, err := manifest.Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, encoded, reencoded)
}

func Test_Encode_Deterministic(t *testing.T) {
	t.Parallel()

	m := buildManifest(t)

	first, err := manifest.Encode(m)
	require.NoError(t, err)

	second, err := manifest.Encode(m)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func Test_Encode_NodesFollowTopologicalOrder(t *testing.T) {
	t.Parallel()

	encoded, err := manifest.Encode(buildManifest(t))
	require.NoError(t, err)

	var doc struct {
		Eco struct {
			Nodes []dag.Node `json:"nodes"`
		} `json:"eco"`
	}
	require.NoError(t, json.Unmarshal(encoded, &doc))

	require.Len(t, doc.Eco.Nodes, 2)
	assert.Equal(t, "load", doc.Eco.Nodes[0].ID)
	assert.Equal(t, "clean", doc.Eco.Nodes[1].ID)
}

func Test_Encode_RejectsInvalidGraph(t *testing.T) {
	t.Parallel()

	_, err := manifest.Encode(manifest.Manifest{Graph: dag.New()})
	require.Error(t, err)
	assert.ErrorIs(t, err, dag.ErrValidation)
}

func Test_Decode_RejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := manifest.Decode([]byte(`{not json`), manifest.DecodeOpts{})
	assert.ErrorIs(t, err, manifest.ErrFormat)
}

func Test_Decode_MissingProvenance(t *testing.T) {
	t.Parallel()

	data := []byte(`{"name": "penguins"}`)

	// Without the explicit first-stage assertion, a missing graph is an
	// error, not an empty graph.
	_, err := manifest.Decode(data, manifest.DecodeOpts{})
	require.Error(t, err)
	assert.ErrorIs(t, err, manifest.ErrFormat)

	decoded, err := manifest.Decode(data, manifest.DecodeOpts{AllowMissingProvenance: true})
	require.NoError(t, err)
	assert.Nil(t, decoded.Graph)
	assert.Contains(t, decoded.Passthrough, "name")
}

func Test_Decode_MalformedProvenanceIsNeverTreatedAsEmpty(t *testing.T) {
	t.Parallel()

	data := []byte(`{"eco": {"nodes": "oops"}}`)

	// Even with the first-stage flag set, corrupt provenance must surface.
	_, err := manifest.Decode(data, manifest.DecodeOpts{AllowMissingProvenance: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, manifest.ErrFormat)
}

func Test_Decode_RejectsDuplicateNodeID(t *testing.T) {
	t.Parallel()

	data := []byte(`{
	  "eco": {
	    "nodes": [
	      {"id": "a", "label": "load", "created_at": "t0", "annotations": [], "views": [], "stats": {}},
	      {"id": "a", "label": "clean", "created_at": "t1", "annotations": [], "views": [], "stats": {}}
	    ],
	    "edges": []
	  }
	}`)

	_, err := manifest.Decode(data, manifest.DecodeOpts{})
	require.Error(t, err)
	assert.ErrorIs(t, err, manifest.ErrFormat)
	assert.ErrorIs(t, err, dag.ErrDuplicateID)
}

func Test_Decode_RejectsCyclicGraph(t *testing.T) {
	t.Parallel()

	data := []byte(`{
	  "eco": {
	    "nodes": [
	      {"id": "a", "label": "load", "created_at": "t0", "annotations": [], "views": [], "stats": {}},
	      {"id": "b", "label": "clean", "created_at": "t1", "annotations": [], "views": [], "stats": {}}
	    ],
	    "edges": [{"from": "a", "to": "b"}, {"from": "b", "to": "a"}]
	  }
	}`)

	_, err := manifest.Decode(data, manifest.DecodeOpts{})
	require.Error(t, err)
	assert.ErrorIs(t, err, manifest.ErrFormat)
	assert.ErrorIs(t, err, dag.ErrCycle)
}

func Test_Decode_RejectsNodeWithoutID(t *testing.T) {
	t.Parallel()

	data := []byte(`{
	  "eco": {
	    "nodes": [{"label": "load", "created_at": "t0", "annotations": [], "views": [], "stats": {}}],
	    "edges": []
	  }
	}`)

	_, err := manifest.Decode(data, manifest.DecodeOpts{})
	assert.ErrorIs(t, err, manifest.ErrFormat)
}
