// Package extend grows the provenance graph of a data package by one
// processing stage, handling both linear pipelines and fan-in stages that
// consume several upstream packages.
package extend

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/data-eco/eco-go/pkg/dag"
	"github.com/data-eco/eco-go/pkg/manifest"
)

// ErrNoProvenance is returned when a fan-in upstream manifest carries no
// provenance graph. Only a declared first-stage package may omit it, and only
// as the sole input of a root extension.
var ErrNoProvenance = errors.New("upstream manifest has no provenance graph")

// Stage describes the processing stage being recorded.
type Stage struct {
	// ID pins the node identity. Leave empty to let the extender's
	// IDGenerator produce one.
	ID string

	// Label is the human-readable stage name.
	Label string

	// CreatedAt is the stage execution timestamp (RFC 3339). Leave empty to
	// use the extender's clock.
	CreatedAt string

	Annotations []dag.Annotation
	Views       []dag.View
	Stats       dag.Stats
}

// Extender records new stages into package manifests.
type Extender struct {
	// IDs generates node identities. Defaults to RandomIDs.
	IDs IDGenerator

	// Now is the clock used for CreatedAt timestamps. Defaults to time.Now.
	Now func() time.Time
}

// New creates an Extender with the default id generator and clock.
func New() *Extender {
	return &Extender{
		IDs: RandomIDs{},
		Now: time.Now,
	}
}

// Extend produces the manifest of the package created by running the given
// stage over the upstream packages.
//
// With no upstream, the result is a root package: a fresh graph holding the
// single new node. With one upstream, the graph is extended with the new node
// and an edge from the upstream frontier. With several upstreams (fan-in),
// the upstream graphs are merged first, which deduplicates shared ancestry,
// then every upstream frontier is linked to the new node.
//
// The whole extension is atomic: any failure (ambiguous frontier, id
// collision, validation) returns an error and no manifest. Upstream manifests
// are never modified.
func (e *Extender) Extend(upstreams []manifest.Manifest, stage Stage) (manifest.Manifest, error) {
	// A sole upstream without provenance is a declared first-stage package
	// being adopted: its descriptor is carried over, its (absent) history is
	// not.
	if len(upstreams) == 1 && upstreams[0].Graph == nil {
		return e.root(upstreams[0].Passthrough, stage)
	}

	if len(upstreams) == 0 {
		return e.root(nil, stage)
	}

	graph := dag.New()
	frontiers := make([]string, 0, len(upstreams))

	for _, upstream := range upstreams {
		if upstream.Graph == nil {
			return manifest.Manifest{}, ErrNoProvenance
		}

		frontier, err := upstream.Graph.Frontier()
		if err != nil {
			return manifest.Manifest{}, fmt.Errorf("upstream package is malformed: %w", err)
		}

		frontiers = append(frontiers, frontier)

		graph, err = graph.Merge(upstream.Graph)
		if err != nil {
			return manifest.Manifest{}, fmt.Errorf("could not merge upstream provenance: %w", err)
		}
	}

	node, err := e.newNode(stage, frontiers)
	if err != nil {
		return manifest.Manifest{}, err
	}

	id, err := graph.AddNode(node)
	if err != nil {
		return manifest.Manifest{}, fmt.Errorf("could not add stage node: %w", err)
	}

	for _, frontier := range frontiers {
		if err := graph.AddEdge(frontier, id); err != nil {
			return manifest.Manifest{}, fmt.Errorf("could not link stage to upstream frontier: %w", err)
		}
	}

	if err := dag.Check(graph); err != nil {
		return manifest.Manifest{}, err
	}

	return manifest.Manifest{
		Graph:       graph,
		Passthrough: clonePassthrough(upstreams[0].Passthrough),
	}, nil
}

// root creates the manifest of a pipeline root package: one node, no edges.
func (e *Extender) root(passthrough map[string]json.RawMessage, stage Stage) (manifest.Manifest, error) {
	node, err := e.newNode(stage, nil)
	if err != nil {
		return manifest.Manifest{}, err
	}

	graph := dag.New()
	if _, err := graph.AddNode(node); err != nil {
		return manifest.Manifest{}, err
	}

	if err := dag.Check(graph); err != nil {
		return manifest.Manifest{}, err
	}

	return manifest.Manifest{
		Graph:       graph,
		Passthrough: clonePassthrough(passthrough),
	}, nil
}

func (e *Extender) newNode(stage Stage, parents []string) (dag.Node, error) {
	if stage.CreatedAt == "" {
		now := time.Now
		if e.Now != nil {
			now = e.Now
		}

		stage.CreatedAt = now().UTC().Format(time.RFC3339Nano)
	}

	id := stage.ID
	if id == "" {
		generator := e.IDs
		if generator == nil {
			generator = RandomIDs{}
		}

		generated, err := generator.NodeID(stage, parents)
		if err != nil {
			return dag.Node{}, fmt.Errorf("could not generate node id: %w", err)
		}

		id = generated
	}

	node := dag.Node{
		ID:          id,
		Label:       stage.Label,
		CreatedAt:   stage.CreatedAt,
		Annotations: stage.Annotations,
		Views:       stage.Views,
		Stats:       stage.Stats,
	}

	// Normalize attachments so the serialized form always carries arrays and
	// objects, never null.
	if node.Annotations == nil {
		node.Annotations = []dag.Annotation{}
	}

	if node.Views == nil {
		node.Views = []dag.View{}
	}

	if node.Stats == nil {
		node.Stats = dag.Stats{}
	}

	return node, nil
}

func clonePassthrough(passthrough map[string]json.RawMessage) map[string]json.RawMessage {
	cloned := make(map[string]json.RawMessage, len(passthrough))
	for key, value := range passthrough {
		cloned[key] = value
	}

	return cloned
}
