package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/data-eco/eco-go/pkg/dag"
)

// DecodeOpts controls how strictly a manifest is decoded.
type DecodeOpts struct {
	// AllowMissingProvenance accepts a manifest without an embedded graph.
	// It must be set only when the caller asserts the package is a declared
	// first-stage package with no prior provenance. A malformed graph is
	// still an error: corrupt provenance is never silently treated as empty.
	AllowMissingProvenance bool
}

// Decode parses a manifest byte-stream. The embedded graph is rebuilt through
// the regular graph mutation API and validated, so a decoded manifest always
// satisfies every graph invariant. All members other than the provenance
// block are kept verbatim as passthrough.
func Decode(data []byte, opts DecodeOpts) (Manifest, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return Manifest{}, &FormatError{Msg: "manifest is not a JSON object", Err: err}
	}

	rawGraph, hasGraph := members[ProvenanceKey]
	passthrough := make(map[string]json.RawMessage, len(members))

	for key, value := range members {
		if key == ProvenanceKey {
			continue
		}

		passthrough[key] = value
	}

	if !hasGraph {
		if opts.AllowMissingProvenance {
			return Manifest{Passthrough: passthrough}, nil
		}

		return Manifest{}, &FormatError{Msg: fmt.Sprintf("missing %q member", ProvenanceKey)}
	}

	graph, err := decodeGraph(rawGraph)
	if err != nil {
		return Manifest{}, err
	}

	return Manifest{Graph: graph, Passthrough: passthrough}, nil
}

// Encode serializes a manifest. The output is deterministic: members and map
// keys are sorted, nodes follow the topological order with id tie-break, and
// the document is indented with 2 spaces. Encoding the same manifest twice
// yields byte-identical output, so downstream change detection can compare
// hashes.
func Encode(m Manifest) ([]byte, error) {
	if m.Graph == nil {
		return nil, &FormatError{Msg: "manifest has no provenance graph"}
	}

	if err := dag.Check(m.Graph); err != nil {
		return nil, err
	}

	doc := graphDocument{
		Nodes: m.Graph.Nodes(),
		Edges: m.Graph.Edges(),
	}

	rawGraph, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("could not marshal provenance graph: %w", err)
	}

	members := make(map[string]json.RawMessage, len(m.Passthrough)+1)
	for key, value := range m.Passthrough {
		members[key] = value
	}

	members[ProvenanceKey] = rawGraph

	encoded, err := json.MarshalIndent(members, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("could not marshal manifest: %w", err)
	}

	return append(encoded, '\n'), nil
}

func decodeGraph(raw json.RawMessage) (*dag.Graph, error) {
	var doc graphDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &FormatError{Msg: "malformed provenance graph", Err: err}
	}

	graph := dag.New()

	for _, node := range doc.Nodes {
		if node.ID == "" {
			return nil, &FormatError{Msg: "provenance node without id"}
		}

		if _, err := graph.AddNode(node); err != nil {
			return nil, &FormatError{Msg: "invalid provenance node", Err: err}
		}
	}

	for _, edge := range doc.Edges {
		if err := graph.AddEdge(edge.From, edge.To); err != nil {
			return nil, &FormatError{Msg: "invalid provenance edge", Err: err}
		}
	}

	if err := dag.Check(graph); err != nil {
		return nil, &FormatError{Msg: "provenance graph failed validation", Err: err}
	}

	return graph, nil
}
