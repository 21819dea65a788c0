package manifest

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/data-eco/eco-go/pkg/dag"
)

// ProvenanceKey is the manifest member holding the embedded provenance graph.
// Every other top-level member is package metadata the engine never inspects.
const ProvenanceKey = "eco"

// ErrFormat is the sentinel for manifest decoding failures.
var ErrFormat = errors.New("manifest format error")

// FormatError is returned when a manifest cannot be decoded: invalid JSON,
// missing or malformed provenance block, or a graph failing validation.
type FormatError struct {
	Msg string
	Err error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrFormat, e.Msg, e.Err)
	}

	return fmt.Sprintf("%s: %s", ErrFormat, e.Msg)
}

func (e *FormatError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrFormat, e.Err}
	}

	return []error{ErrFormat}
}

// Manifest is the in-memory form of a package descriptor: the provenance
// graph plus every other top-level member preserved verbatim.
//
// Graph is nil only for a declared first-stage package decoded with
// AllowMissingProvenance; a nil graph can never be encoded back.
type Manifest struct {
	Graph       *dag.Graph
	Passthrough map[string]json.RawMessage
}

// graphDocument is the wire shape of the embedded provenance block.
type graphDocument struct {
	Nodes []dag.Node `json:"nodes"`
	Edges []dag.Edge `json:"edges"`
}
