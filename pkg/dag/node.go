package dag

import (
	"bytes"
	"encoding/json"
)

// Annotation is a free-text note attached to a node, usually markdown.
// Annotations are immutable once attached: corrections are recorded as new
// annotations on later nodes, never by editing history.
type Annotation struct {
	Format  string `json:"format"`
	Content string `json:"content"`
}

// View is an opaque chart specification (vega-lite shaped). The engine never
// inspects or validates its contents, it only carries them along.
type View = json.RawMessage

// Stats holds arbitrary per-stage metrics (row counts, % missing, etc...).
// Values are opaque to the engine and passed through unvalidated.
type Stats map[string]json.RawMessage

// Node records a single processing stage of a data package.
type Node struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	CreatedAt   string       `json:"created_at"`
	Annotations []Annotation `json:"annotations"`
	Views       []View       `json:"views"`
	Stats       Stats        `json:"stats"`
}

// Edge is a directed link meaning "To consumed the output produced by From".
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// clone returns a deep copy of the node, so that graphs never share mutable
// state with their callers.
func (n Node) clone() Node {
	cloned := n

	if n.Annotations != nil {
		cloned.Annotations = append([]Annotation(nil), n.Annotations...)
	}

	if n.Views != nil {
		cloned.Views = make([]View, len(n.Views))
		for i, view := range n.Views {
			cloned.Views[i] = append(View(nil), view...)
		}
	}

	if n.Stats != nil {
		cloned.Stats = make(Stats, len(n.Stats))
		for key, value := range n.Stats {
			cloned.Stats[key] = append(json.RawMessage(nil), value...)
		}
	}

	return cloned
}

// Equal reports whether two nodes carry the same content. Opaque JSON payloads
// (views, stats) are compared in compacted form so formatting differences
// between manifests do not count as divergence.
func (n Node) Equal(other Node) bool {
	if n.ID != other.ID || n.Label != other.Label || n.CreatedAt != other.CreatedAt {
		return false
	}

	if len(n.Annotations) != len(other.Annotations) ||
		len(n.Views) != len(other.Views) ||
		len(n.Stats) != len(other.Stats) {
		return false
	}

	for i := range n.Annotations {
		if n.Annotations[i] != other.Annotations[i] {
			return false
		}
	}

	for i := range n.Views {
		if !rawEqual(n.Views[i], other.Views[i]) {
			return false
		}
	}

	for key, value := range n.Stats {
		otherValue, ok := other.Stats[key]
		if !ok || !rawEqual(value, otherValue) {
			return false
		}
	}

	return true
}

func rawEqual(a, b json.RawMessage) bool {
	compactA := &bytes.Buffer{}
	compactB := &bytes.Buffer{}

	if json.Compact(compactA, a) != nil || json.Compact(compactB, b) != nil {
		return bytes.Equal(a, b)
	}

	return bytes.Equal(compactA.Bytes(), compactB.Bytes())
}
