package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ViolationKind identifies the class of an invariant violation.
type ViolationKind string

const (
	// ViolationEmptyGraph flags a graph with no node at all. Every package
	// records at least the stage that created it.
	ViolationEmptyGraph ViolationKind = "empty_graph"

	// ViolationCycle flags a directed cycle. IDs lists the nodes involved.
	ViolationCycle ViolationKind = "cycle"

	// ViolationDuplicateID flags a node id defined more than once. It can
	// only occur in serialized form, the in-memory graph rejects duplicates
	// at insertion time.
	ViolationDuplicateID ViolationKind = "duplicate_id"

	// ViolationDanglingEdge flags an edge referencing a missing node.
	ViolationDanglingEdge ViolationKind = "dangling_edge"

	// ViolationFrontier flags a graph without exactly one terminal node.
	ViolationFrontier ViolationKind = "frontier"
)

// Violation describes a single invariant violation and the offending ids.
// Violations are diagnostics only, the validator never repairs data.
type Violation struct {
	Kind ViolationKind
	IDs  []string
}

func (v Violation) String() string {
	if len(v.IDs) == 0 {
		return string(v.Kind)
	}

	return fmt.Sprintf("%s (%s)", v.Kind, strings.Join(v.IDs, ", "))
}

// Validate runs every structural check on the graph and collects all
// violations in priority order: acyclicity first, then referential integrity,
// then frontier uniqueness. Annotations and views live inside their node
// record, so their attachment cannot dangle once a graph is in memory; the
// manifest codec enforces their shape when decoding.
//
// An empty result means the graph is valid.
func Validate(graph *Graph) []Violation {
	var violations []Violation

	if graph.Len() == 0 {
		violations = append(violations, Violation{Kind: ViolationEmptyGraph})

		return violations
	}

	// A truncated topological order means the remaining nodes form at least
	// one cycle.
	order := graph.TopologicalOrder()
	if len(order) < graph.Len() {
		ordered := map[string]struct{}{}
		for _, id := range order {
			ordered[id] = struct{}{}
		}

		var cyclic []string
		for id := range graph.nodes {
			if _, ok := ordered[id]; !ok {
				cyclic = append(cyclic, id)
			}
		}

		slices.Sort(cyclic)
		violations = append(violations, Violation{Kind: ViolationCycle, IDs: cyclic})
	}

	for _, edge := range graph.Edges() {
		if _, exists := graph.nodes[edge.From]; !exists {
			violations = append(violations, Violation{Kind: ViolationDanglingEdge, IDs: []string{edge.From, edge.To}})

			continue
		}

		if _, exists := graph.nodes[edge.To]; !exists {
			violations = append(violations, Violation{Kind: ViolationDanglingEdge, IDs: []string{edge.From, edge.To}})
		}
	}

	if _, err := graph.Frontier(); err != nil {
		var frontierErr *AmbiguousFrontierError
		if errors.As(err, &frontierErr) {
			violations = append(violations, Violation{Kind: ViolationFrontier, IDs: frontierErr.IDs})
		}
	}

	return violations
}

// Check is a convenience wrapper around Validate returning a single
// ValidationError carrying every violation, or nil for a valid graph.
func Check(graph *Graph) error {
	violations := Validate(graph)
	if len(violations) == 0 {
		return nil
	}

	return &ValidationError{Violations: violations}
}
