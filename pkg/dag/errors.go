package dag

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic checks via errors.Is().
var (
	ErrDuplicateID       = errors.New("duplicate node id")
	ErrUnknownNode       = errors.New("unknown node")
	ErrCycle             = errors.New("cycle")
	ErrIDCollision       = errors.New("node id collision")
	ErrAmbiguousFrontier = errors.New("ambiguous frontier")
	ErrValidation        = errors.New("validation failed")
)

// DuplicateIDError is returned when a node is added with an id that already
// exists in the graph.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%s: %q", ErrDuplicateID, e.ID)
}

func (e *DuplicateIDError) Unwrap() error { return ErrDuplicateID }

// UnknownNodeError is returned when an operation references a node id that is
// not part of the graph.
type UnknownNodeError struct {
	ID string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownNode, e.ID)
}

func (e *UnknownNodeError) Unwrap() error { return ErrUnknownNode }

// CycleError is returned when adding an edge would make the graph cyclic.
// The offending edge is never inserted.
type CycleError struct {
	From string
	To   string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: adding edge %q -> %q would create a cycle", ErrCycle, e.From, e.To)
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// IDCollisionError is returned by Merge when two graphs define the same node
// id with diverging content. This means the two lineages disagree about a
// logically identical stage, which cannot be resolved automatically.
type IDCollisionError struct {
	ID string
}

func (e *IDCollisionError) Error() string {
	return fmt.Sprintf("%s: node %q has diverging content in merged graphs", ErrIDCollision, e.ID)
}

func (e *IDCollisionError) Unwrap() error { return ErrIDCollision }

// AmbiguousFrontierError is returned when a graph has more than one terminal
// node, so "the stage that produced this package" cannot be determined.
type AmbiguousFrontierError struct {
	IDs []string
}

func (e *AmbiguousFrontierError) Error() string {
	if len(e.IDs) == 0 {
		return fmt.Sprintf("%s: graph has no terminal node", ErrAmbiguousFrontier)
	}

	return fmt.Sprintf("%s: multiple terminal nodes: %s", ErrAmbiguousFrontier, strings.Join(e.IDs, ", "))
}

func (e *AmbiguousFrontierError) Unwrap() error { return ErrAmbiguousFrontier }

// ValidationError aggregates every violation found in a single validation
// pass, so one run surfaces everything that is wrong with a graph.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, violation := range e.Violations {
		msgs[i] = violation.String()
	}

	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
