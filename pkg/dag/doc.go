// Package dag implements the provenance DAG of a data package.
//
// The main functionalities include:
// - Building the graph stage by stage (append-only nodes and edges).
// - Merging the graphs of several upstream packages (fan-in).
// - Deterministic topological ordering for serialization.
// - Structural validation of every graph invariant.
package dag
