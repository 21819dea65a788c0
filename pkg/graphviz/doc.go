// Package graphviz renders the provenance DAG of a data package.
//
// The main functionalities include:
// - Generating the raw graphviz dot language representation of a graph.
// - Rendering it to PNG.
package graphviz
