package dag

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
)

// Graph is the provenance DAG of a data package: one node per processing
// stage, one edge per producer/consumer relationship. Nodes and edges are
// append-only; nothing is ever deleted or edited in place.
type Graph struct {
	nodes map[string]Node
	edges map[Edge]struct{}
}

// New creates an empty graph. An empty graph is not valid on its own: the
// first stage of a package must add exactly one node before the graph can be
// persisted.
func New() *Graph {
	return &Graph{
		nodes: map[string]Node{},
		edges: map[Edge]struct{}{},
	}
}

// AddNode inserts a new node and returns its id. When the node carries no id,
// a fresh UUID is generated, which is guaranteed unique within the graph.
// Caller-supplied ids colliding with an existing node fail with
// DuplicateIDError.
func (g *Graph) AddNode(node Node) (string, error) {
	for node.ID == "" {
		candidate := uuid.NewString()
		if _, exists := g.nodes[candidate]; !exists {
			node.ID = candidate
		}
	}

	if _, exists := g.nodes[node.ID]; exists {
		return "", &DuplicateIDError{ID: node.ID}
	}

	g.nodes[node.ID] = node.clone()

	return node.ID, nil
}

// AddEdge inserts a directed edge between two existing nodes. It fails with
// UnknownNodeError if either endpoint is absent, and with CycleError if the
// edge would make the graph cyclic (self-edges included). The graph is left
// untouched on failure. Inserting an edge that already exists is a no-op,
// edges form a set.
func (g *Graph) AddEdge(from, to string) error {
	if _, exists := g.nodes[from]; !exists {
		return &UnknownNodeError{ID: from}
	}

	if _, exists := g.nodes[to]; !exists {
		return &UnknownNodeError{ID: to}
	}

	// The new edge creates a cycle if "from" is already reachable from "to".
	if from == to || g.reachable(to, from) {
		return &CycleError{From: from, To: to}
	}

	g.edges[Edge{From: from, To: to}] = struct{}{}

	return nil
}

// Merge returns the union of both graphs. Nodes sharing an id must carry
// identical content (they represent the same historical stage reached through
// different lineages); diverging content fails with IDCollisionError.
// Merge is commutative and associative, neither input is modified.
func (g *Graph) Merge(other *Graph) (*Graph, error) {
	merged := New()

	for id, node := range g.nodes {
		merged.nodes[id] = node.clone()
	}

	for id, node := range other.nodes {
		if existing, exists := merged.nodes[id]; exists {
			if !existing.Equal(node) {
				return nil, &IDCollisionError{ID: id}
			}

			continue
		}

		merged.nodes[id] = node.clone()
	}

	for edge := range g.edges {
		merged.edges[edge] = struct{}{}
	}

	for edge := range other.edges {
		merged.edges[edge] = struct{}{}
	}

	return merged, nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	node, exists := g.nodes[id]
	if !exists {
		return Node{}, false
	}

	return node.clone(), true
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Edges returns every edge, sorted by (from, to) for deterministic output.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.edges))
	for edge := range g.edges {
		edges = append(edges, edge)
	}

	slices.SortFunc(edges, func(a, b Edge) int {
		if a.From != b.From {
			return cmp.Compare(a.From, b.From)
		}

		return cmp.Compare(a.To, b.To)
	})

	return edges
}

// Nodes returns every node in deterministic topological order.
func (g *Graph) Nodes() []Node {
	order := g.TopologicalOrder()

	nodes := make([]Node, 0, len(order))
	for _, id := range order {
		nodes = append(nodes, g.nodes[id].clone())
	}

	return nodes
}

// Ancestors returns the ids of every node the given node transitively
// descends from, sorted by id.
func (g *Graph) Ancestors(id string) ([]string, error) {
	if _, exists := g.nodes[id]; !exists {
		return nil, &UnknownNodeError{ID: id}
	}

	parents := map[string][]string{}
	for edge := range g.edges {
		parents[edge.To] = append(parents[edge.To], edge.From)
	}

	seen := map[string]struct{}{}
	stack := append([]string(nil), parents[id]...)

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, visited := seen[current]; visited {
			continue
		}

		seen[current] = struct{}{}
		stack = append(stack, parents[current]...)
	}

	ancestors := make([]string, 0, len(seen))
	for ancestor := range seen {
		ancestors = append(ancestors, ancestor)
	}

	slices.Sort(ancestors)

	return ancestors, nil
}

// TopologicalOrder returns every node id in an order where parents always
// precede children. Ties are broken by sorting ids, so the order (and thus
// the serialized form of the graph) is fully deterministic.
func (g *Graph) TopologicalOrder() []string {
	inDegree := map[string]int{}
	for id := range g.nodes {
		inDegree[id] = 0
	}

	children := map[string][]string{}
	for edge := range g.edges {
		inDegree[edge.To]++
		children[edge.From] = append(children[edge.From], edge.To)
	}

	var ready []string
	for id, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, id)
		}
	}

	slices.Sort(ready)

	order := make([]string, 0, len(g.nodes))

	for len(ready) > 0 {
		current := ready[0]
		ready = ready[1:]
		order = append(order, current)

		for _, child := range children[current] {
			inDegree[child]--
			if inDegree[child] == 0 {
				ready = append(ready, child)
			}
		}

		slices.Sort(ready)
	}

	// A cyclic graph yields a truncated order. Validate reports the cycle,
	// here we still return the acyclic prefix.
	return order
}

// Frontier returns the id of the single terminal node, the one representing
// "what this package currently is". A graph with several terminal nodes was
// not finalized by a single stage and fails with AmbiguousFrontierError.
func (g *Graph) Frontier() (string, error) {
	hasOutgoing := map[string]bool{}
	for edge := range g.edges {
		hasOutgoing[edge.From] = true
	}

	var terminals []string
	for id := range g.nodes {
		if !hasOutgoing[id] {
			terminals = append(terminals, id)
		}
	}

	slices.Sort(terminals)

	switch len(terminals) {
	case 0:
		return "", &AmbiguousFrontierError{IDs: nil}
	case 1:
		return terminals[0], nil
	default:
		return "", &AmbiguousFrontierError{IDs: terminals}
	}
}

// reachable reports whether "target" can be reached from "start" by following
// edges forward.
func (g *Graph) reachable(start, target string) bool {
	children := map[string][]string{}
	for edge := range g.edges {
		children[edge.From] = append(children[edge.From], edge.To)
	}

	seen := map[string]struct{}{}
	stack := []string{start}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == target {
			return true
		}

		if _, visited := seen[current]; visited {
			continue
		}

		seen[current] = struct{}{}
		stack = append(stack, children[current]...)
	}

	return false
}
