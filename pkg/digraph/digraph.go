package digraph

import (
	"errors"
	"slices"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] and [Graph.AddEdge]
	// when an identifier is empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrUnknownNode is returned by [Graph.Validate] when an edge references
	// a node that is not in the graph. This indicates graph corruption.
	ErrUnknownNode = errors.New("unknown node")

	// ErrParallelEdge is returned by [Graph.Validate] when the same ordered
	// pair appears twice in the edge list.
	ErrParallelEdge = errors.New("parallel edge")
)

// Edge is a directed "follows" relationship: From follows To.
type Edge struct {
	From string
	To   string
}

// Graph is a directed graph without parallel edges.
// Node and edge insertion order is preserved for deterministic enumeration.
//
// The zero value is not usable - use New to create a valid Graph instance.
type Graph struct {
	order    []string
	index    map[string]int
	edges    []Edge
	edgeSet  map[Edge]struct{}
	outgoing map[string][]string // nodeID -> followed IDs
	incoming map[string][]string // nodeID -> follower IDs
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		index:    make(map[string]int),
		edgeSet:  make(map[Edge]struct{}),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node if it is not already present.
// Adding an existing node is a no-op. Returns ErrInvalidNodeID for an empty ID.
func (g *Graph) AddNode(id string) error {
	if id == "" {
		return ErrInvalidNodeID
	}
	if _, ok := g.index[id]; ok {
		return nil
	}
	g.index[id] = len(g.order)
	g.order = append(g.order, id)
	return nil
}

// HasNode reports whether id is a node of the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// AddEdge adds the edge from→to, creating missing endpoints.
// It reports whether a new edge was stored; an existing edge is left alone
// so the graph never holds parallel edges.
func (g *Graph) AddEdge(from, to string) (bool, error) {
	if from == "" || to == "" {
		return false, ErrInvalidNodeID
	}
	e := Edge{From: from, To: to}
	if _, ok := g.edgeSet[e]; ok {
		return false, nil
	}
	_ = g.AddNode(from)
	_ = g.AddNode(to)
	g.edgeSet[e] = struct{}{}
	g.edges = append(g.edges, e)
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
	return true, nil
}

// AddEdges adds every edge in es and returns how many were new.
// It stops at the first invalid edge.
func (g *Graph) AddEdges(es []Edge) (int, error) {
	added := 0
	for _, e := range es {
		ok, err := g.AddEdge(e.From, e.To)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}

// HasEdge reports whether the edge from→to exists.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.edgeSet[Edge{From: from, To: to}]
	return ok
}

// Nodes returns all node IDs in insertion order.
// The returned slice is a copy.
func (g *Graph) Nodes() []string { return slices.Clone(g.order) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// InDegree returns the number of followers of the node.
// Returns 0 if the node doesn't exist.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// OutDegree returns the number of nodes the node follows.
// Returns 0 if the node doesn't exist.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// Predecessors returns the IDs of nodes following id, in edge insertion order.
// The returned slice should not be modified.
func (g *Graph) Predecessors(id string) []string { return g.incoming[id] }

// Successors returns the IDs of nodes followed by id, in edge insertion order.
// The returned slice should not be modified.
func (g *Graph) Successors(id string) []string { return g.outgoing[id] }

// Neighbors returns the union of predecessors and successors of id, without
// duplicates, ordered by [CompareIDs]. A self-loop does not make a node its
// own neighbor.
func (g *Graph) Neighbors(id string) []string {
	seen := make(map[string]struct{}, len(g.incoming[id])+len(g.outgoing[id]))
	var out []string
	for _, list := range [][]string{g.incoming[id], g.outgoing[id]} {
		for _, n := range list {
			if n == id {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	SortIDs(out)
	return out
}

// Subgraph returns the subgraph induced by keep: every node of g that is in
// keep, and every edge of g whose endpoints are both in keep. IDs in keep
// that are not nodes of g are ignored. Node and edge order follow g.
//
// The result is a new graph; g is not modified.
func (g *Graph) Subgraph(keep map[string]struct{}) *Graph {
	sub := New()
	for _, id := range g.order {
		if _, ok := keep[id]; ok {
			_ = sub.AddNode(id)
		}
	}
	for _, e := range g.edges {
		_, okF := keep[e.From]
		_, okT := keep[e.To]
		if okF && okT {
			_, _ = sub.AddEdge(e.From, e.To)
		}
	}
	return sub
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := New()
	for _, id := range g.order {
		_ = c.AddNode(id)
	}
	for _, e := range g.edges {
		_, _ = c.AddEdge(e.From, e.To)
	}
	return c
}

// Validate checks graph integrity and returns nil if valid: every edge
// endpoint is a node and no ordered pair appears twice.
func (g *Graph) Validate() error {
	seen := make(map[Edge]struct{}, len(g.edges))
	for _, e := range g.edges {
		if !g.HasNode(e.From) || !g.HasNode(e.To) {
			return ErrUnknownNode
		}
		if _, ok := seen[e]; ok {
			return ErrParallelEdge
		}
		seen[e] = struct{}{}
	}
	return nil
}

// CompareIDs is a total order on identifiers. Decimal integers sort before
// every other identifier and are compared by value (so "9" < "10"); equal
// values spelled differently ("7", "007") and all non-numeric identifiers
// are compared lexically.
func CompareIDs(a, b string) int {
	if a == b {
		return 0
	}
	negA, magA, okA := numeric(a)
	negB, magB, okB := numeric(b)
	switch {
	case okA && !okB:
		return -1
	case !okA && okB:
		return 1
	case okA && okB:
		if c := compareNumeric(negA, magA, negB, magB); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

// SortIDs sorts ids in place by [CompareIDs].
func SortIDs(ids []string) {
	slices.SortFunc(ids, CompareIDs)
}

// numeric splits a decimal integer into its sign and its magnitude without
// leading zeros ("" for zero). IDs may exceed 64 bits, so values are never
// parsed.
func numeric(id string) (neg bool, mag string, ok bool) {
	digits := id
	if strings.HasPrefix(digits, "-") {
		neg, digits = true, digits[1:]
	}
	if digits == "" {
		return false, "", false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false, "", false
		}
	}
	mag = strings.TrimLeft(digits, "0")
	return neg && mag != "", mag, true
}

func compareNumeric(negA bool, magA string, negB bool, magB string) int {
	if negA != negB {
		if negA {
			return -1
		}
		return 1
	}
	c := len(magA) - len(magB)
	if c == 0 {
		c = strings.Compare(magA, magB)
	}
	if negA {
		c = -c
	}
	switch {
	case c < 0:
		return -1
	case c > 0:
		return 1
	}
	return 0
}
