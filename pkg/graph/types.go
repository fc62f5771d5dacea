package graph

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/followgraph/pkg/digraph"
)

// Graph is the node-link serialization of a follows graph.
type Graph struct {
	Directed   bool   `json:"directed" bson:"directed"`
	Multigraph bool   `json:"multigraph" bson:"multigraph"`
	Nodes      []Node `json:"nodes" bson:"nodes"`
	Links      []Link `json:"links" bson:"links"`
}

// Node is one user.
type Node struct {
	ID string `json:"id" bson:"id"`
}

// Link is a directed "source follows target" edge.
type Link struct {
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}

// FromGraph converts g to its serialization format.
// Nodes are sorted by digraph.CompareIDs; links keep edge insertion order.
func FromGraph(g *digraph.Graph) Graph {
	ids := g.Nodes()
	digraph.SortIDs(ids)

	out := Graph{
		Directed: true,
		Nodes:    make([]Node, len(ids)),
		Links:    make([]Link, 0, g.EdgeCount()),
	}
	for i, id := range ids {
		out.Nodes[i] = Node{ID: id}
	}
	for _, e := range g.Edges() {
		out.Links = append(out.Links, Link{Source: e.From, Target: e.To})
	}
	return out
}

// ToGraph converts a serialized graph back to a digraph.Graph.
// Links may only reference listed nodes.
func ToGraph(gj Graph) (*digraph.Graph, error) {
	if !gj.Directed {
		return nil, fmt.Errorf("%w: graph is undirected", ErrInvalidGraph)
	}
	if gj.Multigraph {
		return nil, fmt.Errorf("%w: multigraphs are not supported", ErrInvalidGraph)
	}

	g := digraph.New()
	for _, n := range gj.Nodes {
		if err := g.AddNode(n.ID); err != nil {
			return nil, fmt.Errorf("add node %q: %w", n.ID, err)
		}
	}
	for _, l := range gj.Links {
		if !g.HasNode(l.Source) || !g.HasNode(l.Target) {
			return nil, fmt.Errorf("%w: link %s→%s references an unknown node", ErrInvalidGraph, l.Source, l.Target)
		}
		if _, err := g.AddEdge(l.Source, l.Target); err != nil {
			return nil, fmt.Errorf("add link %s→%s: %w", l.Source, l.Target, err)
		}
	}
	return g, nil
}

// Unmarshal deserializes JSON bytes to a Graph.
func Unmarshal(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}
