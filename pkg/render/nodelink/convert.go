package nodelink

import (
	"fmt"

	"github.com/matzehuels/followgraph/pkg/digraph"
	"github.com/matzehuels/followgraph/pkg/graph"
)

// DefaultTitle is the caption of every layout; SizeBy appends its suffix.
const DefaultTitle = "Twitter Follows Graph"

// Export creates a serializable layout: the DOT source plus the styling
// applied to each node.
//
// Nodelink layouts don't compute positions; Graphviz does that during
// rendering. Use this when the layout should be written to a file or cached
// for later rendering.
func Export(g *digraph.Graph, opts Options) graph.Layout {
	nodes := Style(g, opts)
	links := make([]graph.Link, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		links = append(links, graph.Link{Source: e.From, Target: e.To})
	}
	return graph.Layout{
		Title:  DefaultTitle + opts.SizeBy.Title(),
		Engine: opts.engine(),
		SizeBy: opts.SizeBy.String(),
		DOT:    toDOT(g, nodes, opts),
		Nodes:  nodes,
		Links:  links,
	}
}

// Parse extracts the DOT source and engine from a serialized layout.
func Parse(layout graph.Layout) (dot, engine string, err error) {
	if layout.DOT == "" {
		return "", "", fmt.Errorf("nodelink layout must contain DOT string")
	}
	engine = layout.Engine
	if engine == "" {
		engine = DefaultEngine
	}
	return layout.DOT, engine, nil
}
