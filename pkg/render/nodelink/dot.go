package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/followgraph/pkg/digraph"
	"github.com/matzehuels/followgraph/pkg/graph"
	"github.com/matzehuels/followgraph/pkg/render"
	"github.com/matzehuels/followgraph/pkg/users"
)

// DefaultEngine is the Graphviz layout engine used when none is set.
const DefaultEngine = "sfdp"

// Options configures node-link diagram rendering.
type Options struct {
	// SizeBy selects the data source for node size and color.
	SizeBy SizeBy

	// Store supplies follower/friend counts and screen names. Optional.
	Store *users.Store

	// Tweets supplies tweet counts and tooltips. Optional.
	Tweets users.Tweets

	// Labels draws screen names (or IDs) next to nodes.
	Labels bool

	// Engine is the Graphviz layout engine. Empty selects DefaultEngine.
	Engine string
}

func (o Options) engine() string {
	if o.Engine == "" {
		return DefaultEngine
	}
	return o.Engine
}

// ToDOT converts g to Graphviz DOT source.
// Every node and edge of g appears in the output, in graph order.
func ToDOT(g *digraph.Graph, opts Options) string {
	return toDOT(g, Style(g, opts), opts)
}

func toDOT(g *digraph.Graph, nodes []graph.StyledNode, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", opts.engine())
	buf.WriteString("  overlap=prism;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, label=\"\", penwidth=0.5, color=\"#555555\"];\n")
	buf.WriteString("  edge [arrowsize=0.3, color=\"#00000040\"];\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		attrs := []string{
			fmt.Sprintf("width=%s", strconv.FormatFloat(n.Size/72, 'f', 3, 64)),
			fmt.Sprintf("fillcolor=%q", n.Color),
		}
		if opts.Labels {
			attrs = append(attrs, "xlabel="+quote(n.DisplayLabel()))
		}
		if n.Tooltip != "" {
			attrs = append(attrs, "tooltip="+quote(n.Tooltip))
		} else {
			attrs = append(attrs, "tooltip="+quote(n.DisplayLabel()))
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %s -> %s;\n", quote(e.From), quote(e.To))
	}

	buf.WriteString("}\n")
	return buf.String()
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r", "", "\n", `\n`)

// quote returns s as a DOT double-quoted string.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

// RenderSVG renders DOT source to SVG using Graphviz with the given layout
// engine ("" selects DefaultEngine).
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot, engine string) ([]byte, error) {
	if engine == "" {
		engine = DefaultEngine
	}

	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.Layout(engine))

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders DOT source as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot, engine string) ([]byte, error) {
	svg, err := RenderSVG(dot, engine)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders DOT source as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot, engine string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot, engine)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
