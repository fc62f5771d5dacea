// Package render turns follows graphs into images.
//
// The [nodelink] subpackage produces Graphviz DOT and SVG. This package
// holds the format conversion shared by renderers: [ToPDF] and [ToPNG]
// convert SVG through the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(dot, "")
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/followgraph/pkg/render/nodelink
package render
