package pipeline

import (
	"fmt"

	"github.com/matzehuels/followgraph/pkg/graph"
	"github.com/matzehuels/followgraph/pkg/render/nodelink"
)

// RenderLayout generates output artifacts in the requested formats from a
// nodelink layout. The layout must carry its DOT source.
func RenderLayout(layout graph.Layout, opts Options) (map[string][]byte, error) {
	dot, engine, err := nodelink.Parse(layout)
	if err != nil {
		return nil, err
	}
	if opts.Engine != "" {
		engine = opts.Engine
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(dot, engine)
		case FormatPNG:
			data, err = nodelink.RenderPNG(dot, engine, DefaultPNGScale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(dot, engine)
		case FormatJSON:
			data, err = graph.MarshalLayout(layout)
		case FormatDOT:
			data = []byte(dot)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
