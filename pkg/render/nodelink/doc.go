// Package nodelink renders follows graphs as node-link diagrams.
//
// # Overview
//
// Graphs are converted to Graphviz DOT source and laid out with a
// force-directed engine (sfdp by default), which copes with the dense,
// hub-heavy shape of social graphs far better than layered layouts.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{SizeBy: nodelink.SizeFollowers, Store: store})
//	svg, err := nodelink.RenderSVG(dot, "")
//
// # Node Styling
//
// [SizeBy] selects the data source that drives node size and color:
//
//   - none: every node gets the smallest size
//   - followers / friends: length of the user's list in the record store
//   - tweets: number of tweets in the tweet store
//
// Values are mapped onto the 8-step GnBu palette. A node with palette index
// i has size 2^(i+1) points. Tooltips show the user's first tweet when one
// is known.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
