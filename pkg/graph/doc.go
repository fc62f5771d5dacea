// Package graph provides the persistence format for follows graphs.
//
// Graphs are stored in node-link form, the structure the network-analysis
// tooling around the project already reads:
//
//	{
//	  "directed": true,
//	  "multigraph": false,
//	  "nodes": [{"id": "12"}, {"id": "345"}],
//	  "links": [{"source": "345", "target": "12"}]
//	}
//
// # Architecture
//
// The package sits at the serialization boundary between the in-memory
// graph and external formats:
//
//   - [Graph], [Node], [Link]: serialization types (this package)
//   - pkg/digraph.Graph: internal representation
//   - [Layout]: a rendered view of a graph (DOT plus per-node styling)
//
// Use [FromGraph]/[ToGraph] and the Marshal/Read/Write functions to convert
// between them.
//
// # Determinism
//
// Nodes are written sorted by identifier (numerically when both IDs are
// numeric) and links in edge insertion order, so identical graphs always
// serialize to identical bytes. Reading a graph and writing it again is
// byte-exact.
//
// The same types carry bson tags so document stores can hold them without
// a second schema.
package graph
