// Package digraph provides the directed "follows" graph built from user
// follower and friend lists.
//
// # Overview
//
// A [Graph] stores nodes keyed by user identifier and directed edges where
// an edge (source, target) means source follows target. Nodes may exist
// without any edges, parallel edges are never stored, and self-loops are
// permitted (though nothing in this module creates them on purpose).
//
// Unlike a general-purpose graph library, [Graph] preserves insertion order
// for both nodes and edges. Every enumeration ([Graph.Nodes], [Graph.Edges],
// [Graph.Neighbors]) is therefore deterministic, which the reducer relies on
// to make randomized sampling reproducible.
//
// # Basic Usage
//
//	g := digraph.New()
//	g.AddNode("1")
//	g.AddEdge("2", "1") // 2 follows 1
//	g.InDegree("1")     // 1
//
// [Graph.Subgraph] returns the induced subgraph over a node set as a new,
// independently owned graph; the receiver is never modified.
//
// # Identifiers
//
// Identifiers are opaque strings. [CompareIDs] provides the one ordering
// used throughout the module: numeric when both identifiers are decimal
// integers, lexical otherwise.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. The builder holds
// exclusive write access during construction and the reducer only reads its
// input, so no locking is needed inside the core.
package digraph
