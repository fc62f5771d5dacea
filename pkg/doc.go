// Package pkg holds the followgraph libraries.
//
// followgraph turns crawled Twitter follower/friend lists into a directed
// "follows" graph and reduces that graph to something small enough to draw:
// users whose degree is a statistical outlier are kept together with a
// random sample of their neighbors. The sampling generator's state is
// persisted, so every reduction can be replayed exactly.
//
// # Data flow
//
//	users.json[.gz]
//	      ↓
//	  [users]      load records in source order, tolerate malformed fields
//	      ↓
//	  [builder]    reconcile followers/friends into a [digraph.Graph]
//	      ↓
//	  [reducer]    degree outliers + neighbor sampling, driven by [rngstate]
//	      ↓
//	  [render/nodelink]  DOT → SVG / PNG / PDF, nodes styled by data source
//
// [pipeline] wires these steps together with [cache] (built graphs and
// layouts) and [storage] (graphs and the random state). [graph] is the
// node-link JSON format used on every persistence boundary.
//
// # Supporting packages
//
//   - [relation]: the IN/OUT direction table shared by builder and reducer
//   - [errors]: coded errors and exit statuses
//   - [observability]: event hooks for build, reduce, render, cache and storage
//   - [buildinfo]: version information set through ldflags
//
// # Quick start
//
//	store, err := users.Load("users.json.gz")
//	if err != nil {
//	    return err
//	}
//	g, _, err := builder.Build(store, builder.Options{})
//	if err != nil {
//	    return err
//	}
//	reduced, next, report, err := reducer.Reduce(g, reducer.DefaultOptions(), rngstate.Default())
//
// Persist next to continue the random stream on the following run.
//
// [users]: github.com/matzehuels/followgraph/pkg/users
// [builder]: github.com/matzehuels/followgraph/pkg/builder
// [reducer]: github.com/matzehuels/followgraph/pkg/reducer
// [rngstate]: github.com/matzehuels/followgraph/pkg/rngstate
// [digraph.Graph]: github.com/matzehuels/followgraph/pkg/digraph
// [render/nodelink]: github.com/matzehuels/followgraph/pkg/render/nodelink
// [pipeline]: github.com/matzehuels/followgraph/pkg/pipeline
// [cache]: github.com/matzehuels/followgraph/pkg/cache
// [storage]: github.com/matzehuels/followgraph/pkg/storage
// [graph]: github.com/matzehuels/followgraph/pkg/graph
// [relation]: github.com/matzehuels/followgraph/pkg/relation
// [errors]: github.com/matzehuels/followgraph/pkg/errors
// [observability]: github.com/matzehuels/followgraph/pkg/observability
// [buildinfo]: github.com/matzehuels/followgraph/pkg/buildinfo
package pkg
