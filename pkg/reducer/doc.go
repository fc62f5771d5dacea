// Package reducer shrinks a follows graph to a subgraph small enough to
// visualize.
//
// # Algorithm
//
// For each direction ([relation.In], then [relation.Out]) the reducer
// computes the mean and sample standard deviation of the node degrees. A
// node is a degree outlier when its degree deviates from the mean by more
// than StdevMultiplier standard deviations. Outliers from both directions
// are merged, keeping the larger degree for nodes found twice.
//
// Outliers are then processed in ascending degree order (ties broken by
// [digraph.CompareIDs]). Each contributes itself plus a random sample of
// floor(|neighbors| × SampleFraction) of its neighbors. An outlier whose
// sample is empty contributes nothing. The result is the subgraph induced
// by the collected nodes.
//
// # Random State
//
// Sampling is the only step that consumes randomness. [Reduce] takes an
// explicit [rngstate.State], never mutates it, and returns the state after
// all draws. Feeding that state into the next call continues the sequence;
// replaying the original state reproduces the original output exactly.
// With SampleFraction 1 no draws are made and the returned state equals
// the input state.
package reducer
