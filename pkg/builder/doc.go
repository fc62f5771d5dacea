// Package builder constructs the directed "follows" graph from a user
// record store.
//
// # Algorithm
//
// Users are visited in store order. For each user and each direction
// ([relation.In] for followers, [relation.Out] for friends) the builder
// compares the user's current degree in the graph under construction with
// the length of the matching list in the record:
//
//   - degree 0: the direction has not been populated yet, so every listed
//     identifier is staged as an edge oriented by the direction;
//   - degree equal to the list length: already populated, nothing to do;
//   - any other degree: a CONSISTENCY_SKIP. It is logged and the direction
//     is left alone for this user. Existing edges are never removed.
//
// Staged edges are committed according to [CommitPolicy]. Every identifier
// in the store becomes a node, even when none of its edges could be
// resolved. The result is a best-effort reconciliation: if A lists B as a
// follower but B does not list A as a friend, the edge B→A is still present.
//
// # Failure Semantics
//
// An empty store is a DATA_UNAVAILABLE error and no graph is returned.
// Malformed record fields are logged and treated as empty lists. Neither
// malformed fields nor consistency skips abort the build; both are counted
// in [Report].
package builder
