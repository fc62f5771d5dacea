// Package relation defines the two directions of the "follows" relation.
//
// Every operation that differs between followers and friends dispatches
// through [Direction], so the builder and reducer run identical logic for
// both passes. The set of directions is closed: [In] and [Out] are the only
// values, and [All] lists them in the order passes are run.
package relation

import (
	"fmt"

	"github.com/matzehuels/followgraph/pkg/digraph"
	"github.com/matzehuels/followgraph/pkg/users"
)

// Direction selects one side of a user's adjacency.
type Direction uint8

const (
	// In covers a user's followers: edges pointing at the user.
	In Direction = iota
	// Out covers a user's friends: edges leaving the user.
	Out
)

// All is the fixed pass order used by the builder and reducer.
var All = [...]Direction{In, Out}

type behavior struct {
	name   string
	key    string
	degree func(g *digraph.Graph, id string) int
	edge   func(subject, other string) digraph.Edge
}

var table = [...]behavior{
	In: {
		name:   "in",
		key:    users.KeyFollowers,
		degree: (*digraph.Graph).InDegree,
		edge:   func(subject, other string) digraph.Edge { return digraph.Edge{From: other, To: subject} },
	},
	Out: {
		name:   "out",
		key:    users.KeyFriends,
		degree: (*digraph.Graph).OutDegree,
		edge:   func(subject, other string) digraph.Edge { return digraph.Edge{From: subject, To: other} },
	},
}

func (d Direction) behavior() behavior {
	if int(d) >= len(table) {
		panic(fmt.Sprintf("relation: invalid direction %d", d))
	}
	return table[d]
}

// Key returns the record field holding this direction's list.
func (d Direction) Key() string { return d.behavior().key }

// Degree returns id's degree in g for this direction: in-degree for [In],
// out-degree for [Out]. A node not in g has degree 0.
func (d Direction) Degree(g *digraph.Graph, id string) int { return d.behavior().degree(g, id) }

// Edge orients an edge between subject and other. For [In] other follows
// subject; for [Out] subject follows other.
func (d Direction) Edge(subject, other string) digraph.Edge { return d.behavior().edge(subject, other) }

// String returns "in" or "out".
func (d Direction) String() string { return d.behavior().name }
