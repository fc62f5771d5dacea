package nodelink

import (
	"fmt"
	"strings"

	"github.com/matzehuels/followgraph/pkg/digraph"
	"github.com/matzehuels/followgraph/pkg/graph"
	"github.com/matzehuels/followgraph/pkg/users"
)

// SizeBy selects the data source used to size and color nodes.
type SizeBy int

const (
	SizeNone SizeBy = iota
	SizeFollowers
	SizeFriends
	SizeTweets
)

var sizeByNames = [...]string{
	SizeNone:      "none",
	SizeFollowers: "followers",
	SizeFriends:   "friends",
	SizeTweets:    "tweets",
}

// String returns the flag spelling of s.
func (s SizeBy) String() string {
	if s < 0 || int(s) >= len(sizeByNames) {
		return fmt.Sprintf("SizeBy(%d)", int(s))
	}
	return sizeByNames[s]
}

// Title returns the caption suffix for s, e.g. " by Number of Followers".
func (s SizeBy) Title() string {
	switch s {
	case SizeFollowers:
		return " by Number of Followers"
	case SizeFriends:
		return " by Number of Friends"
	case SizeTweets:
		return " by Tweet Activity"
	default:
		return ""
	}
}

// ParseSizeBy parses one of "none", "followers", "friends" or "tweets".
// The empty string selects SizeNone.
func ParseSizeBy(s string) (SizeBy, error) {
	if s == "" {
		return SizeNone, nil
	}
	for i, name := range sizeByNames {
		if strings.EqualFold(s, name) {
			return SizeBy(i), nil
		}
	}
	return 0, fmt.Errorf("invalid size-by %q (must be one of: %s)", s, strings.Join(sizeByNames[:], ", "))
}

// Palette is the 8-class GnBu color scale, light to dark.
var Palette = [8]string{
	"#f7fcf0", "#e0f3db", "#ccebc5", "#a8ddb5",
	"#7bccc4", "#4eb3d3", "#2b8cbe", "#08589e",
}

// Style computes display attributes for every node of g, in node order.
func Style(g *digraph.Graph, opts Options) []graph.StyledNode {
	ids := g.Nodes()
	values := make([]int, len(ids))
	for i, id := range ids {
		values[i] = value(g, id, opts)
	}

	lo, hi := 0, 0
	for i, v := range values {
		if i == 0 || v < lo {
			lo = v
		}
		if i == 0 || v > hi {
			hi = v
		}
	}

	out := make([]graph.StyledNode, len(ids))
	for i, id := range ids {
		idx := paletteIndex(values[i], lo, hi)
		out[i] = graph.StyledNode{
			ID:      id,
			Label:   screenName(id, opts.Store),
			Value:   values[i],
			Size:    float64(int(1) << (idx + 1)),
			Color:   Palette[idx],
			Tooltip: opts.Tweets.First(id),
		}
	}
	return out
}

// paletteIndex maps v onto the palette as (v-lo)/hi of its length.
func paletteIndex(v, lo, hi int) int {
	if hi <= 0 {
		return 0
	}
	idx := int(float64(v-lo) / float64(hi) * float64(len(Palette)-1))
	return max(0, min(idx, len(Palette)-1))
}

// value returns the data-source value for id. Followers and friends come
// from the record store when one is given and fall back to the degree in g.
func value(g *digraph.Graph, id string, opts Options) int {
	switch opts.SizeBy {
	case SizeFollowers:
		if n, ok := listLen(opts.Store, id, users.KeyFollowers); ok {
			return n
		}
		return g.InDegree(id)
	case SizeFriends:
		if n, ok := listLen(opts.Store, id, users.KeyFriends); ok {
			return n
		}
		return g.OutDegree(id)
	case SizeTweets:
		return opts.Tweets.Count(id)
	default:
		return 1
	}
}

func listLen(store *users.Store, id, key string) (int, bool) {
	if store == nil {
		return 0, false
	}
	rec, ok := store.Get(id)
	if !ok {
		return 0, true
	}
	list, err := rec.List(key)
	if err != nil {
		return 0, true
	}
	return len(list), true
}

func screenName(id string, store *users.Store) string {
	if store == nil {
		return ""
	}
	if rec, ok := store.Get(id); ok {
		return rec.ScreenName
	}
	return ""
}
