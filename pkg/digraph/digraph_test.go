package digraph

import (
	"errors"
	"slices"
	"testing"
)

func TestAddNode(t *testing.T) {
	g := New()
	if err := g.AddNode("1"); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.AddNode("1"); err != nil {
		t.Errorf("re-adding a node should be a no-op, got %v", err)
	}
	if err := g.AddNode(""); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(\"\") = %v, want ErrInvalidNodeID", err)
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", g.NodeCount())
	}
}

func TestAddEdge(t *testing.T) {
	g := New()

	added, err := g.AddEdge("a", "b")
	if err != nil || !added {
		t.Fatalf("AddEdge(a, b) = %v, %v; want true, nil", added, err)
	}
	if !g.HasNode("a") || !g.HasNode("b") {
		t.Error("AddEdge should create missing endpoints")
	}

	added, _ = g.AddEdge("a", "b")
	if added {
		t.Error("duplicate edge should not be added")
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}

	added, _ = g.AddEdge("b", "a")
	if !added {
		t.Error("reverse edge is distinct and should be added")
	}

	if _, err := g.AddEdge("", "a"); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddEdge with empty ID = %v, want ErrInvalidNodeID", err)
	}
}

func TestSelfLoop(t *testing.T) {
	g := New()
	if added, _ := g.AddEdge("a", "a"); !added {
		t.Fatal("self-loops are permitted")
	}
	if g.InDegree("a") != 1 || g.OutDegree("a") != 1 {
		t.Errorf("degrees = %d/%d, want 1/1", g.InDegree("a"), g.OutDegree("a"))
	}
	if n := g.Neighbors("a"); len(n) != 0 {
		t.Errorf("Neighbors(a) = %v, want none", n)
	}
}

func TestDegrees(t *testing.T) {
	g := New()
	g.AddEdges([]Edge{{"2", "1"}, {"3", "1"}, {"1", "4"}})

	tests := []struct {
		id      string
		in, out int
	}{
		{"1", 2, 1},
		{"2", 0, 1},
		{"4", 1, 0},
		{"missing", 0, 0},
	}
	for _, tt := range tests {
		if got := g.InDegree(tt.id); got != tt.in {
			t.Errorf("InDegree(%s) = %d, want %d", tt.id, got, tt.in)
		}
		if got := g.OutDegree(tt.id); got != tt.out {
			t.Errorf("OutDegree(%s) = %d, want %d", tt.id, got, tt.out)
		}
	}
}

func TestNeighbors(t *testing.T) {
	g := New()
	g.AddEdges([]Edge{{"10", "1"}, {"9", "1"}, {"1", "9"}, {"1", "2"}})

	got := g.Neighbors("1")
	want := []string{"2", "9", "10"}
	if !slices.Equal(got, want) {
		t.Errorf("Neighbors(1) = %v, want %v", got, want)
	}
}

func TestOrderPreserved(t *testing.T) {
	g := New()
	for _, id := range []string{"c", "a", "b"} {
		g.AddNode(id)
	}
	g.AddEdge("b", "d")

	if got := g.Nodes(); !slices.Equal(got, []string{"c", "a", "b", "d"}) {
		t.Errorf("Nodes() = %v, want insertion order", got)
	}
}

func TestSubgraph(t *testing.T) {
	g := New()
	g.AddNode("iso")
	g.AddEdges([]Edge{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"a", "d"}})

	sub := g.Subgraph(map[string]struct{}{"a": {}, "b": {}, "c": {}, "zzz": {}})

	if sub.NodeCount() != 3 {
		t.Errorf("NodeCount = %d, want 3", sub.NodeCount())
	}
	if sub.HasNode("zzz") {
		t.Error("IDs not in the source graph must be ignored")
	}
	if sub.EdgeCount() != 3 {
		t.Errorf("EdgeCount = %d, want 3", sub.EdgeCount())
	}
	if sub.HasEdge("a", "d") {
		t.Error("edge to excluded node must be dropped")
	}
	if err := sub.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	// Source graph untouched
	if g.NodeCount() != 5 || g.EdgeCount() != 4 {
		t.Errorf("source graph modified: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
	sub.AddEdge("a", "zzz")
	if g.HasNode("zzz") {
		t.Error("subgraph must not alias the source graph")
	}
}

func TestClone(t *testing.T) {
	g := New()
	g.AddNode("iso")
	g.AddEdge("a", "b")

	c := g.Clone()
	c.AddEdge("b", "a")

	if g.HasEdge("b", "a") {
		t.Error("Clone shares state with original")
	}
	if !slices.Equal(c.Nodes(), g.Nodes()) {
		t.Errorf("Clone nodes = %v, want %v", c.Nodes(), g.Nodes())
	}
}

func TestCompareIDs(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"9", "10", -1},
		{"10", "9", 1},
		{"10", "10", 0},
		{"123456789012345678901234567890", "2", 1},
		{"abc", "abd", -1},
		{"10", "abc", -1},
		{"-5", "3", -1},
		{"-10", "-9", -1},
		{"-0", "0", -1},
		{"007", "7", -1},
		{"007", "8", -1},
		{"99999999999999999999", "1a", -1},
		{"1a", "9", 1},
		{"9", "-", -1},
	}
	for _, tt := range tests {
		if got := CompareIDs(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareIDs(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSortIDsIndependentOfInputOrder(t *testing.T) {
	ids := []string{"9", "10", "1a", "-3", "007", "7", "abc", "-", "0"}
	want := []string{"-3", "0", "007", "7", "9", "10", "-", "1a", "abc"}

	// Every rotation, reversed and forward, must sort to the same result.
	for i := range ids {
		for _, rev := range []bool{false, true} {
			in := append(slices.Clone(ids[i:]), ids[:i]...)
			if rev {
				slices.Reverse(in)
			}
			SortIDs(in)
			if !slices.Equal(in, want) {
				t.Errorf("SortIDs(rotation %d, reversed %v) = %v, want %v", i, rev, in, want)
			}
		}
	}

	for _, a := range ids {
		for _, b := range ids {
			if CompareIDs(a, b) != -CompareIDs(b, a) {
				t.Errorf("CompareIDs(%q, %q) is not antisymmetric", a, b)
			}
			for _, c := range ids {
				if CompareIDs(a, b) < 0 && CompareIDs(b, c) < 0 && CompareIDs(a, c) >= 0 {
					t.Errorf("CompareIDs not transitive for %q < %q < %q", a, b, c)
				}
			}
		}
	}
}
