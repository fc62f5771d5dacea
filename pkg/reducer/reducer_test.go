package reducer

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/matzehuels/followgraph/pkg/digraph"
	"github.com/matzehuels/followgraph/pkg/errors"
	"github.com/matzehuels/followgraph/pkg/graph"
	"github.com/matzehuels/followgraph/pkg/rngstate"
	"github.com/matzehuels/followgraph/pkg/storage"
	"github.com/matzehuels/followgraph/pkg/users"
)

// hub returns a graph in which n followers f0..f(n-1) follow hub and each
// follower also follows the next one, so every follower has in-degree 1.
func hub(id string, n int) *digraph.Graph {
	g := digraph.New()
	_ = g.AddNode(id)
	for i := range n {
		f := fmt.Sprintf("f%d", i)
		_, _ = g.AddEdge(f, id)
		_, _ = g.AddEdge(f, fmt.Sprintf("f%d", (i+1)%n))
	}
	return g
}

func opts(fraction, multiplier float64) Options {
	return Options{SampleFraction: fraction, StdevMultiplier: multiplier}
}

func TestReduceInsufficientPopulation(t *testing.T) {
	single := digraph.New()
	_ = single.AddNode("only")

	for name, g := range map[string]*digraph.Graph{"nil": nil, "empty": digraph.New(), "single": single} {
		t.Run(name, func(t *testing.T) {
			sub, state, _, err := Reduce(g, DefaultOptions(), nil)
			if !errors.Is(err, errors.ErrCodeInsufficientPopulation) {
				t.Errorf("Reduce() error = %v, want INSUFFICIENT_POPULATION", err)
			}
			if sub != nil || state != nil {
				t.Error("Reduce() should return no graph and no state on error")
			}
		})
	}
}

func TestReduceInvalidOptions(t *testing.T) {
	g := hub("x", 5)
	tests := []struct {
		name string
		opts Options
	}{
		{"negative fraction", opts(-0.1, 1)},
		{"fraction above one", opts(1.5, 1)},
		{"zero multiplier", opts(0.5, 0)},
		{"records without store", Options{SampleFraction: 1, StdevMultiplier: 1, Neighbors: NeighborsRecords}},
		{"unknown source", Options{SampleFraction: 1, StdevMultiplier: 1, Neighbors: NeighborSource(9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, err := Reduce(g, tt.opts, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Reduce() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestReduceInDegreeOutlierSelected(t *testing.T) {
	g := hub("x", 50)

	sub, _, report, err := Reduce(g, opts(1, 1), nil)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if !sub.HasNode("x") {
		t.Fatal("hub with in-degree 50 should be kept")
	}
	if len(report.Outliers) != 1 || report.Outliers[0] != (Outlier{ID: "x", Degree: 50}) {
		t.Errorf("Outliers = %v, want [{x 50}]", report.Outliers)
	}
	if sub.NodeCount() != 51 {
		t.Errorf("NodeCount = %d, want every neighbor of x", sub.NodeCount())
	}
	if len(report.Stats) != 2 {
		t.Errorf("Stats = %v, want one entry per direction", report.Stats)
	}
}

func TestReduceFullFractionConsumesNoDraws(t *testing.T) {
	g := hub("x", 50)
	state := rngstate.New(11)

	sub, after, report, err := Reduce(g, opts(1, 1), state)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if report.Draws != 0 {
		t.Errorf("Draws = %d, want 0", report.Draws)
	}
	if !after.Equal(state) {
		t.Error("state should be unchanged when nothing is sampled")
	}
	for _, n := range g.Neighbors("x") {
		if !sub.HasNode(n) {
			t.Errorf("neighbor %s missing", n)
		}
	}
}

func TestReduceIsSubgraph(t *testing.T) {
	g := hub("x", 120)
	_, _ = g.AddEdge("x", "f3")

	sub, _, _, err := Reduce(g, opts(0.25, 1), rngstate.New(1))
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	for _, id := range sub.Nodes() {
		if !g.HasNode(id) {
			t.Errorf("node %s not in input graph", id)
		}
	}
	for _, e := range sub.Edges() {
		if !g.HasEdge(e.From, e.To) {
			t.Errorf("edge %s->%s not in input graph", e.From, e.To)
		}
	}
	if err := sub.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	// Induced: every input edge between kept nodes is present.
	for _, e := range g.Edges() {
		if sub.HasNode(e.From) && sub.HasNode(e.To) && !sub.HasEdge(e.From, e.To) {
			t.Errorf("edge %s->%s dropped between kept nodes", e.From, e.To)
		}
	}
}

func TestReduceDeterministic(t *testing.T) {
	g := hub("x", 200)
	state := rngstate.New(99)

	sub1, after1, r1, err := Reduce(g, opts(0.1, 1), state)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	sub2, after2, r2, err := Reduce(g, opts(0.1, 1), state)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}

	if !slices.Equal(sub1.Nodes(), sub2.Nodes()) || !slices.Equal(sub1.Edges(), sub2.Edges()) {
		t.Error("same input and state should give the same graph")
	}
	if !after1.Equal(after2) {
		t.Error("same input and state should give the same post-run state")
	}
	if r1.Draws != 20 || r2.Draws != 20 {
		t.Errorf("Draws = %d, %d, want 20", r1.Draws, r2.Draws)
	}
	if !state.Equal(rngstate.New(99)) {
		t.Error("input state must not be advanced")
	}
}

// mixedHub returns a graph in which followers "9", "10" and "1a" follow
// "hub", with 20 isolated nodes, adding the followers in the given order.
func mixedHub(followers []string) *digraph.Graph {
	g := digraph.New()
	_ = g.AddNode("hub")
	for i := range 20 {
		_ = g.AddNode(fmt.Sprintf("iso%d", i))
	}
	for _, f := range followers {
		_, _ = g.AddEdge(f, "hub")
	}
	return g
}

func TestReduceIndependentOfInsertionOrder(t *testing.T) {
	orders := [][]string{
		{"9", "10", "1a"},
		{"10", "1a", "9"},
		{"1a", "9", "10"},
		{"1a", "10", "9"},
	}

	var want []byte
	for _, order := range orders {
		sub, _, report, err := Reduce(mixedHub(order), opts(0.34, 2), rngstate.New(7))
		if err != nil {
			t.Fatalf("Reduce(%v): %v", order, err)
		}
		if report.Draws != 1 || sub.NodeCount() != 2 {
			t.Fatalf("Reduce(%v) kept %v with %d draws, want hub plus one follower", order, sub.Nodes(), report.Draws)
		}
		data, err := graph.Marshal(sub)
		if err != nil {
			t.Fatal(err)
		}
		if want == nil {
			want = data
			continue
		}
		if !bytes.Equal(data, want) {
			t.Errorf("insertion order %v selected %v, want the same as %v:\n%s\n%s", order, sub.Nodes(), orders[0], data, want)
		}
	}
}

func TestReduceStoredGraphMatchesBuilt(t *testing.T) {
	ctx := context.Background()
	built := mixedHub([]string{"1a", "9", "10"})

	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SaveGraph(ctx, storage.FullGraph, built); err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}
	loaded, err := store.LoadGraph(ctx, storage.FullGraph)
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}

	var out [2][]byte
	for i, g := range []*digraph.Graph{built, loaded} {
		sub, _, _, err := Reduce(g, opts(0.34, 2), rngstate.New(7))
		if err != nil {
			t.Fatalf("Reduce: %v", err)
		}
		if out[i], err = graph.Marshal(sub); err != nil {
			t.Fatal(err)
		}
	}
	if !bytes.Equal(out[0], out[1]) {
		t.Errorf("reducing the stored graph differs from the built one:\n%s\n%s", out[0], out[1])
	}
}

func TestReduceThreadedStateDiffers(t *testing.T) {
	g := hub("x", 200)

	first, state, _, err := Reduce(g, opts(0.1, 1), rngstate.New(5))
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	second, _, _, err := Reduce(g, opts(0.1, 1), state)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if slices.Equal(first.Nodes(), second.Nodes()) {
		t.Error("threading the post-run state should select different neighbors")
	}
}

func TestReduceEmptySampleSkipsNode(t *testing.T) {
	g := hub("x", 50)

	sub, after, report, err := Reduce(g, opts(0.01, 1), rngstate.New(2))
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if sub.NodeCount() != 0 {
		t.Errorf("NodeCount = %d, want 0", sub.NodeCount())
	}
	if !slices.Equal(report.Skipped, []string{"x"}) {
		t.Errorf("Skipped = %v, want [x]", report.Skipped)
	}
	if !after.Equal(rngstate.New(2)) {
		t.Error("a zero-size sample should not consume draws")
	}
}

func TestReduceNoOutliers(t *testing.T) {
	g := digraph.New()
	_, _ = g.AddEdge("a", "b")
	_, _ = g.AddEdge("b", "a")

	sub, _, report, err := Reduce(g, opts(1, 1), nil)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if sub.NodeCount() != 0 || len(report.Outliers) != 0 {
		t.Errorf("uniform graph should have no outliers, got %v", report.Outliers)
	}
}

func TestReduceOutlierOrder(t *testing.T) {
	g := digraph.New()
	for i := range 300 {
		_, _ = g.AddEdge(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", (i+1)%300))
	}
	for i := range 40 {
		if i < 30 {
			_, _ = g.AddEdge(fmt.Sprintf("n%d", i), "a")
		}
		_, _ = g.AddEdge(fmt.Sprintf("n%d", i+100), "b")
	}

	_, _, report, err := Reduce(g, opts(1, 3), nil)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}

	idx := func(id string) int {
		return slices.IndexFunc(report.Outliers, func(o Outlier) bool { return o.ID == id })
	}
	ia, ib := idx("a"), idx("b")
	if ia < 0 || ib < 0 {
		t.Fatalf("Outliers = %v, want a and b", report.Outliers)
	}
	if ia > ib {
		t.Errorf("a (degree 30) should be processed before b (degree 40): %v", report.Outliers)
	}
	for i := 1; i < len(report.Outliers); i++ {
		if report.Outliers[i-1].Degree > report.Outliers[i].Degree {
			t.Errorf("Outliers not ascending by degree: %v", report.Outliers)
		}
	}
}

func TestReduceRecordNeighbors(t *testing.T) {
	g := hub("x", 50)
	_ = g.AddNode("y")

	followers := make([]string, 0, 50)
	for i := range 50 {
		followers = append(followers, fmt.Sprintf("f%d", i))
	}
	store := users.NewStore()
	store.Add(users.NewRecord("x", followers[:10], []string{"y", "not-in-graph"}))

	o := Options{SampleFraction: 1, StdevMultiplier: 1, Neighbors: NeighborsRecords, Store: store}
	sub, _, _, err := Reduce(g, o, nil)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if sub.NodeCount() != 12 {
		t.Errorf("NodeCount = %d, want x + 10 followers + y (%v)", sub.NodeCount(), sub.Nodes())
	}
	if sub.HasNode("not-in-graph") {
		t.Error("identifiers absent from the graph must not be added")
	}
}

func TestReduceRecordNeighborsMalformed(t *testing.T) {
	g := hub("x", 50)
	rec := users.NewRecord("x", nil, nil)
	rec.MarkMalformed(users.KeyFriends, fmt.Errorf("not a list"))
	store := users.NewStore()
	store.Add(rec)

	o := Options{SampleFraction: 1, StdevMultiplier: 1, Neighbors: NeighborsRecords, Store: store}
	sub, _, report, err := Reduce(g, o, nil)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if sub.NodeCount() != 0 || !slices.Equal(report.Skipped, []string{"x"}) {
		t.Errorf("malformed outlier should be skipped, got nodes %v skipped %v", sub.Nodes(), report.Skipped)
	}
}

func TestSample(t *testing.T) {
	ids := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	orig := slices.Clone(ids)
	state := rngstate.New(4)

	got := sample(state.Rand(), ids, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	seen := map[string]bool{}
	for _, id := range got {
		if seen[id] || !slices.Contains(orig, id) {
			t.Errorf("invalid sample %v", got)
		}
		seen[id] = true
	}
	if !slices.Equal(ids, orig) {
		t.Error("sample must not reorder its input")
	}
	if got := sample(state.Rand(), ids, 0); got != nil {
		t.Errorf("sample(k=0) = %v, want nil", got)
	}
}

func TestParseNeighborSource(t *testing.T) {
	for in, want := range map[string]NeighborSource{"": NeighborsGraph, "graph": NeighborsGraph, "records": NeighborsRecords} {
		got, err := ParseNeighborSource(in)
		if err != nil || got != want {
			t.Errorf("ParseNeighborSource(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseNeighborSource("edges"); err == nil {
		t.Error("expected error for unknown source")
	}
}
