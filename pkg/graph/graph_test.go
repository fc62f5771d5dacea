package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/followgraph/pkg/digraph"
)

func build(edges ...[2]string) *digraph.Graph {
	g := digraph.New()
	for _, e := range edges {
		_, _ = g.AddEdge(e[0], e[1])
	}
	return g
}

func TestMarshal(t *testing.T) {
	tests := []struct {
		name      string
		build     func() *digraph.Graph
		wantNodes []string
		wantLinks int
	}{
		{
			name:      "Empty",
			build:     digraph.New,
			wantNodes: []string{},
		},
		{
			name: "IsolatedNodes",
			build: func() *digraph.Graph {
				g := digraph.New()
				_ = g.AddNode("b")
				_ = g.AddNode("a")
				return g
			},
			wantNodes: []string{"a", "b"},
		},
		{
			name: "NumericOrder",
			build: func() *digraph.Graph {
				return build([2]string{"10", "9"}, [2]string{"100", "9"})
			},
			wantNodes: []string{"9", "10", "100"},
			wantLinks: 2,
		},
		{
			name: "SelfLoop",
			build: func() *digraph.Graph {
				return build([2]string{"1", "1"})
			},
			wantNodes: []string{"1"},
			wantLinks: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.build())
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			var got Graph
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !got.Directed || got.Multigraph {
				t.Errorf("directed=%v multigraph=%v", got.Directed, got.Multigraph)
			}
			ids := make([]string, 0, len(got.Nodes))
			for _, n := range got.Nodes {
				ids = append(ids, n.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.wantNodes, ",") {
				t.Errorf("nodes = %v, want %v", ids, tt.wantNodes)
			}
			if len(got.Links) != tt.wantLinks {
				t.Errorf("links = %d, want %d", len(got.Links), tt.wantLinks)
			}
		})
	}
}

func TestMarshalFieldNames(t *testing.T) {
	data, err := Marshal(build([2]string{"2", "1"}))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, want := range []string{`"directed": true`, `"nodes"`, `"links"`, `"source": "2"`, `"target": "1"`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("output missing %s:\n%s", want, data)
		}
	}
}

func TestRoundTripIsExact(t *testing.T) {
	g := build([2]string{"3", "1"}, [2]string{"1", "2"}, [2]string{"2", "3"}, [2]string{"x", "1"})
	_ = g.AddNode("isolated")

	first, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Read(bytes.NewReader(first))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	second, err := Marshal(back)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("round trip changed output:\n%s\n---\n%s", first, second)
	}
	if back.NodeCount() != g.NodeCount() || back.EdgeCount() != g.EdgeCount() {
		t.Errorf("round trip changed size: %d/%d", back.NodeCount(), back.EdgeCount())
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	g := build([2]string{"a", "b"})

	if err := WriteFile(g, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !back.HasEdge("a", "b") {
		t.Error("edge a->b lost")
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestToGraphInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   Graph
	}{
		{"Undirected", Graph{Directed: false}},
		{"Multigraph", Graph{Directed: true, Multigraph: true}},
		{"DanglingLink", Graph{Directed: true, Nodes: []Node{{ID: "a"}}, Links: []Link{{Source: "a", Target: "b"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ToGraph(tt.in); !errors.Is(err, ErrInvalidGraph) {
				t.Errorf("ToGraph() error = %v, want ErrInvalidGraph", err)
			}
		})
	}
}

func TestToGraphEmptyID(t *testing.T) {
	in := Graph{Directed: true, Nodes: []Node{{ID: ""}}}
	if _, err := ToGraph(in); !errors.Is(err, digraph.ErrInvalidNodeID) {
		t.Errorf("ToGraph() error = %v, want ErrInvalidNodeID", err)
	}
}

func TestReadInvalidJSON(t *testing.T) {
	if _, err := Read(strings.NewReader("{")); err == nil {
		t.Error("expected decode error")
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	in := Layout{
		Engine: "sfdp",
		SizeBy: "followers",
		DOT:    "digraph G {}",
		Nodes:  []StyledNode{{ID: "1", Label: "alice", Value: 3, Size: 4, Color: "#f7fcf0"}},
	}
	if err := WriteLayoutFile(in, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	out, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if out.DOT != in.DOT || out.Engine != in.Engine || len(out.Nodes) != 1 || out.Nodes[0] != in.Nodes[0] {
		t.Errorf("ReadLayoutFile() = %+v, want %+v", out, in)
	}
	if out.Nodes[0].DisplayLabel() != "alice" {
		t.Errorf("DisplayLabel = %s", out.Nodes[0].DisplayLabel())
	}
}

func TestUnmarshalLayoutRequiresDOT(t *testing.T) {
	if _, err := UnmarshalLayout([]byte(`{"engine":"sfdp"}`)); err == nil {
		t.Error("expected error for layout without DOT")
	}
}
