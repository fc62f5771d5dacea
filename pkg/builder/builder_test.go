package builder

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/followgraph/pkg/digraph"
	"github.com/matzehuels/followgraph/pkg/errors"
	"github.com/matzehuels/followgraph/pkg/relation"
	"github.com/matzehuels/followgraph/pkg/users"
)

func storeOf(records ...*users.Record) *users.Store {
	s := users.NewStore()
	for _, r := range records {
		s.Add(r)
	}
	return s
}

func TestBuildEmptyStore(t *testing.T) {
	for name, s := range map[string]*users.Store{"nil": nil, "empty": users.NewStore()} {
		t.Run(name, func(t *testing.T) {
			g, _, err := Build(s, Options{})
			if !errors.Is(err, errors.ErrCodeDataUnavailable) {
				t.Errorf("Build() error = %v, want DATA_UNAVAILABLE", err)
			}
			if g != nil {
				t.Error("Build() should not return a graph for an empty store")
			}
		})
	}
}

func TestBuildConsistentRecords(t *testing.T) {
	s := storeOf(
		users.NewRecord("1", []string{"2", "3"}, []string{"2"}),
		users.NewRecord("2", []string{"1"}, []string{"1"}),
		users.NewRecord("3", nil, []string{"1"}),
	)

	g, report, err := Build(s, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []digraph.Edge{{From: "2", To: "1"}, {From: "3", To: "1"}, {From: "1", To: "2"}}
	if g.EdgeCount() != len(want) {
		t.Fatalf("EdgeCount = %d, want %d (%v)", g.EdgeCount(), len(want), g.Edges())
	}
	for _, e := range want {
		if !g.HasEdge(e.From, e.To) {
			t.Errorf("missing edge %s->%s", e.From, e.To)
		}
	}
	if len(report.Skips) != 0 {
		t.Errorf("Skips = %v, want none", report.Skips)
	}
	if report.Users != 3 || report.Edges != 3 {
		t.Errorf("report = %+v", report)
	}
}

func TestBuildEveryStoreIDIsNode(t *testing.T) {
	s := storeOf(
		users.NewRecord("lonely", nil, nil),
		users.NewRecord("1", []string{"outsider"}, nil),
	)

	g, _, err := Build(s, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, id := range s.IDs() {
		if !g.HasNode(id) {
			t.Errorf("store ID %s missing from graph", id)
		}
	}
	if g.Nodes()[0] != "lonely" {
		t.Errorf("first node = %s, want store order", g.Nodes()[0])
	}
}

func TestBuildMismatchKeepsExistingEdges(t *testing.T) {
	s := storeOf(
		users.NewRecord("1", []string{"2"}, nil),
		// 2 lists two friends but already has out-degree 1 from record 1.
		users.NewRecord("2", nil, []string{"1", "3"}),
	)

	g, report, err := Build(s, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if !g.HasEdge("2", "1") {
		t.Error("previously committed edge 2->1 must survive a mismatch")
	}
	if g.HasEdge("2", "3") {
		t.Error("mismatched direction must not stage new edges")
	}

	if len(report.Skips) != 1 {
		t.Fatalf("Skips = %v, want one", report.Skips)
	}
	want := Skip{User: "2", Direction: relation.Out, Observed: 1, Expected: 2}
	if report.Skips[0] != want {
		t.Errorf("Skip = %+v, want %+v", report.Skips[0], want)
	}
}

func TestBuildCommitPolicy(t *testing.T) {
	s := storeOf(
		users.NewRecord("1", []string{"9"}, nil), // followers only
		users.NewRecord("2", []string{"1"}, []string{"1"}),
	)

	tests := []struct {
		policy      CommitPolicy
		wantEdges   []digraph.Edge
		missing     []digraph.Edge
		uncommitted int
	}{
		{
			policy:    CommitEither,
			wantEdges: []digraph.Edge{{From: "9", To: "1"}, {From: "1", To: "2"}, {From: "2", To: "1"}},
		},
		{
			policy:      CommitBoth,
			wantEdges:   []digraph.Edge{{From: "1", To: "2"}, {From: "2", To: "1"}},
			missing:     []digraph.Edge{{From: "9", To: "1"}},
			uncommitted: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			g, report, err := Build(s, Options{Policy: tt.policy})
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if g.EdgeCount() != len(tt.wantEdges) {
				t.Errorf("EdgeCount = %d, want %d (%v)", g.EdgeCount(), len(tt.wantEdges), g.Edges())
			}
			for _, e := range tt.wantEdges {
				if !g.HasEdge(e.From, e.To) {
					t.Errorf("missing edge %s->%s", e.From, e.To)
				}
			}
			for _, e := range tt.missing {
				if g.HasEdge(e.From, e.To) {
					t.Errorf("unexpected edge %s->%s", e.From, e.To)
				}
			}
			if report.Uncommitted != tt.uncommitted {
				t.Errorf("Uncommitted = %d, want %d", report.Uncommitted, tt.uncommitted)
			}
		})
	}
}

func TestBuildMalformedRecord(t *testing.T) {
	bad := users.NewRecord("1", nil, []string{"2"})
	bad.MarkMalformed(users.KeyFollowers, fmt.Errorf("wrong type"))

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})

	g, report, err := Build(storeOf(bad), Options{Logger: logger})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.Malformed != 1 {
		t.Errorf("Malformed = %d, want 1", report.Malformed)
	}
	if !g.HasEdge("1", "2") {
		t.Error("well-formed direction should still be committed")
	}
	if !strings.Contains(buf.String(), "MALFORMED_RECORD") {
		t.Errorf("expected malformed warning in log, got %q", buf.String())
	}
}

func TestBuildDeclaredCountMismatchIsNotFatal(t *testing.T) {
	r := users.NewRecord("1", []string{"2"}, nil)
	r.FollowersCount = 10

	g, report, err := Build(storeOf(r), Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.CountMismatch != 1 {
		t.Errorf("CountMismatch = %d, want 1", report.CountMismatch)
	}
	if !g.HasEdge("2", "1") {
		t.Error("listed follower should still produce an edge")
	}
}

func TestBuildProgress(t *testing.T) {
	s := users.NewStore()
	for i := range 250 {
		s.Add(users.NewRecord(fmt.Sprint(i), nil, nil))
	}

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})
	if _, _, err := Build(s, Options{Logger: logger}); err != nil {
		t.Fatalf("Build: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Analyzed 100 users", "Analyzed 200 users"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q", want)
		}
	}
	if strings.Contains(out, "Analyzed 250 users") {
		t.Error("progress should only be logged every 100 users")
	}
}

func TestParseCommitPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    CommitPolicy
		wantErr bool
	}{
		{"", CommitEither, false},
		{"either", CommitEither, false},
		{"BOTH", CommitBoth, false},
		{"sometimes", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseCommitPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCommitPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseCommitPolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
