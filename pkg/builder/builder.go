package builder

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/followgraph/pkg/digraph"
	"github.com/matzehuels/followgraph/pkg/errors"
	"github.com/matzehuels/followgraph/pkg/relation"
	"github.com/matzehuels/followgraph/pkg/users"
)

// DefaultProgressEvery is how many users are processed between progress logs.
const DefaultProgressEvery = 100

// CommitPolicy decides when a user's staged edges are added to the graph.
type CommitPolicy int

const (
	// CommitEither commits a user's staged edges when at least one direction
	// staged an edge. This is the default.
	CommitEither CommitPolicy = iota

	// CommitBoth commits only when both directions staged at least one edge,
	// dropping one-sided data. Kept for reproducing graphs built by earlier
	// versions of the tool.
	CommitBoth
)

var policyNames = map[CommitPolicy]string{
	CommitEither: "either",
	CommitBoth:   "both",
}

// String returns "either" or "both".
func (p CommitPolicy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("CommitPolicy(%d)", int(p))
}

// ParseCommitPolicy parses "either" or "both" (case-insensitive).
// The empty string selects [CommitEither].
func ParseCommitPolicy(s string) (CommitPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "either":
		return CommitEither, nil
	case "both":
		return CommitBoth, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid commit policy %q (must be one of: either, both)", s)
	}
}

// Options configures a build.
type Options struct {
	// Policy selects when staged edges are committed.
	Policy CommitPolicy

	// ProgressEvery sets how often progress is logged. Zero selects
	// DefaultProgressEvery; a negative value disables progress logs.
	ProgressEvery int

	// Logger receives progress and per-user warnings. Nil discards them.
	Logger *log.Logger
}

// Skip records one CONSISTENCY_SKIP: a (user, direction) pair whose degree
// in the graph disagreed with the record's list length.
type Skip struct {
	User      string
	Direction relation.Direction
	Observed  int
	Expected  int
}

// Report summarizes a build.
type Report struct {
	Users          int    // users processed
	Edges          int    // edges committed
	Skips          []Skip // consistency skips, in processing order
	Malformed      int    // malformed list fields encountered
	Uncommitted    int    // users whose staged edges were dropped by the policy
	CountMismatch  int    // lists whose length differs from the declared count
	CommittedUsers int    // users that committed at least one edge
}

// Build constructs the follows graph from store.
//
// It returns a DATA_UNAVAILABLE error when store is nil or empty.
func Build(store *users.Store, opts Options) (*digraph.Graph, Report, error) {
	var report Report
	if store.Len() == 0 {
		return nil, report, errors.New(errors.ErrCodeDataUnavailable, "user record store is empty")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	every := opts.ProgressEvery
	if every == 0 {
		every = DefaultProgressEvery
	}

	g := digraph.New()
	for _, id := range store.IDs() {
		_ = g.AddNode(id)
	}

	b := &build{g: g, logger: logger, report: &report}
	var err error
	store.Each(func(rec *users.Record) bool {
		if err = b.user(rec, opts.Policy); err != nil {
			return false
		}
		report.Users++
		if every > 0 && report.Users%every == 0 {
			logger.Infof("Analyzed %d users", report.Users)
		}
		return true
	})
	if err != nil {
		return nil, report, err
	}

	logger.Debug("built graph",
		"users", report.Users,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"skips", len(report.Skips),
		"malformed", report.Malformed)
	return g, report, nil
}

type build struct {
	g      *digraph.Graph
	logger *log.Logger
	report *Report
}

// user stages and commits one user's edges.
func (b *build) user(rec *users.Record, policy CommitPolicy) error {
	var staged [len(relation.All)][]digraph.Edge

	for i, d := range relation.All {
		observed, expected, list := b.bounds(rec, d)
		switch {
		case observed == 0:
			for _, other := range list {
				staged[i] = append(staged[i], d.Edge(rec.ID, other))
			}
		case observed != expected:
			b.report.Skips = append(b.report.Skips, Skip{
				User:      rec.ID,
				Direction: d,
				Observed:  observed,
				Expected:  expected,
			})
			b.logger.Warn("degree mismatch, skipping",
				"code", errors.ErrCodeConsistencySkip,
				"user", rec.ID,
				"direction", d,
				"observed", observed,
				"expected", expected)
		}
	}

	if !policy.commits(staged[:]) {
		if len(staged[0])+len(staged[1]) > 0 {
			b.report.Uncommitted++
			b.logger.Debug("staged edges dropped by commit policy",
				"user", rec.ID, "in", len(staged[0]), "out", len(staged[1]), "policy", policy)
		}
		return nil
	}

	added := 0
	for _, es := range staged {
		n, err := b.g.AddEdges(es)
		added += n
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "commit edges for user %s", rec.ID)
		}
	}
	b.report.Edges += added
	b.report.CommittedUsers++
	return nil
}

// bounds returns the observed degree, the expected degree and the listed
// identifiers for one direction. A malformed list counts as empty.
func (b *build) bounds(rec *users.Record, d relation.Direction) (observed, expected int, list []string) {
	observed = d.Degree(b.g, rec.ID)

	list, err := rec.List(d.Key())
	if err != nil {
		b.report.Malformed++
		b.logger.Warn("unexpected type for list, treating as empty",
			"code", errors.ErrCodeMalformedRecord,
			"user", rec.ID,
			"field", d.Key())
		return observed, 0, nil
	}

	if declared, err := rec.Declared(d.Key()); err == nil && declared != len(list) {
		b.report.CountMismatch++
		b.logger.Debug("list length differs from declared count",
			"user", rec.ID, "field", d.Key(), "listed", len(list), "declared", declared)
	}
	return observed, len(list), list
}

// commits reports whether staged edges should be added under the policy.
func (p CommitPolicy) commits(staged [][]digraph.Edge) bool {
	nonEmpty := 0
	for _, es := range staged {
		if len(es) > 0 {
			nonEmpty++
		}
	}
	if p == CommitBoth {
		return nonEmpty == len(staged)
	}
	return nonEmpty > 0
}
