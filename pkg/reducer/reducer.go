package reducer

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/followgraph/pkg/digraph"
	"github.com/matzehuels/followgraph/pkg/errors"
	"github.com/matzehuels/followgraph/pkg/relation"
	"github.com/matzehuels/followgraph/pkg/rngstate"
	"github.com/matzehuels/followgraph/pkg/users"
)

// Defaults match the thresholds the tool has always used.
const (
	DefaultStdevMultiplier = 4.0
	DefaultSampleFraction  = 0.0001
)

// NeighborSource selects where an outlier's neighbors come from.
type NeighborSource int

const (
	// NeighborsGraph uses the union of predecessors and successors in the
	// graph being reduced.
	NeighborsGraph NeighborSource = iota

	// NeighborsRecords uses the union of the followers and friends lists in
	// the user record store. Identifiers absent from the graph are dropped
	// by the induced subgraph.
	NeighborsRecords
)

// String returns "graph" or "records".
func (s NeighborSource) String() string {
	switch s {
	case NeighborsGraph:
		return "graph"
	case NeighborsRecords:
		return "records"
	default:
		return "unknown"
	}
}

// ParseNeighborSource parses "graph" or "records". The empty string
// selects [NeighborsGraph].
func ParseNeighborSource(s string) (NeighborSource, error) {
	switch s {
	case "", "graph":
		return NeighborsGraph, nil
	case "records":
		return NeighborsRecords, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid neighbor source %q (must be one of: graph, records)", s)
	}
}

// Options configures a reduction.
type Options struct {
	// SampleFraction is the share of each outlier's neighbors to keep, in [0, 1].
	SampleFraction float64

	// StdevMultiplier is the outlier threshold in standard deviations. Must be > 0.
	StdevMultiplier float64

	// Neighbors selects the neighbor source.
	Neighbors NeighborSource

	// Store is required when Neighbors is NeighborsRecords.
	Store *users.Store

	// Logger receives per-node warnings. Nil discards them.
	Logger *log.Logger
}

// DefaultOptions returns options with the default thresholds.
func DefaultOptions() Options {
	return Options{
		SampleFraction:  DefaultSampleFraction,
		StdevMultiplier: DefaultStdevMultiplier,
	}
}

// Validate checks the thresholds and the neighbor source.
func (o Options) Validate() error {
	if err := errors.ValidateSampleFraction(o.SampleFraction); err != nil {
		return err
	}
	if err := errors.ValidateStdevMultiplier(o.StdevMultiplier); err != nil {
		return err
	}
	switch o.Neighbors {
	case NeighborsGraph:
	case NeighborsRecords:
		if o.Store == nil {
			return errors.New(errors.ErrCodeInvalidInput, "neighbor source %q requires a user record store", o.Neighbors)
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid neighbor source %d", int(o.Neighbors))
	}
	return nil
}

// DirectionStats is the degree distribution summary for one direction.
type DirectionStats struct {
	Direction relation.Direction
	Mean      float64
	Stdev     float64
	Outliers  int
}

// Outlier is a significant node and the degree it was ordered by.
type Outlier struct {
	ID     string
	Degree int
}

// Report summarizes a reduction.
type Report struct {
	Stats    []DirectionStats // one entry per direction, in relation.All order
	Outliers []Outlier        // in processing order
	Skipped  []string         // outliers that contributed nothing
	Draws    int              // random draws consumed
}

// Reduce returns the subgraph of g induced by its degree outliers and a
// sample of their neighbors, together with the random state after all
// draws. A nil state selects [rngstate.Default]. The input state and g are
// never modified.
//
// It returns an INSUFFICIENT_POPULATION error when g has fewer than two
// nodes and an INVALID_INPUT error for invalid options.
func Reduce(g *digraph.Graph, opts Options, state *rngstate.State) (*digraph.Graph, *rngstate.State, Report, error) {
	var report Report
	if err := opts.Validate(); err != nil {
		return nil, nil, report, err
	}
	if g == nil || g.NodeCount() < 2 {
		n := 0
		if g != nil {
			n = g.NodeCount()
		}
		return nil, nil, report, errors.New(errors.ErrCodeInsufficientPopulation,
			"degree statistics need at least 2 nodes, graph has %d", n)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if state == nil {
		state = rngstate.Default()
	}
	state = state.Clone()

	outliers, err := significant(g, opts.StdevMultiplier, &report)
	if err != nil {
		return nil, nil, report, err
	}
	report.Outliers = outliers

	r := state.Rand()
	keep := make(map[string]struct{})
	for _, o := range outliers {
		neighbors, ok := neighborsOf(g, o.ID, opts, logger)
		if !ok {
			report.Skipped = append(report.Skipped, o.ID)
			continue
		}
		if opts.SampleFraction < 1 && len(neighbors) > 0 {
			k := int(math.Floor(float64(len(neighbors)) * opts.SampleFraction))
			neighbors = sample(r, neighbors, k)
			report.Draws += k
		}
		if len(neighbors) == 0 {
			report.Skipped = append(report.Skipped, o.ID)
			continue
		}
		keep[o.ID] = struct{}{}
		for _, id := range neighbors {
			keep[id] = struct{}{}
		}
	}

	sub := g.Subgraph(keep)
	logger.Debug("reduced graph",
		"outliers", len(outliers),
		"skipped", len(report.Skipped),
		"nodes", sub.NodeCount(),
		"edges", sub.EdgeCount(),
		"draws", report.Draws)
	return sub, state, report, nil
}
