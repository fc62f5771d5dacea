package reducer

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/montanaflynn/stats"

	"github.com/matzehuels/followgraph/pkg/digraph"
	"github.com/matzehuels/followgraph/pkg/errors"
	"github.com/matzehuels/followgraph/pkg/relation"
)

// significant returns the degree outliers of g across both directions,
// ordered ascending by degree and then by ID.
func significant(g *digraph.Graph, multiplier float64, report *Report) ([]Outlier, error) {
	nodes := g.Nodes()
	best := make(map[string]int)

	for _, d := range relation.All {
		degrees := make(stats.Float64Data, len(nodes))
		for i, id := range nodes {
			degrees[i] = float64(d.Degree(g, id))
		}

		mean, err := stats.Mean(degrees)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInsufficientPopulation, err, "mean %s-degree", d)
		}
		stdev, err := stats.StandardDeviationSample(degrees)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInsufficientPopulation, err, "stdev %s-degree", d)
		}

		ds := DirectionStats{Direction: d, Mean: mean, Stdev: stdev}
		for i, id := range nodes {
			if math.Abs(degrees[i]-mean) <= multiplier*stdev {
				continue
			}
			ds.Outliers++
			deg := int(degrees[i])
			if prev, ok := best[id]; !ok || deg > prev {
				best[id] = deg
			}
		}
		report.Stats = append(report.Stats, ds)
	}

	out := make([]Outlier, 0, len(best))
	for id, deg := range best {
		out = append(out, Outlier{ID: id, Degree: deg})
	}
	slices.SortFunc(out, func(a, b Outlier) int {
		if c := cmp.Compare(a.Degree, b.Degree); c != 0 {
			return c
		}
		return digraph.CompareIDs(a.ID, b.ID)
	})
	return out, nil
}

// neighborsOf returns the neighbor list of id ordered by digraph.CompareIDs.
// It reports false when the neighbors cannot be determined.
func neighborsOf(g *digraph.Graph, id string, opts Options, logger *log.Logger) ([]string, bool) {
	if opts.Neighbors != NeighborsRecords {
		return g.Neighbors(id), true
	}

	rec, ok := opts.Store.Get(id)
	if !ok {
		logger.Warn("no record for outlier, skipping", "user", id)
		return nil, false
	}

	seen := make(map[string]struct{})
	var out []string
	for _, d := range relation.All {
		list, err := rec.List(d.Key())
		if err != nil {
			logger.Warn("unexpected type for list, skipping outlier",
				"code", errors.ErrCodeMalformedRecord,
				"user", id,
				"field", d.Key())
			return nil, false
		}
		for _, n := range list {
			if _, dup := seen[n]; dup || n == id {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	digraph.SortIDs(out)
	return out, true
}

// sample returns k elements of ids chosen uniformly without replacement,
// using exactly k draws from r. ids is not modified.
func sample(r *rand.Rand, ids []string, k int) []string {
	if k <= 0 {
		return nil
	}
	pool := slices.Clone(ids)
	k = min(k, len(pool))
	for i := range k {
		j := i + r.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
