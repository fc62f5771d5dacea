package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/followgraph/pkg/builder"
	"github.com/matzehuels/followgraph/pkg/cache"
	"github.com/matzehuels/followgraph/pkg/digraph"
	"github.com/matzehuels/followgraph/pkg/graph"
	"github.com/matzehuels/followgraph/pkg/observability"
	"github.com/matzehuels/followgraph/pkg/reducer"
	"github.com/matzehuels/followgraph/pkg/render/nodelink"
	"github.com/matzehuels/followgraph/pkg/rngstate"
	"github.com/matzehuels/followgraph/pkg/storage"
	"github.com/matzehuels/followgraph/pkg/users"
)

// Cache key types reported to observability hooks.
const (
	keyTypeGraph  = "graph"
	keyTypeLayout = "layout"
)

// Runner encapsulates pipeline execution with caching and persistence.
//
// The Runner is stateless except for the cache, the store and the logger.
// It does not keep pipeline results; the random state lives in Store.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  storage.Store
	Logger *log.Logger
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// If store is nil, nothing is persisted and reductions start from the default state.
func NewRunner(c cache.Cache, keyer cache.Keyer, store storage.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  store,
		Logger: logger,
	}
}

// Inputs are the loaded data files.
type Inputs struct {
	Users  *users.Store
	Tweets users.Tweets
}

// LoadInputs reads the user record store and, when configured, the tweets.
func LoadInputs(opts Options) (*Inputs, error) {
	records, err := users.Load(opts.UsersPath)
	if err != nil {
		return nil, err
	}
	in := &Inputs{Users: records}
	if opts.TweetsPath != "" {
		if in.Tweets, err = users.LoadTweets(opts.TweetsPath); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// Execute runs the complete build → reduce → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}
	r.applyLogger(&opts)
	opts.Logger = opts.Logger.With("run", result.RunID[:8])

	in, err := LoadInputs(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.Users = in.Users.Len()

	// Stage 1: Build
	buildStart := time.Now()
	full, report, hit, err := r.BuildWithCacheInfo(ctx, in.Users, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Full = full
	result.BuildReport = report
	result.CacheInfo.BuildHit = hit
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = full.NodeCount()
	result.Stats.EdgeCount = full.EdgeCount()

	opts.Logger.Info("built graph",
		"nodes", full.NodeCount(),
		"edges", full.EdgeCount(),
		"skips", len(report.Skips),
		"cached", hit,
		"duration", result.Stats.BuildTime)

	// Stage 2: Reduce
	reduceStart := time.Now()
	reduced, state, rreport, err := r.Reduce(ctx, full, in.Users, opts)
	if err != nil {
		return nil, fmt.Errorf("reduce: %w", err)
	}
	result.Reduced = reduced
	result.State = state
	result.ReduceReport = rreport
	result.Stats.ReduceTime = time.Since(reduceStart)
	result.Stats.ReducedNodes = reduced.NodeCount()
	result.Stats.ReducedEdges = reduced.EdgeCount()

	opts.Logger.Info("reduced graph",
		"outliers", len(rreport.Outliers),
		"nodes", reduced.NodeCount(),
		"edges", reduced.EdgeCount(),
		"draws", rreport.Draws,
		"duration", result.Stats.ReduceTime)

	// Stage 3: Render
	renderStart := time.Now()
	layout, artifacts, layoutHit, err := r.RenderWithCacheInfo(ctx, reduced, in, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Layout = layout
	result.Artifacts = artifacts
	result.CacheInfo.LayoutHit = layoutHit
	result.Stats.RenderTime = time.Since(renderStart)
	if data, err := graph.Marshal(reduced); err == nil {
		result.GraphHash = cache.Hash(data)
	}

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo builds the full graph with caching and returns cache
// hit info. The graph is saved to the store as storage.FullGraph.
//
// A cache hit reports only the user count; the build report is not cached.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, records *users.Store, opts Options) (*digraph.Graph, builder.Report, bool, error) {
	var report builder.Report
	if err := opts.ValidateForBuild(); err != nil {
		return nil, report, false, err
	}
	r.applyLogger(&opts)

	var cacheKey string
	cacheable := records.Len() > 0 && records.Digest != ""
	if cacheable {
		cacheKey = r.Keyer.GraphKey(records.Digest, opts.GraphKeyOpts())
	}

	if cacheable && !opts.Refresh {
		if data, hit := r.cacheGet(ctx, keyTypeGraph, cacheKey); hit {
			if g, err := graph.Read(bytes.NewReader(data)); err == nil {
				report.Users = records.Len()
				return g, report, true, r.save(ctx, storage.FullGraph, g)
			}
		}
	}

	observability.Pipeline().OnBuildStart(ctx, records.Len())
	start := time.Now()
	g, report, err := builder.Build(records, opts.BuildOptions())
	if err != nil {
		observability.Pipeline().OnBuildComplete(ctx, 0, 0, time.Since(start), err)
		return nil, report, false, err
	}
	observability.Pipeline().OnBuildComplete(ctx, g.NodeCount(), g.EdgeCount(), time.Since(start), nil)

	if cacheable {
		if data, err := graph.Marshal(g); err == nil {
			r.cacheSet(ctx, keyTypeGraph, cacheKey, data, cache.GraphTTL)
		}
	}
	return g, report, false, r.save(ctx, storage.FullGraph, g)
}

// Build is a convenience wrapper that calls BuildWithCacheInfo and discards the cache hit info.
func (r *Runner) Build(ctx context.Context, records *users.Store, opts Options) (*digraph.Graph, builder.Report, error) {
	g, report, _, err := r.BuildWithCacheInfo(ctx, records, opts)
	return g, report, err
}

// Reduce reduces g starting from the stored random state and persists the
// reduced graph and, unless opts.KeepState is set, the post-run state.
// records is only consulted when opts.Neighbors is "records".
func (r *Runner) Reduce(ctx context.Context, g *digraph.Graph, records *users.Store, opts Options) (*digraph.Graph, *rngstate.State, reducer.Report, error) {
	if err := opts.ValidateForReduce(); err != nil {
		return nil, nil, reducer.Report{}, err
	}
	r.applyLogger(&opts)

	state, err := r.LoadState(ctx, opts.StateName)
	if err != nil {
		return nil, nil, reducer.Report{}, err
	}

	ropts := opts.ReduceOptions()
	if opts.NeedsRecords() {
		ropts.Store = records
	}

	nodes := 0
	if g != nil {
		nodes = g.NodeCount()
	}
	observability.Pipeline().OnReduceStart(ctx, nodes)
	start := time.Now()
	sub, next, report, err := reducer.Reduce(g, ropts, state)
	if err != nil {
		observability.Pipeline().OnReduceComplete(ctx, 0, 0, time.Since(start), err)
		return nil, nil, report, err
	}
	observability.Pipeline().OnReduceComplete(ctx, sub.NodeCount(), report.Draws, time.Since(start), nil)

	if err := r.save(ctx, storage.ReducedGraph, sub); err != nil {
		return nil, nil, report, err
	}
	if r.Store != nil && !opts.KeepState {
		if err := r.Store.SaveState(ctx, opts.StateName, next); err != nil {
			return nil, nil, report, err
		}
	}
	return sub, next, report, nil
}

// LoadState returns the stored random state, or the default state when
// none is stored or the runner has no store.
func (r *Runner) LoadState(ctx context.Context, name string) (*rngstate.State, error) {
	if r.Store == nil {
		return rngstate.Default(), nil
	}
	state, found, err := storage.LoadStateOrDefault(ctx, r.Store, name)
	if err != nil {
		return nil, err
	}
	if !found {
		r.Logger.Debug("no stored random state, using default seed", "name", name, "seed", rngstate.DefaultSeed)
	}
	return state, nil
}

// RenderWithCacheInfo generates the layout (cached) and artifacts for g.
// in may be nil when no record or tweet data is available for styling.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *digraph.Graph, in *Inputs, opts Options) (graph.Layout, map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return graph.Layout{}, nil, false, err
	}
	r.applyLogger(&opts)

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	layout, hit, err := r.layout(ctx, g, in, opts)
	if err != nil {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
		return graph.Layout{}, nil, false, err
	}

	artifacts, err := RenderLayout(layout, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return graph.Layout{}, nil, false, err
	}
	return layout, artifacts, hit, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *digraph.Graph, in *Inputs, opts Options) (graph.Layout, map[string][]byte, error) {
	layout, artifacts, _, err := r.RenderWithCacheInfo(ctx, g, in, opts)
	return layout, artifacts, err
}

func (r *Runner) layout(ctx context.Context, g *digraph.Graph, in *Inputs, opts Options) (graph.Layout, bool, error) {
	data, err := graph.Marshal(g)
	if err != nil {
		return graph.Layout{}, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}

	nopts := opts.RenderOptions()
	keyOpts := opts.LayoutKeyOpts()
	if in != nil {
		nopts.Store = in.Users
		nopts.Tweets = in.Tweets
		// Tweets are identified by path; the record store by content.
		if in.Users != nil {
			keyOpts.Sources = in.Users.Digest
		}
		keyOpts.Sources += "|" + opts.TweetsPath
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(data), keyOpts)

	if cached, hit := r.cacheGet(ctx, keyTypeLayout, cacheKey); hit {
		if layout, err := graph.UnmarshalLayout(cached); err == nil {
			return layout, true, nil
		}
	}

	layout := nodelink.Export(g, nopts)
	if encoded, err := graph.MarshalLayout(layout); err == nil {
		r.cacheSet(ctx, keyTypeLayout, cacheKey, encoded, cache.LayoutTTL)
	}
	return layout, false, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var firstErr error
	if r.Cache != nil {
		firstErr = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Runner) save(ctx context.Context, name string, g *digraph.Graph) error {
	if r.Store == nil {
		return nil
	}
	return r.Store.SaveGraph(ctx, name, g)
}

func (r *Runner) cacheGet(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "error", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) cacheSet(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
