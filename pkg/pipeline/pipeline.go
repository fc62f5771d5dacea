// Package pipeline runs the follows-graph workflow end to end.
//
// This package implements the build → reduce → render pipeline used by the
// CLI. By centralizing it, every entry point threads the random state and
// the caches the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: load the user record store and construct the full graph
//     (cached by store digest and commit policy)
//  2. Reduce: keep degree outliers and a sample of their neighbors, using
//     and then persisting the stored random state
//  3. Render: produce DOT, SVG, PNG, PDF or layout JSON for the reduced graph
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, store, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    UsersPath: "users_dict.json.gz",
//	    Formats:   []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
//
// # Random State
//
// Reduce loads the state stored under Options.StateName (falling back to
// the default seed), reduces, and saves the post-run state back, so the
// next run draws a fresh sample. Set KeepState to leave the stored state
// untouched and make the run repeatable.
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/followgraph/pkg/builder"
	"github.com/matzehuels/followgraph/pkg/cache"
	"github.com/matzehuels/followgraph/pkg/digraph"
	"github.com/matzehuels/followgraph/pkg/errors"
	"github.com/matzehuels/followgraph/pkg/graph"
	"github.com/matzehuels/followgraph/pkg/reducer"
	"github.com/matzehuels/followgraph/pkg/render/nodelink"
	"github.com/matzehuels/followgraph/pkg/rngstate"
	"github.com/matzehuels/followgraph/pkg/storage"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultSampleFraction is the share of each outlier's neighbors kept.
	DefaultSampleFraction = reducer.DefaultSampleFraction

	// DefaultStdevMultiplier is the outlier threshold in standard deviations.
	DefaultStdevMultiplier = reducer.DefaultStdevMultiplier

	// DefaultPNGScale is the resolution multiplier for PNG output.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
type Options struct {
	// Build options
	UsersPath     string `json:"users_path" toml:"users"`
	Policy        string `json:"policy,omitempty" toml:"policy"`
	ProgressEvery int    `json:"progress_every,omitempty" toml:"progress_every"`
	Refresh       bool   `json:"refresh,omitempty" toml:"-"`

	// Reduce options. Zero thresholds select the defaults.
	SampleFraction  float64 `json:"sample_fraction,omitempty" toml:"sample_fraction"`
	StdevMultiplier float64 `json:"stdev_multiplier,omitempty" toml:"stdev_multiplier"`
	Neighbors       string  `json:"neighbors,omitempty" toml:"neighbors"`
	StateName       string  `json:"state_name,omitempty" toml:"state_name"`
	KeepState       bool    `json:"keep_state,omitempty" toml:"-"`

	// Render options
	TweetsPath string   `json:"tweets_path,omitempty" toml:"tweets"`
	Formats    []string `json:"formats,omitempty" toml:"formats"`
	SizeBy     string   `json:"size_by,omitempty" toml:"size_by"`
	Labels     bool     `json:"labels,omitempty" toml:"labels"`
	Engine     string   `json:"engine,omitempty" toml:"engine"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and reports.
	RunID string

	// Full is the graph built from the record store.
	Full *digraph.Graph

	// Reduced is the graph after outlier selection and sampling.
	Reduced *digraph.Graph

	// State is the random state after reduction.
	State *rngstate.State

	// GraphHash is the content hash of the reduced graph.
	GraphHash string

	// Layout contains the DOT source and node styling.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// BuildReport and ReduceReport summarize the two core stages.
	BuildReport  builder.Report
	ReduceReport reducer.Report

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Users        int
	NodeCount    int
	EdgeCount    int
	ReducedNodes int
	ReducedEdges int
	BuildTime    time.Duration
	ReduceTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the full graph came from cache
	LayoutHit bool // Whether the layout came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.UsersPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "users path is required")
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForReduce(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks the build settings.
func (o *Options) ValidateForBuild() error {
	if _, err := builder.ParseCommitPolicy(o.Policy); err != nil {
		return err
	}
	o.setLogger()
	return nil
}

// SetReduceDefaults sets default values for reduction.
func (o *Options) SetReduceDefaults() {
	if o.SampleFraction == 0 {
		o.SampleFraction = DefaultSampleFraction
	}
	if o.StdevMultiplier == 0 {
		o.StdevMultiplier = DefaultStdevMultiplier
	}
	if o.StateName == "" {
		o.StateName = storage.State
	}
	o.setLogger()
}

// ValidateForReduce validates and sets defaults for reduction.
func (o *Options) ValidateForReduce() error {
	o.SetReduceDefaults()
	if err := errors.ValidateSampleFraction(o.SampleFraction); err != nil {
		return err
	}
	if err := errors.ValidateStdevMultiplier(o.StdevMultiplier); err != nil {
		return err
	}
	if _, err := reducer.ParseNeighborSource(o.Neighbors); err != nil {
		return err
	}
	return errors.ValidateName(o.StateName)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Engine == "" {
		o.Engine = nodelink.DefaultEngine
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	_, err := nodelink.ParseSizeBy(o.SizeBy)
	return err
}

// NeedsRecords reports whether the reducer reads neighbors from the record store.
func (o *Options) NeedsRecords() bool {
	return o.Neighbors == reducer.NeighborsRecords.String()
}

// NeedsRasterizer reports whether any requested format needs rsvg-convert.
func (o *Options) NeedsRasterizer() bool {
	return slices.Contains(o.Formats, FormatPNG) || slices.Contains(o.Formats, FormatPDF)
}

// BuildOptions converts to builder options. Call after validation.
func (o *Options) BuildOptions() builder.Options {
	policy, _ := builder.ParseCommitPolicy(o.Policy)
	return builder.Options{
		Policy:        policy,
		ProgressEvery: o.ProgressEvery,
		Logger:        o.Logger,
	}
}

// ReduceOptions converts to reducer options. Call after validation.
func (o *Options) ReduceOptions() reducer.Options {
	source, _ := reducer.ParseNeighborSource(o.Neighbors)
	return reducer.Options{
		SampleFraction:  o.SampleFraction,
		StdevMultiplier: o.StdevMultiplier,
		Neighbors:       source,
		Logger:          o.Logger,
	}
}

// RenderOptions converts to nodelink options. Call after validation.
func (o *Options) RenderOptions() nodelink.Options {
	sizeBy, _ := nodelink.ParseSizeBy(o.SizeBy)
	return nodelink.Options{
		SizeBy: sizeBy,
		Labels: o.Labels,
		Engine: o.Engine,
	}
}

// GraphKeyOpts returns cache key options for the build stage.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	policy, _ := builder.ParseCommitPolicy(o.Policy)
	return cache.GraphKeyOpts{Policy: policy.String()}
}

// LayoutKeyOpts returns cache key options for layout generation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		SizeBy: o.SizeBy,
		Labels: o.Labels,
		Engine: o.Engine,
	}
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
