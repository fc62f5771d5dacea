package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/followgraph/pkg/pipeline"
)

// optionFlags binds pipeline options to flags. Only flags the user set
// override the config file; see [CLI.options].
type optionFlags struct {
	opts  pipeline.Options
	apply []func(cmd *cobra.Command, dst *pipeline.Options)
}

func (f *optionFlags) bind(name string, set func(dst, src *pipeline.Options)) {
	f.apply = append(f.apply, func(cmd *cobra.Command, dst *pipeline.Options) {
		if cmd.Flags().Changed(name) {
			set(dst, &f.opts)
		}
	})
}

func (f *optionFlags) addBuild(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.opts.Policy, "policy", "", "commit policy: either (default), both")
	fs.IntVar(&f.opts.ProgressEvery, "progress-every", 0, "log progress every N users (negative disables)")
	fs.BoolVar(&f.opts.Refresh, "refresh", false, "rebuild even when the graph is cached")
	f.bind("policy", func(dst, src *pipeline.Options) { dst.Policy = src.Policy })
	f.bind("progress-every", func(dst, src *pipeline.Options) { dst.ProgressEvery = src.ProgressEvery })
	f.bind("refresh", func(dst, src *pipeline.Options) { dst.Refresh = src.Refresh })
}

func (f *optionFlags) addReduce(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.opts.SampleFraction, "fraction", 0, "share of each outlier's neighbors to keep (default 0.0001)")
	fs.Float64Var(&f.opts.StdevMultiplier, "stdev", 0, "outlier threshold in standard deviations (default 4)")
	fs.StringVar(&f.opts.Neighbors, "neighbors", "", "neighbor source: graph (default), records")
	fs.StringVar(&f.opts.StateName, "state", "", "name of the stored random state")
	fs.BoolVar(&f.opts.KeepState, "keep-state", false, "do not advance the stored random state")
	f.bind("fraction", func(dst, src *pipeline.Options) { dst.SampleFraction = src.SampleFraction })
	f.bind("stdev", func(dst, src *pipeline.Options) { dst.StdevMultiplier = src.StdevMultiplier })
	f.bind("neighbors", func(dst, src *pipeline.Options) { dst.Neighbors = src.Neighbors })
	f.bind("state", func(dst, src *pipeline.Options) { dst.StateName = src.StateName })
	f.bind("keep-state", func(dst, src *pipeline.Options) { dst.KeepState = src.KeepState })
}

func (f *optionFlags) addRender(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringSliceVarP(&f.opts.Formats, "format", "f", nil, "output format(s): svg (default), png, pdf, json, dot")
	fs.StringVar(&f.opts.SizeBy, "size-by", "", "scale nodes by: none (default), followers, friends, tweets")
	fs.BoolVar(&f.opts.Labels, "labels", false, "label nodes with screen names")
	fs.StringVar(&f.opts.Engine, "engine", "", "Graphviz layout engine (default sfdp)")
	fs.StringVar(&f.opts.TweetsPath, "tweets", "", "tweets file for tooltips and --size-by tweets")
	f.bind("format", func(dst, src *pipeline.Options) { dst.Formats = src.Formats })
	f.bind("size-by", func(dst, src *pipeline.Options) { dst.SizeBy = src.SizeBy })
	f.bind("labels", func(dst, src *pipeline.Options) { dst.Labels = src.Labels })
	f.bind("engine", func(dst, src *pipeline.Options) { dst.Engine = src.Engine })
	f.bind("tweets", func(dst, src *pipeline.Options) { dst.TweetsPath = src.TweetsPath })
}

// addUsers registers --users for commands that take the record store optionally.
func (f *optionFlags) addUsers(cmd *cobra.Command, usage string) {
	cmd.Flags().StringVar(&f.opts.UsersPath, "users", "", usage)
	f.bind("users", func(dst, src *pipeline.Options) { dst.UsersPath = src.UsersPath })
}

// options returns the configured pipeline options with the flags the user
// set applied on top.
func (c *CLI) options(cmd *cobra.Command, f *optionFlags) pipeline.Options {
	opts := c.config.Pipeline
	opts.Formats = append([]string(nil), opts.Formats...)
	for _, apply := range f.apply {
		apply(cmd, &opts)
	}
	opts.Logger = c.Logger
	return opts
}
