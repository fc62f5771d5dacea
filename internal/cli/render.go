package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/followgraph/pkg/pipeline"
	"github.com/matzehuels/followgraph/pkg/render"
	"github.com/matzehuels/followgraph/pkg/storage"
	"github.com/matzehuels/followgraph/pkg/users"
)

// defaultOutput is the base name of rendered files when -o is not given.
const defaultOutput = "follows_graph"

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags  optionFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Draw the reduced graph with Graphviz",
		Long: `Draw the reduced graph with Graphviz.

Without an argument the stored "reduced_graph" is drawn. Nodes can be
scaled and colored by follower, friend or tweet counts (--size-by); those
need the record store (--users) or the tweets file (--tweets). Without the
record store, followers and friends fall back to in- and out-degree.

PNG and PDF output require rsvg-convert (librsvg).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, &flags)
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd.Context(), input, opts, output)
		},
	}

	flags.addRender(cmd)
	flags.addUsers(cmd, "user record store for node sizes and labels")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string) error {
	if err := opts.ValidateForRender(); err != nil {
		return err
	}
	if opts.NeedsRasterizer() && !render.ConverterAvailable() {
		return render.ErrConverterMissing
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, err := loadGraph(ctx, runner.Store, input, storage.ReducedGraph)
	if err != nil {
		return err
	}
	in, err := loadStyleInputs(opts)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Drawing %d nodes with %s...", g.NodeCount(), opts.Engine))
	spinner.Start()
	_, artifacts, hit, err := runner.RenderWithCacheInfo(ctx, g, in, opts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}
	spinner.Stop()

	return writeArtifacts(artifacts, opts.Formats, basePath(output, input), hit)
}

// loadStyleInputs loads the optional record store and tweets used for styling.
func loadStyleInputs(opts pipeline.Options) (*pipeline.Inputs, error) {
	in := &pipeline.Inputs{}
	var err error
	if opts.UsersPath != "" {
		if in.Users, err = users.Load(opts.UsersPath); err != nil {
			return nil, err
		}
	}
	if opts.TweetsPath != "" {
		if in.Tweets, err = users.LoadTweets(opts.TweetsPath); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// basePath derives the output path without extension. An output path with
// a known format extension has it stripped; without output the input name
// (or defaultOutput) is used.
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return defaultOutput
		}
		return strings.TrimSuffix(input, filepath.Ext(input)) + "_reduced"
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifacts writes one file per format to base.<format>.
func writeArtifacts(artifacts map[string][]byte, formats []string, base string, cached bool) error {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	status := iconFresh
	if cached {
		status = iconCached
	}
	printSuccess("Rendered %s %s", strings.Join(formats, ", "), StyleDim.Render("("+status+")"))
	for _, format := range formats {
		path := base + "." + format
		if err := os.WriteFile(path, artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
