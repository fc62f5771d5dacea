package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/followgraph/pkg/pipeline"
	"github.com/matzehuels/followgraph/pkg/render"
)

// runCommand creates the run command (build, reduce and render in one go).
func (c *CLI) runCommand() *cobra.Command {
	var (
		flags  optionFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "run [users.json[.gz]]",
		Short: "Build, reduce and render in one go",
		Long: `Build, reduce and render in one go.

Equivalent to 'build', 'reduce' and 'render' in sequence: the full and the
reduced graph are stored and the random state is advanced (unless
--keep-state is given).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, &flags)
			if len(args) == 1 {
				opts.UsersPath = args[0]
			}
			return c.runPipeline(cmd.Context(), opts, output)
		},
	}

	flags.addBuild(cmd)
	flags.addReduce(cmd)
	flags.addRender(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")

	return cmd
}

func (c *CLI) runPipeline(ctx context.Context, opts pipeline.Options, output string) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
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

	spinner := newSpinnerWithContext(ctx, "Running pipeline...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Pipeline failed")
		return err
	}
	spinner.Stop()

	printSuccess("Built follows graph from %d users", result.Stats.Users)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.BuildHit)
	if !result.CacheInfo.BuildHit {
		printBuildReport(result.BuildReport)
	}

	printSuccess("Reduced to %d nodes", result.Stats.ReducedNodes)
	printStats(result.Stats.ReducedNodes, result.Stats.ReducedEdges, false)
	printReduceReport(result.ReduceReport)

	base := basePath(output, "")
	if err := writeArtifacts(result.Artifacts, opts.Formats, base, result.CacheInfo.LayoutHit); err != nil {
		return err
	}
	printDetail("run %s", result.RunID)
	return nil
}
