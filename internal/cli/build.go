package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/followgraph/pkg/graph"
	"github.com/matzehuels/followgraph/pkg/pipeline"
	"github.com/matzehuels/followgraph/pkg/users"
)

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		flags  optionFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "build [users.json[.gz]]",
		Short: "Build the follows graph from a user record store",
		Long: `Build the follows graph from a user record store.

Every user in the store becomes a node. Follower and friend lists become
edges unless a user's degree already observed in the graph disagrees with
the list, in which case that direction is skipped and logged.

The graph is stored as "user_graph" for 'reduce' and cached by the
content of the record store.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, &flags)
			if len(args) == 1 {
				opts.UsersPath = args[0]
			}
			return c.runBuild(cmd.Context(), opts, output)
		},
	}

	flags.addBuild(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the graph as node-link JSON")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, opts pipeline.Options, output string) error {
	if opts.UsersPath == "" {
		return fmt.Errorf("no user record store given (argument or [pipeline] users in config)")
	}
	records, err := users.Load(opts.UsersPath)
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Infof("Loaded %d user records from %s", records.Len(), opts.UsersPath)

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	g, report, hit, err := runner.BuildWithCacheInfo(ctx, records, opts)
	if err != nil {
		return err
	}
	prog.done("Built follows graph")

	printSuccess("Built follows graph")
	printStats(g.NodeCount(), g.EdgeCount(), hit)
	if !hit {
		printBuildReport(report)
	}

	if output != "" {
		if err := graph.WriteFile(g, output); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		printFile(output)
	}
	printNextStep("Reduce it", appName+" reduce")
	return nil
}
