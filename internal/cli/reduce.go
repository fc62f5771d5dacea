package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/followgraph/pkg/digraph"
	"github.com/matzehuels/followgraph/pkg/graph"
	"github.com/matzehuels/followgraph/pkg/pipeline"
	"github.com/matzehuels/followgraph/pkg/storage"
	"github.com/matzehuels/followgraph/pkg/users"
)

// reduceCommand creates the reduce command.
func (c *CLI) reduceCommand() *cobra.Command {
	var (
		flags  optionFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "reduce [graph.json]",
		Short: "Keep degree outliers and a sample of their neighbors",
		Long: `Keep degree outliers and a sample of their neighbors.

A user is an outlier when its in- or out-degree lies more than --stdev
sample standard deviations from the mean. For every outlier, a --fraction
share of its neighbors is drawn at random; the result is the subgraph
induced by the outliers and the drawn neighbors.

Without an argument the stored "user_graph" is reduced. The draws continue
from the stored random state, which is advanced afterwards unless
--keep-state is given, so repeated runs explore different samples and any
run can be replayed from the state it started with.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, &flags)
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runReduce(cmd.Context(), input, opts, output)
		},
	}

	flags.addReduce(cmd)
	flags.addUsers(cmd, "user record store (required for --neighbors records)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the reduced graph as node-link JSON")

	return cmd
}

func (c *CLI) runReduce(ctx context.Context, input string, opts pipeline.Options, output string) error {
	if err := opts.ValidateForReduce(); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, err := loadGraph(ctx, runner.Store, input, storage.FullGraph)
	if err != nil {
		return err
	}

	var records *users.Store
	if opts.NeedsRecords() {
		if opts.UsersPath == "" {
			return fmt.Errorf("--neighbors records needs --users")
		}
		if records, err = users.Load(opts.UsersPath); err != nil {
			return err
		}
	}

	prog := newProgress(loggerFromContext(ctx))
	reduced, state, report, err := runner.Reduce(ctx, g, records, opts)
	if err != nil {
		return err
	}
	prog.done("Reduced follows graph")

	printSuccess("Reduced %d nodes to %d", g.NodeCount(), reduced.NodeCount())
	printStats(reduced.NodeCount(), reduced.EdgeCount(), false)
	printReduceReport(report)
	if opts.KeepState {
		printDetail("random state kept")
	} else {
		printDetail("random state %q advanced to %s", opts.StateName, state)
	}

	if output != "" {
		if err := graph.WriteFile(reduced, output); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		printFile(output)
	}
	printNextStep("Draw it", appName+" render")
	return nil
}

// loadGraph reads a node-link JSON file, or the stored graph name when path is empty.
func loadGraph(ctx context.Context, store storage.Store, path, name string) (*digraph.Graph, error) {
	if path != "" {
		g, err := graph.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load graph %s: %w", path, err)
		}
		return g, nil
	}
	g, err := store.LoadGraph(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load stored graph (run 'build' first?): %w", err)
	}
	return g, nil
}
