package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/followgraph/pkg/errors"
	"github.com/matzehuels/followgraph/pkg/rngstate"
	"github.com/matzehuels/followgraph/pkg/storage"
)

// stateCommand creates the random state management command.
func (c *CLI) stateCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect, restore or reseed the stored random state",
		Long: `Inspect, restore or reseed the stored random state.

'reduce' draws its neighbor samples from this state and stores the state
it ends with. Restoring a state printed by 'show' with 'set' replays the
next reduction exactly.`,
	}
	cmd.PersistentFlags().StringVar(&name, "name", storage.State, "name of the stored random state")

	cmd.AddCommand(c.stateShowCommand(&name))
	cmd.AddCommand(c.stateSetCommand(&name))
	cmd.AddCommand(c.stateResetCommand(&name))

	return cmd
}

func (c *CLI) stateShowCommand(name *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored random state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store storage.Store) error {
				if err := errors.ValidateName(*name); err != nil {
					return err
				}
				state, found, err := storage.LoadStateOrDefault(cmd.Context(), store, *name)
				if err != nil {
					return err
				}
				printKeyValue("name", *name)
				printKeyValue("state", state.String())
				if !found {
					printInfo("Nothing stored yet; reduce starts from seed %d", rngstate.DefaultSeed)
				}
				return nil
			})
		},
	}
}

func (c *CLI) stateSetCommand(name *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <hex>",
		Short: "Store a random state printed by 'state show'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := hex.DecodeString(strings.TrimSpace(args[0]))
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "random state must be hex")
			}
			state, err := rngstate.Parse(raw)
			if err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(store storage.Store) error {
				if err := errors.ValidateName(*name); err != nil {
					return err
				}
				if err := store.SaveState(cmd.Context(), *name, state); err != nil {
					return err
				}
				printSuccess("Restored %q", *name)
				return nil
			})
		},
	}
}

func (c *CLI) stateResetCommand(name *string) *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reseed the stored random state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store storage.Store) error {
				if err := errors.ValidateName(*name); err != nil {
					return err
				}
				if err := store.SaveState(cmd.Context(), *name, rngstate.New(seed)); err != nil {
					return err
				}
				printSuccess("Reseeded %q with %d", *name, seed)
				return nil
			})
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", rngstate.DefaultSeed, "seed for the new state")

	return cmd
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(storage.Store) error) error {
	store, err := c.newStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	return fn(store)
}
