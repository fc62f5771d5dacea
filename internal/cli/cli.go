// Package cli implements the followgraph command-line interface.
//
// The commands mirror the pipeline stages:
//
//   - build: reconcile a user record store into the full follows graph
//   - reduce: keep the degree outliers and a sample of their neighbors
//   - render: draw the reduced graph with Graphviz
//   - run: all three stages in one go
//   - state: inspect or reseed the stored random state
//   - cache: manage the graph and layout cache
//
// Graphs and the random state persist between invocations in the data
// directory (or MongoDB), so consecutive reduce runs draw fresh samples.
// Defaults come from $XDG_CONFIG_HOME/followgraph/config.toml; flags win.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/followgraph/pkg/buildinfo"
	"github.com/matzehuels/followgraph/pkg/cache"
	"github.com/matzehuels/followgraph/pkg/pipeline"
	"github.com/matzehuels/followgraph/pkg/storage"
)

// appName is the application name used for directories and display.
const appName = "followgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	dataDir    string
	noCache    bool
	config     Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Followgraph reduces Twitter follower graphs to drawable size",
		Long: `Followgraph turns per-user follower and friend lists into a directed
"follows" graph, keeps the users whose degree is far from the mean together
with a random sample of their neighbors, and draws the result with Graphviz.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/followgraph/config.toml)")
	root.PersistentFlags().StringVar(&c.dataDir, "data-dir", "", "directory for stored graphs and random state")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable caching")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.reduceCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.stateCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache and store.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	store, err := c.newStore(ctx)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}

	var keyer cache.Keyer
	if c.config.Cache.Scope != "" {
		keyer = cache.NewScopedKeyer(nil, c.config.Cache.Scope+":")
	}
	return pipeline.NewRunner(ch, keyer, store, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch c.config.Cache.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, c.config.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return rc, nil
	}

	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) newStore(ctx context.Context) (storage.Store, error) {
	if c.config.Storage.Backend == backendMongo && c.dataDir == "" {
		s, err := storage.NewMongoStore(ctx, c.config.Storage.MongoURI, c.config.Storage.Database)
		if err != nil {
			return nil, fmt.Errorf("connect mongo store: %w", err)
		}
		return s, nil
	}
	dir, err := c.storeDir()
	if err != nil {
		return nil, err
	}
	return storage.NewFileStore(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or ~/.cache/followgraph/.
func (c *CLI) cacheDir() (string, error) {
	if c.config.Cache.Dir != "" {
		return c.config.Cache.Dir, nil
	}
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// storeDir returns the --data-dir flag, the configured directory, or
// ~/.local/share/followgraph/.
func (c *CLI) storeDir() (string, error) {
	if c.dataDir != "" {
		return c.dataDir, nil
	}
	if c.config.Storage.Dir != "" {
		return c.config.Storage.Dir, nil
	}
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// configPath returns the default config file location.
func configPath() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// xdgDir resolves the application directory under the XDG variable env,
// falling back to fallback below the home directory.
func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}
