// Package cli implements the kinship command-line interface.
package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kinship/pkg/buildinfo"
	"github.com/matzehuels/kinship/pkg/cache"
	"github.com/matzehuels/kinship/pkg/pipeline"
	"github.com/matzehuels/kinship/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "kinship"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config *Config

	configPath string
	verbose    bool
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
		Use:          appName,
		Short:        "Kinship renders workflow lineage graphs",
		Long:         `Kinship loads the upstream and downstream lineage of scheduler workflows and renders it as an interactive graph configuration, Graphviz DOT or SVG.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))

			cfg, err := LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/kinship/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner opens the configured source and cache. A non-empty input
// overrides the configured source with a lineage file.
func (c *CLI) newRunner(ctx context.Context, input string, noCache bool) (*pipeline.Runner, error) {
	cfg := c.sourceConfig(input)
	src, err := source.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		src.Close()
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), sourceScope(cfg))
	return pipeline.NewRunner(src, store, keyer, c.Logger), nil
}

func (c *CLI) sourceConfig(input string) source.Config {
	cfg := c.Config.sourceConfig()
	if input != "" {
		cfg = source.Config{Kind: source.KindFile, Path: input}
	}
	if cfg.Kind == source.KindFile && cfg.Path != "" {
		if abs, err := filepath.Abs(cfg.Path); err == nil {
			cfg.Path = abs
		}
	}
	return cfg
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc := c.Config.Cache
	switch cc.Backend {
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cc.RedisAddr,
			Password: cc.RedisPassword,
			DB:       cc.RedisDB,
			Prefix:   cc.RedisPrefix,
		})
		if errors.Is(err, cache.ErrUnavailable) {
			c.Logger.Warn("redis unreachable, caching disabled", "addr", cc.RedisAddr, "error", err)
			return cache.NewNullCache(), nil
		}
		if err != nil {
			return nil, err
		}
		return rc, nil
	case backendMemory:
		return cache.NewMemoryCache(), nil
	case backendNone:
		return cache.NewNullCache(), nil
	default:
		fc, err := cache.NewFileCache(cc.Dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, caching disabled", "dir", cc.Dir, "error", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
}

// sourceScope keeps keys from different lineage stores apart when they share
// a cache.
func sourceScope(cfg source.Config) string {
	var id string
	switch cfg.Kind {
	case source.KindMongo:
		id = cfg.URI + "/" + cfg.Database + "/" + cfg.Collections.Workflows + "/" + cfg.Collections.Relations
	default:
		id = cfg.Path
	}
	sum := sha256.Sum256([]byte(id))
	return string(cfg.Kind) + "-" + hex.EncodeToString(sum[:4])
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/kinship/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home directory: %w", err)
	}
	return filepath.Join(home, ".cache", appName), nil
}
