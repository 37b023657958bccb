package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kinship/pkg/cache"
	kerrors "github.com/matzehuels/kinship/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the lineage cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached graphs, options and exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cc := c.Config.Cache

			switch cc.Backend {
			case backendRedis:
				rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
					Addr:     cc.RedisAddr,
					Password: cc.RedisPassword,
					DB:       cc.RedisDB,
					Prefix:   cc.RedisPrefix,
				})
				if err != nil {
					return kerrors.Wrap(kerrors.ErrCodeCache, err, "connect redis")
				}
				defer rc.Close()
				n, err := rc.Clear(ctx)
				if err != nil {
					return kerrors.Wrap(kerrors.ErrCodeCache, err, "clear redis cache")
				}
				printSuccess("Cleared %d cached entries", n)
				printDetail("Redis: %s (prefix %q)", cc.RedisAddr, cc.RedisPrefix)
			case backendFile:
				if _, err := os.Stat(cc.Dir); os.IsNotExist(err) {
					printInfo("Cache is empty")
					return nil
				}
				fc, err := cache.NewFileCache(cc.Dir)
				if err != nil {
					return err
				}
				n, err := fc.Clear()
				if err != nil {
					return kerrors.Wrap(kerrors.ErrCodeCache, err, "clear %s", fc.Dir())
				}
				printSuccess("Cleared %d cached entries", n)
				printDetail("Directory: %s", fc.Dir())
			default:
				printWarning("The %s cache backend keeps nothing to clear", cc.Backend)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend != backendFile {
				return fmt.Errorf("cache backend is %s, not file", c.Config.Cache.Backend)
			}
			fmt.Println(c.Config.Cache.Dir)
			return nil
		},
	}
}
