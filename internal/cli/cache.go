package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/curlyarrow/curlyarrow/pkg/cache"
)

// renderCacheTTL bounds how long a cached render is reused. Keys are
// content hashes, so the TTL only limits disk growth, never staleness.
const renderCacheTTL = 24 * time.Hour

// renderCacheDir returns the directory holding cached renders, honoring
// XDG_CACHE_HOME and falling back to ~/.cache.
func renderCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName, "render"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName, "render"), nil
}

// openRenderCache returns the render cache, or a null cache when
// disabled.
func openRenderCache(disabled bool) (cache.Cache, error) {
	if disabled {
		return cache.NewNullCache(), nil
	}
	dir, err := renderCacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	return cache.NewFileCache(dir)
}

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := renderCacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}

			entries, err := os.ReadDir(dir)
			if os.IsNotExist(err) || (err == nil && len(entries) == 0) {
				fmt.Fprintln(cmd.OutOrStdout(), StyleDim.Render("cache is empty"))
				return nil
			}
			if err != nil {
				return fmt.Errorf("read cache dir: %w", err)
			}

			// Entries live one fanout level down; remove each fanout
			// subtree whole.
			count := 0
			for _, e := range entries {
				sub := filepath.Join(dir, e.Name())
				if !e.IsDir() {
					if os.Remove(sub) == nil {
						count++
					}
					continue
				}
				files, err := os.ReadDir(sub)
				if err != nil {
					continue
				}
				count += len(files)
				if err := os.RemoveAll(sub); err != nil {
					return fmt.Errorf("clear %s: %w", sub, err)
				}
			}

			printSuccess("Cleared %d cached renders", count)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the render cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := renderCacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
