package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netdraw/pkg/cache"
	"github.com/matzehuels/netdraw/pkg/session"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached documents, frames and drawings",
	}
	cmd.AddCommand(c.cacheClearCommand(), c.cachePathCommand())
	return cmd
}

// cacheClearCommand creates "cache clear". It empties the cache directory
// and drops expired browse sessions; saved sessions that are still live are
// kept.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cache entries and expired browse sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}

			if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
				printInfo("Cache is empty")
			} else {
				fc, err := cache.NewFileCache(dir)
				if err != nil {
					return err
				}
				defer fc.Close()

				n, err := fc.Clear()
				if err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				printSuccess("Cleared %d cache entries", n)
				printDetail("Directory: %s", fc.Dir())
			}

			sdir, err := sessionsDir()
			if err != nil {
				return fmt.Errorf("get sessions dir: %w", err)
			}
			if _, err := os.Stat(sdir); err != nil {
				return nil
			}
			store, err := session.NewFileStore(sdir)
			if err != nil {
				return err
			}
			if err := store.Cleanup(cmd.Context()); err != nil {
				return fmt.Errorf("clean up sessions: %w", err)
			}
			return nil
		},
	}
}

// cachePathCommand creates "cache path".
func (c *CLI) cachePathCommand() *cobra.Command {
	var sessions bool
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if sessions {
				dir, err = sessionsDir()
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&sessions, "sessions", false, "print the browse session directory instead")
	return cmd
}
