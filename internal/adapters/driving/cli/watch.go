package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a local directory and keep its index fresh",
	Long: `Ingests a local directory, then re-indexes files as they change
until interrupted. Deleted files are removed from the index.

Only local directories support watching. GitHub repositories are
refreshed by re-running ingest, or continuously by 'docdex mcp serve
--refresh'.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: ensureDataPlane,
	RunE:    runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&includeCode, "include-code", false, "also index recognised source files")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	repo, err := domain.ParseRepositoryID(args[0])
	if err != nil {
		return fmt.Errorf("invalid repository %q: %w", args[0], err)
	}

	cmd.Printf("Watching %s. Press Ctrl-C to stop.\n", repo)

	err = ingestService.Watch(cmd.Context(), repo)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		cmd.Println("Stopped watching.")
		return nil
	case errors.Is(err, domain.ErrWatchUnsupported):
		return fmt.Errorf("%w: only local directories can be watched", err)
	default:
		return fmt.Errorf("watch failed: %w", err)
	}
}
