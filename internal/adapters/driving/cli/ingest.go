package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// Connector flags shared by ingest, analyze, and watch.
var (
	includeCode bool
	branch      string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [repository]",
	Short: "Index a repository's documentation",
	Long: `Fetches a repository, chunks its documentation, embeds the chunks,
and indexes them for retrieval.

The repository is a GitHub URL, an owner/name pair, or a local directory:

  docdex ingest https://github.com/golang/go
  docdex ingest golang/go
  docdex ingest ./docs

Unchanged files are skipped on re-ingest. Individual file failures are
reported at the end and never abort the run.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: ensureDataPlane,
	RunE:    runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&includeCode, "include-code", false, "also index recognised source files")
	ingestCmd.Flags().StringVar(&branch, "branch", "", "branch to ingest (default: repository default branch)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	repo, err := domain.ParseRepositoryID(args[0])
	if err != nil {
		return fmt.Errorf("invalid repository %q: %w", args[0], err)
	}

	cmd.Printf("Ingesting %s...\n", repo)

	stats, err := ingestService.Ingest(cmd.Context(), repo)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	printIngestStats(cmd, stats)
	return nil
}

func printIngestStats(cmd *cobra.Command, stats *domain.IngestStats) {
	cmd.Printf("Done in %s: %d files indexed, %d skipped, %d failed, %d chunks.\n",
		stats.Duration.Round(time.Millisecond),
		stats.FilesProcessed, stats.FilesSkipped, stats.FilesFailed, stats.ChunksIndexed)

	if len(stats.Failures) == 0 {
		return
	}
	cmd.Println("\nFailures:")
	for _, failure := range stats.Failures {
		path := failure.Path
		if path == "" {
			path = "(stream)"
		}
		cmd.Printf("  %s: %s\n", path, failure.Reason)
	}
}
