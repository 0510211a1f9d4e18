// Package cli provides the docdex command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docdex/internal/core/ports/driving"
)

// version is the build version reported by the version command. Set by
// main at startup.
var version = "dev"

// Persistent flags.
var (
	verbose bool
	dataDir string
)

// Services used by the commands. Wiring fills these on first use; tests
// inject mocks directly.
var (
	ingestService     driving.IngestService
	retrieveService   driving.RetrieveService
	collectionService driving.CollectionService
	analyzeService    driving.AnalyzeService
	settingsService   driving.SettingsService
	actionService     driving.ResultActionService
	refreshScheduler  driving.Scheduler
)

var rootCmd = &cobra.Command{
	Use:   "docdex",
	Short: "Index and query repository documentation",
	Long: `Docdex chunks repository documentation, embeds the chunks, and
answers questions against the resulting per-repository vector index.

Point it at a GitHub repository or a local directory, ingest, then query:

  docdex ingest github.com/golang/go
  docdex query golang/go "how does the scheduler pick a goroutine"`,
	SilenceUsage: true,
}

// Execute runs the root command. The context is cancelled on interrupt
// so long-running commands shut down cleanly.
func Execute(ctx context.Context, v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.docdex)")
}
