package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docdex/internal/adapters/driving/tui"
	"github.com/custodia-labs/docdex/internal/core/services"
)

var tuiRefresh time.Duration

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

Pick a repository, type a query, and browse the retrieved chunks with
their source locations. --refresh re-ingests indexed repositories in
the background at the given interval.

Controls:
  ↑/k, ↓/j - Navigate results
  Enter    - Query / Select
  Tab      - Switch repository
  c        - Copy selected chunk
  o        - Open selected chunk's source
  q        - Quit`,
	PreRunE: ensureDataPlane,
	RunE:    runTUI,
}

func init() {
	tuiCmd.Flags().DurationVar(&tuiRefresh, "refresh", 0, "background re-ingest interval (0 = off)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if retrieveService == nil {
		return errors.New("retrieve service not configured")
	}

	// Panic recovery keeps a stack trace visible after the alternate
	// screen is torn down.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if tuiRefresh > 0 {
		scheduler := refreshScheduler
		if scheduler == nil {
			scheduler = services.NewRefreshScheduler(tuiRefresh, ledgerStore, ingestService)
		}

		go func() {
			if err := scheduler.Start(cmd.Context()); err != nil {
				fmt.Fprintf(os.Stderr, "scheduler stopped: %v\n", err)
			}
		}()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				fmt.Fprintf(os.Stderr, "scheduler stop error: %v\n", err)
			}
		}()
	}

	ports := &tui.Ports{
		Retrieve:    retrieveService,
		Collections: collectionService,
		Actions:     actionService,
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
