package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docdex/internal/adapters/driving/mcp"
	"github.com/custodia-labs/docdex/internal/core/services"
)

var (
	mcpPort    int
	mcpRefresh time.Duration
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can query
indexed repositories.

By default the server communicates over stdio using JSON-RPC. Use
--port to serve HTTP instead, for the MCP Inspector or remote access.
--refresh re-ingests every indexed repository at the given interval
while the server runs.

Examples:
  # Stdio mode (default, for assistant integration)
  docdex mcp serve

  # HTTP mode with hourly index refresh
  docdex mcp serve --port 8080 --refresh 1h

Assistant configuration (mcpServers):
  {
    "mcpServers": {
      "docdex": {
        "command": "/path/to/docdex",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	PreRunE: ensureDataPlane,
	RunE:    runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().DurationVar(&mcpRefresh, "refresh", 0, "background re-ingest interval (0 = off)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if retrieveService == nil {
		return errors.New("retrieve service not configured")
	}

	ports := &mcp.Ports{
		Retrieve:    retrieveService,
		Collections: collectionService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if mcpRefresh > 0 {
		scheduler := refreshScheduler
		if scheduler == nil {
			scheduler = services.NewRefreshScheduler(mcpRefresh, ledgerStore, ingestService)
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

	if mcpPort > 0 {
		addr := fmt.Sprintf(":%d", mcpPort)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
