package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

var (
	queryBriefPath string
	queryTopK      int
	queryExpand    bool
	queryJSON      bool
)

var queryCmd = &cobra.Command{
	Use:   "query [repository] [text]",
	Short: "Query an indexed repository",
	Long: `Retrieves the chunks closest to a query from one indexed repository.

With free text, a single query is run:

  docdex query golang/go "how does the scheduler pick a goroutine"

With --brief, queries are planned from a requirements brief (JSON) and
their results merged. Add --expand to let the configured LLM plan
multiple targeted queries:

  docdex query golang/go --brief requirements.json --expand`,
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: ensureDataPlane,
	RunE:    runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryBriefPath, "brief", "", "plan queries from a JSON requirements brief")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "maximum number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryExpand, "expand", false, "LLM multi-query expansion (brief mode)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if retrieveService == nil {
		return errors.New("retrieve service not configured")
	}

	repo, err := domain.ParseRepositoryID(args[0])
	if err != nil {
		return fmt.Errorf("invalid repository %q: %w", args[0], err)
	}

	opts := domain.RetrievalOptions{TopK: queryTopK, Expand: queryExpand}

	var results []domain.RetrievalResult
	switch {
	case queryBriefPath != "":
		brief, loadErr := loadBrief(queryBriefPath)
		if loadErr != nil {
			return loadErr
		}
		results, err = retrieveService.QueryBrief(cmd.Context(), repo, *brief, opts)
	case len(args) == 2 && strings.TrimSpace(args[1]) != "":
		results, err = retrieveService.Query(cmd.Context(), repo, args[1], opts)
	default:
		return errors.New("provide query text or --brief")
	}
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputResultsJSON(cmd, results)
	}
	return outputResultsTable(cmd, results)
}

// loadBrief reads and decodes a JSON requirements brief.
func loadBrief(path string) (*domain.Brief, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read brief: %w", err)
	}
	var brief domain.Brief
	if err := json.Unmarshal(data, &brief); err != nil {
		return nil, fmt.Errorf("parse brief %s: %w", path, err)
	}
	return &brief, nil
}

func outputResultsJSON(cmd *cobra.Command, results []domain.RetrievalResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResultsTable(cmd *cobra.Command, results []domain.RetrievalResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s", i+1, resultLocation(&results[i]))
		if results[i].HasDistance {
			cmd.Printf(" (distance %.4f)", results[i].Distance)
		}
		cmd.Println()
		if results[i].Query != "" {
			cmd.Printf("      Query: %s\n", results[i].Query)
		}
		if text := snippet(results[i].Content, 160); text != "" {
			cmd.Printf("      %s\n", text)
		}
		cmd.Println()
	}

	return nil
}

// resultLocation formats a result's source path with its line span.
func resultLocation(result *domain.RetrievalResult) string {
	if result.Path == "" {
		return result.Repo
	}
	if result.LineStart > 0 {
		return fmt.Sprintf("%s:%d-%d", result.Path, result.LineStart, result.LineEnd)
	}
	return result.Path
}

// snippet flattens content to a single line of at most max characters.
func snippet(content string, max int) string {
	flat := strings.Join(strings.Fields(content), " ")
	if len(flat) <= max {
		return flat
	}
	return flat[:max-3] + "..."
}
