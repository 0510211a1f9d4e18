package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

var reposJSON bool

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Manage indexed repositories",
	Long:  `List, inspect, or delete indexed repositories.`,
}

var reposListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List indexed repositories",
	PreRunE: ensureStores,
	RunE:    runReposList,
}

var reposStatusCmd = &cobra.Command{
	Use:     "status [repository]",
	Short:   "Show one repository's index status",
	Args:    cobra.ExactArgs(1),
	PreRunE: ensureStores,
	RunE:    runReposStatus,
}

var reposDeleteCmd = &cobra.Command{
	Use:     "delete [repository]",
	Short:   "Delete a repository's index",
	Long:    `Removes the repository's vector collection and every ledger record.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: ensureStores,
	RunE:    runReposDelete,
}

func init() {
	reposListCmd.Flags().BoolVar(&reposJSON, "json", false, "output as JSON")
	reposStatusCmd.Flags().BoolVar(&reposJSON, "json", false, "output as JSON")

	reposCmd.AddCommand(reposListCmd)
	reposCmd.AddCommand(reposStatusCmd)
	reposCmd.AddCommand(reposDeleteCmd)
	rootCmd.AddCommand(reposCmd)
}

func runReposList(cmd *cobra.Command, _ []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	repos, err := collectionService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}

	if reposJSON {
		data, err := json.MarshalIndent(repos, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal repositories: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(repos) == 0 {
		cmd.Println("No repositories indexed. Run 'docdex ingest' first.")
		return nil
	}

	cmd.Println("Indexed repositories:")
	cmd.Println()
	for i := range repos {
		printRepository(cmd, &repos[i])
	}
	cmd.Printf("Total: %d repositories\n", len(repos))
	return nil
}

func runReposStatus(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	repo, err := domain.ParseRepositoryID(args[0])
	if err != nil {
		return fmt.Errorf("invalid repository %q: %w", args[0], err)
	}

	record, liveChunks, err := collectionService.Status(cmd.Context(), repo)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if reposJSON {
		payload := struct {
			domain.Repository
			LiveChunks int
		}{Repository: *record, LiveChunks: liveChunks}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printRepository(cmd, record)
	cmd.Printf("  Live chunks in index: %d\n", liveChunks)
	if liveChunks == 0 && record.ChunkCount > 0 {
		cmd.Println("  Warning: index is empty but the ledger has chunks. Re-ingest to rebuild.")
	}
	return nil
}

func runReposDelete(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	repo, err := domain.ParseRepositoryID(args[0])
	if err != nil {
		return fmt.Errorf("invalid repository %q: %w", args[0], err)
	}

	if err := collectionService.DeleteRepository(cmd.Context(), repo); err != nil {
		return fmt.Errorf("failed to delete repository: %w", err)
	}

	cmd.Printf("Deleted %s from the index.\n", repo)
	return nil
}

func printRepository(cmd *cobra.Command, record *domain.Repository) {
	name := record.Collection
	if record.Owner != "" {
		name = record.Owner + "/" + record.Name
	}
	cmd.Printf("  %s (%s)\n", name, record.Collection)
	if record.URL != "" {
		cmd.Printf("      URL: %s\n", record.URL)
	}
	cmd.Printf("      Documents: %d  Chunks: %d\n", record.DocumentCount, record.ChunkCount)
	if !record.LastIngestAt.IsZero() {
		cmd.Printf("      Last ingest: %s\n", record.LastIngestAt.Format("2006-01-02 15:04:05"))
	}
	cmd.Println()
}
