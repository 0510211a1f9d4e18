package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

var docJSON bool

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage indexed documents",
	Long:  `List or delete individual documents within a repository's index.`,
}

var docListCmd = &cobra.Command{
	Use:     "list [repository]",
	Short:   "List a repository's indexed documents",
	Args:    cobra.ExactArgs(1),
	PreRunE: ensureStores,
	RunE:    runDocList,
}

var docDeleteCmd = &cobra.Command{
	Use:   "delete [repository] [path]",
	Short: "Delete one document from the index",
	Long: `Removes a document's chunks and ledger record, and records an
exclusion so future ingests skip the path.`,
	Args:    cobra.ExactArgs(2),
	PreRunE: ensureStores,
	RunE:    runDocDelete,
}

var docRestoreCmd = &cobra.Command{
	Use:   "restore [repository] [path]",
	Short: "Clear a deleted document's exclusion",
	Long: `Clears the exclusion recorded by 'doc delete' so the next ingest
indexes the path again.`,
	Args:    cobra.ExactArgs(2),
	PreRunE: ensureStores,
	RunE:    runDocRestore,
}

func init() {
	docListCmd.Flags().BoolVar(&docJSON, "json", false, "output as JSON")

	docCmd.AddCommand(docListCmd)
	docCmd.AddCommand(docDeleteCmd)
	docCmd.AddCommand(docRestoreCmd)
	rootCmd.AddCommand(docCmd)
}

func runDocList(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	repo, err := domain.ParseRepositoryID(args[0])
	if err != nil {
		return fmt.Errorf("invalid repository %q: %w", args[0], err)
	}

	docs, err := collectionService.Documents(cmd.Context(), repo)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if docJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Printf("No documents indexed for %s.\n", repo)
		return nil
	}

	cmd.Printf("Documents in %s:\n\n", repo)
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].Path)
		if docs[i].Title != "" && docs[i].Title != docs[i].Path {
			cmd.Printf("    Title: %s\n", docs[i].Title)
		}
		cmd.Printf("    Chunks: %d  Updated: %s\n",
			docs[i].ChunkCount, docs[i].UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocDelete(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	repo, err := domain.ParseRepositoryID(args[0])
	if err != nil {
		return fmt.Errorf("invalid repository %q: %w", args[0], err)
	}
	path := args[1]

	if err := collectionService.DeleteDocument(cmd.Context(), repo, path); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted %s from %s. Future ingests will skip it.\n", path, repo)
	return nil
}

func runDocRestore(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	repo, err := domain.ParseRepositoryID(args[0])
	if err != nil {
		return fmt.Errorf("invalid repository %q: %w", args[0], err)
	}
	path := args[1]

	if err := collectionService.ClearExclusion(cmd.Context(), repo, path); err != nil {
		return fmt.Errorf("failed to restore document: %w", err)
	}

	cmd.Printf("Cleared exclusion for %s in %s. Run 'docdex ingest' to re-index it.\n", path, repo)
	return nil
}
