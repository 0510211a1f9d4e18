package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

var (
	analyzePlan bool
	analyzeJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [repository]",
	Short: "Survey a repository before ingesting",
	Long: `Inspects a repository's tree without fetching content: documentation
directories, README files, detected frameworks, and file counts.

With --plan, prints the prioritised ingestion plan instead.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: ensureStores,
	RunE:    runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzePlan, "plan", false, "print the prioritised ingestion plan")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output as JSON")
	analyzeCmd.Flags().BoolVar(&includeCode, "include-code", false, "include code directories in the plan")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeService == nil {
		return errors.New("analyze service not configured")
	}

	repo, err := domain.ParseRepositoryID(args[0])
	if err != nil {
		return fmt.Errorf("invalid repository %q: %w", args[0], err)
	}

	if analyzePlan {
		plan, err := analyzeService.Plan(cmd.Context(), repo)
		if err != nil {
			return fmt.Errorf("analyze failed: %w", err)
		}
		return outputPlan(cmd, plan)
	}

	survey, err := analyzeService.Survey(cmd.Context(), repo)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}
	return outputSurvey(cmd, survey)
}

func outputSurvey(cmd *cobra.Command, survey *domain.RepoSurvey) error {
	if analyzeJSON {
		data, err := json.MarshalIndent(survey, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal survey: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Survey of %s:\n\n", survey.Repo)
	cmd.Printf("  Documentation dirs: %s\n", orNone(survey.DocDirs))
	cmd.Printf("  README files:       %s\n", orNone(survey.ReadmePaths))
	cmd.Printf("  Frameworks:         %s\n", orNone(survey.Frameworks))
	cmd.Printf("  Markdown files:     %d\n", survey.MarkdownCount)
	cmd.Printf("  Code files:         %d\n", survey.CodeFileCount)
	return nil
}

func outputPlan(cmd *cobra.Command, plan *domain.IngestionPlan) error {
	if analyzeJSON {
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal plan: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(plan.Entries) == 0 {
		cmd.Printf("Nothing to ingest in %s.\n", plan.Repo)
		return nil
	}

	cmd.Printf("Ingestion plan for %s:\n\n", plan.Repo)
	for _, entry := range plan.Entries {
		cmd.Printf("  %d. %s\n     %s\n", entry.Priority, entry.Path, entry.Reason)
	}
	return nil
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
