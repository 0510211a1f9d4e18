package driving

import (
	"context"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// AnalyzeService surveys a repository before ingesting it.
type AnalyzeService interface {
	// Survey inspects the repository tree and reports its
	// documentation-relevant structure.
	Survey(ctx context.Context, repo domain.RepositoryID) (*domain.RepoSurvey, error)

	// Plan turns a survey into a prioritised ingestion plan.
	Plan(ctx context.Context, repo domain.RepositoryID) (*domain.IngestionPlan, error)
}
