package driving

import (
	"context"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// RetrieveService answers queries against indexed repositories.
type RetrieveService interface {
	// Query runs a single free-text query against one repository and
	// returns the closest chunks with provenance.
	Query(ctx context.Context, repo domain.RepositoryID, query string, opts domain.RetrievalOptions) ([]domain.RetrievalResult, error)

	// QueryBrief plans queries from a structured brief, fans them out
	// against one repository, and returns the merged, deduplicated
	// results. Expansion failures degrade to the summary query.
	QueryBrief(ctx context.Context, repo domain.RepositoryID, brief domain.Brief, opts domain.RetrievalOptions) ([]domain.RetrievalResult, error)
}
