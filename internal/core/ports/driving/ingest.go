package driving

import (
	"context"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// IngestService indexes repository content for retrieval.
type IngestService interface {
	// Ingest fetches, chunks, embeds, and indexes every ingestable file
	// of the repository. Individual file failures are recorded in the
	// returned stats and never abort the run.
	Ingest(ctx context.Context, repo domain.RepositoryID) (*domain.IngestStats, error)

	// IngestFile indexes a single already-fetched file.
	IngestFile(ctx context.Context, repo domain.RepositoryID, file domain.RepoFile) (*domain.Document, error)

	// Watch keeps the index fresh: it re-ingests files as the connector
	// reports changes, until ctx is cancelled.
	Watch(ctx context.Context, repo domain.RepositoryID) error
}
