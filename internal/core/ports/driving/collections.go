package driving

import (
	"context"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// CollectionService administers indexed repositories.
type CollectionService interface {
	// List returns all indexed repositories with their document and
	// chunk counts.
	List(ctx context.Context) ([]domain.Repository, error)

	// Status returns one repository's ledger record and its live record
	// count in the vector index.
	Status(ctx context.Context, repo domain.RepositoryID) (*domain.Repository, int, error)

	// Documents returns the ledger records for one repository.
	Documents(ctx context.Context, repo domain.RepositoryID) ([]domain.Document, error)

	// DeleteRepository removes a repository from both the vector index
	// and the ledger.
	DeleteRepository(ctx context.Context, repo domain.RepositoryID) error

	// DeleteDocument removes a single document's chunks from the vector
	// index and its ledger record, and records an exclusion so future
	// ingests skip the path.
	DeleteDocument(ctx context.Context, repo domain.RepositoryID, path string) error

	// ClearExclusion removes the exclusion recorded for a path so the
	// next ingest indexes it again. A path that was not excluded fails
	// with domain.ErrNotFound.
	ClearExclusion(ctx context.Context, repo domain.RepositoryID, path string) error
}
