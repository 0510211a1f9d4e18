package driven

import (
	"context"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// DocumentStore persists the ingest ledger: repositories, their documents,
// and exclusion rules. Backed by SQLite.
type DocumentStore interface {
	// SaveRepository stores or updates a repository record.
	SaveRepository(ctx context.Context, repo *domain.Repository) error

	// GetRepository retrieves a repository by collection name.
	// Returns domain.ErrNotFound when absent.
	GetRepository(ctx context.Context, collection string) (*domain.Repository, error)

	// ListRepositories returns all repositories ordered by collection name.
	ListRepositories(ctx context.Context) ([]domain.Repository, error)

	// DeleteRepository removes a repository and all its documents and
	// exclusions.
	DeleteRepository(ctx context.Context, collection string) error

	// SaveDocument stores or updates a document record.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocumentByPath retrieves a document by repository and path.
	// Returns domain.ErrNotFound when absent.
	GetDocumentByPath(ctx context.Context, repo, path string) (*domain.Document, error)

	// ListDocuments returns all documents for a repository ordered by path.
	ListDocuments(ctx context.Context, repo string) ([]domain.Document, error)

	// DeleteDocument removes a document record by ID.
	DeleteDocument(ctx context.Context, id string) error

	// AddExclusion stores an exclusion rule.
	AddExclusion(ctx context.Context, exclusion *domain.Exclusion) error

	// RemoveExclusion clears the exclusion for one path so later ingests
	// pick it up again. Returns domain.ErrNotFound when the path was not
	// excluded.
	RemoveExclusion(ctx context.Context, repo, path string) error

	// ListExclusions returns the exclusion rules for a repository.
	ListExclusions(ctx context.Context, repo string) ([]domain.Exclusion, error)

	// Close releases resources.
	Close() error
}
