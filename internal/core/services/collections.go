package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driven"
	"github.com/custodia-labs/docdex/internal/core/ports/driving"
	"github.com/custodia-labs/docdex/internal/logger"
)

// Ensure CollectionService implements the interface.
var _ driving.CollectionService = (*CollectionService)(nil)

// CollectionService administers indexed repositories.
type CollectionService struct {
	ledger  driven.DocumentStore
	vectors driven.VectorStore
}

// NewCollectionService creates a new collection service.
func NewCollectionService(ledger driven.DocumentStore, vectors driven.VectorStore) *CollectionService {
	return &CollectionService{
		ledger:  ledger,
		vectors: vectors,
	}
}

// List returns all indexed repositories.
func (s *CollectionService) List(ctx context.Context) ([]domain.Repository, error) {
	repos, err := s.ledger.ListRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	return repos, nil
}

// Status returns a repository's ledger record and its live chunk count
// in the vector index.
func (s *CollectionService) Status(ctx context.Context, repo domain.RepositoryID) (*domain.Repository, int, error) {
	collection := repo.CollectionName()

	record, err := s.ledger.GetRepository(ctx, collection)
	if err != nil {
		return nil, 0, fmt.Errorf("load repository: %w", err)
	}

	count, err := s.vectors.Count(collection)
	if errors.Is(err, domain.ErrCollectionNotFound) {
		// The ledger can know a repository whose index no longer exists.
		return record, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("count chunks: %w", err)
	}
	return record, count, nil
}

// Documents returns the document records for one repository.
func (s *CollectionService) Documents(ctx context.Context, repo domain.RepositoryID) ([]domain.Document, error) {
	docs, err := s.ledger.ListDocuments(ctx, repo.CollectionName())
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// DeleteRepository removes a repository from the vector index and the
// ledger, including its documents and exclusions.
func (s *CollectionService) DeleteRepository(ctx context.Context, repo domain.RepositoryID) error {
	collection := repo.CollectionName()

	if err := s.vectors.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	if err := s.ledger.DeleteRepository(ctx, collection); err != nil {
		return fmt.Errorf("delete repository: %w", err)
	}

	logger.Info("Deleted repository %s (collection %s)", repo, collection)
	return nil
}

// DeleteDocument removes one document and records an exclusion for its
// path. Without the exclusion the next ingest would resurrect the
// document from the source.
func (s *CollectionService) DeleteDocument(ctx context.Context, repo domain.RepositoryID, path string) error {
	collection := repo.CollectionName()

	doc, err := s.ledger.GetDocumentByPath(ctx, collection, path)
	if err != nil {
		return fmt.Errorf("load document record: %w", err)
	}

	removed, err := s.vectors.DeleteWhere(ctx, collection, map[string]string{"file_path": path})
	if err != nil && !errors.Is(err, domain.ErrCollectionNotFound) {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := s.ledger.DeleteDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document record: %w", err)
	}

	exclusion := &domain.Exclusion{
		ID:         uuid.NewString(),
		Repo:       collection,
		Path:       path,
		Reason:     "deleted by user",
		ExcludedAt: time.Now().UTC(),
	}
	if err := s.ledger.AddExclusion(ctx, exclusion); err != nil {
		return fmt.Errorf("record exclusion: %w", err)
	}

	logger.Info("Deleted %s from %s (%d chunks)", path, repo, removed)
	return nil
}

// ClearExclusion removes the exclusion for a path. The document itself
// comes back on the next ingest, not here.
func (s *CollectionService) ClearExclusion(ctx context.Context, repo domain.RepositoryID, path string) error {
	collection := repo.CollectionName()

	if err := s.ledger.RemoveExclusion(ctx, collection, path); err != nil {
		return fmt.Errorf("clear exclusion: %w", err)
	}

	logger.Info("Cleared exclusion for %s in %s", path, repo)
	return nil
}
