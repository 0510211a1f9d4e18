package mcp

import (
	"context"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// mockRetrieveService is a mock implementation of driving.RetrieveService.
type mockRetrieveService struct {
	results  []domain.RetrievalResult
	lastOpts domain.RetrievalOptions
	err      error
}

func (m *mockRetrieveService) Query(
	_ context.Context,
	_ domain.RepositoryID,
	_ string,
	opts domain.RetrievalOptions,
) ([]domain.RetrievalResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockRetrieveService) QueryBrief(
	_ context.Context,
	_ domain.RepositoryID,
	_ domain.Brief,
	opts domain.RetrievalOptions,
) ([]domain.RetrievalResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

// mockCollectionService is a mock implementation of driving.CollectionService.
type mockCollectionService struct {
	repos      []domain.Repository
	record     *domain.Repository
	liveChunks int
	docs       []domain.Document
	err        error
}

func (m *mockCollectionService) List(_ context.Context) ([]domain.Repository, error) {
	return m.repos, m.err
}

func (m *mockCollectionService) Status(
	_ context.Context,
	_ domain.RepositoryID,
) (*domain.Repository, int, error) {
	return m.record, m.liveChunks, m.err
}

func (m *mockCollectionService) Documents(
	_ context.Context,
	_ domain.RepositoryID,
) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockCollectionService) DeleteRepository(_ context.Context, _ domain.RepositoryID) error {
	return m.err
}

func (m *mockCollectionService) DeleteDocument(_ context.Context, _ domain.RepositoryID, _ string) error {
	return m.err
}

func (m *mockCollectionService) ClearExclusion(_ context.Context, _ domain.RepositoryID, _ string) error {
	return m.err
}
