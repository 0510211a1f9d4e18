// Package memory provides an in-memory document ledger for tests and
// ephemeral runs. State is lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu           sync.RWMutex
	repositories map[string]domain.Repository
	documents    map[string]domain.Document
	exclusions   map[string]domain.Exclusion // keyed by repo + "\x00" + path
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		repositories: make(map[string]domain.Repository),
		documents:    make(map[string]domain.Document),
		exclusions:   make(map[string]domain.Exclusion),
	}
}

// SaveRepository stores or updates a repository record.
func (s *DocumentStore) SaveRepository(_ context.Context, repo *domain.Repository) error {
	if repo.Collection == "" {
		return fmt.Errorf("%w: repository collection is empty", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.repositories[repo.Collection]; ok {
		repo.CreatedAt = existing.CreatedAt
	} else if repo.CreatedAt.IsZero() {
		repo.CreatedAt = time.Now().UTC()
	}
	s.repositories[repo.Collection] = *repo
	return nil
}

// GetRepository retrieves a repository by collection name, with document
// and chunk totals aggregated from the stored documents.
func (s *DocumentStore) GetRepository(_ context.Context, collection string) (*domain.Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repo, ok := s.repositories[collection]
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.aggregateCounts(&repo)
	return &repo, nil
}

// ListRepositories returns all repositories ordered by collection name.
func (s *DocumentStore) ListRepositories(_ context.Context) ([]domain.Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repos := make([]domain.Repository, 0, len(s.repositories))
	for _, repo := range s.repositories {
		s.aggregateCounts(&repo)
		repos = append(repos, repo)
	}
	sort.Slice(repos, func(i, j int) bool { return repos[i].Collection < repos[j].Collection })
	return repos, nil
}

// DeleteRepository removes a repository and all its documents and exclusions.
func (s *DocumentStore) DeleteRepository(_ context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.repositories, collection)
	for id, doc := range s.documents {
		if doc.Repo == collection {
			delete(s.documents, id)
		}
	}
	for key, exclusion := range s.exclusions {
		if exclusion.Repo == collection {
			delete(s.exclusions, key)
		}
	}
	return nil
}

// SaveDocument stores or updates a document record.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc.ID == "" || doc.Repo == "" || doc.Path == "" {
		return fmt.Errorf("%w: document id, repo and path are required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A different document may not claim an already-registered path.
	for id, existing := range s.documents {
		if id != doc.ID && existing.Repo == doc.Repo && existing.Path == doc.Path {
			return fmt.Errorf("%w: path %s already registered in %s", domain.ErrAlreadyExists, doc.Path, doc.Repo)
		}
	}

	now := time.Now().UTC()
	if existing, ok := s.documents[doc.ID]; ok {
		doc.CreatedAt = existing.CreatedAt
	} else if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	s.documents[doc.ID] = *doc
	return nil
}

// GetDocumentByPath retrieves a document by repository and path.
func (s *DocumentStore) GetDocumentByPath(_ context.Context, repo, path string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.documents {
		if doc.Repo == repo && doc.Path == path {
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListDocuments returns all documents for a repository ordered by path.
func (s *DocumentStore) ListDocuments(_ context.Context, repo string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.Document
	for _, doc := range s.documents {
		if doc.Repo == repo {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// DeleteDocument removes a document record by ID.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	return nil
}

// AddExclusion stores an exclusion rule. Re-excluding the same path
// updates the reason instead of failing.
func (s *DocumentStore) AddExclusion(_ context.Context, exclusion *domain.Exclusion) error {
	if exclusion.ID == "" || exclusion.Repo == "" || exclusion.Path == "" {
		return fmt.Errorf("%w: exclusion id, repo and path are required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.repositories[exclusion.Repo]; !ok {
		return fmt.Errorf("repository %q not registered", exclusion.Repo)
	}

	if exclusion.ExcludedAt.IsZero() {
		exclusion.ExcludedAt = time.Now().UTC()
	}
	s.exclusions[exclusion.Repo+"\x00"+exclusion.Path] = *exclusion
	return nil
}

// RemoveExclusion clears the exclusion for one path.
func (s *DocumentStore) RemoveExclusion(_ context.Context, repo, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := repo + "\x00" + path
	if _, ok := s.exclusions[key]; !ok {
		return fmt.Errorf("%w: no exclusion for %s in %s", domain.ErrNotFound, path, repo)
	}
	delete(s.exclusions, key)
	return nil
}

// ListExclusions returns the exclusion rules for a repository ordered by path.
func (s *DocumentStore) ListExclusions(_ context.Context, repo string) ([]domain.Exclusion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exclusions []domain.Exclusion
	for _, exclusion := range s.exclusions {
		if exclusion.Repo == repo {
			exclusions = append(exclusions, exclusion)
		}
	}
	sort.Slice(exclusions, func(i, j int) bool { return exclusions[i].Path < exclusions[j].Path })
	return exclusions, nil
}

// Close releases resources.
func (s *DocumentStore) Close() error {
	return nil
}

// aggregateCounts fills the computed document and chunk totals.
// Caller must hold at least a read lock.
func (s *DocumentStore) aggregateCounts(repo *domain.Repository) {
	repo.DocumentCount = 0
	repo.ChunkCount = 0
	for _, doc := range s.documents {
		if doc.Repo == repo.Collection {
			repo.DocumentCount++
			repo.ChunkCount += doc.ChunkCount
		}
	}
}
