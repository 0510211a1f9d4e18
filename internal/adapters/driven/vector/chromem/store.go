// Package chromem provides a vector store adapter using embedded
// chromem-go with on-disk persistence.
package chromem

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// DefaultCompress enables gzip compression of persisted records.
const DefaultCompress = true

// Config holds configuration for the chromem vector store.
type Config struct {
	// Path is the directory where collections are persisted (required).
	Path string

	// Compress enables gzip compression of persisted records.
	Compress bool
}

// Store persists embeddings in per-repository collections.
type Store struct {
	db *chromemgo.DB
}

// NewStore opens or creates a persistent vector database rooted at
// cfg.Path. Existing collections are loaded from disk.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("chromem: path is required")
	}

	db, err := chromemgo.NewPersistentDB(cfg.Path, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("open vector database: %w", err)
	}

	return &Store{db: db}, nil
}

// noEmbedding rejects implicit embedding. Vectors always arrive
// precomputed through AddChunks and Query.
func noEmbedding(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("vectors must be precomputed")
}

// EnsureCollection creates the named collection if it does not exist.
func (s *Store) EnsureCollection(_ context.Context, name string, metadata map[string]string) error {
	if _, err := s.db.GetOrCreateCollection(name, metadata, noEmbedding); err != nil {
		return fmt.Errorf("ensure collection %q: %w", name, err)
	}
	return nil
}

// HasCollection reports whether the named collection exists.
func (s *Store) HasCollection(name string) bool {
	return s.db.GetCollection(name, noEmbedding) != nil
}

// AddChunks stores the chunks with their embeddings, creating the
// collection if it does not exist yet.
func (s *Store) AddChunks(ctx context.Context, collection string, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks, %d vectors", domain.ErrLengthMismatch, len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	coll, err := s.db.GetOrCreateCollection(collection, nil, noEmbedding)
	if err != nil {
		return fmt.Errorf("ensure collection %q: %w", collection, err)
	}

	docs := make([]chromemgo.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromemgo.Document{
			ID:        chunk.ID,
			Content:   chunk.Content,
			Embedding: vectors[i],
			Metadata:  chunkMetadata(chunk),
		}
	}

	if err := coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents to %q: %w", collection, err)
	}
	return nil
}

// Query returns up to topK nearest matches for the vector, closest first.
func (s *Store) Query(ctx context.Context, collection string, vector []float32, topK int, filter map[string]string) ([]driven.VectorMatch, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive", domain.ErrInvalidInput)
	}

	coll := s.db.GetCollection(collection, noEmbedding)
	if coll == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
	}

	// chromem rejects result counts above the record count.
	count := coll.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := coll.QueryEmbedding(ctx, vector, topK, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection %q: %w", collection, err)
	}

	matches := make([]driven.VectorMatch, len(results))
	for i, r := range results {
		matches[i] = driven.VectorMatch{
			ID:          r.ID,
			Content:     r.Content,
			Metadata:    r.Metadata,
			Distance:    float64(1 - r.Similarity),
			HasDistance: true,
		}
	}
	return matches, nil
}

// Count returns the number of records in the collection.
func (s *Store) Count(collection string) (int, error) {
	coll := s.db.GetCollection(collection, noEmbedding)
	if coll == nil {
		return 0, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
	}
	return coll.Count(), nil
}

// ListCollections returns the names of all collections, sorted.
func (s *Store) ListCollections() []string {
	collections := s.db.ListCollections()
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeleteWhere removes records whose metadata contains every given
// key/value pair and returns how many were removed.
func (s *Store) DeleteWhere(ctx context.Context, collection string, filter map[string]string) (int, error) {
	if len(filter) == 0 {
		return 0, fmt.Errorf("%w: delete filter must not be empty", domain.ErrInvalidInput)
	}

	coll := s.db.GetCollection(collection, noEmbedding)
	if coll == nil {
		return 0, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
	}

	// chromem reports nothing back, so the removed count is the delta.
	before := coll.Count()
	if err := coll.Delete(ctx, filter, nil); err != nil {
		return 0, fmt.Errorf("delete from %q: %w", collection, err)
	}
	return before - coll.Count(), nil
}

// DeleteCollection removes the collection and all its records.
// Deleting a missing collection is a no-op.
func (s *Store) DeleteCollection(_ context.Context, name string) error {
	if err := s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("delete collection %q: %w", name, err)
	}
	return nil
}

// Close releases resources. chromem persists incrementally, so there is
// nothing to flush.
func (s *Store) Close() error {
	return nil
}

// chunkMetadata flattens the indexed chunk fields into the string map
// chromem stores with each record. Numeric fields are stringified so
// query results can reconstruct line ranges.
func chunkMetadata(chunk domain.Chunk) map[string]string {
	meta := map[string]string{
		"document_id": chunk.DocumentID,
		"file_path":   chunk.SourcePath,
		"chunk_type":  string(chunk.Type),
		"chunk_index": strconv.Itoa(chunk.Position),
		"line_start":  strconv.Itoa(chunk.LineStart),
		"line_end":    strconv.Itoa(chunk.LineEnd),
	}
	if chunk.Language != "" {
		meta["language"] = chunk.Language
	}
	if chunk.Name != "" {
		meta["name"] = chunk.Name
	}
	if chunk.Parent != "" {
		meta["parent"] = chunk.Parent
	}
	if chunk.HasDocstring {
		meta["has_docstring"] = "true"
	}
	for k, v := range chunk.Metadata {
		meta[k] = v
	}
	return meta
}
