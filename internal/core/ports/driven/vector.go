package driven

import (
	"context"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// VectorStore persists embeddings in per-repository collections and runs
// similarity queries against them. Backed by chromem with on-disk
// persistence.
type VectorStore interface {
	// EnsureCollection creates the named collection if it does not exist.
	// Metadata is attached on first creation and left untouched afterwards.
	EnsureCollection(ctx context.Context, name string, metadata map[string]string) error

	// HasCollection reports whether the named collection exists.
	HasCollection(name string) bool

	// AddChunks stores the chunks with their embeddings, creating the
	// collection if it does not exist yet. The slices are parallel:
	// vectors[i] embeds chunks[i]. A length disagreement fails the
	// whole call with domain.ErrLengthMismatch and stores nothing.
	AddChunks(ctx context.Context, collection string, chunks []domain.Chunk, vectors [][]float32) error

	// Query returns up to topK nearest matches for the vector, closest
	// first. Filter restricts matches to records whose metadata contains
	// every given key/value pair. Querying a missing collection fails
	// with domain.ErrCollectionNotFound; an empty collection returns no
	// matches and no error.
	Query(ctx context.Context, collection string, vector []float32, topK int, filter map[string]string) ([]VectorMatch, error)

	// Count returns the number of records in the collection.
	Count(collection string) (int, error)

	// ListCollections returns the names of all collections.
	ListCollections() []string

	// DeleteWhere removes records whose metadata contains every given
	// key/value pair and returns how many records were removed.
	DeleteWhere(ctx context.Context, collection string, filter map[string]string) (int, error)

	// DeleteCollection removes the collection and all its records.
	// Deleting a missing collection is a no-op.
	DeleteCollection(ctx context.Context, name string) error

	// Close releases resources.
	Close() error
}

// VectorMatch is one similarity query result.
type VectorMatch struct {
	// ID is the stored record ID, normally a chunk ID.
	ID string

	// Content is the stored chunk text.
	Content string

	// Metadata holds the indexed fields stored with the record.
	Metadata map[string]string

	// Distance is the similarity distance to the query vector;
	// lower is closer. Derived as 1 - cosine similarity.
	Distance float64

	// HasDistance reports whether the index computed a distance for
	// this match. Implementations that cannot score a match leave it
	// false; such matches rank after all scored ones.
	HasDistance bool
}
