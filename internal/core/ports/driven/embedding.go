// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorStore which stores and searches vectors.
// EmbeddingService generates vectors; VectorStore stores them.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Empty or whitespace-only text is rejected with domain.ErrInvalidInput.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// The result is parallel to texts: one vector per input, in order.
	// An empty batch is rejected with domain.ErrInvalidInput.
	// Any failure fails the whole batch; no partial results are returned.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// This is determined by the model and must match the stored collection.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// This is used at startup to verify connectivity before committing to ingest.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
