package domain

import "errors"

// Sentinel errors shared across the core. Adapters translate their
// provider-specific failures into these so services and the CLI can
// branch with errors.Is without importing adapter packages.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a uniqueness conflict on create.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the caller supplied unusable input,
	// such as an empty text for embedding.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLengthMismatch indicates parallel slices of chunks, vectors,
	// and metadata disagree in length.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrCollectionNotFound indicates the vector collection for a
	// repository has not been created yet.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrNotConfigured indicates required settings are missing, such as
	// an unset provider API key.
	ErrNotConfigured = errors.New("not configured")

	// ErrEmbeddingUnavailable indicates the embedding provider could not
	// be reached or rejected the request.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrLLMUnavailable indicates the language model provider could not
	// be reached or rejected the request.
	ErrLLMUnavailable = errors.New("llm provider unavailable")

	// ErrVectorStoreUnavailable indicates the vector index could not be
	// opened or written.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrRateLimited indicates an upstream API rate limit was hit and
	// the operation should be retried later.
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates an operation exceeded its deadline.
	ErrTimeout = errors.New("timeout")

	// ErrConnectorClosed indicates an operation on a closed connector.
	ErrConnectorClosed = errors.New("connector closed")

	// ErrWatchUnsupported indicates the connector cannot push changes.
	ErrWatchUnsupported = errors.New("watch not supported")
)
