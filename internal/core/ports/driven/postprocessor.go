package driven

import (
	"context"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// PostProcessor processes document content to produce or refine chunks.
// PostProcessors are chained in a pipeline.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns chunks.
	// If the processor creates chunks (e.g., the chunker), it receives nil
	// and returns new chunks. If it refines chunks, it receives and
	// returns them.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
