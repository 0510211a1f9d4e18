// Package chunker provides boundary-aware document chunking.
//
// Three strategies cover the supported document types: markdown is split
// on header boundaries, code is split on top-level constructs, and plain
// text falls back to fixed-size windows with overlap. Every chunk carries
// its 1-indexed source line range.
package chunker

import (
	"context"

	"github.com/google/uuid"

	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/logger"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits document content into chunks using a strategy picked
// from the document type. It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	var spans []span
	switch doc.DocType {
	case domain.DocTypeMarkdown:
		spans = p.chunkMarkdown(doc.Content)
	case domain.DocTypeCode:
		spans = p.chunkCode(doc.Content, domain.LanguageForPath(doc.Path))
	default:
		spans = p.chunkWindows(doc.Content, 1)
	}

	chunks := make([]domain.Chunk, 0, len(spans))
	for i, s := range spans {
		chunks = append(chunks, s.toChunk(doc, i))
	}

	logger.Debug("chunked %s: %d chunks (%s)", doc.Path, len(chunks), doc.DocType)
	return chunks, nil
}

// span is an intermediate chunk before identity and document fields are
// attached.
type span struct {
	content      string
	lineStart    int
	lineEnd      int
	chunkType    domain.ChunkType
	language     string
	name         string
	parent       string
	hasDocstring bool
	header       string
}

func (s span) toChunk(doc *domain.Document, position int) domain.Chunk {
	meta := make(map[string]string)
	if s.header != "" {
		meta["header"] = s.header
	}

	return domain.Chunk{
		ID:           uuid.New().String(),
		DocumentID:   doc.ID,
		Content:      s.content,
		SourcePath:   doc.Path,
		Position:     position,
		LineStart:    s.lineStart,
		LineEnd:      s.lineEnd,
		Type:         s.chunkType,
		Language:     s.language,
		Name:         s.name,
		Parent:       s.parent,
		HasDocstring: s.hasDocstring,
		Metadata:     meta,
	}
}
