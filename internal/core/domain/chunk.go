package domain

// ChunkType classifies the strategy that produced a chunk and what the
// chunk spans.
type ChunkType string

const (
	// ChunkHeaderSection is a prose section bounded by markdown headers.
	ChunkHeaderSection ChunkType = "header_section"

	// ChunkRecursiveWindow is a fixed-size window cut from running text,
	// overlapping its neighbours.
	ChunkRecursiveWindow ChunkType = "recursive_window"

	// ChunkCodeFunction is a top-level function definition.
	ChunkCodeFunction ChunkType = "code_function"

	// ChunkCodeClass is a top-level class or type definition, including
	// everything nested inside it.
	ChunkCodeClass ChunkType = "code_class"
)

// IsValid reports whether the chunk type is a known value.
func (t ChunkType) IsValid() bool {
	switch t {
	case ChunkHeaderSection, ChunkRecursiveWindow, ChunkCodeFunction, ChunkCodeClass:
		return true
	}
	return false
}

// IsCode reports whether the chunk was produced by the syntax-aware
// code strategy.
func (t ChunkType) IsCode() bool {
	return t == ChunkCodeFunction || t == ChunkCodeClass
}

// String returns the string representation of the chunk type.
func (t ChunkType) String() string {
	return string(t)
}

// Chunk is a bounded, addressable span of source text or code. Chunks are
// immutable once produced; embedding and indexing receive them as values.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links the chunk to its parent document record.
	DocumentID string

	// Content is the exact text span of the chunk.
	Content string

	// SourcePath is the repository-relative path of the originating file.
	SourcePath string

	// Position is the insertion-order index within the document, starting
	// at zero. Ordering by Position reproduces document order.
	Position int

	// LineStart is the 1-indexed first source line covered by the chunk.
	LineStart int

	// LineEnd is the 1-indexed last source line covered by the chunk.
	// Always >= LineStart.
	LineEnd int

	// Type records the producing strategy.
	Type ChunkType

	// Language is the detected source language for code chunks,
	// empty for prose.
	Language string

	// Name is the function or class identifier for code chunks.
	Name string

	// Parent is the enclosing construct name when the chunk was lifted
	// out of a named scope. Empty for top-level constructs and prose.
	Parent string

	// HasDocstring reports whether a code construct opens with a
	// documentation comment or string.
	HasDocstring bool

	// Metadata carries extra indexable fields opaque to core logic.
	Metadata map[string]string
}

// LineCount returns the number of source lines the chunk covers.
func (c Chunk) LineCount() int {
	if c.LineEnd < c.LineStart {
		return 0
	}
	return c.LineEnd - c.LineStart + 1
}
