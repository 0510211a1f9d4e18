package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driven"
	"github.com/custodia-labs/docdex/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 200)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	size := chunker.DefaultChunkSize
	overlap := chunker.DefaultChunkOverlap

	if v, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		size = v
	}
	if v, ok := getIntFromConfig(cfg, "overlap"); ok {
		overlap = v
	}

	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk_size must be positive", domain.ErrInvalidInput)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative", domain.ErrInvalidInput)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: overlap must be smaller than chunk_size", domain.ErrInvalidInput)
	}

	return chunker.New(chunker.WithChunkSize(size), chunker.WithOverlap(overlap)), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
// The second return reports whether the key was present with a numeric value.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
