package services

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driven"
	"github.com/custodia-labs/docdex/internal/core/ports/driving"
	"github.com/custodia-labs/docdex/internal/logger"
)

// Ensure RetrieveService implements the interface.
var _ driving.RetrieveService = (*RetrieveService)(nil)

// RetrieveService answers queries against indexed repositories.
type RetrieveService struct {
	vectors  driven.VectorStore
	embedder driven.EmbeddingService
	planner  *QueryPlanner
	defaults domain.RetrievalSettings
}

// NewRetrieveService creates a new retrieve service.
//
// Parameters:
//   - vectors: vector index to query
//   - embedder: query embedding
//   - planner: query planning; expansion degrades to the summary query
//     when the planner has no LLM
//   - defaults: configured retrieval defaults
func NewRetrieveService(
	vectors driven.VectorStore,
	embedder driven.EmbeddingService,
	planner *QueryPlanner,
	defaults domain.RetrievalSettings,
) *RetrieveService {
	return &RetrieveService{
		vectors:  vectors,
		embedder: embedder,
		planner:  planner,
		defaults: defaults,
	}
}

// Query runs a single free-text query against one repository.
func (s *RetrieveService) Query(
	ctx context.Context, repo domain.RepositoryID, query string, opts domain.RetrievalOptions,
) ([]domain.RetrievalResult, error) {
	logger.Section("Retrieval")
	logger.Debug("Repo: %s, query: %q", repo, query)

	// Return empty for empty query
	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.RetrievalResult{}, nil
	}

	topK := s.topK(opts)
	collection := repo.CollectionName()

	// Nothing indexed yet is a normal empty result, not an error.
	if !s.vectors.HasCollection(collection) {
		logger.Debug("Collection %s absent, returning no results", collection)
		return []domain.RetrievalResult{}, nil
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.vectors.Query(ctx, collection, vector, topK, opts.Filter)
	if errors.Is(err, domain.ErrCollectionNotFound) {
		return []domain.RetrievalResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	logger.Info("Results: %d", len(matches))
	return formatMatches(matches, collection, query), nil
}

// QueryBrief plans queries from the brief, fans them out against one
// repository, and returns the merged, deduplicated results.
func (s *RetrieveService) QueryBrief(
	ctx context.Context, repo domain.RepositoryID, brief domain.Brief, opts domain.RetrievalOptions,
) ([]domain.RetrievalResult, error) {
	logger.Section("Brief Retrieval")
	logger.Debug("Repo: %s", repo)

	// 1. Plan the queries
	plan := s.plan(ctx, brief, opts)
	logger.Info("Query plan: %d queries (expanded=%t)", len(plan.Queries), plan.Expanded)

	topK := s.topK(opts)
	collection := repo.CollectionName()

	// 2. Nothing indexed yet is a normal empty result, not an error.
	if !s.vectors.HasCollection(collection) {
		logger.Debug("Collection %s absent, returning no results", collection)
		return []domain.RetrievalResult{}, nil
	}

	// 3. Embed all planned queries in one batch
	texts := plan.Texts()
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed queries: %w", err)
	}

	// 4. Fan out one index lookup per query. Lookups are independent;
	// each goroutine writes only its own slot.
	perQuery := make([][]driven.VectorMatch, len(texts))

	var wg sync.WaitGroup
	for i := range texts {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			matches, queryErr := s.vectors.Query(ctx, collection, vectors[idx], topK, opts.Filter)
			if queryErr != nil {
				// Partial results beat none: a failed query is
				// logged and skipped.
				logger.Warn("Query %d (%q) failed: %v", idx, texts[idx], queryErr)
				return
			}
			perQuery[idx] = matches
		}(i)
	}
	wg.Wait()

	// 5. Merge, dedup, and rank single-threaded so ordering stays
	// reproducible.
	results := mergeMatches(perQuery, plan, collection)
	if len(results) > topK {
		results = results[:topK]
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}

// plan produces the query plan, degrading to the single summary query
// when expansion is disabled, unavailable, or fails.
func (s *RetrieveService) plan(
	ctx context.Context, brief domain.Brief, opts domain.RetrievalOptions,
) domain.QueryPlan {
	if !opts.Expand {
		return s.planner.Basic(brief)
	}

	maxQueries := opts.MaxQueries
	if maxQueries <= 0 {
		maxQueries = s.defaults.MaxQueries
	}

	plan, err := s.planner.Expand(ctx, brief, maxQueries)
	if err != nil {
		logger.Warn("Query expansion failed: %v (using summary query)", err)
		return s.planner.Basic(brief)
	}
	return plan
}

func (s *RetrieveService) topK(opts domain.RetrievalOptions) int {
	if opts.TopK > 0 {
		return opts.TopK
	}
	if s.defaults.TopK > 0 {
		return s.defaults.TopK
	}
	return domain.DefaultTopK
}

// mergeMatches reduces per-query result sets into one ranked list.
// Duplicate content keeps the copy with the lower distance; a scored
// copy always beats an unscored one. Unscored results sort after all
// scored ones, keeping their relative order.
func mergeMatches(perQuery [][]driven.VectorMatch, plan domain.QueryPlan, collection string) []domain.RetrievalResult {
	byDigest := make(map[[32]byte]int)
	var merged []domain.RetrievalResult

	for idx, matches := range perQuery {
		for _, match := range matches {
			result := toResult(match, collection, plan.Queries[idx].Text)
			digest := sha256.Sum256([]byte(match.Content))

			pos, seen := byDigest[digest]
			if !seen {
				byDigest[digest] = len(merged)
				merged = append(merged, result)
				continue
			}
			if closerThan(result, merged[pos]) {
				merged[pos] = result
			}
		}
	}

	// Stable sort keeps arrival order among unscored results.
	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.HasDistance != b.HasDistance {
			return a.HasDistance
		}
		if !a.HasDistance {
			return false
		}
		return a.Distance < b.Distance
	})

	return merged
}

// closerThan reports whether a ranks ahead of b for dedup purposes.
func closerThan(a, b domain.RetrievalResult) bool {
	if a.HasDistance != b.HasDistance {
		return a.HasDistance
	}
	if !a.HasDistance {
		return false
	}
	return a.Distance < b.Distance
}

// formatMatches converts index matches for one query into results.
func formatMatches(matches []driven.VectorMatch, collection, query string) []domain.RetrievalResult {
	results := make([]domain.RetrievalResult, len(matches))
	for i, match := range matches {
		results[i] = toResult(match, collection, query)
	}
	return results
}

// toResult lifts the well-known metadata keys into named fields and
// carries the rest verbatim.
func toResult(match driven.VectorMatch, collection, query string) domain.RetrievalResult {
	result := domain.RetrievalResult{
		Content:     match.Content,
		Repo:        collection,
		Path:        match.Metadata["file_path"],
		LineStart:   metadataInt(match.Metadata, "line_start"),
		LineEnd:     metadataInt(match.Metadata, "line_end"),
		Distance:    match.Distance,
		HasDistance: match.HasDistance,
		Query:       query,
	}

	lifted := map[string]bool{"file_path": true, "line_start": true, "line_end": true}
	for key, value := range match.Metadata {
		if lifted[key] {
			continue
		}
		if result.Metadata == nil {
			result.Metadata = make(map[string]string)
		}
		result.Metadata[key] = value
	}
	return result
}

func metadataInt(metadata map[string]string, key string) int {
	n, err := strconv.Atoi(metadata[key])
	if err != nil {
		return 0
	}
	return n
}
