package services

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driven"
	"github.com/custodia-labs/docdex/internal/core/ports/driving"
	"github.com/custodia-labs/docdex/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// ConnectorFactory builds a connector bound to the repository. Wiring
// injects one so the core never imports connector packages.
type ConnectorFactory func(repo domain.RepositoryID) (driven.Connector, error)

// IngestService indexes repository content for retrieval.
type IngestService struct {
	connectorFor ConnectorFactory
	ledger       driven.DocumentStore
	vectors      driven.VectorStore
	embedder     driven.EmbeddingService
	pipeline     driven.PostProcessorPipeline
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	connectorFor ConnectorFactory,
	ledger driven.DocumentStore,
	vectors driven.VectorStore,
	embedder driven.EmbeddingService,
	pipeline driven.PostProcessorPipeline,
) *IngestService {
	return &IngestService{
		connectorFor: connectorFor,
		ledger:       ledger,
		vectors:      vectors,
		embedder:     embedder,
		pipeline:     pipeline,
	}
}

// Ingest fetches, chunks, embeds, and indexes every ingestable file of
// the repository.
func (s *IngestService) Ingest(ctx context.Context, repo domain.RepositoryID) (*domain.IngestStats, error) {
	connector, err := s.connectorFor(repo)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	return s.ingestAll(ctx, repo, connector)
}

// ingestAll drains the connector's file stream into the index.
//
//nolint:gocognit // Orchestration function coordinating multiple async operations
func (s *IngestService) ingestAll(
	ctx context.Context, repo domain.RepositoryID, connector driven.Connector,
) (*domain.IngestStats, error) {
	logger.Section("Ingest")
	logger.Info("Repository: %s (%s connector)", repo, connector.Type())

	start := time.Now()
	collection := repo.CollectionName()

	// 1. Check the source is reachable before touching any state
	if err := connector.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate connector: %w", err)
	}

	// 2. Prepare the collection and the exclusion set
	if err := s.vectors.EnsureCollection(ctx, collection, collectionMetadata(repo)); err != nil {
		return nil, fmt.Errorf("ensure collection: %w", err)
	}

	excluded, err := s.exclusionSet(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("list exclusions: %w", err)
	}

	// 3. Drain the file stream. Per-file failures are recorded and
	// never abort the run.
	stats := &domain.IngestStats{}
	files, errs := connector.Files(ctx)

	var streamErr error
	for files != nil || errs != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			streamErr = err
			stats.FilesFailed++
			stats.Failures = append(stats.Failures, domain.IngestFailure{Reason: err.Error()})
			logger.Warn("Connector error: %v", err)

		case file, ok := <-files:
			if !ok {
				files = nil
				continue
			}
			s.processFile(ctx, collection, file, excluded, stats)
		}
	}

	// A stream failure with nothing ingested means the source itself
	// was unreachable, such as a missing repository.
	if streamErr != nil && stats.FilesProcessed == 0 && stats.FilesSkipped == 0 {
		return nil, fmt.Errorf("fetch files: %w", streamErr)
	}

	// 4. Record the ingest on the repository ledger entry
	if err := s.touchRepository(ctx, repo, collection); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	logger.Info("Ingest complete: %d processed, %d skipped, %d failed, %d chunks in %s",
		stats.FilesProcessed, stats.FilesSkipped, stats.FilesFailed, stats.ChunksIndexed,
		stats.Duration.Round(time.Millisecond))

	return stats, nil
}

// processFile ingests one streamed file, updating stats in place.
func (s *IngestService) processFile(
	ctx context.Context, collection string, file domain.RepoFile,
	excluded map[string]bool, stats *domain.IngestStats,
) {
	if excluded[file.Path] {
		logger.Debug("Skipping excluded file: %s", file.Path)
		stats.FilesSkipped++
		return
	}

	digest := contentDigest(file.Content)
	existing, err := s.ledger.GetDocumentByPath(ctx, collection, file.Path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		stats.FilesFailed++
		stats.Failures = append(stats.Failures, domain.IngestFailure{
			Path: file.Path, Reason: err.Error(),
		})
		return
	}
	if existing != nil && existing.ContentSHA == digest {
		logger.Debug("Unchanged: %s", file.Path)
		stats.FilesSkipped++
		return
	}

	doc, err := s.indexFile(ctx, collection, file, existing, digest)
	if err != nil {
		stats.FilesFailed++
		stats.Failures = append(stats.Failures, domain.IngestFailure{
			Path: file.Path, Reason: err.Error(),
		})
		logger.Warn("Failed to ingest %s: %v", file.Path, err)
		return
	}

	stats.FilesProcessed++
	stats.ChunksIndexed += doc.ChunkCount
	logger.Debug("Ingested %s: %d chunks", file.Path, doc.ChunkCount)
}

// IngestFile indexes a single already-fetched file. Excluded paths are
// rejected so a user-deleted document stays deleted.
func (s *IngestService) IngestFile(
	ctx context.Context, repo domain.RepositoryID, file domain.RepoFile,
) (*domain.Document, error) {
	collection := repo.CollectionName()

	excluded, err := s.exclusionSet(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("list exclusions: %w", err)
	}
	if excluded[file.Path] {
		return nil, fmt.Errorf("%w: path %s is excluded", domain.ErrInvalidInput, file.Path)
	}

	if err := s.vectors.EnsureCollection(ctx, collection, collectionMetadata(repo)); err != nil {
		return nil, fmt.Errorf("ensure collection: %w", err)
	}

	digest := contentDigest(file.Content)
	existing, err := s.ledger.GetDocumentByPath(ctx, collection, file.Path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load document record: %w", err)
	}
	if existing != nil && existing.ContentSHA == digest {
		logger.Debug("Unchanged: %s", file.Path)
		return existing, nil
	}

	doc, err := s.indexFile(ctx, collection, file, existing, digest)
	if err != nil {
		return nil, err
	}
	if err := s.touchRepository(ctx, repo, collection); err != nil {
		return nil, err
	}
	return doc, nil
}

// indexFile runs the chunk, embed, index, record pipeline for one file.
func (s *IngestService) indexFile(
	ctx context.Context, collection string, file domain.RepoFile,
	existing *domain.Document, digest string,
) (*domain.Document, error) {
	// 1. BUILD DOCUMENT RECORD
	doc := &domain.Document{
		ID:         uuid.NewString(),
		Repo:       collection,
		Path:       file.Path,
		Title:      documentTitle(file),
		Content:    file.Content,
		DocType:    domain.DocTypeForPath(file.Path),
		ContentSHA: digest,
	}
	if existing != nil {
		// A path keeps its document identity across re-ingests.
		doc.ID = existing.ID
	}

	// 2. RUN POST-PROCESSOR PIPELINE (produces chunks)
	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("post-process: %w", err)
	}

	// 3. STAMP INDEX METADATA
	now := time.Now().UTC().Format(time.RFC3339)
	for i := range chunks {
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = make(map[string]string, 4)
		}
		chunks[i].Metadata["repo"] = collection
		chunks[i].Metadata["doc_type"] = string(doc.DocType)
		chunks[i].Metadata["timestamp"] = now
		if file.URI != "" {
			chunks[i].Metadata["uri"] = file.URI
		}
	}

	// 4. GENERATE EMBEDDINGS
	var vectors [][]float32
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Content
		}
		vectors, err = s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks: %w", err)
		}
	}

	// 5. REPLACE INDEXED CHUNKS
	// Stale chunks from a previous version of the file would otherwise
	// survive the update.
	if _, err := s.vectors.DeleteWhere(ctx, collection, map[string]string{"file_path": file.Path}); err != nil {
		return nil, fmt.Errorf("clear stale chunks: %w", err)
	}
	if len(chunks) > 0 {
		if err := s.vectors.AddChunks(ctx, collection, chunks, vectors); err != nil {
			return nil, fmt.Errorf("index chunks: %w", err)
		}
	}

	// 6. RECORD IN LEDGER
	doc.ChunkCount = len(chunks)
	if err := s.ledger.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	return doc, nil
}

// Watch keeps the index fresh until ctx is cancelled. A full ingest
// runs first so the index reflects the tree as of now.
func (s *IngestService) Watch(ctx context.Context, repo domain.RepositoryID) error {
	connector, err := s.connectorFor(repo)
	if err != nil {
		return fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	if !connector.Capabilities().SupportsWatch {
		return fmt.Errorf("%w: %s connector", domain.ErrWatchUnsupported, connector.Type())
	}

	if _, err := s.ingestAll(ctx, repo, connector); err != nil {
		return fmt.Errorf("initial ingest: %w", err)
	}

	changes, err := connector.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	logger.Section("Watch")
	logger.Info("Watching %s for changes", repo)

	collection := repo.CollectionName()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case change, ok := <-changes:
			if !ok {
				return nil
			}
			s.applyChange(ctx, repo, collection, change)
		}
	}
}

// applyChange reacts to one watched file change. Failures are logged,
// never fatal: the watch outlives individual bad events.
func (s *IngestService) applyChange(
	ctx context.Context, repo domain.RepositoryID, collection string, change domain.FileChange,
) {
	switch change.Type {
	case domain.ChangeCreated, domain.ChangeUpdated:
		doc, err := s.IngestFile(ctx, repo, change.File)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				logger.Debug("Skipping %s: %v", change.File.Path, err)
				return
			}
			logger.Warn("Failed to ingest %s: %v", change.File.Path, err)
			return
		}
		logger.Info("Indexed %s: %d chunks", change.File.Path, doc.ChunkCount)

	case domain.ChangeDeleted:
		if err := s.removeFile(ctx, collection, change.File.Path); err != nil {
			logger.Warn("Failed to remove %s: %v", change.File.Path, err)
			return
		}
		logger.Info("Removed %s", change.File.Path)
	}
}

// removeFile clears a deleted file from the index and the ledger. No
// exclusion is recorded: a file disappearing at the source is not a
// user opt-out, and it may legitimately come back.
func (s *IngestService) removeFile(ctx context.Context, collection, filePath string) error {
	if _, err := s.vectors.DeleteWhere(ctx, collection, map[string]string{"file_path": filePath}); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}

	doc, err := s.ledger.GetDocumentByPath(ctx, collection, filePath)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load document record: %w", err)
	}
	if err := s.ledger.DeleteDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document record: %w", err)
	}
	return nil
}

// exclusionSet loads the repository's exclusions keyed by path.
func (s *IngestService) exclusionSet(ctx context.Context, collection string) (map[string]bool, error) {
	exclusions, err := s.ledger.ListExclusions(ctx, collection)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(exclusions))
	for _, e := range exclusions {
		set[e.Path] = true
	}
	return set, nil
}

// touchRepository upserts the ledger entry recording this ingest.
func (s *IngestService) touchRepository(ctx context.Context, repo domain.RepositoryID, collection string) error {
	record := &domain.Repository{
		Collection:   collection,
		URL:          repo.URL,
		Owner:        repo.Owner,
		Name:         repo.Name,
		LastIngestAt: time.Now().UTC(),
	}
	if err := s.ledger.SaveRepository(ctx, record); err != nil {
		return fmt.Errorf("save repository: %w", err)
	}
	return nil
}

func collectionMetadata(repo domain.RepositoryID) map[string]string {
	return map[string]string{
		"repo": repo.String(),
		"url":  repo.URL,
	}
}

func contentDigest(content string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(content)))
}

// documentTitle prefers the first level-one markdown heading, falling
// back to the file name.
func documentTitle(file domain.RepoFile) string {
	if domain.DocTypeForPath(file.Path) == domain.DocTypeMarkdown {
		for _, line := range strings.Split(file.Content, "\n") {
			if after, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
				return strings.TrimSpace(after)
			}
		}
	}
	return path.Base(file.Path)
}
