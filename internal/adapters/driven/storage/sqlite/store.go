package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docdex/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*Store)(nil)

// Store is the SQLite-backed document ledger.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docdex/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docdex", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency. Pragmas go in
	// the DSN so every pooled connection gets them, foreign_keys included.
	db, err := sql.Open("sqlite",
		dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Repositories ====================

// SaveRepository stores or updates a repository record.
func (s *Store) SaveRepository(ctx context.Context, repo *domain.Repository) error {
	if repo.Collection == "" {
		return fmt.Errorf("%w: repository collection is empty", domain.ErrInvalidInput)
	}

	if repo.CreatedAt.IsZero() {
		repo.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO repositories (collection, url, owner, name, last_ingest_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection) DO UPDATE SET
			url = excluded.url,
			owner = excluded.owner,
			name = excluded.name,
			last_ingest_at = excluded.last_ingest_at
	`, repo.Collection, repo.URL, repo.Owner, repo.Name,
		nullTime(repo.LastIngestAt), repo.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving repository: %w", err)
	}
	return nil
}

// repositoryColumns selects repository fields with per-repository
// document and chunk totals aggregated from the documents table.
const repositoryColumns = `
	SELECT r.collection, r.url, r.owner, r.name, r.last_ingest_at, r.created_at,
		COUNT(d.id), COALESCE(SUM(d.chunk_count), 0)
	FROM repositories r
	LEFT JOIN documents d ON d.repo = r.collection
`

// GetRepository retrieves a repository by collection name.
func (s *Store) GetRepository(ctx context.Context, collection string) (*domain.Repository, error) {
	row := s.db.QueryRowContext(ctx,
		repositoryColumns+`WHERE r.collection = ? GROUP BY r.collection`, collection)

	repo, err := scanRepository(row)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// ListRepositories returns all repositories ordered by collection name.
func (s *Store) ListRepositories(ctx context.Context) ([]domain.Repository, error) {
	rows, err := s.db.QueryContext(ctx,
		repositoryColumns+`GROUP BY r.collection ORDER BY r.collection`)
	if err != nil {
		return nil, fmt.Errorf("querying repositories: %w", err)
	}
	defer rows.Close()

	var repos []domain.Repository //nolint:prealloc // size unknown from query
	for rows.Next() {
		repo, err := scanRepositoryRows(rows)
		if err != nil {
			return nil, err
		}
		repos = append(repos, *repo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating repositories: %w", err)
	}

	return repos, nil
}

// DeleteRepository removes a repository. Its documents and exclusions
// cascade via foreign keys.
func (s *Store) DeleteRepository(ctx context.Context, collection string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM repositories WHERE collection = ?", collection)
	if err != nil {
		return fmt.Errorf("deleting repository: %w", err)
	}
	return nil
}

// ==================== Documents ====================

// SaveDocument stores or updates a document record.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" || doc.Repo == "" || doc.Path == "" {
		return fmt.Errorf("%w: document id, repo and path are required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, repo, path, title, doc_type, content_sha, chunk_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			repo = excluded.repo,
			path = excluded.path,
			title = excluded.title,
			doc_type = excluded.doc_type,
			content_sha = excluded.content_sha,
			chunk_count = excluded.chunk_count,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Repo, doc.Path, doc.Title, string(doc.DocType),
		doc.ContentSHA, doc.ChunkCount, doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocumentByPath retrieves a document by repository and path.
func (s *Store) GetDocumentByPath(ctx context.Context, repo, path string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, repo, path, title, doc_type, content_sha, chunk_count, created_at, updated_at
		FROM documents WHERE repo = ? AND path = ?
	`, repo, path)

	return scanDocument(row)
}

// ListDocuments returns all documents for a repository ordered by path.
func (s *Store) ListDocuments(ctx context.Context, repo string) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, repo, path, title, doc_type, content_sha, chunk_count, created_at, updated_at
		FROM documents WHERE repo = ?
		ORDER BY path
	`, repo)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// DeleteDocument removes a document record by ID.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ==================== Exclusions ====================

// AddExclusion stores an exclusion rule. Re-excluding the same path
// updates the reason instead of failing.
func (s *Store) AddExclusion(ctx context.Context, exclusion *domain.Exclusion) error {
	if exclusion.ID == "" || exclusion.Repo == "" || exclusion.Path == "" {
		return fmt.Errorf("%w: exclusion id, repo and path are required", domain.ErrInvalidInput)
	}

	if exclusion.ExcludedAt.IsZero() {
		exclusion.ExcludedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exclusions (id, repo, path, reason, excluded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(repo, path) DO UPDATE SET
			reason = excluded.reason,
			excluded_at = excluded.excluded_at
	`, exclusion.ID, exclusion.Repo, exclusion.Path, exclusion.Reason, exclusion.ExcludedAt)

	if err != nil {
		return fmt.Errorf("adding exclusion: %w", err)
	}
	return nil
}

// RemoveExclusion clears the exclusion for one path.
func (s *Store) RemoveExclusion(ctx context.Context, repo, path string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM exclusions WHERE repo = ? AND path = ?", repo, path)
	if err != nil {
		return fmt.Errorf("removing exclusion: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("removing exclusion: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: no exclusion for %s in %s", domain.ErrNotFound, path, repo)
	}
	return nil
}

// ListExclusions returns the exclusion rules for a repository.
func (s *Store) ListExclusions(ctx context.Context, repo string) ([]domain.Exclusion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, repo, path, reason, excluded_at
		FROM exclusions WHERE repo = ?
		ORDER BY path
	`, repo)
	if err != nil {
		return nil, fmt.Errorf("querying exclusions: %w", err)
	}
	defer rows.Close()

	var exclusions []domain.Exclusion //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.Exclusion
		if err := rows.Scan(&e.ID, &e.Repo, &e.Path, &e.Reason, &e.ExcludedAt); err != nil {
			return nil, fmt.Errorf("scanning exclusion: %w", err)
		}
		exclusions = append(exclusions, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating exclusions: %w", err)
	}

	return exclusions, nil
}

// ==================== Helper Functions ====================

// nullTime converts a zero time to NULL for storage.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// scanRepository scans a single repository row.
func scanRepository(row *sql.Row) (*domain.Repository, error) {
	var repo domain.Repository
	var lastIngestAt sql.NullTime

	if err := row.Scan(&repo.Collection, &repo.URL, &repo.Owner, &repo.Name,
		&lastIngestAt, &repo.CreatedAt, &repo.DocumentCount, &repo.ChunkCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning repository: %w", err)
	}

	if lastIngestAt.Valid {
		repo.LastIngestAt = lastIngestAt.Time
	}

	return &repo, nil
}

// scanRepositoryRows scans a repository from *sql.Rows.
func scanRepositoryRows(rows *sql.Rows) (*domain.Repository, error) {
	var repo domain.Repository
	var lastIngestAt sql.NullTime

	if err := rows.Scan(&repo.Collection, &repo.URL, &repo.Owner, &repo.Name,
		&lastIngestAt, &repo.CreatedAt, &repo.DocumentCount, &repo.ChunkCount); err != nil {
		return nil, fmt.Errorf("scanning repository: %w", err)
	}

	if lastIngestAt.Valid {
		repo.LastIngestAt = lastIngestAt.Time
	}

	return &repo, nil
}

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var docType string

	if err := row.Scan(&doc.ID, &doc.Repo, &doc.Path, &doc.Title, &docType,
		&doc.ContentSHA, &doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.DocType = domain.DocType(docType)
	return &doc, nil
}

// scanDocumentRows scans a document from *sql.Rows.
func scanDocumentRows(rows *sql.Rows) (*domain.Document, error) {
	var doc domain.Document
	var docType string

	if err := rows.Scan(&doc.ID, &doc.Repo, &doc.Path, &doc.Title, &docType,
		&doc.ContentSHA, &doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.DocType = domain.DocType(docType)
	return &doc, nil
}
