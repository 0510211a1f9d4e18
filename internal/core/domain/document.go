package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// DocType classifies a source file for chunking strategy selection.
type DocType string

const (
	// DocTypeMarkdown is header-structured prose (.md, .markdown, .rst).
	DocTypeMarkdown DocType = "markdown"

	// DocTypeText is unstructured prose.
	DocTypeText DocType = "text"

	// DocTypeCode is source code in a recognised language.
	DocTypeCode DocType = "code"
)

// codeLanguages maps file extensions to language names for the
// syntax-aware chunking strategy.
var codeLanguages = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".java": "java",
	".go":   "go",
	".rs":   "rust",
}

// DocTypeForPath selects the document type from a file extension.
// Unrecognised extensions fall back to plain text.
func DocTypeForPath(path string) DocType {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".md", ".markdown", ".rst":
		return DocTypeMarkdown
	case ".txt", ".text":
		return DocTypeText
	}
	if _, ok := codeLanguages[ext]; ok {
		return DocTypeCode
	}
	return DocTypeText
}

// LanguageForPath returns the language name for a code file,
// or "" when the extension is not a recognised code extension.
func LanguageForPath(path string) string {
	return codeLanguages[strings.ToLower(filepath.Ext(path))]
}

// docExtensions are the documentation formats ingested from every source.
var docExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".rst":      true,
}

// IsIngestablePath reports whether connectors should deliver a file.
// Documentation files always qualify; source files only when code
// ingestion is enabled.
func IsIngestablePath(path string, includeCode bool) bool {
	if docExtensions[strings.ToLower(filepath.Ext(path))] {
		return true
	}
	return includeCode && LanguageForPath(path) != ""
}

// RepoFile is one decoded file delivered by a connector. Content is
// always UTF-8 text; connectors skip binary files.
type RepoFile struct {
	// Path is the repository-relative path.
	Path string

	// Content is the decoded file body.
	Content string

	// SHA identifies the content version at the source, when the
	// connector provides one.
	SHA string

	// Size is the content length in bytes.
	Size int64

	// URI is the canonical addressable location of the file.
	URI string
}

// TreeEntry is one repository tree entry from a contents-free listing.
// Unlike RepoFile it covers every path, not just ingestable ones.
type TreeEntry struct {
	// Path is the repository-relative path.
	Path string

	// IsDir reports whether the entry is a directory.
	IsDir bool
}

// ChangeType classifies a watched file change.
type ChangeType string

const (
	// ChangeCreated is a newly appeared file.
	ChangeCreated ChangeType = "created"

	// ChangeUpdated is a modified file.
	ChangeUpdated ChangeType = "updated"

	// ChangeDeleted is a removed file. Only the path is known.
	ChangeDeleted ChangeType = "deleted"
)

// FileChange is one change observed while watching a source.
type FileChange struct {
	// Type is the kind of change.
	Type ChangeType

	// File carries the changed file. For deletions only Path is set.
	File RepoFile
}

// Document is the ledger record for one ingested file.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Repo is the collection name of the owning repository.
	Repo string

	// Path is the repository-relative source path.
	Path string

	// Title is the display title derived from content or filename.
	Title string

	// Content is the file body while the document flows through the
	// ingest pipeline. It is not persisted to the ledger.
	Content string

	// DocType records the classification used at ingest time.
	DocType DocType

	// ContentSHA is the digest of the ingested content, used to skip
	// re-ingesting unchanged files.
	ContentSHA string

	// ChunkCount is the number of chunks indexed for this document.
	ChunkCount int

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested.
	UpdatedAt time.Time
}

// Exclusion marks a path that future ingests of a repository must skip.
type Exclusion struct {
	// ID is the unique identifier for the exclusion.
	ID string

	// Repo is the collection name of the repository the rule applies to.
	Repo string

	// Path is the repository-relative path to skip.
	Path string

	// Reason records why the path was excluded.
	Reason string

	// ExcludedAt is when the rule was created.
	ExcludedAt time.Time
}

// Repository is the ledger record for an ingested repository.
type Repository struct {
	// Collection is the derived vector collection name and primary key.
	Collection string

	// URL is the original repository reference as given by the user.
	URL string

	// Owner is the repository owner, empty for local sources.
	Owner string

	// Name is the repository name.
	Name string

	// DocumentCount is the number of documents currently indexed.
	DocumentCount int

	// ChunkCount is the number of chunks currently indexed.
	ChunkCount int

	// LastIngestAt is when the repository was last ingested.
	LastIngestAt time.Time

	// CreatedAt is when the repository was first ingested.
	CreatedAt time.Time
}

// IngestFailure records one file that could not be ingested.
type IngestFailure struct {
	// Path is the repository-relative path that failed.
	Path string

	// Reason is the human-readable failure cause.
	Reason string
}

// IngestStats summarises one ingest run. A failing file never aborts the
// run; it lands in Failures and the run continues.
type IngestStats struct {
	// FilesProcessed is the number of files chunked and indexed.
	FilesProcessed int

	// FilesSkipped is the number of files skipped as unchanged or excluded.
	FilesSkipped int

	// FilesFailed is the number of files that errored.
	FilesFailed int

	// ChunksIndexed is the total number of chunks written to the index.
	ChunksIndexed int

	// Duration is the wall-clock time of the run.
	Duration time.Duration

	// Failures lists per-file failure details.
	Failures []IngestFailure
}
