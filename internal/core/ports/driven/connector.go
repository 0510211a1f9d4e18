package driven

import (
	"context"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// Connector fetches repository files from a data source.
// Each connector type (github, filesystem) implements this interface.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// Repo returns the repository the connector is bound to.
	Repo() domain.RepositoryID

	// Capabilities returns what this connector supports.
	Capabilities() ConnectorCapabilities

	// Validate checks if the connector is properly configured and can
	// reach its source. For API connectors this makes a test API call;
	// for filesystem it checks the path exists and is readable.
	Validate(ctx context.Context) error

	// List returns every tree entry without fetching contents. Used for
	// structural analysis; unlike Files it includes non-ingestable paths.
	List(ctx context.Context) ([]domain.TreeEntry, error)

	// Files streams every ingestable file from the source.
	// Both channels close when the walk finishes or ctx is cancelled.
	// Errors for individual files are sent on the error channel and do
	// not stop the stream.
	Files(ctx context.Context) (<-chan domain.RepoFile, <-chan error)

	// Watch streams file changes as they happen at the source. Only
	// available if SupportsWatch is true; others return
	// domain.ErrWatchUnsupported. The channel closes when ctx is
	// cancelled.
	Watch(ctx context.Context) (<-chan domain.FileChange, error)

	// Close releases resources.
	Close() error
}

// ConnectorCapabilities describes what a connector supports.
type ConnectorCapabilities struct {
	// SupportsWatch indicates the connector can push real-time changes.
	SupportsWatch bool

	// RequiresAuth indicates the connector needs credentials.
	// False for local connectors like filesystem.
	RequiresAuth bool

	// SupportsRateLimiting indicates the connector throttles its own
	// API calls.
	SupportsRateLimiting bool
}
