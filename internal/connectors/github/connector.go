package github

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector fetches files from a single GitHub repository.
type Connector struct {
	repo   domain.RepositoryID
	config Config
	client *Client
	mu     sync.Mutex
	closed bool
}

// New creates a connector bound to one repository.
func New(repo domain.RepositoryID, cfg Config) *Connector {
	cfg.applyDefaults()
	return &Connector{
		repo:   repo,
		config: cfg,
		client: NewClient(cfg.Token),
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "github"
}

// Repo returns the bound repository.
func (c *Connector) Repo() domain.RepositoryID {
	return c.repo
}

// Capabilities returns the connector's capabilities.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsWatch:        false, // No webhooks in a CLI
		RequiresAuth:         true,
		SupportsRateLimiting: true,
	}
}

// Validate checks that the bound repository is reachable with the
// configured credentials.
func (c *Connector) Validate(ctx context.Context) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return domain.ErrConnectorClosed
	}

	if !c.repo.IsGitHub() {
		return fmt.Errorf("%w: %q is not a github repository", domain.ErrInvalidInput, c.repo)
	}

	if _, err := c.client.GetRepository(ctx, c.repo.Owner, c.repo.Name); err != nil {
		switch {
		case IsNotFound(err):
			return fmt.Errorf("%w: repository %s", domain.ErrNotFound, c.repo)
		case IsUnauthorized(err):
			return fmt.Errorf("%w: github token rejected", domain.ErrNotConfigured)
		}
		return fmt.Errorf("validate %s: %w", c.repo, err)
	}

	return nil
}

// List returns the repository tree without fetching any file contents.
func (c *Connector) List(ctx context.Context) ([]domain.TreeEntry, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, domain.ErrConnectorClosed
	}

	return listTree(ctx, c.client, c.repo, c.config)
}

// Files streams every candidate file from the repository tree.
// Callers must receive from both channels until both close; per-file
// failures arrive on the error channel and do not stop the stream.
func (c *Connector) Files(ctx context.Context) (<-chan domain.RepoFile, <-chan error) {
	files := make(chan domain.RepoFile)
	errs := make(chan error)

	go func() {
		defer close(files)
		defer close(errs)

		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			sendErr(ctx, errs, domain.ErrConnectorClosed)
			return
		}

		streamFiles(ctx, c.client, c.repo, c.config, files, errs)
	}()

	return files, errs
}

// Watch is not supported for GitHub (no webhooks in a CLI).
func (c *Connector) Watch(_ context.Context) (<-chan domain.FileChange, error) {
	return nil, domain.ErrWatchUnsupported
}

// Close releases resources.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
