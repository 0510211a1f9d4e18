package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driven"
	"github.com/custodia-labs/docdex/internal/core/ports/driving"
	"github.com/custodia-labs/docdex/internal/logger"
)

// DefaultRefreshInterval is the re-ingest period used when no interval
// is configured.
const DefaultRefreshInterval = time.Hour

// Ensure RefreshScheduler implements the interface.
var _ driving.Scheduler = (*RefreshScheduler)(nil)

// RefreshScheduler periodically re-ingests every repository in the
// ledger. It keeps repositories fresh when the connector cannot push
// changes, which is the case for GitHub.
type RefreshScheduler struct {
	interval time.Duration
	ledger   driven.DocumentStore
	ingest   driving.IngestService

	mu         sync.Mutex
	running    bool
	refreshing bool
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

// NewRefreshScheduler creates a scheduler that re-ingests every
// interval. A non-positive interval falls back to
// DefaultRefreshInterval.
func NewRefreshScheduler(
	interval time.Duration,
	ledger driven.DocumentStore,
	ingest driving.IngestService,
) *RefreshScheduler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &RefreshScheduler{
		interval: interval,
		ledger:   ledger,
		ingest:   ingest,
	}
}

// Start begins the refresh loop. This method blocks until Stop is
// called or ctx is cancelled.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	logger.Info("Refreshing repositories every %s", s.interval)

	// First pass runs immediately so a fresh start is never stale.
	s.runPass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

// Stop gracefully shuts down the scheduler and waits for a running
// refresh pass to complete.
func (s *RefreshScheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// runPass launches one refresh pass. A tick arriving while the previous
// pass still runs is skipped rather than stacked.
func (s *RefreshScheduler) runPass(ctx context.Context) {
	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		logger.Debug("Refresh pass still running, skipping tick")
		return
	}
	s.refreshing = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.refreshAll(ctx)

		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
	}()
}

// refreshAll re-ingests the ledger's repositories one at a time.
// A failing repository is logged and skipped.
func (s *RefreshScheduler) refreshAll(ctx context.Context) {
	repos, err := s.ledger.ListRepositories(ctx)
	if err != nil {
		logger.Warn("Refresh: list repositories: %v", err)
		return
	}

	for i := range repos {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		default:
		}

		repo := refreshIdentity(repos[i])
		stats, err := s.ingest.Ingest(ctx, repo)
		if err != nil {
			logger.Warn("Refresh of %s failed: %v", repo, err)
			continue
		}
		if stats.FilesProcessed > 0 {
			logger.Info("Refreshed %s: %d files re-indexed", repo, stats.FilesProcessed)
		}
	}
}

// refreshIdentity rebuilds the repository identity from its ledger record.
func refreshIdentity(record domain.Repository) domain.RepositoryID {
	return domain.RepositoryID{
		Owner: record.Owner,
		Name:  record.Name,
		URL:   record.URL,
	}
}
