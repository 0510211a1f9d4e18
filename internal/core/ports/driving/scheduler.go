package driving

import "context"

// Scheduler runs background index refreshes.
type Scheduler interface {
	// Start begins the refresh loop.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the loop and waits for an in-flight pass.
	Stop() error
}
