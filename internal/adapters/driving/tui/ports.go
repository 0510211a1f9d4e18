// Package tui provides an interactive terminal user interface for docdex.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docdex/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieve answers queries against indexed repositories.
	Retrieve driving.RetrieveService

	// Collections lists the indexed repositories.
	Collections driving.CollectionService

	// Actions provides copy and open actions on retrieval results.
	// Optional: when nil the bindings report the action as unavailable.
	Actions driving.ResultActionService
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Retrieve == nil {
		return ErrMissingRetrieveService
	}
	if p.Collections == nil {
		return ErrMissingCollectionService
	}
	return nil
}
