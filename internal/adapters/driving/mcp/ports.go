package mcp

import (
	"github.com/custodia-labs/docdex/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieve answers queries against indexed repositories.
	Retrieve driving.RetrieveService

	// Collections lists and inspects indexed repositories.
	Collections driving.CollectionService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieve == nil {
		return ErrMissingRetrieveService
	}
	if p.Collections == nil {
		return ErrMissingCollectionService
	}
	return nil
}
