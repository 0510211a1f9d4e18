// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants query indexed repositories over stdio or HTTP.
package mcp

import "errors"

// ErrMissingRetrieveService is returned when the retrieve service is not provided.
var ErrMissingRetrieveService = errors.New("mcp: retrieve service is required")

// ErrMissingCollectionService is returned when the collection service is not provided.
var ErrMissingCollectionService = errors.New("mcp: collection service is required")
