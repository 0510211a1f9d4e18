package tui

import "errors"

// ErrMissingRetrieveService is returned when the retrieve service is not provided.
var ErrMissingRetrieveService = errors.New("tui: retrieve service is required")

// ErrMissingCollectionService is returned when the collection service is not provided.
var ErrMissingCollectionService = errors.New("tui: collection service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
