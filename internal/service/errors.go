package service

import "errors"

// Store faults are translated into these sentinels at the service boundary;
// raw driver errors never reach the HTTP layer.
var (
	// ErrEndpointRequired rejects a record before any store access happens.
	ErrEndpointRequired = errors.New("endpoint is required")

	// ErrWriteFailed covers both an unreachable store and a rejected insert.
	ErrWriteFailed = errors.New("failed to write call record")

	// ErrReadFailed is distinct from an empty result: readers report "no
	// rows yet" as a nil record, never as an error.
	ErrReadFailed = errors.New("failed to read call records")
)
