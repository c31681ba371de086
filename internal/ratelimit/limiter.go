package ratelimit

import (
	"context"
	"time"
)

// Result represents the outcome of a rate limit check
type Result struct {
	Limited   bool      // Whether the request is rate limited
	Limit     int       // Allowed requests per window
	Remaining int       // Remaining requests in the current window
	ResetTime time.Time // When the current window resets
}

// Store counts requests per key within a fixed window. Increment returns
// the count after this request and when the window expires.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error)

	// Reset clears the counter for a key
	Reset(ctx context.Context, key string) error

	// Close closes the store connection
	Close() error
}

// Headers for rate limiting
const (
	HeaderRateLimit     = "X-RateLimit-Limit"
	HeaderRateRemaining = "X-RateLimit-Remaining"
	HeaderRateReset     = "X-RateLimit-Reset"
	HeaderRetryAfter    = "Retry-After"
)
