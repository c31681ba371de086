package ratelimit

import (
	"context"
	"fmt"

	"github.com/tuncerburak97/apistats/internal/config"
)

// Service applies a per-IP fixed-window limit backed by a Store.
type Service struct {
	config *config.RateLimitConfig
	store  Store
}

// NewService creates a new rate limiter service
func NewService(cfg *config.RateLimitConfig, store Store) *Service {
	return &Service{
		config: cfg,
		store:  store,
	}
}

// Allow checks whether a request from ip should be allowed.
func (s *Service) Allow(ctx context.Context, ip string) (*Result, error) {
	if !s.config.Enabled {
		return &Result{Limited: false}, nil
	}

	limit := s.config.PerIP.Requests
	count, resetTime, err := s.store.Increment(ctx, "ip:"+ip, s.config.PerIP.Window)
	if err != nil {
		return nil, err
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Limited:   count > limit,
		Limit:     limit,
		Remaining: remaining,
		ResetTime: resetTime,
	}, nil
}

// Reset clears the counter for an IP.
func (s *Service) Reset(ctx context.Context, ip string) error {
	return s.store.Reset(ctx, fmt.Sprintf("ip:%s", ip))
}

// Close closes the rate limiter and its store
func (s *Service) Close() error {
	return s.store.Close()
}
