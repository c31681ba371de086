package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tuncerburak97/apistats/internal/metrics"
	"github.com/tuncerburak97/apistats/internal/model"
	"github.com/tuncerburak97/apistats/internal/repository"
)

// StatsReader owns the read path. Each operation is one independent store
// round trip; there is no shared transaction, so two aggregates read in
// sequence may see different table states.
type StatsReader struct {
	repo    repository.CallRepository
	timeout time.Duration
	logger  *zerolog.Logger
	metrics *metrics.MetricsCollector
}

func NewStatsReader(repo repository.CallRepository, timeout time.Duration, logger *zerolog.Logger, m *metrics.MetricsCollector) *StatsReader {
	return &StatsReader{
		repo:    repo,
		timeout: timeout,
		logger:  logger,
		metrics: m,
	}
}

// LastCalled returns the most recent record by called_at, or nil when no
// calls have been recorded yet. Ties are broken in store-defined order.
func (s *StatsReader) LastCalled(ctx context.Context) (*model.CallRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec, err := s.repo.LastCalled(ctx)
	if err != nil {
		return nil, s.readError("last_called", err)
	}
	return rec, nil
}

// MostFrequent returns the endpoint with the largest call count, or nil on
// an empty table. The winner between equal counts is store-defined and
// therefore non-deterministic.
func (s *StatsReader) MostFrequent(ctx context.Context) (*model.EndpointCount, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ec, err := s.repo.MostFrequent(ctx)
	if err != nil {
		return nil, s.readError("most_frequent", err)
	}
	return ec, nil
}

// Counts returns every endpoint's call count ordered by descending count.
// An empty table yields an empty slice, not an error.
func (s *StatsReader) Counts(ctx context.Context) ([]model.EndpointCount, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, s.readError("counts", err)
	}
	return counts, nil
}

// CheckHealth reports whether a trivial store round trip succeeds. It never
// returns an error; any fault at any stage yields false.
func (s *StatsReader) CheckHealth(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Ping(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Database health check failed")
		s.metrics.LogError("health_check", err)
		return false
	}
	return true
}

func (s *StatsReader) readError(operation string, err error) error {
	s.logger.Error().
		Err(err).
		Str("operation", operation).
		Msg("Failed to read call records")
	s.metrics.LogError("call_read", err)
	return fmt.Errorf("%w: %v", ErrReadFailed, err)
}
