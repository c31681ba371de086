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

// Recorder owns the write path: it validates a call record, stamps the
// timestamp and persists exactly one row per call. Records are never
// retried; the caller decides whether a failed write is user-visible.
type Recorder struct {
	repo    repository.CallRepository
	timeout time.Duration
	logger  *zerolog.Logger
	metrics *metrics.MetricsCollector
}

func NewRecorder(repo repository.CallRepository, timeout time.Duration, logger *zerolog.Logger, m *metrics.MetricsCollector) *Recorder {
	return &Recorder{
		repo:    repo,
		timeout: timeout,
		logger:  logger,
		metrics: m,
	}
}

// Record persists one call record. An empty endpoint fails immediately with
// ErrEndpointRequired and never opens a connection. CalledAt is stamped here
// with the current wall clock so callers cannot forge timestamps; Method and
// StatusCode fall back to their defaults when unset.
func (r *Recorder) Record(ctx context.Context, rec *model.CallRecord) error {
	if rec.Endpoint == "" {
		return ErrEndpointRequired
	}

	if rec.Method == "" {
		rec.Method = model.DefaultMethod
	}
	if rec.StatusCode == 0 {
		rec.StatusCode = model.DefaultStatusCode
	}
	rec.CalledAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.repo.SaveCall(ctx, rec); err != nil {
		r.logger.Error().
			Err(err).
			Str("endpoint", rec.Endpoint).
			Str("method", rec.Method).
			Msg("Failed to save call record")
		r.metrics.LogError("call_save", err)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	return nil
}
