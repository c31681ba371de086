package middleware

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tuncerburak97/apistats/internal/api"
	"github.com/tuncerburak97/apistats/internal/metrics"
	"github.com/tuncerburak97/apistats/internal/model"
	"github.com/tuncerburak97/apistats/internal/service"
)

// AutoLog observes every request and records non-excluded ones as call
// records after the handler has run, carrying the actual response status.
// Recording is a non-critical side effect: it happens in a goroutine whose
// error is logged and counted but never propagated, so a broken store can
// never degrade the request being measured.
func AutoLog(recorder *service.Recorder, m *metrics.MetricsCollector, logger *zerolog.Logger, excludedPaths []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m.IncActiveRequests()
		defer m.DecActiveRequests()

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		method := c.Method()
		path := c.Path()
		m.ObserveRequestDuration(method, path, strconv.Itoa(status), time.Since(start))
		m.IncRequestCounter(method, path, strconv.Itoa(status))

		if excluded(path, excludedPaths) {
			return err
		}

		// Copy everything out of the fiber ctx here: it is recycled as soon
		// as this handler returns, before the goroutine below runs.
		rec := &model.CallRecord{
			Endpoint:    path,
			Method:      method,
			IPAddress:   api.ClientIP(c),
			RequestBody: jsonBody(c),
			StatusCode:  status,
		}
		traceID := uuid.New().String()

		go func(rec *model.CallRecord, traceID string) {
			if rerr := recorder.Record(context.Background(), rec); rerr != nil {
				logger.Warn().
					Err(rerr).
					Str("trace_id", traceID).
					Str("endpoint", rec.Endpoint).
					Msg("Best-effort request logging failed")
				return
			}
			m.IncRecordedCalls("auto")
		}(rec, traceID)

		return err
	}
}

func excluded(path string, excludedPaths []string) bool {
	for _, prefix := range excludedPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// jsonBody returns a copy of the request body when it is JSON, mirroring
// how the record is stored for explicit track calls. Non-JSON payloads are
// not audited.
func jsonBody(c *fiber.Ctx) json.RawMessage {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		return nil
	}
	body := c.Body()
	if len(body) == 0 || !json.Valid(body) {
		return nil
	}
	return append([]byte(nil), body...)
}
