package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/tuncerburak97/apistats/internal/metrics"
	"github.com/tuncerburak97/apistats/internal/model"
	"github.com/tuncerburak97/apistats/internal/service"
)

type Handler struct {
	recorder *service.Recorder
	reader   *service.StatsReader
	logger   *zerolog.Logger
	metrics  *metrics.MetricsCollector
}

func NewHandler(recorder *service.Recorder, reader *service.StatsReader, logger *zerolog.Logger, m *metrics.MetricsCollector) *Handler {
	return &Handler{
		recorder: recorder,
		reader:   reader,
		logger:   logger,
		metrics:  m,
	}
}

// Track records an explicitly reported call. Unlike the auto-log middleware,
// a failed write here is user-visible as a 500.
func (h *Handler) Track(c *fiber.Ctx) error {
	var req TrackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "request body must be valid JSON"})
	}
	if req.CalledService == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "calledService field is required"})
	}

	ip := ClientIP(c)
	rec := &model.CallRecord{
		ExternalUserID: req.ID,
		Endpoint:       req.CalledService,
		Method:         model.DefaultMethod,
		IPAddress:      ip,
		RequestBody:    append([]byte(nil), c.Body()...),
	}

	if err := h.recorder.Record(c.Context(), rec); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to log call to database"})
	}

	h.metrics.IncRecordedCalls("track")
	return c.Status(fiber.StatusCreated).JSON(TrackResponse{
		Message: fmt.Sprintf("Logged call to %s", req.CalledService),
		IP:      ip,
	})
}

func (h *Handler) LastCalled(c *fiber.Ctx) error {
	rec, err := h.reader.LastCalled(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "unable to fetch last called endpoint from database"})
	}
	if rec == nil {
		return c.JSON(fiber.Map{"message": "no calls recorded yet"})
	}
	return c.JSON(LastCalledResponse{LastCalled: newCallInfo(rec)})
}

func (h *Handler) MostFrequent(c *fiber.Ctx) error {
	ec, err := h.reader.MostFrequent(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "unable to fetch most frequent endpoint from database"})
	}
	if ec == nil {
		return c.JSON(fiber.Map{"message": "no calls recorded yet"})
	}
	return c.JSON(MostFrequentResponse{MostFrequent: *ec})
}

func (h *Handler) Counts(c *fiber.Ctx) error {
	counts, err := h.reader.Counts(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "unable to fetch endpoint counts from database"})
	}
	return c.JSON(CountsResponse{Counts: counts})
}

func (h *Handler) Health(c *fiber.Ctx) error {
	if !h.reader.CheckHealth(c.Context()) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:    "unhealthy",
			Database:  "disconnected",
			Timestamp: time.Now().UTC(),
		})
	}
	return c.JSON(HealthResponse{
		Status:    "healthy",
		Database:  "connected",
		Timestamp: time.Now().UTC(),
	})
}

func (h *Handler) Metrics(c *fiber.Ctx) error {
	payload, err := h.metrics.GetMetricsJSON()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to serialize metrics")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to collect metrics"})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}
