package api

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes wires the service surface onto the fiber app.
func RegisterRoutes(app *fiber.App, h *Handler) {
	app.Post("/track", h.Track)

	stats := app.Group("/stats")
	stats.Get("/last", h.LastCalled)
	stats.Get("/most", h.MostFrequent)
	stats.Get("/counts", h.Counts)

	app.Get("/health", h.Health)
	app.Get("/metrics", h.Metrics)
}
