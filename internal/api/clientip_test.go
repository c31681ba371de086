package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestClientIP(t *testing.T) {
	app := fiber.New()
	app.Get("/ip", func(c *fiber.Ctx) error {
		return c.SendString(ClientIP(c))
	})

	tests := []struct {
		name      string
		forwarded string
		want      string
	}{
		{name: "single address", forwarded: "203.0.113.5", want: "203.0.113.5"},
		{name: "proxy chain takes first", forwarded: "203.0.113.5, 10.0.0.1", want: "203.0.113.5"},
		{name: "chain without spaces", forwarded: "203.0.113.5,10.0.0.1,10.0.0.2", want: "203.0.113.5"},
		{name: "leading whitespace trimmed", forwarded: " 203.0.113.5 , 10.0.0.1", want: "203.0.113.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ip", nil)
			req.Header.Set(fiber.HeaderXForwardedFor, tt.forwarded)

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			got, _ := io.ReadAll(resp.Body)
			if string(got) != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIPFallsBackToPeer(t *testing.T) {
	app := fiber.New()
	app.Get("/ip", func(c *fiber.Ctx) error {
		return c.SendString(ClientIP(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ip", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	got, _ := io.ReadAll(resp.Body)
	if len(got) == 0 {
		t.Error("ClientIP returned empty string without forwarded-for header")
	}
}
