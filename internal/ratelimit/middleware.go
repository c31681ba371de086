package ratelimit

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Middleware creates a new rate limit middleware. A store failure fails
// open: limiting is protective, not load-bearing, so it must never take the
// service down with it.
func Middleware(limiter *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := limiter.Allow(c.Context(), c.IP())
		if err != nil {
			log.Warn().Err(err).Msg("Rate limit store unavailable, allowing request")
			return c.Next()
		}

		c.Set(HeaderRateLimit, strconv.Itoa(result.Limit))
		c.Set(HeaderRateRemaining, strconv.Itoa(result.Remaining))
		c.Set(HeaderRateReset, strconv.FormatInt(result.ResetTime.Unix(), 10))

		if result.Limited {
			c.Set(HeaderRetryAfter, strconv.Itoa(int(time.Until(result.ResetTime).Seconds())+1))
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}

		return c.Next()
	}
}
