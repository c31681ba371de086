package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ClientIP resolves the caller address: the X-Forwarded-For header when
// present, otherwise the socket peer. When proxies have appended a
// comma-separated chain, the first trimmed entry is the original caller.
func ClientIP(c *fiber.Ctx) string {
	addr := c.Get(fiber.HeaderXForwardedFor)
	if addr == "" {
		addr = c.IP()
	}
	if i := strings.IndexByte(addr, ','); i >= 0 {
		addr = addr[:i]
	}
	return strings.TrimSpace(addr)
}
