package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// statusPageCSP allows the inline styles of the status page and nothing
// external.
const statusPageCSP = "default-src 'none'; style-src 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'"

// Security sets response hardening headers. API responses carry user data
// and are never cached. HSTS is only sent in production, behind TLS.
func Security(production bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "no-referrer")
		c.Set("Cross-Origin-Resource-Policy", "same-site")

		if strings.HasPrefix(c.Path(), "/api/") {
			c.Set(fiber.HeaderCacheControl, "no-store")
		} else {
			c.Set("Content-Security-Policy", statusPageCSP)
		}
		if production {
			c.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}
		return c.Next()
	}
}
