package setup

import (
	"log/slog"
	"time"

	"ops-dashboard/config"
	"ops-dashboard/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const (
	ipRequestsPerMinute   = 200
	userRequestsPerMinute = 300
)

// ApplyMiddleware installs the global middleware. The logger runs first so
// that the request id exists for everything after it.
func ApplyMiddleware(app *fiber.App, cfg *config.Config, logger *slog.Logger) {
	app.Use(
		middleware.StructuredLogger(logger),
		recover.New(recover.Config{EnableStackTrace: !cfg.IsProduction()}),
		middleware.Metrics(),
		middleware.Security(cfg.IsProduction()),
		cors.New(cors.Config{
			AllowOrigins:  cfg.CORSOrigins,
			AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowHeaders:  "Origin,Content-Type,Accept,Authorization," + middleware.RequestIDHeader,
			ExposeHeaders: middleware.RequestIDHeader,
			MaxAge:        86400,
		}),
		rateLimiter(ipRequestsPerMinute, "Rate limit exceeded", func(c *fiber.Ctx) string {
			return "ip:" + c.IP()
		}),
	)
}

// rateLimiter allows max requests per minute per key. Probes and open
// realtime streams are not counted.
func rateLimiter(max int, message string, key func(*fiber.Ctx) string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   time.Minute,
		KeyGenerator: key,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/health" || p == "/metrics"
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":      message,
				"request_id": middleware.RequestID(c),
			})
		},
	})
}

// userRateLimiter keys on the signed-in user. It must run after AuthRequired.
func userRateLimiter() fiber.Handler {
	return rateLimiter(userRequestsPerMinute, "Rate limit exceeded for your account", func(c *fiber.Ctx) string {
		if userID := middleware.GetUserID(c); userID != "" {
			return "user:" + userID
		}
		return "ip:" + c.IP()
	})
}
