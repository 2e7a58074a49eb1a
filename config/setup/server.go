package setup

import (
	"errors"
	"log/slog"
	"time"

	"ops-dashboard/config"
	"ops-dashboard/middleware"

	"github.com/gofiber/fiber/v2"
)

// bodyLimit caps request bodies. Notes are the largest rows.
const bodyLimit = 1 << 20

// NewFiberApp creates the HTTP server. It sets no write timeout, since
// realtime streams stay open for as long as the client listens.
func NewFiberApp(cfg *config.Config, logger *slog.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               "ops-dashboard",
		ReadTimeout:           10 * time.Second,
		IdleTimeout:           60 * time.Second,
		BodyLimit:             bodyLimit,
		DisableStartupMessage: cfg.IsProduction(),
		ErrorHandler:          CustomErrorHandler(logger),
	})
}

// CustomErrorHandler renders errors that escape the handlers as
// {"error", "request_id"}. Only server-side failures are logged as errors.
func CustomErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		requestID := middleware.RequestID(c)
		if code >= fiber.StatusInternalServerError {
			logger.Error("unhandled error",
				"request_id", requestID,
				"method", c.Method(),
				"path", c.Path(),
				"status", code,
				"error", err,
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error":      message,
			"request_id": requestID,
		})
	}
}
