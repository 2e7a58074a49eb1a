package handlers

import (
	"errors"

	"ops-dashboard/app"
	"ops-dashboard/middleware"
	"ops-dashboard/models"
	"ops-dashboard/services"

	"github.com/gofiber/fiber/v2"
)

// ConnectCalendar links a Google Calendar for event export
func ConnectCalendar(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ConnectCalendarRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		if err := a.Validator.Validate(&req); err != nil {
			return validationError(c, err)
		}

		status, err := a.SyncService.ConnectCalendar(middleware.GetUserID(c), req)
		if err != nil {
			if errors.Is(err, services.ErrCalendarUnavailable) {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "Calendar export is not enabled on this server",
				})
			}
			return serverErrorWithDetails(c, "Failed to connect calendar", err)
		}

		return success(c, fiber.Map{"data": status})
	}
}

// GetSyncStatus returns calendar export status for the current user
func GetSyncStatus(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, err := a.SyncService.Status(middleware.GetUserID(c))
		if err != nil {
			return serverErrorWithDetails(c, "Failed to get sync status", err)
		}

		return success(c, fiber.Map{"data": status})
	}
}

// RetryEventSync queues a failed or abandoned event for another export round
func RetryEventSync(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		eventID := c.Params("id")
		if eventID == "" {
			return badRequest(c, "event ID is required")
		}

		if err := a.SyncService.Retry(middleware.GetUserID(c), eventID); err != nil {
			if errors.Is(err, services.ErrEventNotFound) {
				return notFound(c, "Event not found")
			}
			return serverErrorWithDetails(c, "Failed to retry sync", err)
		}

		return success(c, fiber.Map{"message": "Sync retry queued"})
	}
}
