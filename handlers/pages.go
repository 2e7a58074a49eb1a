package handlers

import (
	"time"

	"ops-dashboard/app"
	"ops-dashboard/models"
	"ops-dashboard/templates/pages"

	"github.com/gofiber/fiber/v2"
)

func HomePage(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		env := ""
		if a.Config != nil {
			env = a.Config.Env
		}

		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return pages.Status(pages.StatusData{
			Env:         env,
			Tables:      models.Tables,
			Subscribers: a.Hub.Subscribers(),
			SyncEnabled: a.SyncWorker != nil,
			Now:         time.Now(),
		}).Render(c.Context(), c.Response().BodyWriter())
	}
}

// Health reports whether the database answers
func Health(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Repo.Ping(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
