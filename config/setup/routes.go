package setup

import (
	"ops-dashboard/app"
	"ops-dashboard/handlers"
	"ops-dashboard/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(fiberApp *fiber.App, application *app.App) {
	// Public routes
	fiberApp.Get("/", handlers.HomePage(application))
	fiberApp.Get("/health", handlers.Health(application))
	fiberApp.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Auth routes
	fiberApp.Post("/api/auth/signup", handlers.SignUp(application))
	fiberApp.Post("/api/auth/login", handlers.Login(application))
	fiberApp.Post("/api/auth/logout", handlers.Logout(application))
	fiberApp.Get("/api/auth/me", handlers.Me(application))

	// Protected API routes
	api := fiberApp.Group("/api", middleware.AuthRequired(application.SessionStore), userRateLimiter())

	api.Get("/tables/:table", handlers.SelectRows(application))
	api.Post("/tables/:table", handlers.InsertRow(application))
	api.Patch("/tables/:table/:id", handlers.UpdateRow(application))
	api.Delete("/tables/:table/:id", handlers.DeleteRow(application))
	api.Get("/realtime/:table", handlers.StreamChanges(application))
	api.Put("/integrations/gcal", handlers.ConnectCalendar(application))
	api.Get("/sync/status", handlers.GetSyncStatus(application))
	api.Post("/sync/retry/:id", handlers.RetryEventSync(application))
}
