package handlers

import (
	"errors"

	"ops-dashboard/app"
	"ops-dashboard/middleware"
	"ops-dashboard/models"
	"ops-dashboard/services"

	"github.com/gofiber/fiber/v2"
)

// SignUp registers an account and opens a session
func SignUp(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.CredentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		if err := a.Validator.Validate(&req); err != nil {
			return validationError(c, err)
		}

		resp, err := a.AuthService.SignUp(req.Email, req.Password)
		if err != nil {
			if errors.Is(err, services.ErrEmailTaken) {
				return conflict(c, "An account with this email already exists")
			}
			return serverErrorWithDetails(c, "Failed to create account", err)
		}

		a.Logger.Info("account created", "user_id", resp.User.ID)
		setSessionCookie(a, c, resp.Session)
		return created(c, sessionPayload(resp))
	}
}

// Login handles email and password authentication
func Login(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.CredentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		if req.Email == "" || req.Password == "" {
			return badRequest(c, "email and password are required")
		}

		resp, err := a.AuthService.SignIn(req.Email, req.Password)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				return unauthorized(c, "Invalid email or password")
			}
			return serverErrorWithDetails(c, "Failed to sign in", err)
		}

		setSessionCookie(a, c, resp.Session)
		return success(c, sessionPayload(resp))
	}
}

// Logout ends the current session, if any
func Logout(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, _ := middleware.SessionID(c)
		if sessionID != "" {
			if err := a.AuthService.SignOut(sessionID); err != nil {
				return serverErrorWithDetails(c, "Failed to sign out", err)
			}
		}

		c.ClearCookie(middleware.SessionCookie)
		return success(c, fiber.Map{"message": "Signed out"})
	}
}

// Me returns the user behind the current session
func Me(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, fromCookie := middleware.SessionID(c)
		if sessionID == "" {
			return unauthorized(c, "Missing authorization")
		}

		user, err := a.AuthService.Me(sessionID)
		if err != nil {
			if errors.Is(err, services.ErrSessionNotFound) {
				if fromCookie {
					c.ClearCookie(middleware.SessionCookie)
				}
				return unauthorized(c, "Invalid or expired session")
			}
			return serverErrorWithDetails(c, "Failed to load user", err)
		}

		return success(c, fiber.Map{"data": user})
	}
}

func setSessionCookie(a *app.App, c *fiber.Ctx, sess *models.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.ID,
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		Secure:   a.Config != nil && a.Config.IsProduction(),
		SameSite: "Lax",
		Path:     "/",
	})
}

func sessionPayload(resp *services.LoginResponse) fiber.Map {
	return fiber.Map{
		"data": fiber.Map{
			"token":      resp.Session.ID,
			"expires_at": resp.Session.ExpiresAt,
			"user":       resp.User,
		},
	}
}
