package middleware

import (
	"strings"

	"ops-dashboard/models"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie browsers carry the session id in.
const SessionCookie = "session_id"

// SessionGetter resolves a session id to a live session
type SessionGetter interface {
	Get(sessionID string) (*models.Session, error)
}

// AuthRequired creates an authentication middleware that requires a valid
// session cookie or a Bearer session token
func AuthRequired(sessionStore SessionGetter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, fromCookie := SessionID(c)
		if sessionID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization",
			})
		}

		sess, err := sessionStore.Get(sessionID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load session")
		}
		if sess == nil {
			if fromCookie {
				c.ClearCookie(SessionCookie)
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired session",
			})
		}

		c.Locals("userID", sess.UserID)
		c.Locals("userEmail", sess.Email)
		c.Locals("session", sess)
		return c.Next()
	}
}

// SessionID extracts the session id from the cookie or the Authorization
// header. The bool reports whether it came from the cookie.
func SessionID(c *fiber.Ctx) (string, bool) {
	if id := c.Cookies(SessionCookie); id != "" {
		return id, true
	}

	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), false
}

func GetUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return ""
	}
	return userID
}

func GetUserEmail(c *fiber.Ctx) string {
	email, ok := c.Locals("userEmail").(string)
	if !ok {
		return ""
	}
	return email
}

func GetSession(c *fiber.Ctx) *models.Session {
	sess, _ := c.Locals("session").(*models.Session)
	return sess
}
