package middleware

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/schemes-portal/schemes_portal/internal/session"
)

// SessionResolver looks up the session behind a cookie token.
type SessionResolver interface {
	GetSession(ctx context.Context, token string) *session.Session
}

// Session attaches the visitor's session, if any, to the request locals.
func Session(sessions SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := c.Cookies(session.CookieName); token != "" {
			if sess := sessions.GetSession(c.UserContext(), token); sess != nil {
				c.Locals(session.LocalsKey, sess)
			}
		}
		return c.Next()
	}
}

// RequireSession rejects requests without a session attached by Session.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sess, _ := c.Locals(session.LocalsKey).(*session.Session); sess == nil {
			return fiber.NewError(http.StatusUnauthorized, "sign in required")
		}
		return c.Next()
	}
}
