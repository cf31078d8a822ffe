package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/schemes-portal/schemes_portal/internal/web"
)

// RegisterAuthRoutes wires the sign-in, sign-up and sign-out form posts.
func RegisterAuthRoutes(r fiber.Router, h *web.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/signup", h.Signup)
	r.Post("/signout", h.SignOut)
}

// RegisterPageRoutes wires the portal pages.
func RegisterPageRoutes(r fiber.Router, h *web.Handler) {
	r.Get("/", h.Home)
}
