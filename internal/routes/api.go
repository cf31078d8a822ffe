package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/schemes-portal/schemes_portal/internal/middleware"
	"github.com/schemes-portal/schemes_portal/internal/web"
)

// RegisterAPIRoutes wires the JSON endpoints.
func RegisterAPIRoutes(api fiber.Router, h *web.API) {
	api.Get("/ping", h.Ping)
	api.Get("/categories", h.Categories)
	api.Get("/schemes", h.Schemes)
	api.Get("/me", middleware.RequireSession(), h.Me)
}
