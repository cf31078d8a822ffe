package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes adds liveness/readiness style endpoints.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		stores := fiber.Map{}
		if d.Res != nil {
			for name, err := range d.Res.Ping(ctx) {
				if err != nil {
					stores[name] = err.Error()
					status = http.StatusServiceUnavailable
					continue
				}
				stores[name] = "ok"
			}
		}
		return c.Status(status).JSON(fiber.Map{
			"backend":   d.Cfg.DataBackend,
			"status":    stores,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
