package routes

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/schemes-portal/schemes_portal/internal/backend"
	"github.com/schemes-portal/schemes_portal/internal/config"
	"github.com/schemes-portal/schemes_portal/internal/infra"
	"github.com/schemes-portal/schemes_portal/internal/middleware"
	"github.com/schemes-portal/schemes_portal/internal/web"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	Res    *infra.Resources
	Logger *slog.Logger
	// Backend overrides the hosted service client built from Cfg.
	Backend *backend.Client
}

func (d Deps) cache() *redis.Client {
	if d.Res == nil {
		return nil
	}
	return d.Res.Cache
}

// Setup configures middlewares and all application routes. The returned
// function stops the shell and releases the event broker.
func Setup(app *fiber.App, d Deps) (func() error, error) {
	if !d.Cfg.IsDev() && d.cache() == nil {
		d.Logger.Warn("running without redis outside development; sessions are not shared between instances",
			slog.String("env", d.Cfg.AppEnv))
	}

	svcs, err := BuildServices(context.Background(), d)
	if err != nil {
		return nil, err
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Session(svcs.Sessions))
	app.Use(middleware.Audit(d.Logger))
	app.Use(middleware.Idempotency(d.cache(), d.Cfg.IdempotencyTTL, d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	shell := web.NewShell(svcs.Sessions, d.Cfg.SessionTTL, d.Logger)
	shell.Start()

	pages := web.NewHandler(svcs.Identity, svcs.Sessions, shell, svcs.Dashboard, web.Options{
		AppName:      d.Cfg.AppName,
		CookieSecure: d.Cfg.CookieSecure,
		SessionTTL:   d.Cfg.SessionTTL,
		FormTTL:      d.Cfg.OTPFormTTL,
	}, d.Logger)
	RegisterPageRoutes(app, pages)
	RegisterAuthRoutes(app, pages, middleware.LoginRateLimit(d.cache(), d.Cfg.LoginRateLimit))

	api := app.Group("/api/v1")
	RegisterAPIRoutes(api, web.NewAPI(svcs.Catalog, svcs.Profiles, d.Logger))

	return func() error {
		shell.Close()
		return svcs.Close()
	}, nil
}
