package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/hr-console/internal/api/http/handlers"
	"github.com/spec-kit/hr-console/internal/auth"
	"github.com/spec-kit/hr-console/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Uploads        *handlers.UploadHandler
	Socket         *handlers.SocketHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	app.Post("/auth/login", cfg.Auth.Login)

	uploads := app.Group("/uploads", cfg.AuthMiddleware.Handle, auth.RequireRole(auth.MutatingRoles...))
	uploads.Post("/images", cfg.Uploads.UploadImage)

	if cfg.Socket != nil {
		app.Get("/ws", cfg.AuthMiddleware.HandleQueryToken, cfg.Socket.Upgrade, cfg.Socket.Serve())
	}
}
