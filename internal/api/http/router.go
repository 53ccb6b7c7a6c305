package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/http/handlers"
	"github.com/spec-kit/incident-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Metrics   *handlers.MetricsHandler
	Incidents *handlers.IncidentsHandler
	Gateway   *auth.GatewayMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Get)
	}

	api := app.Group("/api/v1", cfg.Gateway.Handle, auth.RequireToken())
	api.Post("/users/me/incidents", cfg.Incidents.ReportSelf)
	api.Post("/incidents/web", cfg.Incidents.RegisterWeb)
	api.Post("/incidents/mobile", cfg.Incidents.RegisterMobile)
}
