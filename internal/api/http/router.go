package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-core/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-core/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Assist        *handlers.AssistHandler
	Notifications *handlers.NotificationsHandler
	Tokens        *auth.ServiceTokenManager
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	v1 := app.Group("/v1", ServiceAuthMiddleware(cfg.Tokens))
	v1.Post("/tickets/:ticketID/events/:eventID/assist", cfg.Assist.Trigger)
	v1.Post("/notifications/process", cfg.Notifications.Process)
}
