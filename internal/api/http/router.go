package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/ticket-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Tickets *handlers.TicketsHandler
}

// RegisterRoutes wires HTTP routes. /stats and the health probes are
// registered before /:id so they are not captured as identifiers.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/stats", cfg.Tickets.GetStats)
	app.Get("/", cfg.Tickets.ListTickets)
	app.Get("/:id", cfg.Tickets.GetTicket)
	app.Post("/", cfg.Tickets.CreateTicket)
	app.Patch("/:id", cfg.Tickets.UpdateTicket)
	app.Delete("/:id", cfg.Tickets.DeleteTicket)
}
