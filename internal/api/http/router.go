package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/techstore/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Orders   *handlers.OrdersHandler
	Simulate *handlers.SimulateHandler
	Metrics  fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health", cfg.Health.Health)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/api", cfg.Health.APIInfo)
	app.Get("/metrics", cfg.Metrics)

	orders := app.Group("/orders")
	orders.Get("", cfg.Orders.ListOrders)
	orders.Post("", cfg.Orders.CreateOrder)
	orders.Get("/:id", cfg.Orders.GetOrder)
	orders.Put("/:id", cfg.Orders.UpdateOrder)
	orders.Delete("/:id", cfg.Orders.DeleteOrder)

	app.Get("/simulate-error", cfg.Simulate.SimulateError)
}
