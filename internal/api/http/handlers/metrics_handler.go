package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/techstore/internal/observability"
)

// NewMetricsHandler serves the Prometheus exposition through fiber.
func NewMetricsHandler(metrics *observability.Metrics) fiber.Handler {
	return adaptor.HTTPHandler(metrics.Handler())
}
