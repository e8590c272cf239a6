package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/techstore/internal/api/dto"
	"github.com/spec-kit/techstore/internal/service"
)

// SimulateHandler exposes the error simulation endpoint.
type SimulateHandler struct {
	chaos *service.ChaosService
}

// NewSimulateHandler constructs handler.
func NewSimulateHandler(chaos *service.ChaosService) *SimulateHandler {
	return &SimulateHandler{chaos: chaos}
}

// SimulateError GET /simulate-error?error_type=500|404|timeout|validation|random.
func (h *SimulateHandler) SimulateError(c *fiber.Ctx) error {
	kind := service.SimulatedError(c.Query("error_type", string(service.SimulatedRandom)))
	msg, err := h.chaos.Simulate(c.UserContext(), kind)
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: msg})
}
