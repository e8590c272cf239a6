package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/techstore/internal/api/dto"
	"github.com/spec-kit/techstore/internal/service"
	apperrors "github.com/spec-kit/techstore/pkg/util/errorutil"
)

// OrdersHandler exposes order CRUD endpoints.
type OrdersHandler struct {
	service *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{service: orderService}
}

// ListOrders GET /orders.
func (h *OrdersHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, dto.NewOrderResponse(&orders[i]))
	}
	return c.JSON(dto.OrderListResponse{Orders: items, Total: len(items)})
}

// CreateOrder POST /orders.
func (h *OrdersHandler) CreateOrder(c *fiber.Ctx) error {
	var req dto.CreateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	order, err := h.service.CreateOrder(c.UserContext(), service.OrderCreateInput{
		Product:  req.Product,
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewOrderResponse(order))
}

// GetOrder GET /orders/:id.
func (h *OrdersHandler) GetOrder(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	order, err := h.service.GetOrder(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// UpdateOrder PUT /orders/:id.
func (h *OrdersHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	order, err := h.service.UpdateOrder(c.UserContext(), id, service.OrderUpdateInput{
		Status:   req.Status,
		Quantity: req.Quantity,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// DeleteOrder DELETE /orders/:id.
func (h *OrdersHandler) DeleteOrder(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteOrder(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Order deleted"})
}

// parseBody decodes an optional body. Without a Content-Type it is read as JSON.
func parseBody(c *fiber.Ctx, out any) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	var err error
	if len(c.Request().Header.ContentType()) == 0 {
		err = c.App().Config().JSONDecoder(body, out)
	} else {
		err = c.BodyParser(out)
	}
	if err != nil {
		return apperrors.NewValidationError("Invalid request body", nil)
	}
	return nil
}

func orderID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("Invalid order id", map[string]any{"id": raw})
	}
	return id, nil
}
