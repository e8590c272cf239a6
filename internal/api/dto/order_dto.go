package dto

import (
	"time"

	"github.com/spec-kit/techstore/internal/domain"
)

// CreateOrderRequest payload. Omitted fields take server defaults.
type CreateOrderRequest struct {
	Product  *string  `json:"product"`
	Quantity *int     `json:"quantity"`
	Price    *float64 `json:"price"`
}

// UpdateOrderRequest payload.
type UpdateOrderRequest struct {
	Status   *string `json:"status"`
	Quantity *int    `json:"quantity"`
}

// OrderResponse is the wire form of an order. Timestamps are epoch seconds.
type OrderResponse struct {
	ID        int64    `json:"id"`
	Product   string   `json:"product"`
	Quantity  int      `json:"quantity"`
	Price     float64  `json:"price"`
	Status    string   `json:"status"`
	CreatedAt float64  `json:"created_at"`
	UpdatedAt *float64 `json:"updated_at,omitempty"`
}

// OrderListResponse wraps the list endpoint.
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
}

// MessageResponse carries a plain message.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse answers GET /health.
type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
}

// NewOrderResponse converts a domain order.
func NewOrderResponse(order *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:        order.ID,
		Product:   order.Product,
		Quantity:  order.Quantity,
		Price:     order.Price,
		Status:    string(order.Status),
		CreatedAt: EpochSeconds(order.CreatedAt),
	}
	if order.UpdatedAt != nil {
		ts := EpochSeconds(*order.UpdatedAt)
		resp.UpdatedAt = &ts
	}
	return resp
}

// EpochSeconds renders t as fractional Unix seconds.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
