package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/techstore/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderCreated EventType = "order_created"
	EventOrderUpdated EventType = "order_updated"
	EventOrderDeleted EventType = "order_deleted"
)

// AllOrderEvents lists every order event type, in lifecycle order.
var AllOrderEvents = []EventType{EventOrderCreated, EventOrderUpdated, EventOrderDeleted}

// Event represents a domain event emitted by services. Events for one order
// may be published out of order under concurrent requests; Sequence is the
// order version the event describes, so consumers can reorder by it.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	OrderID   int64       `json:"order_id"`
	Sequence  int64       `json:"sequence"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, orderID int64, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		OrderID:   orderID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderUpdatedPayload payload.
type OrderUpdatedPayload struct {
	OldStatus   domain.OrderStatus `json:"old_status"`
	NewStatus   domain.OrderStatus `json:"new_status"`
	OldQuantity int                `json:"old_quantity"`
	NewQuantity int                `json:"new_quantity"`
}

// OrderDeletedPayload payload.
type OrderDeletedPayload struct {
	Status domain.OrderStatus `json:"status"`
}
