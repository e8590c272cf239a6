package domain

import "time"

// OrderStatus is the lifecycle state of an order. Updates may set free-form values.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// Order is a purchase record held by the in-memory store.
type Order struct {
	ID        int64
	Product   string
	Quantity  int
	Price     float64
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt *time.Time
	// Version starts at 1 and grows by one on every update and on delete.
	Version int64
}

// OrderPatch lists the fields an update may change. Nil fields are left untouched.
type OrderPatch struct {
	Status   *OrderStatus
	Quantity *int
}

// Empty reports whether the patch carries no changes.
func (p OrderPatch) Empty() bool {
	return p.Status == nil && p.Quantity == nil
}
