package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/techstore/internal/domain"
)

// ErrOrderNotFound indicates the requested order does not exist.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository manages the lifetime of orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	Update(ctx context.Context, id int64, patch domain.OrderPatch) (before, after *domain.Order, err error)
	Delete(ctx context.Context, id int64) (*domain.Order, error)
}

// memoryOrderRepository keeps orders in process memory. Ids come from a
// counter that only moves forward, so deleted ids are never handed out again.
type memoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[int64]domain.Order
	nextID int64
	now    func() time.Time
}

// NewMemoryOrderRepository constructs an empty store whose first id is 1.
func NewMemoryOrderRepository() OrderRepository {
	return newMemoryOrderRepository(time.Now)
}

func newMemoryOrderRepository(now func() time.Time) *memoryOrderRepository {
	return &memoryOrderRepository{
		orders: make(map[int64]domain.Order),
		nextID: 1,
		now:    now,
	}
}

// Create assigns the next id, forces status pending, stamps CreatedAt and
// sets Version to 1.
func (r *memoryOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = r.nextID
	order.Status = domain.OrderStatusPending
	order.CreatedAt = r.now()
	order.UpdatedAt = nil
	order.Version = 1
	r.nextID++

	r.orders[order.ID] = *order
	return nil
}

func (r *memoryOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// List returns a snapshot sorted by id.
func (r *memoryOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	out := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		out = append(out, *cloneOrder(order))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update applies the non-nil patch fields in place and stamps UpdatedAt.
func (r *memoryOrderRepository) Update(ctx context.Context, id int64, patch domain.OrderPatch) (*domain.Order, *domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.orders[id]
	if !ok {
		return nil, nil, ErrOrderNotFound
	}
	before := cloneOrder(current)

	if patch.Status != nil {
		current.Status = *patch.Status
	}
	if patch.Quantity != nil {
		current.Quantity = *patch.Quantity
	}
	updatedAt := r.now()
	current.UpdatedAt = &updatedAt
	current.Version++

	r.orders[id] = current
	return before, cloneOrder(current), nil
}

// Delete removes the order and returns the removed record with its Version
// bumped, so the deletion orders after every earlier change.
func (r *memoryOrderRepository) Delete(ctx context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	delete(r.orders, id)
	order.Version++
	return cloneOrder(order), nil
}

func cloneOrder(order domain.Order) *domain.Order {
	if order.UpdatedAt != nil {
		ts := *order.UpdatedAt
		order.UpdatedAt = &ts
	}
	return &order
}
