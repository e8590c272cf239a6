package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/techstore/internal/domain"
	"github.com/spec-kit/techstore/internal/events"
	"github.com/spec-kit/techstore/internal/observability"
	"github.com/spec-kit/techstore/internal/repository"
	apperrors "github.com/spec-kit/techstore/pkg/util/errorutil"
)

// Defaults applied to create requests that omit a field.
const (
	DefaultProduct  = "Unknown Product"
	DefaultQuantity = 1
	DefaultPrice    = 99.99
)

// OrderService coordinates order workflows.
type OrderService struct {
	orders     repository.OrderRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	OrderRepo  repository.OrderRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// OrderCreateInput describes the create payload. Nil fields take defaults.
type OrderCreateInput struct {
	Product  *string
	Quantity *int
	Price    *float64
}

// OrderUpdateInput describes a partial update. Nil fields are left unchanged.
type OrderUpdateInput struct {
	Status   *string
	Quantity *int
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:     deps.OrderRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// ListOrders returns every stored order.
func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("fetching all orders", zap.Int("total", len(orders)))
	return orders, nil
}

// CreateOrder stores a new pending order.
func (s *OrderService) CreateOrder(ctx context.Context, input OrderCreateInput) (*domain.Order, error) {
	order := &domain.Order{
		Product:  DefaultProduct,
		Quantity: DefaultQuantity,
		Price:    DefaultPrice,
	}
	if input.Product != nil {
		order.Product = *input.Product
	}
	if input.Quantity != nil {
		order.Quantity = *input.Quantity
	}
	if input.Price != nil {
		order.Price = *input.Price
	}

	details := map[string]any{}
	if order.Quantity <= 0 {
		details["quantity"] = "must be a positive integer"
	}
	if order.Price < 0 {
		details["price"] = "must not be negative"
	}
	if len(details) > 0 {
		s.metrics.RecordError(observability.ErrorTypeValidation)
		return nil, apperrors.NewValidationError("Validation failed", details)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	s.metrics.OrderAdded()
	s.logger.Info("order created", zap.Int64("order_id", order.ID), zap.String("product", order.Product))

	s.publishEvent(ctx, events.EventOrderCreated, order, events.OrderCreatedPayload{
		Product:  order.Product,
		Quantity: order.Quantity,
		Price:    order.Price,
	})
	return order, nil
}

// GetOrder loads one order.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id)
	}
	s.logger.Debug("fetching order", zap.Int64("order_id", id))
	return order, nil
}

// UpdateOrder applies a partial update. An empty status counts as not supplied.
func (s *OrderService) UpdateOrder(ctx context.Context, id int64, input OrderUpdateInput) (*domain.Order, error) {
	var patch domain.OrderPatch
	if input.Status != nil {
		if status := strings.TrimSpace(*input.Status); status != "" {
			st := domain.OrderStatus(status)
			patch.Status = &st
		}
	}
	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			s.metrics.RecordError(observability.ErrorTypeValidation)
			return nil, apperrors.NewValidationError("Validation failed", map[string]any{
				"quantity": "must be a positive integer",
			})
		}
		qty := *input.Quantity
		patch.Quantity = &qty
	}

	before, after, err := s.orders.Update(ctx, id, patch)
	if err != nil {
		return nil, s.mapRepoError(err, id)
	}
	s.logger.Info("order updated", zap.Int64("order_id", id), zap.String("status", string(after.Status)))

	s.publishEvent(ctx, events.EventOrderUpdated, after, events.OrderUpdatedPayload{
		OldStatus:   before.Status,
		NewStatus:   after.Status,
		OldQuantity: before.Quantity,
		NewQuantity: after.Quantity,
	})
	return after, nil
}

// DeleteOrder removes an order.
func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	removed, err := s.orders.Delete(ctx, id)
	if err != nil {
		return s.mapRepoError(err, id)
	}
	s.metrics.OrderRemoved()
	s.logger.Info("order deleted", zap.Int64("order_id", id))

	s.publishEvent(ctx, events.EventOrderDeleted, removed, events.OrderDeletedPayload{
		Status: removed.Status,
	})
	return nil
}

func (s *OrderService) mapRepoError(err error, id int64) error {
	if errors.Is(err, repository.ErrOrderNotFound) {
		s.metrics.RecordError(observability.ErrorTypeNotFound)
		s.logger.Warn("order not found", zap.Int64("order_id", id))
		return apperrors.NewNotFound("Order", nil)
	}
	return err
}

// publishEvent stamps the event with the order version the store assigned.
func (s *OrderService) publishEvent(ctx context.Context, eventType events.EventType, order *domain.Order, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewEvent(eventType, order.ID, payload)
	event.Sequence = order.Version
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("order event delivery failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
