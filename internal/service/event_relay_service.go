package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/techstore/internal/events"
)

const sinkDeliveryTimeout = 2 * time.Second

// EventSink receives order events. Implementations: Redis pub/sub, Postgres audit log.
type EventSink interface {
	Name() string
	Deliver(ctx context.Context, event events.Event) error
}

// EventRelayService forwards order lifecycle events to the configured sinks.
type EventRelayService struct {
	sinks  []EventSink
	logger *zap.Logger
}

// NewEventRelayService creates the service.
func NewEventRelayService(logger *zap.Logger, sinks ...EventSink) *EventRelayService {
	return &EventRelayService{
		sinks:  sinks,
		logger: logger,
	}
}

// Sinks lists the sink names in delivery order.
func (r *EventRelayService) Sinks() []string {
	names := make([]string, 0, len(r.sinks))
	for _, sink := range r.sinks {
		names = append(names, sink.Name())
	}
	return names
}

// Relay hands the event to every sink in turn. Each delivery gets its own
// deadline detached from ctx cancellation; failures are joined.
func (r *EventRelayService) Relay(ctx context.Context, event events.Event) error {
	r.logger.Debug("relaying order event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Int64("order_id", event.OrderID),
		zap.Int64("sequence", event.Sequence))

	var errs []error
	for _, sink := range r.sinks {
		sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkDeliveryTimeout)
		err := sink.Deliver(sinkCtx, event)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}
