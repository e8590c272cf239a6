package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/techstore/internal/events"
	"github.com/spec-kit/techstore/internal/repository"
	"github.com/spec-kit/techstore/internal/service"
)

// DefaultEventBuffer is the queue size used when none is given.
const DefaultEventBuffer = 256

// EventRelayWorker moves order events off the request path. Dispatcher
// handlers only enqueue; one goroutine delivers to the sinks in queue order.
type EventRelayWorker struct {
	relay  *service.EventRelayService
	logger *zap.Logger
	queue  chan events.Event
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// StartEventRelay starts a worker delivering to whichever of the Redis
// publisher and Postgres audit log are configured.
func StartEventRelay(dispatcher events.Dispatcher, logger *zap.Logger, buffer int, publisher *events.RedisPublisher, audit *repository.OrderEventRepository) *EventRelayWorker {
	var sinks []service.EventSink
	if publisher != nil {
		sinks = append(sinks, publisher)
	}
	if audit != nil {
		sinks = append(sinks, audit)
	}
	return NewEventRelayWorker(dispatcher, logger, buffer, sinks...)
}

// NewEventRelayWorker subscribes to every order event type and starts the
// delivery goroutine. Without sinks nothing is subscribed.
func NewEventRelayWorker(dispatcher events.Dispatcher, logger *zap.Logger, buffer int, sinks ...service.EventSink) *EventRelayWorker {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	w := &EventRelayWorker{
		relay:  service.NewEventRelayService(logger, sinks...),
		logger: logger,
		queue:  make(chan events.Event, buffer),
		done:   make(chan struct{}),
	}
	if len(sinks) == 0 {
		logger.Info("no order event sinks configured")
		w.closed = true
		close(w.done)
		return w
	}

	for _, eventType := range events.AllOrderEvents {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
	go w.run()

	logger.Info("order event relay started", zap.Strings("sinks", w.relay.Sinks()), zap.Int("buffer", buffer))
	return w
}

// Sinks lists the configured sink names.
func (w *EventRelayWorker) Sinks() []string {
	return w.relay.Sinks()
}

// enqueue never blocks; a full queue drops the event.
func (w *EventRelayWorker) enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.logger.Warn("order event relay stopped, dropping event", zap.String("event_id", event.ID))
		return nil
	}
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("order event queue full, dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Int64("order_id", event.OrderID))
	}
	return nil
}

func (w *EventRelayWorker) run() {
	defer close(w.done)
	for event := range w.queue {
		if err := w.relay.Relay(context.Background(), event); err != nil {
			w.logger.Warn("order event delivery failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
}

// Stop refuses new events and waits until the queued ones are delivered or
// ctx is done.
func (w *EventRelayWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
