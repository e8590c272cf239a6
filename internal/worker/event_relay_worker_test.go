package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/techstore/internal/events"
	"github.com/spec-kit/techstore/internal/repository"
)

// gatedSink blocks every delivery until release is closed.
type gatedSink struct {
	release chan struct{}

	mu        sync.Mutex
	delivered []events.Event
}

func newGatedSink() *gatedSink {
	return &gatedSink{release: make(chan struct{})}
}

func (s *gatedSink) Name() string { return "gated" }

func (s *gatedSink) Deliver(ctx context.Context, event events.Event) error {
	<-s.release
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, event)
	return nil
}

func (s *gatedSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delivered)
}

func TestStartEventRelaySkipsMissingSinks(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()

	w := StartEventRelay(dispatcher, zap.NewNop(), 0, events.NewRedisPublisher(nil, "ch"), repository.NewOrderEventRepository(nil))

	assert.Empty(t, w.Sinks())
	assert.NoError(t, dispatcher.Publish(context.Background(), events.NewEvent(events.EventOrderCreated, 1, nil)))
	assert.NoError(t, w.Stop(context.Background()))
}

func TestPublishDoesNotWaitForSlowSink(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	sink := newGatedSink()
	w := NewEventRelayWorker(dispatcher, zap.NewNop(), 8, sink)

	start := time.Now()
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, dispatcher.Publish(context.Background(), events.NewEvent(events.EventOrderCreated, i, nil)))
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Zero(t, sink.count())

	close(sink.release)
	require.NoError(t, w.Stop(context.Background()))
	require.Equal(t, 3, sink.count())
	for i, e := range sink.delivered {
		assert.Equal(t, int64(i+1), e.OrderID)
	}
}

func TestFullQueueDropsEvents(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	dispatcher := events.NewInMemoryDispatcher()
	sink := newGatedSink()
	w := NewEventRelayWorker(dispatcher, zap.New(core), 1, sink)

	// One event can be held by the delivery goroutine and one can sit in the
	// queue; the rest must be dropped.
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, dispatcher.Publish(context.Background(), events.NewEvent(events.EventOrderUpdated, i, nil)))
	}
	assert.GreaterOrEqual(t, logs.FilterMessage("order event queue full, dropping event").Len(), 3)

	close(sink.release)
	require.NoError(t, w.Stop(context.Background()))
	assert.LessOrEqual(t, sink.count(), 2)
	assert.GreaterOrEqual(t, sink.count(), 1)
}

func TestStopGivesUpWhenSinkIsStuck(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	sink := newGatedSink()
	defer close(sink.release)
	w := NewEventRelayWorker(dispatcher, zap.NewNop(), 4, sink)
	require.NoError(t, dispatcher.Publish(context.Background(), events.NewEvent(events.EventOrderDeleted, 1, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Stop(ctx), context.DeadlineExceeded)

	// Events published after Stop are dropped instead of panicking on a closed queue.
	assert.NoError(t, dispatcher.Publish(context.Background(), events.NewEvent(events.EventOrderDeleted, 2, nil)))
}
