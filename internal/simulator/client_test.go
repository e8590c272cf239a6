package simulator

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/techstore/internal/api/http"
	"github.com/spec-kit/techstore/internal/api/http/handlers"
	"github.com/spec-kit/techstore/internal/events"
	"github.com/spec-kit/techstore/internal/observability"
	"github.com/spec-kit/techstore/internal/repository"
	"github.com/spec-kit/techstore/internal/service"
)

func startAPI(t *testing.T) string {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	orders := service.NewOrderService(service.OrderDependencies{
		OrderRepo:  repository.NewMemoryOrderRepository(),
		Dispatcher: events.NewInMemoryDispatcher(),
		Metrics:    metrics,
		Logger:     logger,
	})
	chaos := service.NewChaosService(20*time.Millisecond, metrics, logger)

	app := httptransport.NewApp("simulator-test")
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		RequestTimeout: 2 * time.Second,
		AllowOrigins:   "*",
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler("TechStore API", "3.0.0", nil),
		Orders:   handlers.NewOrdersHandler(orders),
		Simulate: handlers.NewSimulateHandler(chaos),
		Metrics:  handlers.NewMetricsHandler(metrics),
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + ln.Addr().String()
}

func TestFiberClientAgainstAPI(t *testing.T) {
	client := NewFiberClient(startAPI(t)+"/", 2*time.Second, 2*time.Second)
	ctx := context.Background()

	require.NoError(t, client.Health(ctx))

	order, err := client.CreateOrder(ctx, CreateOrderRequest{Product: "Laptop", Quantity: 2, Price: 1299.99})
	require.NoError(t, err)
	assert.Equal(t, int64(1), order.ID)
	assert.Equal(t, "pending", order.Status)

	total, err := client.ListOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	require.NoError(t, client.UpdateOrderStatus(ctx, order.ID, "shipped"))
	require.NoError(t, client.DeleteOrder(ctx, order.ID))

	err = client.DeleteOrder(ctx, order.ID)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))

	status, err := client.SimulateError(ctx, "404")
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, err = client.SimulateError(ctx, "timeout")
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestFiberClientHonoursCancelledContext(t *testing.T) {
	client := NewFiberClient("http://127.0.0.1:1", time.Second, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListOrders(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFiberClientReportsConnectionFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	client := NewFiberClient("http://"+addr, 500*time.Millisecond, 500*time.Millisecond)
	assert.Error(t, client.Health(context.Background()))
}
