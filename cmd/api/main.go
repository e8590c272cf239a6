package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/techstore/internal/api/http"
	"github.com/spec-kit/techstore/internal/api/http/handlers"
	"github.com/spec-kit/techstore/internal/config"
	"github.com/spec-kit/techstore/internal/events"
	"github.com/spec-kit/techstore/internal/observability"
	"github.com/spec-kit/techstore/internal/persistence"
	"github.com/spec-kit/techstore/internal/repository"
	"github.com/spec-kit/techstore/internal/service"
	"github.com/spec-kit/techstore/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.App.Workers > 0 {
		runtime.GOMAXPROCS(cfg.App.Workers)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracer, shutdownTracing, err := observability.InitTracing(cfg.Tracing, cfg.App)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	relay := worker.StartEventRelay(dispatcher, logger, worker.DefaultEventBuffer,
		events.NewRedisPublisher(redis.Client, cfg.Redis.EventsChannel),
		repository.NewOrderEventRepository(pg.PoolHandle()),
	)

	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:  repository.NewMemoryOrderRepository(),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	chaosService := service.NewChaosService(cfg.Simulation.TimeoutDelay(), metrics, logger)

	app := httptransport.NewApp(cfg.App.Name)
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		RequestTimeout: cfg.App.RequestTimeout(),
		AllowOrigins:   cfg.App.AllowOrigins(),
		Tracer:         tracer,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Orders:   handlers.NewOrdersHandler(orderService),
		Simulate: handlers.NewSimulateHandler(chaosService),
		Metrics:  handlers.NewMetricsHandler(metrics),
	})

	go func() {
		logger.Info("starting server",
			zap.String("addr", cfg.App.Addr()),
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.ShutdownWithTimeout(10 * time.Second)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := relay.Stop(shutdownCtx); err != nil {
		logger.Warn("order events left undelivered", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
