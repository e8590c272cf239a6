package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/spec-kit/techstore/internal/observability"
	apperrors "github.com/spec-kit/techstore/pkg/util/errorutil"
)

// MiddlewareConfig carries the knobs of the global middleware chain.
type MiddlewareConfig struct {
	RequestTimeout time.Duration
	AllowOrigins   string
	Tracer         trace.Tracer
}

// NewApp builds the fiber app with an error handler that speaks the same
// {detail} body as the error handling middleware.
func NewApp(appName string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return writeError(c, apperrors.ToDomainError(err))
		},
	})
}

// RegisterMiddlewares attaches global middlewares. Metrics sit outside error
// handling so they observe the final status of every request.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, cfg MiddlewareConfig) {
	app.Use(requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: observability.RequestIDKey,
	}))
	app.Use(observability.RequestMetrics(metrics))
	if cfg.Tracer != nil {
		app.Use(observability.Tracing(cfg.Tracer))
	}
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.AllowOrigins}))
	app.Use(observability.RequestLogger(logger))
	app.Use(errorHandlingMiddleware(logger))
	if cfg.RequestTimeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.RequestTimeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
					logger.Error("request failed",
						zap.Error(domainErr),
						zap.String("request_id", observability.RequestID(c)))
				}
				err = writeError(c, domainErr)
			}
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	response := fiber.Map{"detail": domainErr.Message}
	if len(domainErr.Details) > 0 {
		response["errors"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(response)
}
