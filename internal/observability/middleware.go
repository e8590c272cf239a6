package observability

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/techstore/pkg/util/errorutil"
)

// RequestIDKey is the fiber locals key the request id middleware stores under.
const RequestIDKey = "requestid"

// RequestMetrics records duration and outcome for every request. It must run
// outside the error handling middleware so the status it reads is final.
func RequestMetrics(metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := responseStatus(c, err)
		// fasthttp reuses the request buffers, so copy before handing them to prometheus.
		metrics.RecordRequest(strings.Clone(c.Method()), strings.Clone(c.Path()), status, time.Since(start))
		return err
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := responseStatus(c, err)
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", RequestID(c)),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("request completed", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}
		return err
	}
}

// RequestID returns the id assigned to the current request, if any.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func responseStatus(c *fiber.Ctx, err error) int {
	if err != nil {
		return apperrors.ToDomainError(err).HTTPStatus
	}
	return c.Response().StatusCode()
}
