package service

import (
	"context"
	"math/rand/v2"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/techstore/internal/observability"
	apperrors "github.com/spec-kit/techstore/pkg/util/errorutil"
)

// SimulatedError selects the failure produced by the error simulation endpoint.
type SimulatedError string

const (
	SimulatedInternal   SimulatedError = "500"
	SimulatedNotFound   SimulatedError = "404"
	SimulatedTimeout    SimulatedError = "timeout"
	SimulatedValidation SimulatedError = "validation"
	SimulatedRandom     SimulatedError = "random"
)

// ConcreteSimulatedErrors are the choices "random" picks from uniformly.
var ConcreteSimulatedErrors = []SimulatedError{
	SimulatedInternal,
	SimulatedNotFound,
	SimulatedTimeout,
	SimulatedValidation,
}

// ChaosService produces synthetic failures for dashboards.
type ChaosService struct {
	delay   time.Duration
	metrics *observability.Metrics
	logger  *zap.Logger
	pick    func(n int) int
	sleep   func(ctx context.Context, d time.Duration)
}

// NewChaosService builds the service. delay is how long a simulated timeout stalls.
func NewChaosService(delay time.Duration, metrics *observability.Metrics, logger *zap.Logger) *ChaosService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChaosService{
		delay:   delay,
		metrics: metrics,
		logger:  logger,
		pick:    rand.IntN,
		sleep:   sleepContext,
	}
}

// Simulate runs the requested scenario. Failures come back as DomainErrors;
// the returned message is set for outcomes that answer 200.
func (s *ChaosService) Simulate(ctx context.Context, kind SimulatedError) (string, error) {
	if kind == "" {
		kind = SimulatedRandom
	}
	if kind == SimulatedRandom {
		kind = ConcreteSimulatedErrors[s.pick(len(ConcreteSimulatedErrors))]
	}

	switch kind {
	case SimulatedInternal:
		s.metrics.RecordError(observability.ErrorTypeInternal)
		s.logger.Error("simulated internal server error")
		return "", apperrors.NewDomainError("INTERNAL_ERROR", "Internal server error", http.StatusInternalServerError, nil)
	case SimulatedNotFound:
		s.metrics.RecordError(observability.ErrorTypeNotFound)
		s.logger.Warn("simulated not found error")
		return "", apperrors.NewNotFound("Resource", nil)
	case SimulatedTimeout:
		s.metrics.RecordError(observability.ErrorTypeTimeout)
		s.logger.Warn("simulating slow response", zap.Duration("delay", s.delay))
		s.sleep(ctx, s.delay)
		return "Slow response completed", nil
	case SimulatedValidation:
		s.metrics.RecordError(observability.ErrorTypeValidation)
		s.logger.Warn("simulated validation error")
		return "", apperrors.NewValidationError("Validation failed", nil)
	default:
		return "Unknown error type", nil
	}
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
