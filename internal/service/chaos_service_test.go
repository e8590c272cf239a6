package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/techstore/internal/observability"
	apperrors "github.com/spec-kit/techstore/pkg/util/errorutil"
)

func TestChaosServiceExplicitTypes(t *testing.T) {
	tests := []struct {
		kind   SimulatedError
		status int
		detail string
	}{
		{SimulatedInternal, 500, "Internal server error"},
		{SimulatedNotFound, 404, "Resource not found"},
		{SimulatedValidation, 400, "Validation failed"},
	}
	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			svc := NewChaosService(time.Second, observability.NewMetrics(), nil)
			msg, err := svc.Simulate(context.Background(), tc.kind)
			require.Error(t, err)
			assert.Empty(t, msg)
			de := apperrors.ToDomainError(err)
			assert.Equal(t, tc.status, de.HTTPStatus)
			assert.Equal(t, tc.detail, de.Message)
		})
	}
}

func TestChaosServiceTimeoutSleeps(t *testing.T) {
	svc := NewChaosService(3*time.Second, nil, nil)
	var slept time.Duration
	svc.sleep = func(_ context.Context, d time.Duration) { slept = d }

	msg, err := svc.Simulate(context.Background(), SimulatedTimeout)
	require.NoError(t, err)
	assert.Equal(t, "Slow response completed", msg)
	assert.Equal(t, 3*time.Second, slept)
}

func TestChaosServiceRandomPicksConcreteType(t *testing.T) {
	svc := NewChaosService(0, nil, nil)
	for i, want := range ConcreteSimulatedErrors {
		idx := i
		svc.pick = func(n int) int {
			require.Equal(t, len(ConcreteSimulatedErrors), n)
			return idx
		}
		msg, err := svc.Simulate(context.Background(), SimulatedRandom)
		if want == SimulatedTimeout {
			require.NoError(t, err)
			assert.Equal(t, "Slow response completed", msg)
			continue
		}
		require.Error(t, err, "random pick %s", want)
	}
}

func TestChaosServiceEmptyMeansRandom(t *testing.T) {
	svc := NewChaosService(0, nil, nil)
	picked := false
	svc.pick = func(int) int {
		picked = true
		return 0
	}
	_, err := svc.Simulate(context.Background(), "")
	require.Error(t, err)
	assert.True(t, picked)
}

func TestChaosServiceUnknownType(t *testing.T) {
	svc := NewChaosService(0, nil, nil)
	msg, err := svc.Simulate(context.Background(), "teapot")
	require.NoError(t, err)
	assert.Equal(t, "Unknown error type", msg)
}

func TestSleepContextStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	sleepContext(ctx, time.Minute)
	assert.Less(t, time.Since(start), time.Second)
}
