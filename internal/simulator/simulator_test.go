package simulator

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClient struct {
	nextID   int64
	creates  []CreateOrderRequest
	lists    int
	updates  map[int64]string
	deletes  []int64
	health   int
	errTypes []string
	failWith error
}

func newFakeClient() *fakeClient {
	return &fakeClient{updates: map[int64]string{}}
}

func (f *fakeClient) CreateOrder(_ context.Context, req CreateOrderRequest) (Order, error) {
	f.creates = append(f.creates, req)
	if f.failWith != nil {
		return Order{}, f.failWith
	}
	f.nextID++
	return Order{ID: f.nextID, Product: req.Product, Quantity: req.Quantity, Status: "pending"}, nil
}

func (f *fakeClient) ListOrders(context.Context) (int, error) {
	f.lists++
	return int(f.nextID), f.failWith
}

func (f *fakeClient) UpdateOrderStatus(_ context.Context, id int64, status string) error {
	f.updates[id] = status
	return f.failWith
}

func (f *fakeClient) DeleteOrder(_ context.Context, id int64) error {
	f.deletes = append(f.deletes, id)
	return f.failWith
}

func (f *fakeClient) Health(context.Context) error {
	f.health++
	return f.failWith
}

func (f *fakeClient) SimulateError(_ context.Context, errorType string) (int, error) {
	f.errTypes = append(f.errTypes, errorType)
	return 500, f.failWith
}

// newTestSimulator runs on a fake clock that only moves when the simulator sleeps.
func newTestSimulator(client Client) (*Simulator, *[]time.Duration) {
	clock := time.Unix(0, 0)
	var pauses []time.Duration
	sim := New(client, DefaultConfig(), zap.NewNop())
	sim.rng = rand.New(rand.NewPCG(1, 2))
	sim.now = func() time.Time { return clock }
	sim.sleep = func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		pauses = append(pauses, d)
		if d < time.Millisecond {
			d = time.Millisecond
		}
		clock = clock.Add(d)
		return nil
	}
	return sim, &pauses
}

func TestRunStressCreatesAtFixedRate(t *testing.T) {
	client := newFakeClient()
	sim, pauses := newTestSimulator(client)

	require.NoError(t, sim.RunStress(context.Background(), 2*time.Second, 10))

	assert.Len(t, client.creates, 20)
	assert.Zero(t, client.lists)
	for _, p := range *pauses {
		assert.Equal(t, 100*time.Millisecond, p)
	}
	assert.Len(t, sim.KnownOrders(), 20)
	assert.Equal(t, Stats{Requests: 20}, sim.Stats())
}

func TestCreatedOrdersAreWithinCatalogueBounds(t *testing.T) {
	client := newFakeClient()
	sim, _ := newTestSimulator(client)

	require.NoError(t, sim.RunStress(context.Background(), 10*time.Second, 20))

	require.NotEmpty(t, client.creates)
	for _, req := range client.creates {
		assert.Contains(t, Products, req.Product)
		assert.GreaterOrEqual(t, req.Quantity, 1)
		assert.LessOrEqual(t, req.Quantity, 5)
		assert.GreaterOrEqual(t, req.Price, 9.99)
		assert.LessOrEqual(t, req.Price, 999.99)
		assert.InDelta(t, req.Price, float64(int64(req.Price*100+0.5))/100, 1e-9)
	}
}

func TestRunNormalPacesAroundTargetRate(t *testing.T) {
	client := newFakeClient()
	sim, pauses := newTestSimulator(client)

	require.NoError(t, sim.RunNormal(context.Background(), time.Minute, 30))

	require.NotEmpty(t, *pauses)
	for _, p := range *pauses {
		assert.GreaterOrEqual(t, p, 1500*time.Millisecond)
		assert.LessOrEqual(t, p, 2500*time.Millisecond)
	}
	assert.NotEmpty(t, client.creates)
	assert.Positive(t, client.lists)
	assert.Zero(t, sim.Stats().Failures)
}

func TestRunNormalClampsNegativePause(t *testing.T) {
	client := newFakeClient()
	sim, pauses := newTestSimulator(client)

	require.NoError(t, sim.RunNormal(context.Background(), time.Second, 600))

	for _, p := range *pauses {
		assert.GreaterOrEqual(t, p, time.Duration(0))
	}
}

func TestUpdateAndDeleteOnlyTouchKnownOrders(t *testing.T) {
	client := newFakeClient()
	sim, _ := newTestSimulator(client)

	sim.updateOrder(context.Background())
	sim.deleteOrder(context.Background())
	assert.Empty(t, client.updates)
	assert.Empty(t, client.deletes)

	sim.createOrder(context.Background())
	sim.createOrder(context.Background())
	sim.updateOrder(context.Background())
	require.Len(t, client.updates, 1)
	for id, status := range client.updates {
		assert.Contains(t, []int64{1, 2}, id)
		assert.Contains(t, updateStatuses, status)
	}

	sim.deleteOrder(context.Background())
	require.Len(t, client.deletes, 1)
	assert.Len(t, sim.KnownOrders(), 1)
	assert.NotContains(t, sim.KnownOrders(), client.deletes[0])
}

func TestDeleteForgetsOrderEvenOnFailure(t *testing.T) {
	client := newFakeClient()
	sim, _ := newTestSimulator(client)
	sim.createOrder(context.Background())

	client.failWith = errors.New("boom")
	sim.deleteOrder(context.Background())

	assert.Empty(t, sim.KnownOrders())
	assert.Equal(t, Stats{Requests: 2, Failures: 1}, sim.Stats())
}

func TestRunErrorsUsesExplicitTypes(t *testing.T) {
	client := newFakeClient()
	sim, pauses := newTestSimulator(client)

	require.NoError(t, sim.RunErrors(context.Background(), 30*time.Second))

	require.NotEmpty(t, client.errTypes)
	for _, et := range client.errTypes {
		assert.Contains(t, errorScenarios, et)
	}
	for _, p := range *pauses {
		assert.GreaterOrEqual(t, p, 2*time.Second)
		assert.LessOrEqual(t, p, 5*time.Second)
	}
}

func TestRunMixedLeavesErrorChoiceToServer(t *testing.T) {
	client := newFakeClient()
	sim, _ := newTestSimulator(client)

	require.NoError(t, sim.RunMixed(context.Background(), 10*time.Minute))

	assert.NotEmpty(t, client.creates)
	assert.NotEmpty(t, client.errTypes)
	for _, et := range client.errTypes {
		assert.Empty(t, et)
	}
	assert.Empty(t, client.deletes)
}

func TestRunContinuousStopsOnCancel(t *testing.T) {
	client := newFakeClient()
	sim, _ := newTestSimulator(client)

	ctx, cancel := context.WithCancel(context.Background())
	base := sim.sleep
	calls := 0
	sim.sleep = func(ctx context.Context, d time.Duration) error {
		calls++
		if calls == 200 {
			cancel()
		}
		return base(ctx, d)
	}

	require.NoError(t, sim.Run(ctx, ModeContinuous))
	assert.Equal(t, 200, calls)
}

func TestRunRejectsUnknownMode(t *testing.T) {
	sim, _ := newTestSimulator(newFakeClient())
	assert.Error(t, sim.Run(context.Background(), Mode("burst")))
}

func TestPickWeightedHonoursWeights(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	counts := map[string]int{}
	for i := 0; i < 10000; i++ {
		counts[pickWeighted(rng, mixedScenarios)]++
	}
	assert.InDelta(t, 7000, counts["normal"], 300)
	assert.InDelta(t, 2000, counts["error"], 300)
	assert.InDelta(t, 1000, counts["stress"], 300)
}

func TestSleepContextReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("burst")
	assert.Error(t, err)
	_, err = ParseMode("")
	assert.Error(t, err)
}
