// Package simulator generates API traffic in a few fixed patterns so the
// request, latency and error metrics have something to show.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Mode names a traffic pattern.
type Mode string

const (
	ModeNormal     Mode = "normal"
	ModeStress     Mode = "stress"
	ModeError      Mode = "error"
	ModeMixed      Mode = "mixed"
	ModeContinuous Mode = "continuous"
)

// Modes lists the accepted --mode values.
var Modes = []Mode{ModeNormal, ModeStress, ModeError, ModeMixed, ModeContinuous}

// ParseMode validates a --mode value.
func ParseMode(name string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", name)
}

// Products is the catalogue random orders are drawn from.
var Products = []string{
	"Laptop", "Smartphone", "Headphones", "Monitor", "Keyboard",
	"Mouse", "Webcam", "Tablet", "Smartwatch", "Speaker",
}

var (
	updateStatuses  = []string{"processing", "shipped", "delivered"}
	errorScenarios  = []string{"500", "404", "timeout", "validation"}
	normalActions   = []weighted[action]{{actionCreate, 40}, {actionRead, 30}, {actionUpdate, 15}, {actionDelete, 5}, {actionHealth, 10}}
	mixedScenarios  = []weighted[string]{{"normal", 70}, {"error", 20}, {"stress", 10}}
	mixedNormalStep = []action{actionCreate, actionRead, actionUpdate, actionHealth}
)

type action string

const (
	actionCreate action = "create"
	actionRead   action = "read"
	actionUpdate action = "update"
	actionDelete action = "delete"
	actionHealth action = "health"
)

type weighted[T any] struct {
	value  T
	weight int
}

// Stats counts what a run sent.
type Stats struct {
	Requests int
	Failures int
}

// Simulator issues traffic against one API. It is not safe for concurrent use.
type Simulator struct {
	client  Client
	cfg     Config
	logger  *zap.Logger
	rng     *rand.Rand
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
	created []int64
	stats   Stats
}

// New builds a simulator with a time seeded random source.
func New(client Client, cfg Config, logger *zap.Logger) *Simulator {
	seed := uint64(time.Now().UnixNano())
	return &Simulator{
		client: client,
		cfg:    cfg,
		logger: logger,
		rng:    rand.New(rand.NewPCG(seed, seed>>1)),
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// Stats returns the counters accumulated so far.
func (s *Simulator) Stats() Stats {
	return s.stats
}

// KnownOrders returns the ids created by this simulator and not yet deleted.
func (s *Simulator) KnownOrders() []int64 {
	return append([]int64(nil), s.created...)
}

// CheckHealth probes the target once.
func (s *Simulator) CheckHealth(ctx context.Context) error {
	return s.client.Health(ctx)
}

// Run executes the pattern named by mode until it finishes or ctx is done.
func (s *Simulator) Run(ctx context.Context, mode Mode) error {
	var err error
	switch mode {
	case ModeNormal:
		err = s.RunNormal(ctx, s.cfg.Normal.Duration, s.cfg.Normal.RequestsPerMinute)
	case ModeStress:
		err = s.RunStress(ctx, s.cfg.Stress.Duration, s.cfg.Stress.RequestsPerSecond)
	case ModeError:
		err = s.RunErrors(ctx, s.cfg.Errors.Duration)
	case ModeMixed:
		err = s.RunMixed(ctx, s.cfg.Mixed.Duration)
	case ModeContinuous:
		s.logger.Info("running continuous traffic, interrupt to stop")
		for err == nil {
			err = s.RunMixed(ctx, s.cfg.Continuous.Round)
		}
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	if errors.Is(err, context.Canceled) {
		s.logger.Info("stopping traffic simulator")
		return nil
	}
	return err
}

// RunNormal sends weighted CRUD traffic at roughly requestsPerMinute.
func (s *Simulator) RunNormal(ctx context.Context, duration time.Duration, requestsPerMinute int) error {
	s.logger.Info("starting normal traffic", zap.Duration("duration", duration), zap.Int("requests_per_minute", requestsPerMinute))
	interval := time.Minute.Seconds() / float64(requestsPerMinute)

	sent := 0
	deadline := s.now().Add(duration)
	for s.now().Before(deadline) {
		s.perform(ctx, pickWeighted(s.rng, normalActions))
		sent++

		pause := math.Max(0, interval+s.uniform(-0.5, 0.5))
		if err := s.sleep(ctx, seconds(pause)); err != nil {
			return err
		}
	}
	s.logger.Info("normal traffic complete", zap.Int("requests", sent), zap.Duration("duration", duration))
	return nil
}

// RunStress sends creates only at requestsPerSecond.
func (s *Simulator) RunStress(ctx context.Context, duration time.Duration, requestsPerSecond int) error {
	s.logger.Info("starting stress test", zap.Duration("duration", duration), zap.Int("requests_per_second", requestsPerSecond))
	interval := time.Second / time.Duration(requestsPerSecond)

	sent := 0
	deadline := s.now().Add(duration)
	for s.now().Before(deadline) {
		s.createOrder(ctx)
		sent++
		if err := s.sleep(ctx, interval); err != nil {
			return err
		}
	}
	s.logger.Info("stress test complete", zap.Int("requests", sent))
	return nil
}

// RunErrors hits the error simulation endpoint with explicit error types.
func (s *Simulator) RunErrors(ctx context.Context, duration time.Duration) error {
	s.logger.Info("starting error scenario", zap.Duration("duration", duration))

	deadline := s.now().Add(duration)
	for s.now().Before(deadline) {
		s.simulateError(ctx, errorScenarios[s.rng.IntN(len(errorScenarios))])
		if err := s.sleep(ctx, seconds(s.uniform(2, 5))); err != nil {
			return err
		}
	}
	s.logger.Info("error scenario complete")
	return nil
}

// RunMixed interleaves normal traffic, server picked errors and create bursts.
func (s *Simulator) RunMixed(ctx context.Context, duration time.Duration) error {
	s.logger.Info("starting mixed scenario", zap.Duration("duration", duration))

	deadline := s.now().Add(duration)
	for s.now().Before(deadline) {
		var pause time.Duration
		switch pickWeighted(s.rng, mixedScenarios) {
		case "normal":
			s.perform(ctx, mixedNormalStep[s.rng.IntN(len(mixedNormalStep))])
			pause = seconds(s.uniform(1, 3))
		case "error":
			s.simulateError(ctx, "")
			pause = seconds(s.uniform(2, 4))
		case "stress":
			for i := 0; i < 5; i++ {
				s.createOrder(ctx)
			}
			pause = time.Second
		}
		if err := s.sleep(ctx, pause); err != nil {
			return err
		}
	}
	s.logger.Info("mixed scenario complete")
	return nil
}

func (s *Simulator) perform(ctx context.Context, a action) {
	switch a {
	case actionCreate:
		s.createOrder(ctx)
	case actionRead:
		s.listOrders(ctx)
	case actionUpdate:
		s.updateOrder(ctx)
	case actionDelete:
		s.deleteOrder(ctx)
	case actionHealth:
		s.checkHealth(ctx)
	}
}

func (s *Simulator) createOrder(ctx context.Context) {
	req := CreateOrderRequest{
		Product:  Products[s.rng.IntN(len(Products))],
		Quantity: 1 + s.rng.IntN(5),
		Price:    math.Round(s.uniform(9.99, 999.99)*100) / 100,
	}
	order, err := s.client.CreateOrder(ctx, req)
	if !s.record(err) {
		s.logger.Error("failed to create order", zap.Error(err))
		return
	}
	s.created = append(s.created, order.ID)
	s.logger.Info("created order", zap.Int64("order_id", order.ID), zap.String("product", req.Product), zap.Int("quantity", req.Quantity))
}

func (s *Simulator) listOrders(ctx context.Context) {
	total, err := s.client.ListOrders(ctx)
	if !s.record(err) {
		s.logger.Error("failed to fetch orders", zap.Error(err))
		return
	}
	s.logger.Info("fetched orders", zap.Int("total", total))
}

func (s *Simulator) updateOrder(ctx context.Context) {
	if len(s.created) == 0 {
		return
	}
	id := s.created[s.rng.IntN(len(s.created))]
	status := updateStatuses[s.rng.IntN(len(updateStatuses))]
	if !s.record(s.client.UpdateOrderStatus(ctx, id, status)) {
		s.logger.Error("failed to update order", zap.Int64("order_id", id))
		return
	}
	s.logger.Info("updated order", zap.Int64("order_id", id), zap.String("status", status))
}

// deleteOrder forgets the id whether or not the call succeeds.
func (s *Simulator) deleteOrder(ctx context.Context) {
	if len(s.created) == 0 {
		return
	}
	idx := s.rng.IntN(len(s.created))
	id := s.created[idx]
	s.created = append(s.created[:idx], s.created[idx+1:]...)

	if !s.record(s.client.DeleteOrder(ctx, id)) {
		s.logger.Error("failed to delete order", zap.Int64("order_id", id))
		return
	}
	s.logger.Info("deleted order", zap.Int64("order_id", id))
}

func (s *Simulator) checkHealth(ctx context.Context) {
	if !s.record(s.client.Health(ctx)) {
		s.logger.Error("health check failed")
		return
	}
	s.logger.Info("health check passed")
}

func (s *Simulator) simulateError(ctx context.Context, errorType string) {
	status, err := s.client.SimulateError(ctx, errorType)
	label := errorType
	if label == "" {
		label = "random"
	}
	if !s.record(err) {
		s.logger.Warn("error simulation request failed", zap.String("error_type", label), zap.Error(err))
		return
	}
	s.logger.Warn("simulated error", zap.String("error_type", label), zap.Int("status", status))
}

// record counts a request and reports whether it succeeded.
func (s *Simulator) record(err error) bool {
	s.stats.Requests++
	if err != nil {
		s.stats.Failures++
		return false
	}
	return true
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func pickWeighted[T any](rng *rand.Rand, choices []weighted[T]) T {
	total := 0
	for _, c := range choices {
		total += c.weight
	}
	n := rng.IntN(total)
	for _, c := range choices {
		if n < c.weight {
			return c.value
		}
		n -= c.weight
	}
	return choices[len(choices)-1].value
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
