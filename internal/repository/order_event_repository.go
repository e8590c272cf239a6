package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/techstore/internal/events"
)

// OrderEventRepository appends order events to the Postgres audit log.
type OrderEventRepository struct {
	pool *pgxpool.Pool
}

// NewOrderEventRepository returns nil when Postgres is not configured.
func NewOrderEventRepository(pool *pgxpool.Pool) *OrderEventRepository {
	if pool == nil {
		return nil
	}
	return &OrderEventRepository{pool: pool}
}

// Name identifies the sink in logs.
func (r *OrderEventRepository) Name() string {
	return "postgres"
}

// Deliver inserts the event. Replays of the same event id are ignored.
func (r *OrderEventRepository) Deliver(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode payload for event %s: %w", event.ID, err)
	}
	const query = `
        INSERT INTO order_events (id, event_type, order_id, sequence, payload, occurred_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (id) DO NOTHING`
	_, err = r.pool.Exec(ctx, query,
		event.ID,
		string(event.Type),
		event.OrderID,
		event.Sequence,
		payload,
		event.Timestamp,
	)
	return err
}
