package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"collectibleAMM/internal/model"
)

// PutEvents appends journal events.
func (s *Store) PutEvents(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, ev := range events {
		doc, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		batch.Queue(`
			INSERT INTO amm_events (kind, pool, ts, doc, created_at)
			VALUES ($1, $2, $3, $4, now())
		`, string(ev.Kind), ev.Pool.String(), time.Unix(ev.Timestamp, 0).UTC(), doc)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// ListEvents returns the journal of a pool in commit order, oldest first.
func (s *Store) ListEvents(ctx context.Context, pool model.Pubkey, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	return listDocs[model.Event](ctx, s, `
		SELECT doc FROM (
			SELECT id, doc FROM amm_events WHERE pool=$1 ORDER BY id DESC LIMIT $2
		) recent ORDER BY id
	`, pool.String(), limit)
}
