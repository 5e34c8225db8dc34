package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS amm_pools (
		address    TEXT PRIMARY KEY,
		owner      TEXT NOT NULL,
		doc        JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS amm_pools_owner_idx ON amm_pools (owner)`,
	`CREATE TABLE IF NOT EXISTS amm_sell_states (
		pool       TEXT NOT NULL,
		asset      TEXT NOT NULL,
		doc        JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (pool, asset)
	)`,
	`CREATE TABLE IF NOT EXISTS amm_escrows (
		pool       TEXT PRIMARY KEY,
		doc        JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS amm_dynamic_allowlists (
		key        TEXT PRIMARY KEY,
		doc        JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS amm_events (
		id         BIGSERIAL PRIMARY KEY,
		kind       TEXT NOT NULL,
		pool       TEXT NOT NULL,
		ts         TIMESTAMPTZ NOT NULL,
		doc        JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS amm_events_pool_idx ON amm_events (pool, id)`,
	`CREATE TABLE IF NOT EXISTS amm_pool_window_metrics (
		pool_address        TEXT NOT NULL,
		window_size_seconds BIGINT NOT NULL,
		window_start_ts     TIMESTAMPTZ NOT NULL,
		window_end_ts       TIMESTAMPTZ NOT NULL,
		fulfill_buy_count   BIGINT NOT NULL,
		fulfill_sell_count  BIGINT NOT NULL,
		assets_bought       BIGINT NOT NULL,
		assets_sold         BIGINT NOT NULL,
		volume              NUMERIC NOT NULL,
		lp_fee              NUMERIC NOT NULL,
		referral_fee        NUMERIC NOT NULL,
		royalty_paid        NUMERIC NOT NULL,
		open_price          BIGINT NOT NULL,
		close_price         BIGINT NOT NULL,
		high_price          BIGINT NOT NULL,
		low_price           BIGINT NOT NULL,
		buyside_liquidity   NUMERIC,
		sellside_assets     BIGINT,
		lp_fee_rate         NUMERIC,
		apr                 NUMERIC,
		liquidity_method    TEXT NOT NULL,
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (pool_address, window_size_seconds, window_start_ts)
	)`,
	`CREATE TABLE IF NOT EXISTS amm_state (
		name              TEXT PRIMARY KEY,
		last_processed_ts BIGINT NOT NULL,
		updated_at        TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates the tables the store uses when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}
