package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"collectibleAMM/internal/model"
)

// UpsertWindowMetrics inserts or updates window metrics.
func (s *Store) UpsertWindowMetrics(ctx context.Context, metrics []model.PoolWindowMetrics) error {
	if len(metrics) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range metrics {
		batch.Queue(`
			INSERT INTO amm_pool_window_metrics (
				pool_address, window_size_seconds, window_start_ts, window_end_ts,
				fulfill_buy_count, fulfill_sell_count, assets_bought, assets_sold,
				volume, lp_fee, referral_fee, royalty_paid,
				open_price, close_price, high_price, low_price,
				buyside_liquidity, sellside_assets, lp_fee_rate, apr, liquidity_method,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,now(),now())
			ON CONFLICT (pool_address, window_size_seconds, window_start_ts)
			DO UPDATE SET
				window_end_ts = EXCLUDED.window_end_ts,
				fulfill_buy_count = EXCLUDED.fulfill_buy_count,
				fulfill_sell_count = EXCLUDED.fulfill_sell_count,
				assets_bought = EXCLUDED.assets_bought,
				assets_sold = EXCLUDED.assets_sold,
				volume = EXCLUDED.volume,
				lp_fee = EXCLUDED.lp_fee,
				referral_fee = EXCLUDED.referral_fee,
				royalty_paid = EXCLUDED.royalty_paid,
				open_price = EXCLUDED.open_price,
				close_price = EXCLUDED.close_price,
				high_price = EXCLUDED.high_price,
				low_price = EXCLUDED.low_price,
				buyside_liquidity = EXCLUDED.buyside_liquidity,
				sellside_assets = EXCLUDED.sellside_assets,
				lp_fee_rate = EXCLUDED.lp_fee_rate,
				apr = EXCLUDED.apr,
				liquidity_method = EXCLUDED.liquidity_method,
				updated_at = now()
		`,
			m.PoolAddress,
			m.WindowSizeSecs,
			m.WindowStart,
			m.WindowEnd,
			int64(m.FulfillBuyCount),
			int64(m.FulfillSellCount),
			int64(m.AssetsBought),
			int64(m.AssetsSold),
			m.Volume,
			m.LPFee,
			m.ReferralFee,
			m.RoyaltyPaid,
			int64(m.OpenPrice),
			int64(m.ClosePrice),
			int64(m.HighPrice),
			int64(m.LowPrice),
			m.BuysideLiquidity,
			m.SellsideAssets,
			m.LPFeeRate,
			m.APR,
			m.LiquidityMethod,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range metrics {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns last_processed_ts for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var ts int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_ts FROM amm_state WHERE name=$1`, name)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(ts), true, nil
}

// SaveState upserts last_processed_ts for a name.
func (s *Store) SaveState(ctx context.Context, name string, ts uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO amm_state (name, last_processed_ts, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_ts = EXCLUDED.last_processed_ts, updated_at = now()
	`, name, int64(ts))
	return err
}
