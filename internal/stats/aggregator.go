package stats

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"collectibleAMM/internal/model"
	"collectibleAMM/internal/storage"
)

const (
	liquidityMethodLedger = "ledger_latest"
	liquidityMethodNone   = "unavailable"
)

// MetricsSink persists flushed windows.
type MetricsSink interface {
	UpsertWindowMetrics(ctx context.Context, metrics []model.PoolWindowMetrics) error
}

// Config controls aggregation behavior.
type Config struct {
	WindowSeconds int64
	BatchSize     int
	RecomputeFrom uint64
	StateStore    StateStore
}

// Aggregator folds the event journal into per pool window metrics.
type Aggregator struct {
	cfg          Config
	sink         MetricsSink
	ledger       storage.Reader
	logger       *zap.Logger
	accumulators map[model.Pubkey]*Accumulator
}

// NewAggregator builds an Aggregator. ledger may be nil, in which case
// liquidity figures are left out.
func NewAggregator(cfg Config, sink MetricsSink, ledger storage.Reader, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		cfg:          cfg,
		sink:         sink,
		ledger:       ledger,
		logger:       logger,
		accumulators: make(map[model.Pubkey]*Accumulator),
	}
}

// Run aggregates the fills of a JSONL journal.
func (a *Aggregator) Run(ctx context.Context, journalPath string) error {
	if a.sink == nil {
		return fmt.Errorf("metrics sink is nil")
	}
	if a.cfg.WindowSeconds <= 0 {
		return fmt.Errorf("window seconds must be > 0")
	}
	if a.cfg.BatchSize <= 0 {
		a.cfg.BatchSize = 1000
	}

	startTs, err := a.loadStartTimestamp(ctx)
	if err != nil {
		return err
	}

	batch := make([]model.PoolWindowMetrics, 0, a.cfg.BatchSize)
	maxTs := startTs
	var total, fills, skipped, failed int

	err = storage.ReadEvents(journalPath, func(event model.Event) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		total++
		if !event.Kind.IsFill() {
			return nil
		}
		if event.Timestamp <= 0 || uint64(event.Timestamp) <= startTs {
			skipped++
			return nil
		}

		start := windowStart(event.Timestamp, a.cfg.WindowSeconds)
		acc := a.accumulators[event.Pool]
		if acc == nil {
			acc = NewAccumulator(event.Pool, start, start+a.cfg.WindowSeconds)
			a.accumulators[event.Pool] = acc
		} else if acc.WindowStart != start {
			batch = append(batch, a.flushAccumulator(ctx, acc))
			acc = NewAccumulator(event.Pool, start, start+a.cfg.WindowSeconds)
			a.accumulators[event.Pool] = acc
		}

		if err := acc.AddEvent(event); err != nil {
			failed++
			a.logger.Warn("aggregate event", zap.Error(err), zap.Stringer("pool", event.Pool), zap.String("kind", string(event.Kind)))
			return nil
		}
		fills++

		if uint64(event.Timestamp) > maxTs {
			maxTs = uint64(event.Timestamp)
		}

		if len(batch) >= a.cfg.BatchSize {
			if err := a.sink.UpsertWindowMetrics(ctx, batch); err != nil {
				return fmt.Errorf("upsert window metrics: %w", err)
			}
			batch = batch[:0]
			if err := a.saveState(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("aggregate journal: %w", err)
	}

	for _, acc := range a.accumulators {
		batch = append(batch, a.flushAccumulator(ctx, acc))
	}
	a.accumulators = make(map[model.Pubkey]*Accumulator)

	if len(batch) > 0 {
		if err := a.sink.UpsertWindowMetrics(ctx, batch); err != nil {
			return err
		}
	}

	a.cfg.RecomputeFrom = maxTs
	if err := a.saveState(ctx); err != nil {
		return err
	}

	a.logger.Info("aggregate complete",
		zap.Int("total", total),
		zap.Int("fills", fills),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)
	return nil
}

func (a *Aggregator) loadStartTimestamp(ctx context.Context) (uint64, error) {
	if a.cfg.RecomputeFrom > 0 {
		return a.cfg.RecomputeFrom - 1, nil
	}
	if a.cfg.StateStore == nil {
		return 0, nil
	}
	last, ok, err := a.cfg.StateStore.Load(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return last, nil
}

// saveState records a timestamp before every still open window so a rerun
// rebuilds those windows from scratch.
func (a *Aggregator) saveState(ctx context.Context) error {
	if a.cfg.StateStore == nil {
		return nil
	}

	if len(a.accumulators) == 0 {
		return a.cfg.StateStore.Save(ctx, a.cfg.RecomputeFrom)
	}

	safeTs := uint64(minOpenWindowStart(a.accumulators))
	if safeTs > 0 {
		safeTs = safeTs - 1
	}
	if safeTs == 0 {
		safeTs = a.cfg.RecomputeFrom
	}
	return a.cfg.StateStore.Save(ctx, safeTs)
}

func (a *Aggregator) flushAccumulator(ctx context.Context, acc *Accumulator) model.PoolWindowMetrics {
	metrics := model.PoolWindowMetrics{
		PoolAddress:      acc.Pool.String(),
		WindowSizeSecs:   a.cfg.WindowSeconds,
		WindowStart:      time.Unix(acc.WindowStart, 0).UTC(),
		WindowEnd:        time.Unix(acc.WindowEnd, 0).UTC(),
		FulfillBuyCount:  acc.FulfillBuyCount,
		FulfillSellCount: acc.FulfillSellCount,
		AssetsBought:     acc.AssetsBought,
		AssetsSold:       acc.AssetsSold,
		Volume:           formatSOL(acc.Volume),
		LPFee:            formatSOL(acc.LPFee),
		ReferralFee:      formatSOL(acc.ReferralFee),
		RoyaltyPaid:      formatSOL(acc.RoyaltyPaid),
		OpenPrice:        acc.OpenPrice,
		ClosePrice:       acc.ClosePrice,
		HighPrice:        acc.HighPrice,
		LowPrice:         acc.LowPrice,
		LiquidityMethod:  liquidityMethodNone,
	}

	pool, ok, err := a.liquidity(ctx, acc.Pool)
	if err != nil {
		a.logger.Warn("liquidity lookup failed", zap.Stringer("pool", acc.Pool), zap.Error(err))
		return metrics
	}
	if !ok {
		return metrics
	}

	buyside := formatSOL(pool.BuysidePaymentAmount)
	sellside := pool.SellsideAssetAmount
	metrics.BuysideLiquidity = &buyside
	metrics.SellsideAssets = &sellside
	metrics.LPFeeRate = computeFeeRate(acc.LPFee, pool.BuysidePaymentAmount)
	metrics.APR = computeAPR(metrics.LPFeeRate, a.cfg.WindowSeconds)
	metrics.LiquidityMethod = liquidityMethodLedger
	return metrics
}

func (a *Aggregator) liquidity(ctx context.Context, addr model.Pubkey) (model.Pool, bool, error) {
	if a.ledger == nil {
		return model.Pool{}, false, nil
	}
	return a.ledger.GetPool(ctx, addr)
}

func windowStart(ts, windowSec int64) int64 {
	return ts - (ts % windowSec)
}

func minOpenWindowStart(acc map[model.Pubkey]*Accumulator) int64 {
	var min int64
	for _, entry := range acc {
		if entry == nil {
			continue
		}
		if min == 0 || entry.WindowStart < min {
			min = entry.WindowStart
		}
	}
	return min
}
