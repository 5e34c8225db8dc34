package engine

import (
	"context"
	"fmt"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/fees"
	"collectibleAMM/internal/model"
	"collectibleAMM/internal/pricing"
)

// QuoteResult is the priced outcome of a hypothetical fill.
type QuoteResult struct {
	Quote pricing.Quote `json:"quote"`
	Split fees.Split    `json:"split"`
}

// Quote prices a fill against the pool's current state without mutating it.
func (e *Engine) Quote(ctx context.Context, args QuoteArgs) (QuoteResult, error) {
	pool, ok, err := e.deps.Store.GetPool(ctx, args.Pool)
	if err != nil {
		return QuoteResult{}, fmt.Errorf("load pool %s: %w", args.Pool, err)
	}
	if !ok {
		return QuoteResult{}, fmt.Errorf("pool %s: %w", args.Pool, ammerr.ErrPoolNotFound)
	}

	s := e.newSession(ctx, "")
	s.pool = pool
	if pool.Expired(s.now) {
		return QuoteResult{}, fmt.Errorf("expired at %d: %w", pool.Expiry, ammerr.ErrExpired)
	}

	var meta model.AssetMetadata
	if args.Asset != nil {
		if meta, err = s.metadata(*args.Asset); err != nil {
			return QuoteResult{}, err
		}
	}

	quote, err := pricing.Price(pricing.CurveOf(&pool), args.AssetAmount, args.FulfillBuy)
	if err != nil {
		return QuoteResult{}, err
	}
	in := fees.Inputs{
		TotalPrice:     quote.TotalPrice,
		LPFeeBP:        pool.LPFeeBP,
		TwoSided:       s.twoSided(),
		MakerFeeBP:     args.MakerFeeBP,
		TakerFeeBP:     args.TakerFeeBP,
		Metadata:       meta,
		RoyaltyShareBP: args.RoyaltyShareBP,
	}
	var split fees.Split
	if args.FulfillBuy {
		in.RoyaltyShareBP = pool.BuysideCreatorRoyaltyBP
		split, err = fees.SplitFulfillBuy(in)
	} else {
		split, err = fees.SplitFulfillSell(in)
	}
	if err != nil {
		return QuoteResult{}, err
	}
	return QuoteResult{Quote: quote, Split: split}, nil
}

// Pool returns the stored state of a pool.
func (e *Engine) Pool(ctx context.Context, addr model.Pubkey) (model.Pool, error) {
	pool, ok, err := e.deps.Store.GetPool(ctx, addr)
	if err != nil {
		return model.Pool{}, fmt.Errorf("load pool %s: %w", addr, err)
	}
	if !ok {
		return model.Pool{}, fmt.Errorf("pool %s: %w", addr, ammerr.ErrPoolNotFound)
	}
	return pool, nil
}
