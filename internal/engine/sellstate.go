package engine

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/math"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/model"
)

func (s *session) sellState(asset model.Pubkey) (*stateEntry, error) {
	if entry, ok := s.states[asset]; ok {
		return entry, nil
	}
	st, ok, err := s.e.deps.Store.GetSellState(s.ctx, s.pool.Address, asset)
	if err != nil {
		return nil, fmt.Errorf("load sell state %s: %w", asset, err)
	}
	entry := &stateEntry{state: st, existed: ok, open: ok}
	s.states[asset] = entry
	return entry, nil
}

// depositAsset adds amount units of asset to the pool's inventory, opening
// the sell state on first deposit. payer funds the record's rent.
func (s *session) depositAsset(asset model.Pubkey, amount uint64, payer model.Pubkey) error {
	entry, err := s.sellState(asset)
	if err != nil {
		return err
	}
	if !entry.open {
		entry.state = model.SellState{
			Pool:               s.pool.Address,
			PoolOwner:          s.pool.Owner,
			AssetMint:          asset,
			CosignerAnnotation: s.pool.CosignerAnnotation,
			RentLamports:       s.e.cfg.SellStateRent,
		}
		entry.open = true
		s.pay(payer, s.sellStateAddress(asset), entry.state.RentLamports, "sell_state_rent")
	}

	next, overflow := math.SafeAdd(entry.state.AssetAmount, amount)
	if overflow {
		return fmt.Errorf("sell state amount: %w", ammerr.ErrNumericOverflow)
	}
	total, overflow := math.SafeAdd(s.pool.SellsideAssetAmount, amount)
	if overflow {
		return fmt.Errorf("sellside asset amount: %w", ammerr.ErrNumericOverflow)
	}
	entry.state.AssetAmount = next
	entry.dirty = true
	s.pool.SellsideAssetAmount = total
	return nil
}

// withdrawAsset removes amount units of asset from the pool's inventory and
// closes the sell state once it is empty. It reports whether it closed.
func (s *session) withdrawAsset(asset model.Pubkey, amount uint64) (bool, error) {
	entry, err := s.sellState(asset)
	if err != nil {
		return false, err
	}
	if !entry.open {
		return false, fmt.Errorf("asset %s: %w", asset, ammerr.ErrSellStateNotFound)
	}

	next, underflow := math.SafeSub(entry.state.AssetAmount, amount)
	if underflow {
		return false, fmt.Errorf("sell state holds %d, withdraw %d: %w", entry.state.AssetAmount, amount, ammerr.ErrNumericOverflow)
	}
	total, underflow := math.SafeSub(s.pool.SellsideAssetAmount, amount)
	if underflow {
		return false, fmt.Errorf("sellside asset amount: %w", ammerr.ErrNumericOverflow)
	}
	entry.state.AssetAmount = next
	entry.dirty = true
	s.pool.SellsideAssetAmount = total

	if next > 0 {
		return false, nil
	}
	entry.open = false
	s.pay(s.sellStateAddress(asset), s.pool.Owner, entry.state.RentLamports, "sell_state_rent_refund")
	return true, nil
}
