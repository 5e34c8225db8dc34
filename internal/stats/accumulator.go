package stats

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/math"

	"collectibleAMM/internal/model"
)

// Accumulator holds aggregate values for a pool window.
type Accumulator struct {
	Pool        model.Pubkey
	WindowStart int64
	WindowEnd   int64

	FulfillBuyCount  uint64
	FulfillSellCount uint64
	AssetsBought     uint64
	AssetsSold       uint64
	Volume           uint64
	LPFee            uint64
	ReferralFee      uint64
	RoyaltyPaid      uint64

	OpenPrice  uint64
	ClosePrice uint64
	HighPrice  uint64
	LowPrice   uint64

	firstTS int64
	lastTS  int64
}

func NewAccumulator(pool model.Pubkey, windowStart, windowEnd int64) *Accumulator {
	return &Accumulator{Pool: pool, WindowStart: windowStart, WindowEnd: windowEnd}
}

// AddEvent folds one journal event into the window. Only fills count.
func (a *Accumulator) AddEvent(event model.Event) error {
	switch event.Kind {
	case model.EventFulfillBuy:
		a.FulfillBuyCount++
		if err := add(&a.AssetsBought, event.Quantity); err != nil {
			return err
		}
	case model.EventFulfillSell:
		a.FulfillSellCount++
		if err := add(&a.AssetsSold, event.Quantity); err != nil {
			return err
		}
	default:
		return nil
	}

	for _, f := range []struct {
		target *uint64
		value  uint64
	}{
		{&a.Volume, event.TotalPrice},
		{&a.LPFee, event.LPFee},
		{&a.ReferralFee, event.ReferralFee},
		{&a.RoyaltyPaid, event.RoyaltyPaid},
	} {
		if err := add(f.target, f.value); err != nil {
			return err
		}
	}

	a.applyPrice(event)
	return nil
}

func (a *Accumulator) applyPrice(event model.Event) {
	if a.fills() == 1 || event.Timestamp < a.firstTS {
		a.firstTS = event.Timestamp
		a.OpenPrice = event.SpotPriceBefore
	}
	if event.Timestamp >= a.lastTS {
		a.lastTS = event.Timestamp
		a.ClosePrice = event.SpotPriceAfter
	}
	for _, p := range []uint64{event.SpotPriceBefore, event.SpotPriceAfter} {
		if p > a.HighPrice {
			a.HighPrice = p
		}
		if a.LowPrice == 0 || p < a.LowPrice {
			a.LowPrice = p
		}
	}
}

func (a *Accumulator) fills() uint64 {
	return a.FulfillBuyCount + a.FulfillSellCount
}

func add(target *uint64, value uint64) error {
	sum, overflow := math.SafeAdd(*target, value)
	if overflow {
		return fmt.Errorf("accumulate %d: overflow", value)
	}
	*target = sum
	return nil
}
