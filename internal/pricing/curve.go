package pricing

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/model"
)

const (
	// BasisPoints is the denominator of every bp ratio.
	BasisPoints = 10_000
	// LamportsPerSOL is the native currency scale.
	LamportsPerSOL = 1_000_000_000
	// MaxTotalPrice bounds the consideration of a single fill.
	MaxTotalPrice uint64 = 8_000_000 * LamportsPerSOL
	// MaxExponentialDelta caps an exponential step at 100%.
	MaxExponentialDelta = BasisPoints
)

// Curve is the pricing state of a pool.
type Curve struct {
	Type      model.CurveType
	SpotPrice uint64
	Delta     uint64
}

// CurveOf extracts the curve state of a pool.
func CurveOf(pool *model.Pool) Curve {
	return Curve{Type: pool.CurveType, SpotPrice: pool.SpotPrice, Delta: pool.CurveDelta}
}

// Quote is the speculative result of pricing a fill. NextSpotPrice only
// becomes the pool's spot price once the fill commits.
type Quote struct {
	TotalPrice    uint64 `json:"total_price"`
	NextSpotPrice uint64 `json:"next_spot_price"`
}

// Validate rejects curve parameters a pool cannot be created or updated with.
func (c Curve) Validate() error {
	switch c.Type {
	case model.CurveLinear:
	case model.CurveExponential:
		if c.Delta > MaxExponentialDelta {
			return fmt.Errorf("exponential delta %d: %w", c.Delta, ammerr.ErrInvalidCurveDelta)
		}
	default:
		return fmt.Errorf("curve type %d: %w", c.Type, ammerr.ErrInvalidCurveType)
	}
	if c.SpotPrice == 0 || c.SpotPrice > MaxTotalPrice {
		return fmt.Errorf("spot price %d: %w", c.SpotPrice, ammerr.ErrInvalidSpotPrice)
	}
	return nil
}

// Price computes the total consideration of quantity units and the spot price
// after them. fulfillBuy means the pool buys (its inventory grows and the price
// walks down); otherwise the pool sells and the price walks up. The first unit
// always trades at the current spot price. A fill that would leave any unit
// or the next spot price at zero is rejected.
func Price(c Curve, quantity uint64, fulfillBuy bool) (Quote, error) {
	if quantity == 0 {
		return Quote{}, fmt.Errorf("zero quantity: %w", ammerr.ErrInvalidRequestedPrice)
	}

	var (
		q   Quote
		err error
	)
	switch c.Type {
	case model.CurveLinear:
		q, err = linear(c.SpotPrice, c.Delta, quantity, fulfillBuy)
	case model.CurveExponential:
		q, err = exponential(c.SpotPrice, c.Delta, quantity, fulfillBuy)
	default:
		return Quote{}, fmt.Errorf("curve type %d: %w", c.Type, ammerr.ErrInvalidCurveType)
	}
	if err != nil {
		return Quote{}, err
	}
	if q.TotalPrice > MaxTotalPrice {
		return Quote{}, fmt.Errorf("total price %d exceeds max: %w", q.TotalPrice, ammerr.ErrNumericOverflow)
	}
	return q, nil
}

func linear(spot, delta, n uint64, fulfillBuy bool) (Quote, error) {
	base, overflow := math.SafeMul(n, spot)
	if overflow {
		return Quote{}, overflowErr("n*spot")
	}

	// n*(n-1)/2 is exact because one of n, n-1 is even.
	pairs, overflow := math.SafeMul(n, n-1)
	if overflow {
		return Quote{}, overflowErr("n*(n-1)")
	}
	steps, overflow := math.SafeMul(pairs/2, delta)
	if overflow {
		return Quote{}, overflowErr("steps*delta")
	}
	move, overflow := math.SafeMul(n, delta)
	if overflow {
		return Quote{}, overflowErr("n*delta")
	}

	if fulfillBuy {
		total, underflow := math.SafeSub(base, steps)
		if underflow {
			return Quote{}, overflowErr("price below zero")
		}
		next, underflow := math.SafeSub(spot, move)
		if underflow || next == 0 {
			return Quote{}, overflowErr("next price not above zero")
		}
		return Quote{TotalPrice: total, NextSpotPrice: next}, nil
	}

	total, overflow := math.SafeAdd(base, steps)
	if overflow {
		return Quote{}, overflowErr("total price")
	}
	next, overflow := math.SafeAdd(spot, move)
	if overflow {
		return Quote{}, overflowErr("next price")
	}
	return Quote{TotalPrice: total, NextSpotPrice: next}, nil
}

func exponential(spot, delta, n uint64, fulfillBuy bool) (Quote, error) {
	bp := uint256.NewInt(BasisPoints)
	factor := new(uint256.Int).AddUint64(bp, delta)

	curr := uint256.NewInt(spot)
	var total uint64
	for i := uint64(0); i < n; i++ {
		if curr.IsZero() {
			return Quote{}, overflowErr("unit price reached zero")
		}
		var overflow bool
		total, overflow = math.SafeAdd(total, curr.Uint64())
		if overflow {
			return Quote{}, overflowErr("total price")
		}

		if fulfillBuy {
			curr.Mul(curr, bp)
			curr.Div(curr, factor)
			continue
		}
		curr.Mul(curr, factor)
		curr.Div(curr, bp)
		if !curr.IsUint64() {
			return Quote{}, overflowErr("next price")
		}
	}
	if curr.IsZero() {
		return Quote{}, overflowErr("next price reached zero")
	}
	return Quote{TotalPrice: total, NextSpotPrice: curr.Uint64()}, nil
}

func overflowErr(what string) error {
	return fmt.Errorf("%s: %w", what, ammerr.ErrNumericOverflow)
}
