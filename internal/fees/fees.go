package fees

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"

	"collectibleAMM/internal/ammerr"
)

const (
	BasisPoints                 = 10_000
	MaxLPFeeBP                  = 2_000
	MaxBuysideCreatorRoyaltyBP  = 10_000
	MaxReferralFeeBP            = 500
	MaxMetadataCreatorRoyaltyBP = 3_000
)

// BPFee returns amount * bp / 10000 rounded down.
func BPFee(amount uint64, bp uint16) (uint64, error) {
	x := uint256.NewInt(amount)
	x.Mul(x, uint256.NewInt(uint64(bp)))
	x.Div(x, uint256.NewInt(BasisPoints))
	if !x.IsUint64() {
		return 0, fmt.Errorf("%d bp of %d: %w", bp, amount, ammerr.ErrNumericOverflow)
	}
	return x.Uint64(), nil
}

// SignedBPFee returns amount * bp / 10000 truncated toward zero.
func SignedBPFee(amount uint64, bp int16) (int64, error) {
	if bp >= 0 {
		fee, err := BPFee(amount, uint16(bp))
		if err != nil {
			return 0, err
		}
		if fee > math.MaxInt64 {
			return 0, fmt.Errorf("fee %d: %w", fee, ammerr.ErrNumericOverflow)
		}
		return int64(fee), nil
	}
	fee, err := BPFee(amount, uint16(-int32(bp)))
	if err != nil {
		return 0, err
	}
	if fee > math.MaxInt64 {
		return 0, fmt.Errorf("fee %d: %w", fee, ammerr.ErrNumericOverflow)
	}
	return -int64(fee), nil
}

// ValidateMakerTaker rejects a fee combination before anything moves.
func ValidateMakerTaker(makerBP int16, takerBP uint16) error {
	if makerBP > MaxReferralFeeBP || makerBP < -MaxReferralFeeBP {
		return fmt.Errorf("maker fee bp %d: %w", makerBP, ammerr.ErrInvalidMakerOrTakerFeeBP)
	}
	if takerBP > MaxReferralFeeBP {
		return fmt.Errorf("taker fee bp %d: %w", takerBP, ammerr.ErrInvalidMakerOrTakerFeeBP)
	}
	if int32(makerBP)+int32(takerBP) > MaxReferralFeeBP {
		return fmt.Errorf("maker+taker fee bp %d: %w", int32(makerBP)+int32(takerBP), ammerr.ErrInvalidMakerOrTakerFeeBP)
	}
	return nil
}

// LPFee is the pool owner's cut. It is only charged when the pool quotes
// both sides, i.e. holds inventory and can afford to buy at spot.
func LPFee(total uint64, lpFeeBP uint16, twoSided bool) (uint64, error) {
	if !twoSided {
		return 0, nil
	}
	return BPFee(total, lpFeeBP)
}

// ReferralFee sums maker and taker fees. A negative sum means the maker
// rebate exceeds the taker fee and is rejected.
func ReferralFee(makerFee int64, takerFee uint64) (uint64, error) {
	if takerFee > math.MaxInt64 {
		return 0, fmt.Errorf("taker fee %d: %w", takerFee, ammerr.ErrNumericOverflow)
	}
	sum := makerFee + int64(takerFee)
	if (makerFee > 0 && sum < int64(takerFee)) || sum < 0 {
		return 0, fmt.Errorf("referral fee %d+%d: %w", makerFee, takerFee, ammerr.ErrNumericOverflow)
	}
	return uint64(sum), nil
}
