package stats

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

const (
	solDecimals = 9
	ratioScale  = 18
)

// formatSOL renders lamports as a SOL amount with full precision.
func formatSOL(lamports uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -solDecimals).StringFixed(solDecimals)
}

func computeFeeRate(fee, liquidity uint64) *string {
	if fee == 0 || liquidity == 0 {
		return nil
	}
	rate := decimal.NewFromBigInt(new(big.Int).SetUint64(fee), 0).
		DivRound(decimal.NewFromBigInt(new(big.Int).SetUint64(liquidity), 0), ratioScale).
		StringFixed(ratioScale)
	return &rate
}

func computeAPR(feeRate *string, windowSeconds int64) *string {
	if feeRate == nil || windowSeconds <= 0 {
		return nil
	}
	rate, err := decimal.NewFromString(*feeRate)
	if err != nil {
		return nil
	}
	yearSeconds := decimal.NewFromInt(int64(365 * 24 * time.Hour / time.Second))
	apr := rate.Mul(yearSeconds).DivRound(decimal.NewFromInt(windowSeconds), ratioScale).StringFixed(ratioScale)
	return &apr
}
