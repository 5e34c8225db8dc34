package fees

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/model"
)

// Payout is one creator's share of a royalty.
type Payout struct {
	Creator  model.Pubkey `json:"creator"`
	Lamports uint64       `json:"lamports"`
}

// CreatorsHash commits to a creator set: keccak256 over
// address || verified || share for every creator in order.
func CreatorsHash(creators []model.Creator) common.Hash {
	parts := make([][]byte, 0, len(creators))
	for _, c := range creators {
		buf := make([]byte, 0, 34)
		buf = append(buf, c.Address[:]...)
		if c.Verified {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		buf = append(buf, c.Share)
		parts = append(parts, buf)
	}
	return crypto.Keccak256Hash(parts...)
}

// VerifyCreators checks the resolved creators against the hash supplied with
// the fill and that shares add up to 100.
func VerifyCreators(creators []model.Creator, hash common.Hash) error {
	if len(creators) == 0 {
		return nil
	}
	if CreatorsHash(creators) != hash {
		return fmt.Errorf("creators hash: %w", ammerr.ErrInvalidCreators)
	}
	var total int
	for _, c := range creators {
		total += int(c.Share)
	}
	if total != 100 {
		return fmt.Errorf("creator shares sum to %d: %w", total, ammerr.ErrInvalidCreators)
	}
	return nil
}

// RoyaltyFee is the royalty owed on total: the declared royalty, capped, scaled
// by the share of it that is being honoured. Both ratios apply in one step so
// fractional basis points are not lost.
func RoyaltyFee(total uint64, metadataBP uint16, shareBP uint16) (uint64, error) {
	if metadataBP > MaxMetadataCreatorRoyaltyBP {
		metadataBP = MaxMetadataCreatorRoyaltyBP
	}
	if shareBP > MaxBuysideCreatorRoyaltyBP {
		shareBP = MaxBuysideCreatorRoyaltyBP
	}
	x := uint256.NewInt(total)
	x.Mul(x, uint256.NewInt(uint64(metadataBP)))
	x.Mul(x, uint256.NewInt(uint64(shareBP)))
	x.Div(x, uint256.NewInt(BasisPoints*BasisPoints))
	if !x.IsUint64() {
		return 0, fmt.Errorf("royalty on %d: %w", total, ammerr.ErrNumericOverflow)
	}
	return x.Uint64(), nil
}

// Royalty splits the royalty on total among creators. The returned paid
// amount is the sum of the payouts, so rounding dust stays with the payer.
func Royalty(total uint64, meta model.AssetMetadata, shareBP uint16) ([]Payout, uint64, error) {
	if len(meta.Creators) == 0 {
		return nil, 0, nil
	}
	pool, err := RoyaltyFee(total, meta.RoyaltyBP, shareBP)
	if err != nil {
		return nil, 0, err
	}
	if pool == 0 {
		return nil, 0, nil
	}

	payouts := make([]Payout, 0, len(meta.Creators))
	var paid uint64
	for _, c := range meta.Creators {
		amount, overflow := math.SafeMul(pool, uint64(c.Share))
		if overflow {
			return nil, 0, fmt.Errorf("royalty share: %w", ammerr.ErrNumericOverflow)
		}
		amount /= 100
		if amount == 0 {
			continue
		}
		paid, overflow = math.SafeAdd(paid, amount)
		if overflow {
			return nil, 0, fmt.Errorf("royalty paid: %w", ammerr.ErrNumericOverflow)
		}
		payouts = append(payouts, Payout{Creator: c.Address, Lamports: amount})
	}
	return payouts, paid, nil
}
