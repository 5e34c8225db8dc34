package fees

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/math"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/model"
)

// Inputs are the policy values a fill is split with.
type Inputs struct {
	TotalPrice     uint64
	LPFeeBP        uint16
	TwoSided       bool
	MakerFeeBP     int16
	TakerFeeBP     uint16
	Metadata       model.AssetMetadata
	RoyaltyShareBP uint16
}

// Split is the full breakdown of one fill's consideration.
//
// On a fulfill-buy the pool pays: EscrowDebit leaves the payment escrow and
// CounterpartyAmount reaches the seller. On a fulfill-sell the counterparty
// pays CounterpartyAmount and PoolProceeds is what the pool side keeps.
type Split struct {
	TotalPrice         uint64   `json:"total_price"`
	LPFee              uint64   `json:"lp_fee"`
	MakerFee           int64    `json:"maker_fee"`
	TakerFee           uint64   `json:"taker_fee"`
	ReferralFee        uint64   `json:"referral_fee"`
	RoyaltyPaid        uint64   `json:"royalty_paid"`
	Royalties          []Payout `json:"royalties,omitempty"`
	CounterpartyAmount uint64   `json:"counterparty_amount"`
	EscrowDebit        uint64   `json:"escrow_debit,omitempty"`
	PoolProceeds       uint64   `json:"pool_proceeds,omitempty"`
}

// SplitFulfillBuy splits a fill where the pool buys from the counterparty.
// Maker and taker fees are charged on what the seller would otherwise get.
func SplitFulfillBuy(in Inputs) (Split, error) {
	if err := ValidateMakerTaker(in.MakerFeeBP, in.TakerFeeBP); err != nil {
		return Split{}, err
	}

	s := Split{TotalPrice: in.TotalPrice}
	var err error
	if s.LPFee, err = LPFee(in.TotalPrice, in.LPFeeBP, in.TwoSided); err != nil {
		return Split{}, err
	}
	if s.Royalties, s.RoyaltyPaid, err = Royalty(in.TotalPrice, in.Metadata, in.RoyaltyShareBP); err != nil {
		return Split{}, err
	}

	net, underflow := math.SafeSub(in.TotalPrice, s.LPFee)
	if underflow {
		return Split{}, fmt.Errorf("total minus lp fee: %w", ammerr.ErrNumericOverflow)
	}
	if net, underflow = math.SafeSub(net, s.RoyaltyPaid); underflow {
		return Split{}, fmt.Errorf("total minus royalty: %w", ammerr.ErrNumericOverflow)
	}

	if s.MakerFee, err = SignedBPFee(net, in.MakerFeeBP); err != nil {
		return Split{}, err
	}
	if s.TakerFee, err = BPFee(net, in.TakerFeeBP); err != nil {
		return Split{}, err
	}
	if s.ReferralFee, err = ReferralFee(s.MakerFee, s.TakerFee); err != nil {
		return Split{}, err
	}

	if s.CounterpartyAmount, underflow = math.SafeSub(net, s.TakerFee); underflow {
		return Split{}, fmt.Errorf("seller receives: %w", ammerr.ErrNumericOverflow)
	}
	if s.EscrowDebit, err = addSigned(in.TotalPrice, s.MakerFee); err != nil {
		return Split{}, err
	}

	if err := s.conserved(s.EscrowDebit, s.CounterpartyAmount); err != nil {
		return Split{}, err
	}
	return s, nil
}

// SplitFulfillSell splits a fill where the pool sells to the counterparty.
// Fees are charged on top of the total price.
func SplitFulfillSell(in Inputs) (Split, error) {
	if err := ValidateMakerTaker(in.MakerFeeBP, in.TakerFeeBP); err != nil {
		return Split{}, err
	}

	s := Split{TotalPrice: in.TotalPrice}
	var err error
	if s.LPFee, err = LPFee(in.TotalPrice, in.LPFeeBP, in.TwoSided); err != nil {
		return Split{}, err
	}
	if s.Royalties, s.RoyaltyPaid, err = Royalty(in.TotalPrice, in.Metadata, in.RoyaltyShareBP); err != nil {
		return Split{}, err
	}
	if s.MakerFee, err = SignedBPFee(in.TotalPrice, in.MakerFeeBP); err != nil {
		return Split{}, err
	}
	if s.TakerFee, err = BPFee(in.TotalPrice, in.TakerFeeBP); err != nil {
		return Split{}, err
	}
	if s.ReferralFee, err = ReferralFee(s.MakerFee, s.TakerFee); err != nil {
		return Split{}, err
	}

	pays, err := sum(in.TotalPrice, s.LPFee, s.TakerFee, s.RoyaltyPaid)
	if err != nil {
		return Split{}, err
	}
	s.CounterpartyAmount = pays
	if s.PoolProceeds, err = addSigned(in.TotalPrice, -s.MakerFee); err != nil {
		return Split{}, err
	}

	if err := s.conserved(s.CounterpartyAmount, s.PoolProceeds); err != nil {
		return Split{}, err
	}
	return s, nil
}

// conserved checks that inflow equals principal plus every fee exactly.
func (s Split) conserved(inflow, principal uint64) error {
	out, err := sum(principal, s.LPFee, s.ReferralFee, s.RoyaltyPaid)
	if err != nil {
		return err
	}
	if out != inflow {
		return fmt.Errorf("inflow %d != outflow %d: %w", inflow, out, ammerr.ErrConservationViolated)
	}
	var royalties uint64
	for _, p := range s.Royalties {
		royalties += p.Lamports
	}
	if royalties != s.RoyaltyPaid {
		return fmt.Errorf("royalty payouts %d != %d: %w", royalties, s.RoyaltyPaid, ammerr.ErrConservationViolated)
	}
	return nil
}

func sum(values ...uint64) (uint64, error) {
	var total uint64
	for _, v := range values {
		var overflow bool
		total, overflow = math.SafeAdd(total, v)
		if overflow {
			return 0, fmt.Errorf("sum: %w", ammerr.ErrNumericOverflow)
		}
	}
	return total, nil
}

func addSigned(base uint64, delta int64) (uint64, error) {
	if delta >= 0 {
		out, overflow := math.SafeAdd(base, uint64(delta))
		if overflow {
			return 0, fmt.Errorf("add %d: %w", delta, ammerr.ErrNumericOverflow)
		}
		return out, nil
	}
	out, underflow := math.SafeSub(base, uint64(-delta))
	if underflow {
		return 0, fmt.Errorf("sub %d: %w", -delta, ammerr.ErrNumericOverflow)
	}
	return out, nil
}
