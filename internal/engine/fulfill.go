package engine

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/math"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/fees"
	"collectibleAMM/internal/model"
	"collectibleAMM/internal/pricing"
)

// checkFill runs the checks shared by both fill directions, expiry first.
func (s *session) checkFill(auth Auth, makerBP int16, takerBP uint16, referral model.Pubkey) error {
	if s.pool.Expired(s.now) {
		return fmt.Errorf("expired at %d: %w", s.pool.Expiry, ammerr.ErrExpired)
	}
	if err := fees.ValidateMakerTaker(makerBP, takerBP); err != nil {
		return err
	}
	if err := s.authorizeCosigner(auth); err != nil {
		return err
	}
	if referral != s.pool.Referral {
		return fmt.Errorf("referral %s: %w", referral, ammerr.ErrInvalidReferral)
	}
	if s.pool.Referral.IsZero() && (makerBP != 0 || takerBP != 0) {
		return fmt.Errorf("maker or taker fee without referral: %w", ammerr.ErrInvalidReferral)
	}
	if !s.pool.PaymentMint.IsZero() {
		return fmt.Errorf("payment mint %s: %w", s.pool.PaymentMint, ammerr.ErrInvalidPaymentMint)
	}
	return nil
}

// twoSided reports whether the pool quotes both directions, which is when
// the lp fee applies.
func (s *session) twoSided() bool {
	if s.pool.SellsideAssetAmount == 0 {
		return false
	}
	return s.pool.BuysidePaymentAmount >= s.pool.SpotPrice || s.pool.SharedEscrowLive()
}

func (s *session) payFees(from model.Pubkey, split fees.Split) error {
	s.pay(from, s.pool.Owner, split.LPFee, "lp_fee")
	s.pay(from, s.pool.Referral, split.ReferralFee, "referral_fee")
	for _, p := range split.Royalties {
		s.pay(from, p.Creator, p.Lamports, "royalty")
	}
	earned, overflow := math.SafeAdd(s.pool.LPFeeEarned, split.LPFee)
	if overflow {
		return fmt.Errorf("lp fee earned: %w", ammerr.ErrNumericOverflow)
	}
	s.pool.LPFeeEarned = earned
	return nil
}

func (s *session) recordFill(asset model.Asset, quantity uint64, split fees.Split, signer model.Pubkey) {
	s.split = &split
	s.event.Signer = signer
	s.event.AssetMint = asset.Mint
	s.event.Quantity = quantity
	s.event.TotalPrice = split.TotalPrice
	s.event.LPFee = split.LPFee
	s.event.MakerFee = split.MakerFee
	s.event.TakerFee = split.TakerFee
	s.event.ReferralFee = split.ReferralFee
	s.event.RoyaltyPaid = split.RoyaltyPaid
	s.event.CounterpartyAmount = split.CounterpartyAmount
}

// FulfillBuy has the pool buy assets from args.Signer, paying out of its
// escrow or its shared escrow delegation.
func (e *Engine) FulfillBuy(ctx context.Context, args FulfillBuyArgs) (*Receipt, error) {
	return e.execute(ctx, model.EventFulfillBuy, args.Pool, func(s *session) error {
		if err := s.loadPool(args.Pool); err != nil {
			return err
		}
		if err := s.checkFill(args.Auth, args.MakerFeeBP, args.TakerFeeBP, args.Referral); err != nil {
			return err
		}
		meta, err := s.eligibleAsset(args.Asset)
		if err != nil {
			return err
		}
		if err := fees.VerifyCreators(meta.Creators, args.CreatorsHash); err != nil {
			return err
		}

		quote, err := pricing.Price(pricing.CurveOf(&s.pool), args.AssetAmount, true)
		if err != nil {
			return err
		}
		split, err := fees.SplitFulfillBuy(fees.Inputs{
			TotalPrice:     quote.TotalPrice,
			LPFeeBP:        s.pool.LPFeeBP,
			TwoSided:       s.twoSided(),
			MakerFeeBP:     args.MakerFeeBP,
			TakerFeeBP:     args.TakerFeeBP,
			Metadata:       meta,
			RoyaltyShareBP: s.pool.BuysideCreatorRoyaltyBP,
		})
		if err != nil {
			return err
		}
		if split.CounterpartyAmount < args.MinPaymentAmount {
			return fmt.Errorf("seller receives %d, min %d: %w", split.CounterpartyAmount, args.MinPaymentAmount, ammerr.ErrInvalidRequestedPrice)
		}

		shared := s.pool.UsingSharedEscrow()
		if shared {
			if err := s.drawSharedEscrow(split.EscrowDebit, args.AssetAmount); err != nil {
				return err
			}
		}
		if err := s.debitEscrow(split.EscrowDebit); err != nil {
			return err
		}

		dest := s.pool.Owner
		if s.pool.ReinvestFulfillBuy {
			dest = s.pool.Address
			if err := s.depositAsset(args.Asset.Mint, args.AssetAmount, args.Signer); err != nil {
				return err
			}
		}
		if err := s.transfer(args.Asset, args.Signer, dest, args.AssetAmount); err != nil {
			return err
		}

		escrow := s.escrowAddress()
		s.pay(escrow, args.Signer, split.CounterpartyAmount, "seller_proceeds")
		if err := s.payFees(escrow, split); err != nil {
			return err
		}
		s.pool.SpotPrice = quote.NextSpotPrice

		if shared {
			s.sweepSharedEscrow()
		} else {
			s.tryCloseEscrow()
		}
		s.tryClosePool()

		s.recordFill(args.Asset, args.AssetAmount, split, args.Signer)
		return nil
	})
}

// FulfillSell has the pool sell assets it holds to args.Signer.
func (e *Engine) FulfillSell(ctx context.Context, args FulfillSellArgs) (*Receipt, error) {
	return e.execute(ctx, model.EventFulfillSell, args.Pool, func(s *session) error {
		if err := s.loadPool(args.Pool); err != nil {
			return err
		}
		if err := s.checkFill(args.Auth, args.MakerFeeBP, args.TakerFeeBP, args.Referral); err != nil {
			return err
		}
		if args.BuysideCreatorRoyaltyBP > fees.MaxBuysideCreatorRoyaltyBP {
			return fmt.Errorf("royalty share bp %d: %w", args.BuysideCreatorRoyaltyBP, ammerr.ErrInvalidBuysideCreatorRoyaltyBP)
		}
		meta, err := s.metadata(args.Asset)
		if err != nil {
			return err
		}
		if err := fees.VerifyCreators(meta.Creators, args.CreatorsHash); err != nil {
			return err
		}

		twoSided := s.twoSided()
		quote, err := pricing.Price(pricing.CurveOf(&s.pool), args.AssetAmount, false)
		if err != nil {
			return err
		}
		split, err := fees.SplitFulfillSell(fees.Inputs{
			TotalPrice:     quote.TotalPrice,
			LPFeeBP:        s.pool.LPFeeBP,
			TwoSided:       twoSided,
			MakerFeeBP:     args.MakerFeeBP,
			TakerFeeBP:     args.TakerFeeBP,
			Metadata:       meta,
			RoyaltyShareBP: args.BuysideCreatorRoyaltyBP,
		})
		if err != nil {
			return err
		}
		if split.CounterpartyAmount > args.MaxPaymentAmount {
			return fmt.Errorf("buyer pays %d, max %d: %w", split.CounterpartyAmount, args.MaxPaymentAmount, ammerr.ErrInvalidRequestedPrice)
		}

		closed, err := s.withdrawAsset(args.Asset.Mint, args.AssetAmount)
		if err != nil {
			return err
		}
		if err := s.transfer(args.Asset, s.pool.Address, args.Signer, args.AssetAmount); err != nil {
			return err
		}
		if closed {
			if err := s.closeCustody(args.Asset); err != nil {
				return err
			}
		}

		if s.pool.ReinvestFulfillSell {
			if err := s.creditEscrow(split.PoolProceeds); err != nil {
				return err
			}
			s.pay(args.Signer, s.escrowAddress(), split.PoolProceeds, "reinvest")
		} else {
			s.pay(args.Signer, s.pool.Owner, split.PoolProceeds, "pool_proceeds")
		}
		if err := s.payFees(args.Signer, split); err != nil {
			return err
		}
		s.pool.SpotPrice = quote.NextSpotPrice

		s.syncBuyside()
		s.tryClosePool()

		s.recordFill(args.Asset, args.AssetAmount, split, args.Signer)
		return nil
	})
}
