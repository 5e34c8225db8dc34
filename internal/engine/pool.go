package engine

import (
	"context"
	"fmt"

	"collectibleAMM/internal/allowlist"
	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/fees"
	"collectibleAMM/internal/model"
	"collectibleAMM/internal/pricing"
)

type policy struct {
	curve                   pricing.Curve
	lpFeeBP                 uint16
	buysideCreatorRoyaltyBP uint16
	referralBP              uint16
	expiry                  int64
	reinvestBuy             bool
	reinvestSell            bool
}

func (s *session) checkPolicy(p policy) error {
	if err := p.curve.Validate(); err != nil {
		return err
	}
	if p.lpFeeBP > fees.MaxLPFeeBP {
		return fmt.Errorf("lp fee bp %d: %w", p.lpFeeBP, ammerr.ErrInvalidLPFeeBP)
	}
	if p.buysideCreatorRoyaltyBP > fees.MaxBuysideCreatorRoyaltyBP {
		return fmt.Errorf("buyside royalty bp %d: %w", p.buysideCreatorRoyaltyBP, ammerr.ErrInvalidBuysideCreatorRoyaltyBP)
	}
	if p.referralBP > fees.MaxReferralFeeBP {
		return fmt.Errorf("referral bp %d: %w", p.referralBP, ammerr.ErrInvalidReferral)
	}
	if p.expiry < 0 || (p.expiry != 0 && p.expiry < s.now) {
		return fmt.Errorf("expiry %d: %w", p.expiry, ammerr.ErrInvalidExpiry)
	}
	if s.pool.UsingSharedEscrow() && (p.reinvestBuy || p.reinvestSell) {
		return fmt.Errorf("reinvest with shared escrow: %w", ammerr.ErrInvalidAccountState)
	}
	return nil
}

// authorizeOwner requires the pool owner and, when configured, the cosigner.
func (s *session) authorizeOwner(auth Auth) error {
	if auth.Signer != s.pool.Owner {
		return fmt.Errorf("signer %s: %w", auth.Signer, ammerr.ErrInvalidOwner)
	}
	return s.authorizeCosigner(auth)
}

func (s *session) authorizeCosigner(auth Auth) error {
	if s.pool.RequiresCosigner() && auth.Cosigner != s.pool.Cosigner {
		return fmt.Errorf("cosigner %s: %w", auth.Cosigner, ammerr.ErrInvalidCosigner)
	}
	return nil
}

// checkAllowlists validates a rule set and, for a dynamic pointer, that the
// pointed at record exists.
func (s *session) checkAllowlists(slots model.Allowlists) error {
	if err := allowlist.Check(slots); err != nil {
		return err
	}
	_, err := allowlist.Resolve(s.ctx, s.e.deps.Store, slots)
	return err
}

// CreatePool opens a pool for args.Signer keyed by args.UUID.
func (e *Engine) CreatePool(ctx context.Context, args CreatePoolArgs) (*Receipt, error) {
	addr := model.PoolAddress(e.cfg.ProgramID, args.Signer, args.UUID)
	return e.execute(ctx, model.EventPoolCreated, addr, func(s *session) error {
		if args.Signer.IsZero() {
			return fmt.Errorf("missing owner: %w", ammerr.ErrInvalidOwner)
		}
		if !args.PaymentMint.IsZero() {
			return fmt.Errorf("payment mint %s: %w", args.PaymentMint, ammerr.ErrInvalidPaymentMint)
		}
		if !args.PoolCosigner.IsZero() && args.Cosigner != args.PoolCosigner {
			return fmt.Errorf("cosigner did not sign: %w", ammerr.ErrInvalidCosigner)
		}

		pool := model.Pool{
			Address:                 addr,
			SpotPrice:               args.SpotPrice,
			CurveType:               args.CurveType,
			CurveDelta:              args.CurveDelta,
			LPFeeBP:                 args.LPFeeBP,
			BuysideCreatorRoyaltyBP: args.BuysideCreatorRoyaltyBP,
			ReinvestFulfillBuy:      args.ReinvestFulfillBuy,
			ReinvestFulfillSell:     args.ReinvestFulfillSell,
			Expiry:                  args.Expiry,
			Referral:                args.Referral,
			ReferralBP:              args.ReferralBP,
			Owner:                   args.Signer,
			Cosigner:                args.PoolCosigner,
			CosignerAnnotation:      args.CosignerAnnotation,
			UUID:                    args.UUID,
			Allowlists:              args.Allowlists,
			RentLamports:            e.cfg.PoolRent,
			CreatedAt:               s.now,
		}
		if err := s.startPool(pool); err != nil {
			return err
		}
		if err := s.checkPolicy(policyOf(&pool)); err != nil {
			return err
		}
		if err := s.checkAllowlists(pool.Allowlists); err != nil {
			return err
		}

		s.pay(args.Signer, addr, pool.RentLamports, "pool_rent")
		s.event.Signer = args.Signer
		return nil
	})
}

func policyOf(p *model.Pool) policy {
	return policy{
		curve:                   pricing.CurveOf(p),
		lpFeeBP:                 p.LPFeeBP,
		buysideCreatorRoyaltyBP: p.BuysideCreatorRoyaltyBP,
		referralBP:              p.ReferralBP,
		expiry:                  p.Expiry,
		reinvestBuy:             p.ReinvestFulfillBuy,
		reinvestSell:            p.ReinvestFulfillSell,
	}
}

// UpdatePool replaces the mutable policy of a pool. Identity fields and
// liquidity counters are untouched.
func (e *Engine) UpdatePool(ctx context.Context, args UpdatePoolArgs) (*Receipt, error) {
	return e.execute(ctx, model.EventPoolUpdated, args.Pool, func(s *session) error {
		if err := s.loadPool(args.Pool); err != nil {
			return err
		}
		if err := s.authorizeOwner(args.Auth); err != nil {
			return err
		}

		next := s.pool
		next.SpotPrice = args.SpotPrice
		next.CurveType = args.CurveType
		next.CurveDelta = args.CurveDelta
		next.ReinvestFulfillBuy = args.ReinvestFulfillBuy
		next.ReinvestFulfillSell = args.ReinvestFulfillSell
		next.Expiry = args.Expiry
		next.LPFeeBP = args.LPFeeBP
		next.Referral = args.Referral
		next.ReferralBP = args.ReferralBP
		next.BuysideCreatorRoyaltyBP = args.BuysideCreatorRoyaltyBP
		next.CosignerAnnotation = args.CosignerAnnotation
		if args.Allowlists != nil {
			if err := s.checkAllowlists(*args.Allowlists); err != nil {
				return err
			}
			next.Allowlists = *args.Allowlists
		}
		if err := s.checkPolicy(policyOf(&next)); err != nil {
			return err
		}

		s.pool = next
		s.event.Signer = args.Signer
		return nil
	})
}

// SetSharedEscrow delegates the pool's buy side to the owner's escrow in the
// delegate program, bounded by args.Count units. Count zero turns it off.
func (e *Engine) SetSharedEscrow(ctx context.Context, args SetSharedEscrowArgs) (*Receipt, error) {
	return e.execute(ctx, model.EventSharedEscrowSet, args.Pool, func(s *session) error {
		if err := s.loadPool(args.Pool); err != nil {
			return err
		}
		if err := s.authorizeOwner(args.Auth); err != nil {
			return err
		}
		s.event.Signer = args.Signer
		s.event.Quantity = args.Count

		if args.Count == 0 {
			s.pool.SharedEscrowAccount = model.Pubkey{}
			s.pool.SharedEscrowCount = 0
			return nil
		}

		if s.pool.BuysidePaymentAmount != 0 || s.pool.SellsideAssetAmount != 0 {
			return fmt.Errorf("pool holds liquidity: %w", ammerr.ErrInvalidAccountState)
		}
		if s.pool.ReinvestFulfillBuy || s.pool.ReinvestFulfillSell {
			return fmt.Errorf("reinvest with shared escrow: %w", ammerr.ErrInvalidAccountState)
		}
		expected := model.DelegateEscrowAddress(e.cfg.DelegateProgramID, s.pool.Owner)
		if args.SharedEscrowAccount != expected {
			return fmt.Errorf("shared escrow %s, expected %s: %w", args.SharedEscrowAccount, expected, ammerr.ErrPubkeyMismatch)
		}
		s.pool.SharedEscrowAccount = expected
		s.pool.SharedEscrowCount = args.Count
		return nil
	})
}

// ClosePool closes an empty pool on the owner's request, ignoring any
// shared escrow delegation.
func (e *Engine) ClosePool(ctx context.Context, args ClosePoolArgs) (*Receipt, error) {
	return e.execute(ctx, model.EventPoolClosed, args.Pool, func(s *session) error {
		if err := s.loadPool(args.Pool); err != nil {
			return err
		}
		if err := s.authorizeOwner(args.Auth); err != nil {
			return err
		}
		if s.pool.SellsideAssetAmount != 0 {
			return fmt.Errorf("%d assets left: %w", s.pool.SellsideAssetAmount, ammerr.ErrNotEmptySellsideAssetAmount)
		}
		if s.escrowOpen && s.escrow.Lamports > 0 {
			return fmt.Errorf("%d lamports left: %w", s.escrow.Lamports, ammerr.ErrNotEmptyEscrowAccount)
		}
		if s.escrowOpen {
			s.closeEscrow(s.pool.Owner, "escrow_close")
		}
		s.syncBuyside()
		s.closePool()
		s.event.Signer = args.Signer
		return nil
	})
}
