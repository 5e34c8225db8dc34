package engine

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/math"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/model"
)

func (s *session) creditEscrow(lamports uint64) error {
	if lamports == 0 {
		return nil
	}
	next, overflow := math.SafeAdd(s.escrow.Lamports, lamports)
	if overflow {
		return fmt.Errorf("escrow balance: %w", ammerr.ErrNumericOverflow)
	}
	s.escrow = model.Escrow{Pool: s.pool.Address, Lamports: next}
	s.escrowOpen = true
	return nil
}

func (s *session) debitEscrow(lamports uint64) error {
	if lamports == 0 {
		return nil
	}
	if !s.escrowOpen || s.escrow.Lamports < lamports {
		return fmt.Errorf("escrow holds %d, need %d: %w", s.escrow.Lamports, lamports, ammerr.ErrInsufficientEscrow)
	}
	s.escrow.Lamports -= lamports
	return nil
}

// syncBuyside makes the cached buy side counter equal the escrow balance.
func (s *session) syncBuyside() {
	if s.escrowOpen {
		s.pool.BuysidePaymentAmount = s.escrow.Lamports
		return
	}
	s.pool.BuysidePaymentAmount = 0
}

func (s *session) closeEscrow(to model.Pubkey, reason string) {
	s.pay(s.escrowAddress(), to, s.escrow.Lamports, reason)
	s.escrow.Lamports = 0
	s.escrowOpen = false
	s.escrowClosed = true
}

// tryCloseEscrow closes the escrow once its balance is at or below the rent
// exempt minimum and returns the remainder to the owner.
func (s *session) tryCloseEscrow() {
	if s.escrowOpen && s.escrow.Lamports <= s.e.cfg.RentExemptMinimum {
		s.closeEscrow(s.pool.Owner, "escrow_close")
	}
	s.syncBuyside()
}

// tryClosePool closes a pool with no liquidity on either side and no live
// shared escrow delegation.
func (s *session) tryClosePool() {
	if s.poolClosed {
		return
	}
	if s.pool.SellsideAssetAmount != 0 || s.pool.BuysidePaymentAmount != 0 || s.pool.SharedEscrowLive() {
		return
	}
	s.closePool()
}

func (s *session) closePool() {
	s.pay(s.pool.Address, s.pool.Owner, s.pool.RentLamports, "pool_rent_refund")
	s.poolClosed = true
}

// delegateEscrowAddress verifies the pool's shared escrow account against
// the delegate program derivation.
func (s *session) delegateEscrowAddress() (model.Pubkey, error) {
	expected := model.DelegateEscrowAddress(s.e.cfg.DelegateProgramID, s.pool.Owner)
	if s.pool.SharedEscrowAccount != expected {
		return model.Pubkey{}, fmt.Errorf("shared escrow %s, expected %s: %w", s.pool.SharedEscrowAccount, expected, ammerr.ErrPubkeyMismatch)
	}
	return expected, nil
}

// drawSharedEscrow pulls lamports for a fill from the delegate into the local
// escrow and spends quota units of the delegation. The ledger side is
// updated at once; the delegate withdraw is staged.
func (s *session) drawSharedEscrow(lamports, quota uint64) error {
	if s.e.deps.Delegate == nil {
		return fmt.Errorf("no delegate escrow program: %w", ammerr.ErrInvalidAccountState)
	}
	remaining, underflow := math.SafeSub(s.pool.SharedEscrowCount, quota)
	if underflow {
		return fmt.Errorf("shared escrow quota %d, need %d: %w", s.pool.SharedEscrowCount, quota, ammerr.ErrNumericOverflow)
	}
	account, err := s.delegateEscrowAddress()
	if err != nil {
		return err
	}

	if lamports > 0 {
		if err := s.creditEscrow(lamports); err != nil {
			return err
		}
		s.pay(account, s.escrowAddress(), lamports, "shared_escrow_withdraw")
		req := s.delegateWithdraw(account, lamports)
		s.stage(effect{
			name: "delegate_withdraw",
			do: func(ctx context.Context) error {
				if err := s.e.deps.Delegate.Withdraw(ctx, req); err != nil {
					return fmt.Errorf("delegate withdraw: %w", err)
				}
				return nil
			},
			undo: func(ctx context.Context) error {
				return s.e.deps.Delegate.Deposit(ctx, account, lamports)
			},
		})
	}
	s.pool.SharedEscrowCount = remaining
	return nil
}

func (s *session) delegateWithdraw(account model.Pubkey, lamports uint64) WithdrawRequest {
	return WithdrawRequest{
		Program:     s.e.cfg.DelegateProgramID,
		Escrow:      account,
		Owner:       s.pool.Owner,
		Authority:   s.pool.Address,
		Destination: s.escrowAddress(),
		Lamports:    lamports,
	}
}

// sweepSharedEscrow returns residual local lamports to the delegate when
// they exceed the rent exempt minimum, otherwise closes the local escrow.
func (s *session) sweepSharedEscrow() {
	if !s.escrowOpen || s.escrow.Lamports <= s.e.cfg.RentExemptMinimum {
		s.tryCloseEscrow()
		return
	}
	account := s.pool.SharedEscrowAccount
	lamports := s.escrow.Lamports
	s.closeEscrow(account, "shared_escrow_sweep")
	s.syncBuyside()
	s.stage(effect{
		name: "delegate_sweep",
		do: func(ctx context.Context) error {
			if err := s.e.deps.Delegate.Deposit(ctx, account, lamports); err != nil {
				return fmt.Errorf("delegate deposit: %w", err)
			}
			return nil
		},
		undo: func(ctx context.Context) error {
			return s.e.deps.Delegate.Withdraw(ctx, s.delegateWithdraw(account, lamports))
		},
	})
}
