package engine

import (
	"context"
	"fmt"

	"collectibleAMM/internal/allowlist"
	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/model"
)

// DepositBuy moves owner lamports into the pool's payment escrow.
func (e *Engine) DepositBuy(ctx context.Context, args DepositBuyArgs) (*Receipt, error) {
	return e.execute(ctx, model.EventDepositBuy, args.Pool, func(s *session) error {
		if err := s.loadPool(args.Pool); err != nil {
			return err
		}
		if err := s.authorizeOwner(args.Auth); err != nil {
			return err
		}
		if s.pool.UsingSharedEscrow() {
			return fmt.Errorf("buy side is delegated: %w", ammerr.ErrInvalidAccountState)
		}
		if err := s.creditEscrow(args.PaymentAmount); err != nil {
			return err
		}
		s.pay(args.Signer, s.escrowAddress(), args.PaymentAmount, "deposit_buy")
		s.syncBuyside()

		s.event.Signer = args.Signer
		s.event.Lamports = args.PaymentAmount
		return nil
	})
}

// WithdrawBuy returns escrowed lamports to the owner.
func (e *Engine) WithdrawBuy(ctx context.Context, args WithdrawBuyArgs) (*Receipt, error) {
	return e.execute(ctx, model.EventWithdrawBuy, args.Pool, func(s *session) error {
		if err := s.loadPool(args.Pool); err != nil {
			return err
		}
		if err := s.authorizeOwner(args.Auth); err != nil {
			return err
		}
		if s.pool.UsingSharedEscrow() {
			return fmt.Errorf("buy side is delegated: %w", ammerr.ErrInvalidAccountState)
		}
		if err := s.debitEscrow(args.PaymentAmount); err != nil {
			return err
		}
		s.pay(s.escrowAddress(), s.pool.Owner, args.PaymentAmount, "withdraw_buy")
		s.tryCloseEscrow()
		s.tryClosePool()

		s.event.Signer = args.Signer
		s.event.Lamports = args.PaymentAmount
		return nil
	})
}

// DepositSell moves assets from the owner into the pool's custody. The asset
// must match the pool's allowlist.
func (e *Engine) DepositSell(ctx context.Context, args DepositSellArgs) (*Receipt, error) {
	return e.execute(ctx, model.EventDepositSell, args.Pool, func(s *session) error {
		if err := s.loadPool(args.Pool); err != nil {
			return err
		}
		if err := s.authorizeOwner(args.Auth); err != nil {
			return err
		}
		if args.AssetAmount == 0 {
			return fmt.Errorf("zero asset amount: %w", ammerr.ErrInvalidRequestedPrice)
		}
		if _, err := s.eligibleAsset(args.Asset); err != nil {
			return err
		}
		if err := s.depositAsset(args.Asset.Mint, args.AssetAmount, args.Signer); err != nil {
			return err
		}
		if err := s.transfer(args.Asset, args.Signer, s.pool.Address, args.AssetAmount); err != nil {
			return err
		}

		s.event.Signer = args.Signer
		s.event.AssetMint = args.Asset.Mint
		s.event.Quantity = args.AssetAmount
		return nil
	})
}

// WithdrawSell returns pool held assets to the owner.
func (e *Engine) WithdrawSell(ctx context.Context, args WithdrawSellArgs) (*Receipt, error) {
	return e.execute(ctx, model.EventWithdrawSell, args.Pool, func(s *session) error {
		if err := s.loadPool(args.Pool); err != nil {
			return err
		}
		if err := s.authorizeOwner(args.Auth); err != nil {
			return err
		}
		if args.AssetAmount == 0 {
			return fmt.Errorf("zero asset amount: %w", ammerr.ErrInvalidRequestedPrice)
		}
		closed, err := s.withdrawAsset(args.Asset.Mint, args.AssetAmount)
		if err != nil {
			return err
		}
		if err := s.transfer(args.Asset, s.pool.Address, s.pool.Owner, args.AssetAmount); err != nil {
			return err
		}
		if closed {
			if err := s.closeCustody(args.Asset); err != nil {
				return err
			}
		}
		s.syncBuyside()
		s.tryClosePool()

		s.event.Signer = args.Signer
		s.event.AssetMint = args.Asset.Mint
		s.event.Quantity = args.AssetAmount
		return nil
	})
}

// eligibleAsset resolves the asset's metadata and checks it against the
// pool's allowlist.
func (s *session) eligibleAsset(asset model.Asset) (model.AssetMetadata, error) {
	meta, err := s.metadata(asset)
	if err != nil {
		return model.AssetMetadata{}, err
	}
	if err := allowlist.Validate(s.ctx, s.e.deps.Store, s.pool.Allowlists, asset.Mint, meta); err != nil {
		return model.AssetMetadata{}, err
	}
	return meta, nil
}

func (s *session) metadata(asset model.Asset) (model.AssetMetadata, error) {
	if s.e.deps.Metadata == nil {
		return model.AssetMetadata{Mint: asset.Mint}, nil
	}
	meta, err := s.e.deps.Metadata.Resolve(s.ctx, asset)
	if err != nil {
		return model.AssetMetadata{}, fmt.Errorf("resolve metadata %s: %w", asset.Mint, err)
	}
	return meta, nil
}

// transfer stages an asset movement. It is undone by moving the asset back.
func (s *session) transfer(asset model.Asset, from, to model.Pubkey, amount uint64) error {
	if s.e.deps.Transfers == nil {
		return fmt.Errorf("no asset transfer for %s: %w", asset.Kind, ammerr.ErrAssetTransferRejected)
	}
	req := TransferRequest{Asset: asset, From: from, To: to, Amount: amount}
	back := TransferRequest{Asset: asset, From: to, To: from, Amount: amount}
	s.stage(effect{
		name: "transfer",
		do: func(ctx context.Context) error {
			if err := s.e.deps.Transfers.Transfer(ctx, req); err != nil {
				return fmt.Errorf("transfer %s %s: %w", asset.Kind, asset.Mint, err)
			}
			return nil
		},
		undo: func(ctx context.Context) error {
			return s.e.deps.Transfers.Transfer(ctx, back)
		},
	})
	return nil
}

// closeCustody stages closing the pool's emptied holding account. Undoing
// the transfer that drained it reopens the account.
func (s *session) closeCustody(asset model.Asset) error {
	holder := s.pool.Address
	s.stage(effect{
		name: "close_custody",
		do: func(ctx context.Context) error {
			if err := s.e.deps.Transfers.CloseIfEmpty(ctx, holder, asset); err != nil {
				return fmt.Errorf("close custody %s: %w", asset.Mint, err)
			}
			return nil
		},
	})
	return nil
}
