package engine

import (
	"context"

	"collectibleAMM/internal/model"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks collectibleAMM/internal/engine AssetTransfer,MetadataSource,DelegateEscrow

// TransferRequest moves amount units of an asset between two holders.
type TransferRequest struct {
	Asset  model.Asset
	From   model.Pubkey
	To     model.Pubkey
	Amount uint64
}

// AssetTransfer performs the asset specific custody moves of a fill or
// deposit. The engine calls it after amounts are final.
type AssetTransfer interface {
	Transfer(ctx context.Context, req TransferRequest) error
	CloseIfEmpty(ctx context.Context, holder model.Pubkey, asset model.Asset) error
}

// MetadataSource resolves royalty and eligibility data for an asset.
type MetadataSource interface {
	Resolve(ctx context.Context, asset model.Asset) (model.AssetMetadata, error)
}

// WithdrawRequest asks the delegate escrow program to release lamports from
// an owner's escrow. Authority is the pool that signs for the withdrawal.
type WithdrawRequest struct {
	Program     model.Pubkey
	Escrow      model.Pubkey
	Owner       model.Pubkey
	Authority   model.Pubkey
	Destination model.Pubkey
	Lamports    uint64
}

// DelegateEscrow is the external program holding shared buy side liquidity.
type DelegateEscrow interface {
	Withdraw(ctx context.Context, req WithdrawRequest) error
	Deposit(ctx context.Context, escrow model.Pubkey, lamports uint64) error
}

// Recorder observes instruction outcomes.
type Recorder interface {
	Instruction(kind model.EventKind, err error)
	Fill(event model.Event)
}

type nopRecorder struct{}

func (nopRecorder) Instruction(model.EventKind, error) {}
func (nopRecorder) Fill(model.Event)                   {}
