package assets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/engine"
	"collectibleAMM/internal/model"
)

// Strategy moves one kind of asset.
type Strategy interface {
	Kind() model.AssetKind
	Transfer(ctx context.Context, req engine.TransferRequest) error
	CloseIfEmpty(ctx context.Context, holder model.Pubkey, asset model.Asset) error
}

// Router dispatches transfers to the strategy registered for the asset kind.
type Router struct {
	strategies map[model.AssetKind]Strategy
	logger     *zap.Logger
}

// NewRouter registers strategies by kind. A later strategy for the same kind
// replaces an earlier one.
func NewRouter(logger *zap.Logger, strategies ...Strategy) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{strategies: make(map[model.AssetKind]Strategy), logger: logger}
	for _, s := range strategies {
		r.strategies[s.Kind()] = s
	}
	return r
}

// NewBookRouter wires every built-in strategy to one custody book.
func NewBookRouter(book *Book, logger *zap.Logger) *Router {
	return NewRouter(logger,
		&fungible{book: book, kind: model.AssetKindVanilla},
		&fungible{book: book, kind: model.AssetKindTokenExtension},
		&programmable{book: book},
		&accountless{book: book, kind: model.AssetKindCompressed},
		&accountless{book: book, kind: model.AssetKindCore},
		&accountless{book: book, kind: model.AssetKindWrapped},
	)
}

func (r *Router) strategy(kind model.AssetKind) (Strategy, error) {
	s, ok := r.strategies[kind]
	if !ok {
		return nil, fmt.Errorf("no transfer strategy for %s: %w", kind, ammerr.ErrAssetTransferRejected)
	}
	return s, nil
}

func (r *Router) Transfer(ctx context.Context, req engine.TransferRequest) error {
	s, err := r.strategy(req.Asset.Kind)
	if err != nil {
		return err
	}
	if err := s.Transfer(ctx, req); err != nil {
		return err
	}
	r.logger.Debug("asset transferred",
		zap.Stringer("kind", req.Asset.Kind),
		zap.Stringer("mint", req.Asset.Mint),
		zap.Stringer("from", req.From),
		zap.Stringer("to", req.To),
		zap.Uint64("amount", req.Amount),
	)
	return nil
}

func (r *Router) CloseIfEmpty(ctx context.Context, holder model.Pubkey, asset model.Asset) error {
	s, err := r.strategy(asset.Kind)
	if err != nil {
		return err
	}
	return s.CloseIfEmpty(ctx, holder, asset)
}

// fungible covers token program assets, which live in per holder accounts
// that can hold any amount and are closed when drained.
type fungible struct {
	book *Book
	kind model.AssetKind
}

func (f *fungible) Kind() model.AssetKind { return f.kind }

func (f *fungible) Transfer(_ context.Context, req engine.TransferRequest) error {
	return f.book.move(req.From, req.To, req.Asset.Mint, req.Amount, true)
}

func (f *fungible) CloseIfEmpty(_ context.Context, holder model.Pubkey, asset model.Asset) error {
	f.book.closeIfEmpty(holder, asset.Mint)
	return nil
}

// programmable assets are single editions moved one at a time.
type programmable struct {
	book *Book
}

func (p *programmable) Kind() model.AssetKind { return model.AssetKindProgrammable }

func (p *programmable) Transfer(_ context.Context, req engine.TransferRequest) error {
	if req.Amount != 1 {
		return fmt.Errorf("programmable asset amount %d: %w", req.Amount, ammerr.ErrAssetTransferRejected)
	}
	return p.book.move(req.From, req.To, req.Asset.Mint, 1, true)
}

func (p *programmable) CloseIfEmpty(_ context.Context, holder model.Pubkey, asset model.Asset) error {
	p.book.closeIfEmpty(holder, asset.Mint)
	return nil
}

// accountless assets change owner in place; there is no holder account to
// close.
type accountless struct {
	book *Book
	kind model.AssetKind
}

func (a *accountless) Kind() model.AssetKind { return a.kind }

func (a *accountless) Transfer(_ context.Context, req engine.TransferRequest) error {
	if req.Amount != 1 {
		return fmt.Errorf("%s asset amount %d: %w", a.kind, req.Amount, ammerr.ErrAssetTransferRejected)
	}
	return a.book.move(req.From, req.To, req.Asset.Mint, 1, false)
}

func (a *accountless) CloseIfEmpty(context.Context, model.Pubkey, model.Asset) error {
	return nil
}
