package storage

import (
	"context"

	"collectibleAMM/internal/model"
)

// Reader loads ledger records. The bool result reports whether the record
// exists.
type Reader interface {
	GetPool(ctx context.Context, addr model.Pubkey) (model.Pool, bool, error)
	ListPools(ctx context.Context) ([]model.Pool, error)
	GetSellState(ctx context.Context, pool, asset model.Pubkey) (model.SellState, bool, error)
	ListSellStates(ctx context.Context, pool model.Pubkey) ([]model.SellState, error)
	GetEscrow(ctx context.Context, pool model.Pubkey) (model.Escrow, bool, error)
	GetDynamicAllowlist(ctx context.Context, key model.Pubkey) (model.DynamicAllowlist, bool, error)
}

// Store is a ledger backend. Apply must commit every operation of the batch
// or none of them.
type Store interface {
	Reader
	Apply(ctx context.Context, batch *Batch) error
}

// EventSink receives the journal of committed instructions.
type EventSink interface {
	PutEvents(ctx context.Context, events []model.Event) error
}

// NopSink drops events.
type NopSink struct{}

func (NopSink) PutEvents(context.Context, []model.Event) error { return nil }
