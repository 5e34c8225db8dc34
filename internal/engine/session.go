package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/fees"
	"collectibleAMM/internal/model"
	"collectibleAMM/internal/storage"
)

// session is the working set of one instruction. Records are copied in,
// mutated, and written back in a single batch on commit.
type session struct {
	e   *Engine
	ctx context.Context
	now int64

	pool       model.Pool
	poolLoaded bool
	poolExists bool
	poolClosed bool

	escrow        model.Escrow
	escrowExisted bool
	escrowOpen    bool
	escrowClosed  bool

	states map[model.Pubkey]*stateEntry

	dynamic      *model.DynamicAllowlist
	dynamicDirty bool

	event    model.Event
	split    *fees.Split
	payments []model.Payment

	effects []effect
}

// effect is a collaborator call staged by an instruction. Effects run in
// order once every ledger check has passed; undo reverses a completed effect
// when a later one or the commit fails. A nil undo means there is nothing to
// reverse.
type effect struct {
	name string
	do   func(ctx context.Context) error
	undo func(ctx context.Context) error
}

type stateEntry struct {
	state   model.SellState
	existed bool
	open    bool
	dirty   bool
}

func (e *Engine) newSession(ctx context.Context, kind model.EventKind) *session {
	now := e.deps.Clock().Unix()
	return &session{
		e:      e,
		ctx:    ctx,
		now:    now,
		states: make(map[model.Pubkey]*stateEntry),
		event:  model.Event{Kind: kind, Timestamp: now},
	}
}

// loadPool reads the pool and its escrow into the session.
func (s *session) loadPool(addr model.Pubkey) error {
	pool, ok, err := s.e.deps.Store.GetPool(s.ctx, addr)
	if err != nil {
		return fmt.Errorf("load pool %s: %w", addr, err)
	}
	if !ok {
		return fmt.Errorf("pool %s: %w", addr, ammerr.ErrPoolNotFound)
	}
	escrow, open, err := s.e.deps.Store.GetEscrow(s.ctx, addr)
	if err != nil {
		return fmt.Errorf("load escrow %s: %w", addr, err)
	}

	s.pool = pool
	s.poolLoaded = true
	s.poolExists = true
	s.escrow = escrow
	s.escrowExisted = open
	s.escrowOpen = open
	if !open {
		s.escrow = model.Escrow{Pool: addr}
	}
	s.event.Pool = pool.Address
	s.event.Owner = pool.Owner
	s.event.SpotPriceBefore = pool.SpotPrice
	return nil
}

// startPool seeds the session with a pool that does not exist yet.
func (s *session) startPool(pool model.Pool) error {
	_, ok, err := s.e.deps.Store.GetPool(s.ctx, pool.Address)
	if err != nil {
		return fmt.Errorf("load pool %s: %w", pool.Address, err)
	}
	if ok {
		return fmt.Errorf("pool %s: %w", pool.Address, ammerr.ErrPoolExists)
	}
	s.pool = pool
	s.poolLoaded = true
	s.escrow = model.Escrow{Pool: pool.Address}
	s.event.Pool = pool.Address
	s.event.Owner = pool.Owner
	s.event.SpotPriceBefore = pool.SpotPrice
	return nil
}

func (s *session) escrowAddress() model.Pubkey {
	return model.EscrowAddress(s.e.cfg.ProgramID, s.pool.Address)
}

func (s *session) sellStateAddress(asset model.Pubkey) model.Pubkey {
	return model.SellStateAddress(s.e.cfg.ProgramID, s.pool.Address, asset)
}

// pay records a native currency movement. Zero amounts are skipped.
func (s *session) pay(from, to model.Pubkey, lamports uint64, reason string) {
	if lamports == 0 {
		return
	}
	s.payments = append(s.payments, model.Payment{From: from, To: to, Lamports: lamports, Reason: reason})
}

func (s *session) stage(e effect) {
	s.effects = append(s.effects, e)
}

// flush runs the staged effects. On failure the effects that already ran are
// undone and the error of the failing one is returned.
func (s *session) flush() error {
	for i, e := range s.effects {
		if err := e.do(s.ctx); err != nil {
			s.unwind(i)
			return err
		}
	}
	return nil
}

// unwind undoes the first n effects in reverse order. Undo runs even when the
// instruction context is cancelled.
func (s *session) unwind(n int) {
	ctx := context.WithoutCancel(s.ctx)
	for i := n - 1; i >= 0; i-- {
		e := s.effects[i]
		if e.undo == nil {
			continue
		}
		if err := e.undo(ctx); err != nil {
			s.e.logger.Error("effect undo failed",
				zap.String("effect", e.name),
				zap.Stringer("pool", s.pool.Address),
				zap.Error(err),
			)
		}
	}
}

func (s *session) commit() error {
	batch := &storage.Batch{}
	if s.poolLoaded {
		if s.poolClosed {
			if s.poolExists {
				batch.DeletePool(s.pool.Address)
			}
		} else {
			s.pool.UpdatedAt = s.now
			batch.PutPool(s.pool)
		}

		switch {
		case s.escrowOpen:
			batch.PutEscrow(s.escrow)
		case s.escrowExisted:
			batch.DeleteEscrow(s.pool.Address)
		}
	}

	for asset, entry := range s.states {
		if !entry.dirty {
			continue
		}
		switch {
		case entry.open:
			batch.PutSellState(entry.state)
		case entry.existed:
			batch.DeleteSellState(s.pool.Address, asset)
		}
	}

	if s.dynamicDirty {
		batch.PutDynamicAllowlist(*s.dynamic)
	}

	if err := s.e.deps.Store.Apply(s.ctx, batch); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *session) receipt() *Receipt {
	s.event.SpotPriceAfter = s.pool.SpotPrice
	s.event.PoolClosed = s.poolClosed
	s.event.EscrowClosed = s.escrowClosed
	r := &Receipt{
		Event:    s.event,
		Payments: s.payments,
		Split:    s.split,
	}
	if !s.poolClosed {
		r.Pool = s.pool
	}
	return r
}
