package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"collectibleAMM/internal/model"
)

type sellStateKey struct {
	pool  model.Pubkey
	asset model.Pubkey
}

// MemoryStore keeps the ledger in process memory.
type MemoryStore struct {
	mu         sync.RWMutex
	pools      map[model.Pubkey]model.Pool
	sellStates map[sellStateKey]model.SellState
	escrows    map[model.Pubkey]model.Escrow
	dynamic    map[model.Pubkey]model.DynamicAllowlist
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pools:      make(map[model.Pubkey]model.Pool),
		sellStates: make(map[sellStateKey]model.SellState),
		escrows:    make(map[model.Pubkey]model.Escrow),
		dynamic:    make(map[model.Pubkey]model.DynamicAllowlist),
	}
}

func (s *MemoryStore) GetPool(_ context.Context, addr model.Pubkey) (model.Pool, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pools[addr]
	return p, ok, nil
}

func (s *MemoryStore) ListPools(_ context.Context) ([]model.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Pool, 0, len(s.pools))
	for _, p := range s.pools {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address.String() < out[j].Address.String() })
	return out, nil
}

func (s *MemoryStore) GetSellState(_ context.Context, pool, asset model.Pubkey) (model.SellState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.sellStates[sellStateKey{pool: pool, asset: asset}]
	return st, ok, nil
}

func (s *MemoryStore) ListSellStates(_ context.Context, pool model.Pubkey) ([]model.SellState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.SellState
	for k, st := range s.sellStates {
		if k.pool == pool {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetMint.String() < out[j].AssetMint.String() })
	return out, nil
}

func (s *MemoryStore) GetEscrow(_ context.Context, pool model.Pubkey) (model.Escrow, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.escrows[pool]
	return e, ok, nil
}

func (s *MemoryStore) GetDynamicAllowlist(_ context.Context, key model.Pubkey) (model.DynamicAllowlist, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dynamic[key]
	return d, ok, nil
}

// Apply validates every op before touching the maps so a bad batch leaves
// the store unchanged.
func (s *MemoryStore) Apply(_ context.Context, batch *Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	for i, op := range batch.Ops {
		if op.Kind < OpPutPool || op.Kind > OpPutDynamicAllowlist {
			return fmt.Errorf("op %d: unknown kind %d", i, op.Kind)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range batch.Ops {
		switch op.Kind {
		case OpPutPool:
			s.pools[op.Pool.Address] = op.Pool
		case OpDeletePool:
			delete(s.pools, op.PoolKey)
		case OpPutSellState:
			s.sellStates[sellStateKey{pool: op.SellState.Pool, asset: op.SellState.AssetMint}] = op.SellState
		case OpDeleteSellState:
			delete(s.sellStates, sellStateKey{pool: op.PoolKey, asset: op.AssetKey})
		case OpPutEscrow:
			s.escrows[op.Escrow.Pool] = op.Escrow
		case OpDeleteEscrow:
			delete(s.escrows, op.PoolKey)
		case OpPutDynamicAllowlist:
			s.dynamic[op.Dynamic.Key] = op.Dynamic
		}
	}
	return nil
}
