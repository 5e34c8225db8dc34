package leveldb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"collectibleAMM/internal/model"
	"collectibleAMM/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Key prefixes. Sell states are keyed pool||asset so a pool's inventory is
// one contiguous range.
const (
	prefixPool      = 'p'
	prefixSellState = 's'
	prefixEscrow    = 'e'
	prefixDynamic   = 'd'
)

// Store is an embedded ledger backed by LevelDB.
type Store struct {
	db *leveldb.DB
}

var _ storage.Store = (*Store)(nil)

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		Filter: filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// New wraps an already open database.
func New(db *leveldb.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func key(prefix byte, parts ...model.Pubkey) []byte {
	k := make([]byte, 0, 1+32*len(parts))
	k = append(k, prefix)
	for _, p := range parts {
		k = append(k, p[:]...)
	}
	return k
}

func (s *Store) get(k []byte, dst any) (bool, error) {
	raw, err := s.db.Get(k, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode record: %w", err)
	}
	return true, nil
}

func scan[T any](s *Store, prefix []byte) ([]T, error) {
	it := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()

	var out []T
	for it.Next() {
		var v T
		if err := json.Unmarshal(it.Value(), &v); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, v)
	}
	return out, it.Error()
}

func (s *Store) GetPool(_ context.Context, addr model.Pubkey) (model.Pool, bool, error) {
	var p model.Pool
	ok, err := s.get(key(prefixPool, addr), &p)
	return p, ok, err
}

// ListPools returns pools ordered by base58 address, matching the other
// stores.
func (s *Store) ListPools(_ context.Context) ([]model.Pool, error) {
	pools, err := scan[model.Pool](s, []byte{prefixPool})
	if err != nil {
		return nil, err
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].Address.String() < pools[j].Address.String() })
	return pools, nil
}

func (s *Store) GetSellState(_ context.Context, pool, asset model.Pubkey) (model.SellState, bool, error) {
	var st model.SellState
	ok, err := s.get(key(prefixSellState, pool, asset), &st)
	return st, ok, err
}

func (s *Store) ListSellStates(_ context.Context, pool model.Pubkey) ([]model.SellState, error) {
	states, err := scan[model.SellState](s, key(prefixSellState, pool))
	if err != nil {
		return nil, err
	}
	sort.Slice(states, func(i, j int) bool { return states[i].AssetMint.String() < states[j].AssetMint.String() })
	return states, nil
}

func (s *Store) GetEscrow(_ context.Context, pool model.Pubkey) (model.Escrow, bool, error) {
	var e model.Escrow
	ok, err := s.get(key(prefixEscrow, pool), &e)
	return e, ok, err
}

func (s *Store) GetDynamicAllowlist(_ context.Context, k model.Pubkey) (model.DynamicAllowlist, bool, error) {
	var d model.DynamicAllowlist
	ok, err := s.get(key(prefixDynamic, k), &d)
	return d, ok, err
}

// Apply writes the batch atomically with a single LevelDB write.
func (s *Store) Apply(_ context.Context, batch *storage.Batch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}
	wb := new(leveldb.Batch)
	for _, op := range batch.Ops {
		if err := put(wb, op); err != nil {
			return err
		}
	}
	if err := s.db.Write(wb, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	return nil
}

func put(wb *leveldb.Batch, op storage.Op) error {
	var (
		k   []byte
		doc any
	)
	switch op.Kind {
	case storage.OpPutPool:
		k, doc = key(prefixPool, op.Pool.Address), op.Pool
	case storage.OpDeletePool:
		wb.Delete(key(prefixPool, op.PoolKey))
		return nil
	case storage.OpPutSellState:
		k, doc = key(prefixSellState, op.SellState.Pool, op.SellState.AssetMint), op.SellState
	case storage.OpDeleteSellState:
		wb.Delete(key(prefixSellState, op.PoolKey, op.AssetKey))
		return nil
	case storage.OpPutEscrow:
		k, doc = key(prefixEscrow, op.Escrow.Pool), op.Escrow
	case storage.OpDeleteEscrow:
		wb.Delete(key(prefixEscrow, op.PoolKey))
		return nil
	case storage.OpPutDynamicAllowlist:
		k, doc = key(prefixDynamic, op.Dynamic.Key), op.Dynamic
	default:
		return fmt.Errorf("unknown batch op %d", op.Kind)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	wb.Put(k, raw)
	return nil
}
