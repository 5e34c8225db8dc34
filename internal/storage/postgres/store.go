package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	jsoniter "github.com/json-iterator/go"

	"collectibleAMM/internal/model"
	"collectibleAMM/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store provides Postgres persistence for the ledger, the event journal
// and fill statistics. Records are kept as jsonb documents keyed by their
// base58 address.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) GetPool(ctx context.Context, addr model.Pubkey) (model.Pool, bool, error) {
	var p model.Pool
	ok, err := s.getDoc(ctx, `SELECT doc FROM amm_pools WHERE address=$1`, &p, addr.String())
	return p, ok, err
}

func (s *Store) ListPools(ctx context.Context) ([]model.Pool, error) {
	return listDocs[model.Pool](ctx, s, `SELECT doc FROM amm_pools ORDER BY address`)
}

func (s *Store) GetSellState(ctx context.Context, pool, asset model.Pubkey) (model.SellState, bool, error) {
	var st model.SellState
	ok, err := s.getDoc(ctx, `SELECT doc FROM amm_sell_states WHERE pool=$1 AND asset=$2`, &st, pool.String(), asset.String())
	return st, ok, err
}

func (s *Store) ListSellStates(ctx context.Context, pool model.Pubkey) ([]model.SellState, error) {
	return listDocs[model.SellState](ctx, s, `SELECT doc FROM amm_sell_states WHERE pool=$1 ORDER BY asset`, pool.String())
}

func (s *Store) GetEscrow(ctx context.Context, pool model.Pubkey) (model.Escrow, bool, error) {
	var e model.Escrow
	ok, err := s.getDoc(ctx, `SELECT doc FROM amm_escrows WHERE pool=$1`, &e, pool.String())
	return e, ok, err
}

func (s *Store) GetDynamicAllowlist(ctx context.Context, key model.Pubkey) (model.DynamicAllowlist, bool, error) {
	var d model.DynamicAllowlist
	ok, err := s.getDoc(ctx, `SELECT doc FROM amm_dynamic_allowlists WHERE key=$1`, &d, key.String())
	return d, ok, err
}

// Apply writes the batch in one transaction.
func (s *Store) Apply(ctx context.Context, batch *storage.Batch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}
	queued := &pgx.Batch{}
	for _, op := range batch.Ops {
		if err := queueOp(queued, op); err != nil {
			return err
		}
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		br := tx.SendBatch(ctx, queued)
		for range batch.Ops {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("apply batch: %w", err)
			}
		}
		return br.Close()
	})
}

func queueOp(b *pgx.Batch, op storage.Op) error {
	switch op.Kind {
	case storage.OpPutPool:
		doc, err := json.Marshal(op.Pool)
		if err != nil {
			return fmt.Errorf("marshal pool: %w", err)
		}
		b.Queue(`
			INSERT INTO amm_pools (address, owner, doc, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (address) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
		`, op.Pool.Address.String(), op.Pool.Owner.String(), doc)
	case storage.OpDeletePool:
		b.Queue(`DELETE FROM amm_pools WHERE address=$1`, op.PoolKey.String())
	case storage.OpPutSellState:
		doc, err := json.Marshal(op.SellState)
		if err != nil {
			return fmt.Errorf("marshal sell state: %w", err)
		}
		b.Queue(`
			INSERT INTO amm_sell_states (pool, asset, doc, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (pool, asset) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
		`, op.SellState.Pool.String(), op.SellState.AssetMint.String(), doc)
	case storage.OpDeleteSellState:
		b.Queue(`DELETE FROM amm_sell_states WHERE pool=$1 AND asset=$2`, op.PoolKey.String(), op.AssetKey.String())
	case storage.OpPutEscrow:
		doc, err := json.Marshal(op.Escrow)
		if err != nil {
			return fmt.Errorf("marshal escrow: %w", err)
		}
		b.Queue(`
			INSERT INTO amm_escrows (pool, doc, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (pool) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
		`, op.Escrow.Pool.String(), doc)
	case storage.OpDeleteEscrow:
		b.Queue(`DELETE FROM amm_escrows WHERE pool=$1`, op.PoolKey.String())
	case storage.OpPutDynamicAllowlist:
		doc, err := json.Marshal(op.Dynamic)
		if err != nil {
			return fmt.Errorf("marshal dynamic allowlist: %w", err)
		}
		b.Queue(`
			INSERT INTO amm_dynamic_allowlists (key, doc, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
		`, op.Dynamic.Key.String(), doc)
	default:
		return fmt.Errorf("unknown batch op %d", op.Kind)
	}
	return nil
}

func (s *Store) getDoc(ctx context.Context, query string, dst any, args ...any) (bool, error) {
	var doc []byte
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(doc, dst); err != nil {
		return false, fmt.Errorf("decode document: %w", err)
	}
	return true, nil
}

func listDocs[T any](ctx context.Context, s *Store, query string, args ...any) ([]T, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
