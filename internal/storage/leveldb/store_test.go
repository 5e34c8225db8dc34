package leveldb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
	lvlstorage "github.com/syndtr/goleveldb/leveldb/storage"

	"collectibleAMM/internal/engine"
	"collectibleAMM/internal/model"
	"collectibleAMM/internal/storage"
)

func memStore(t *testing.T) *Store {
	t.Helper()
	db, err := leveldb.Open(lvlstorage.NewMemStorage(), nil)
	require.NoError(t, err)
	s := New(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestApplyAndScan(t *testing.T) {
	ctx := context.Background()
	s := memStore(t)
	poolA := model.PubkeyFromBytes([]byte("pool-a"))
	poolB := model.PubkeyFromBytes([]byte("pool-b"))
	assets := []model.Pubkey{model.PubkeyFromBytes([]byte("x")), model.PubkeyFromBytes([]byte("y"))}

	b := &storage.Batch{}
	b.PutPool(model.Pool{Address: poolA, SpotPrice: 1})
	b.PutPool(model.Pool{Address: poolB, SpotPrice: 2})
	for _, a := range assets {
		b.PutSellState(model.SellState{Pool: poolA, AssetMint: a, AssetAmount: 1})
	}
	b.PutSellState(model.SellState{Pool: poolB, AssetMint: assets[0], AssetAmount: 9})
	b.PutEscrow(model.Escrow{Pool: poolA, Lamports: 5})
	b.PutDynamicAllowlist(model.DynamicAllowlist{Key: poolB, Authority: poolA})
	require.NoError(t, s.Apply(ctx, b))

	pools, err := s.ListPools(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 2)
	require.Less(t, pools[0].Address.String(), pools[1].Address.String())

	states, err := s.ListSellStates(ctx, poolA)
	require.NoError(t, err)
	require.Len(t, states, 2)
	for _, st := range states {
		require.Equal(t, poolA, st.Pool)
	}

	escrow, ok, err := s.GetEscrow(ctx, poolA)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(5), escrow.Lamports)

	dyn, ok, err := s.GetDynamicAllowlist(ctx, poolB)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, poolA, dyn.Authority)

	del := &storage.Batch{}
	del.DeleteSellState(poolA, assets[0])
	del.DeleteEscrow(poolA)
	require.NoError(t, s.Apply(ctx, del))

	_, ok, err = s.GetSellState(ctx, poolA, assets[0])
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = s.GetEscrow(ctx, poolA)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestApplyRejectsUnknownOpAtomically(t *testing.T) {
	ctx := context.Background()
	s := memStore(t)
	pool := model.PubkeyFromBytes([]byte("pool"))

	b := &storage.Batch{}
	b.PutPool(model.Pool{Address: pool})
	b.Ops = append(b.Ops, storage.Op{Kind: 0})
	require.Error(t, s.Apply(ctx, b))

	_, ok, err := s.GetPool(ctx, pool)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEngineStatePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger")
	owner := model.PubkeyFromBytes([]byte("owner"))

	s, err := Open(path)
	require.NoError(t, err)
	eng, err := engine.New(engine.DefaultConfig(), engine.Deps{Store: s}, nil)
	require.NoError(t, err)

	created, err := eng.CreatePool(ctx, engine.CreatePoolArgs{
		Auth:       engine.Auth{Signer: owner},
		UUID:       model.PubkeyFromBytes([]byte("uuid")),
		SpotPrice:  1_000_000,
		Allowlists: model.Allowlists{{Kind: model.AllowlistMint, Value: model.PubkeyFromBytes([]byte("mint"))}},
	})
	require.NoError(t, err)
	_, err = eng.DepositBuy(ctx, engine.DepositBuyArgs{Auth: engine.Auth{Signer: owner}, Pool: created.Pool.Address, PaymentAmount: 3_000_000})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	pool, ok, err := reopened.GetPool(ctx, created.Pool.Address)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(3_000_000), pool.BuysidePaymentAmount)
	escrow, ok, err := reopened.GetEscrow(ctx, created.Pool.Address)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(3_000_000), escrow.Lamports)
}
