package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"collectibleAMM/internal/model"
	"collectibleAMM/internal/storage"
)

// Runs against a disposable database named by AMM_TEST_PG_DSN.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("AMM_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("AMM_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.Migrate(ctx))
	for _, table := range []string{"amm_pools", "amm_sell_states", "amm_escrows", "amm_dynamic_allowlists", "amm_events", "amm_state"} {
		_, err := store.pool.Exec(ctx, "TRUNCATE "+table)
		require.NoError(t, err)
	}
	return store
}

func TestApplyRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	pool := model.Pool{Address: model.PubkeyFromBytes([]byte("pool")), Owner: model.PubkeyFromBytes([]byte("owner")), SpotPrice: 42}
	asset := model.PubkeyFromBytes([]byte("asset"))

	b := &storage.Batch{}
	b.PutPool(pool)
	b.PutSellState(model.SellState{Pool: pool.Address, AssetMint: asset, AssetAmount: 3})
	b.PutEscrow(model.Escrow{Pool: pool.Address, Lamports: 900})
	require.NoError(t, store.Apply(ctx, b))

	got, ok, err := store.GetPool(ctx, pool.Address)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, pool, got)

	states, err := store.ListSellStates(ctx, pool.Address)
	require.NoError(t, err)
	require.Len(t, states, 1)
	require.Equal(t, uint64(3), states[0].AssetAmount)

	b = &storage.Batch{}
	b.DeleteSellState(pool.Address, asset)
	b.DeleteEscrow(pool.Address)
	b.DeletePool(pool.Address)
	require.NoError(t, store.Apply(ctx, b))

	_, ok, err = store.GetPool(ctx, pool.Address)
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = store.GetEscrow(ctx, pool.Address)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestJournalAndState(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	pool := model.PubkeyFromBytes([]byte("pool"))

	require.NoError(t, store.PutEvents(ctx, []model.Event{
		{Kind: model.EventPoolCreated, Pool: pool, Timestamp: 1},
		{Kind: model.EventDepositBuy, Pool: pool, Timestamp: 2, Lamports: 5},
	}))
	events, err := store.ListEvents(ctx, pool, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, model.EventDepositBuy, events[1].Kind)

	_, ok, err := store.LoadState(ctx, "stats")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, store.SaveState(ctx, "stats", 77))
	ts, ok, err := store.LoadState(ctx, "stats")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(77), ts)
}
