package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"collectibleAMM/internal/model"
)

func TestMemoryStoreApply(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	poolKey := model.PubkeyFromBytes([]byte("pool"))
	asset := model.PubkeyFromBytes([]byte("asset"))

	var b Batch
	b.PutPool(model.Pool{Address: poolKey, SpotPrice: 10})
	b.PutSellState(model.SellState{Pool: poolKey, AssetMint: asset, AssetAmount: 3})
	b.PutEscrow(model.Escrow{Pool: poolKey, Lamports: 99})
	require.NoError(t, s.Apply(ctx, &b))

	p, ok, err := s.GetPool(ctx, poolKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(10), p.SpotPrice)

	states, err := s.ListSellStates(ctx, poolKey)
	require.NoError(t, err)
	require.Len(t, states, 1)
	require.Equal(t, uint64(3), states[0].AssetAmount)

	var del Batch
	del.DeleteSellState(poolKey, asset)
	del.DeleteEscrow(poolKey)
	del.DeletePool(poolKey)
	require.NoError(t, s.Apply(ctx, &del))

	_, ok, _ = s.GetPool(ctx, poolKey)
	require.False(t, ok)
	_, ok, _ = s.GetEscrow(ctx, poolKey)
	require.False(t, ok)
	_, ok, _ = s.GetSellState(ctx, poolKey, asset)
	require.False(t, ok)
}

func TestMemoryStoreRejectsWholeBatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	poolKey := model.PubkeyFromBytes([]byte("pool"))

	b := &Batch{}
	b.PutPool(model.Pool{Address: poolKey})
	b.Ops = append(b.Ops, Op{Kind: 0})
	require.Error(t, s.Apply(ctx, b))

	_, ok, _ := s.GetPool(ctx, poolKey)
	require.False(t, ok)
}

func TestJsonlRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal", "events.jsonl")
	sink := NewJsonlSink(path)
	poolKey := model.PubkeyFromBytes([]byte("pool"))

	require.NoError(t, sink.PutEvents(context.Background(), []model.Event{
		{Kind: model.EventDepositBuy, Pool: poolKey, Lamports: 5},
		{Kind: model.EventFulfillSell, Pool: poolKey, TotalPrice: 7, MakerFee: -1},
	}))
	require.NoError(t, sink.PutEvents(context.Background(), []model.Event{{Kind: model.EventPoolClosed, Pool: poolKey}}))

	var got []model.Event
	require.NoError(t, ReadEvents(path, func(e model.Event) error {
		got = append(got, e)
		return nil
	}))
	require.Len(t, got, 3)
	require.Equal(t, model.EventFulfillSell, got[1].Kind)
	require.Equal(t, int64(-1), got[1].MakerFee)
	require.Equal(t, poolKey, got[2].Pool)
}

func TestReadEventsMissingFile(t *testing.T) {
	called := false
	err := ReadEvents(filepath.Join(t.TempDir(), "none.jsonl"), func(model.Event) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.False(t, called)
}
