package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collectibleAMM/internal/config"
	"collectibleAMM/internal/model"
)

func TestParseWindow(t *testing.T) {
	seconds, err := parseWindow("1h")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), seconds)

	_, err = parseWindow("500ms")
	assert.Error(t, err)
	_, err = parseWindow("-5m")
	assert.Error(t, err)
	_, err = parseWindow("soon")
	assert.Error(t, err)
}

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "", redactDSN(""))
	assert.Equal(t, "***", redactDSN("postgres://user:pw@localhost/amm"))
}

func TestPoolUUID(t *testing.T) {
	a, err := poolUUID("")
	require.NoError(t, err)
	b, err := poolUUID("")
	require.NoError(t, err)
	assert.False(t, a.IsZero())
	assert.NotEqual(t, a, b)

	fixed := model.PubkeyFromBytes([]byte("fixed"))
	got, err := poolUUID(fixed.String())
	require.NoError(t, err)
	assert.Equal(t, fixed, got)

	_, err = poolUUID("not-base58-0OIl")
	assert.Error(t, err)
}

func TestQuoteArgs(t *testing.T) {
	pool := model.PubkeyFromBytes([]byte("pool"))
	mint := model.PubkeyFromBytes([]byte("mint"))

	args, err := quoteArgs(config.QuoteConfig{
		Pool:       pool.String(),
		Side:       "buy",
		Amount:     3,
		AssetMint:  mint.String(),
		AssetKind:  "vanilla",
		MakerFeeBP: -50,
		TakerFeeBP: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, pool, args.Pool)
	assert.True(t, args.FulfillBuy)
	assert.Equal(t, uint64(3), args.AssetAmount)
	assert.Equal(t, int16(-50), args.MakerFeeBP)
	assert.Equal(t, uint16(100), args.TakerFeeBP)
	require.NotNil(t, args.Asset)
	assert.Equal(t, mint, args.Asset.Mint)

	_, err = quoteArgs(config.QuoteConfig{Side: "sell"})
	assert.Error(t, err)
	_, err = quoteArgs(config.QuoteConfig{Pool: pool.String(), Side: "both"})
	assert.Error(t, err)
	_, err = quoteArgs(config.QuoteConfig{Pool: pool.String(), Side: "sell", MakerFeeBP: 40000})
	assert.Error(t, err)
}

func TestOpenLedgerMemory(t *testing.T) {
	l, err := openLedger(context.Background(), config.StoreSettings{Backend: config.StoreMemory})
	require.NoError(t, err)
	defer l.close()
	assert.NotNil(t, l.store)
	assert.NotNil(t, l.events)

	_, err = openLedger(context.Background(), config.StoreSettings{Backend: "redis"})
	assert.Error(t, err)
}

func TestOpenLedgerLevelDB(t *testing.T) {
	l, err := openLedger(context.Background(), config.StoreSettings{
		Backend:     config.StoreLevelDB,
		LevelDBPath: t.TempDir(),
		Journal:     t.TempDir() + "/events.jsonl",
	})
	require.NoError(t, err)
	defer l.close()

	pools, err := l.store.ListPools(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pools)
}
