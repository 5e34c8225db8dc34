package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/assets"
	"collectibleAMM/internal/delegate"
	"collectibleAMM/internal/engine"
	"collectibleAMM/internal/model"
	"collectibleAMM/internal/storage"
)

var errDiskFull = errors.New("disk full")

// brittleStore fails every Apply while fail is set.
type brittleStore struct {
	*storage.MemoryStore
	fail bool
}

func (s *brittleStore) Apply(ctx context.Context, batch *storage.Batch) error {
	if s.fail {
		return errDiskFull
	}
	return s.MemoryStore.Apply(ctx, batch)
}

// custody wires the engine to the in-memory book and delegate program so a
// test can see what the collaborators hold after each instruction.
type custody struct {
	eng      *engine.Engine
	store    *brittleStore
	book     *assets.Book
	program  *delegate.Program
	nft      model.Asset
	escrowOf model.Pubkey
}

func newCustody(t *testing.T) *custody {
	t.Helper()
	c := &custody{
		store:   &brittleStore{MemoryStore: storage.NewMemoryStore()},
		book:    assets.NewBook(),
		program: delegate.NewProgram(delegateProgram, nil),
		nft:     asset("custody-nft"),
	}
	c.escrowOf = c.program.EscrowAddress(owner)

	cfg := engine.DefaultConfig()
	cfg.ProgramID = programID
	cfg.DelegateProgramID = delegateProgram
	eng, err := engine.New(cfg, engine.Deps{
		Store:     c.store,
		Transfers: assets.NewBookRouter(c.book, nil),
		Delegate:  c.program,
		Clock:     func() time.Time { return time.Unix(now, 0) },
	}, nil)
	require.NoError(t, err)
	c.eng = eng
	return c
}

func (c *custody) createPool(t *testing.T, uuid string, mutate func(*engine.CreatePoolArgs)) model.Pubkey {
	t.Helper()
	args := baseArgs(uuid)
	args.Allowlists = model.Allowlists{{Kind: model.AllowlistMint, Value: c.nft.Mint}}
	if mutate != nil {
		mutate(&args)
	}
	r, err := c.eng.CreatePool(context.Background(), args)
	require.NoError(t, err)
	return r.Pool.Address
}

func (c *custody) stock(t *testing.T, pool model.Pubkey) {
	t.Helper()
	c.book.Mint(owner, c.nft.Mint, 1)
	_, err := c.eng.DepositSell(context.Background(), engine.DepositSellArgs{
		Auth: engine.Auth{Signer: owner}, Pool: pool, Asset: c.nft, AssetAmount: 1,
	})
	require.NoError(t, err)
}

func (c *custody) delegateTo(t *testing.T, pool model.Pubkey, lamports, count uint64) {
	t.Helper()
	require.NoError(t, c.program.Fund(owner, lamports))
	_, err := c.eng.SetSharedEscrow(context.Background(), engine.SetSharedEscrowArgs{
		Auth: engine.Auth{Signer: owner}, Pool: pool, SharedEscrowAccount: c.escrowOf, Count: count,
	})
	require.NoError(t, err)
}

func (c *custody) pool(t *testing.T, addr model.Pubkey) model.Pool {
	t.Helper()
	p, ok, err := c.store.GetPool(context.Background(), addr)
	require.NoError(t, err)
	require.True(t, ok)
	return p
}

func TestFulfillSellCommitFailureReturnsAsset(t *testing.T) {
	c := newCustody(t)
	addr := c.createPool(t, "sell-commit", nil)
	c.stock(t, addr)
	before := c.pool(t, addr)

	c.store.fail = true
	_, err := c.eng.FulfillSell(context.Background(), engine.FulfillSellArgs{
		Auth:             engine.Auth{Signer: trader},
		Pool:             addr,
		Asset:            c.nft,
		AssetAmount:      1,
		MaxPaymentAmount: 2_000_000,
		Referral:         referral,
	})
	require.ErrorIs(t, err, errDiskFull)

	assert.Equal(t, uint64(1), c.book.Balance(addr, c.nft.Mint), "pool custody")
	assert.Equal(t, uint64(0), c.book.Balance(trader, c.nft.Mint), "buyer")
	assert.True(t, c.book.HasAccount(addr, c.nft.Mint), "custody account reopened")
	assert.Equal(t, before, c.pool(t, addr))

	c.store.fail = false
	_, err = c.eng.FulfillSell(context.Background(), engine.FulfillSellArgs{
		Auth:             engine.Auth{Signer: trader},
		Pool:             addr,
		Asset:            c.nft,
		AssetAmount:      1,
		MaxPaymentAmount: 2_000_000,
		Referral:         referral,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), c.book.Balance(trader, c.nft.Mint))
}

func TestFulfillSellFeeWithoutReferralTouchesNothing(t *testing.T) {
	c := newCustody(t)
	addr := c.createPool(t, "no-referral", func(a *engine.CreatePoolArgs) { a.Referral = model.Pubkey{} })
	c.stock(t, addr)

	_, err := c.eng.FulfillSell(context.Background(), engine.FulfillSellArgs{
		Auth:             engine.Auth{Signer: trader},
		Pool:             addr,
		Asset:            c.nft,
		AssetAmount:      1,
		MaxPaymentAmount: 2_000_000,
		TakerFeeBP:       100,
	})
	require.ErrorIs(t, err, ammerr.ErrInvalidReferral)
	assert.Equal(t, uint64(1), c.book.Balance(addr, c.nft.Mint))
	assert.Equal(t, uint64(0), c.book.Balance(trader, c.nft.Mint))
	assert.Equal(t, uint64(1), c.pool(t, addr).SellsideAssetAmount)
}

func TestSharedFulfillBuyRejectedTransferRefundsDelegate(t *testing.T) {
	c := newCustody(t)
	addr := c.createPool(t, "shared-reject", nil)
	c.delegateTo(t, addr, 5_000_000, 3)

	// the seller never received the asset
	_, err := c.eng.FulfillBuy(context.Background(), engine.FulfillBuyArgs{
		Auth:        engine.Auth{Signer: trader},
		Pool:        addr,
		Asset:       c.nft,
		AssetAmount: 1,
		Referral:    referral,
	})
	require.ErrorIs(t, err, ammerr.ErrAssetTransferRejected)
	assert.Equal(t, uint64(5_000_000), c.program.Balance(owner))
	assert.Equal(t, uint64(3), c.pool(t, addr).SharedEscrowCount)

	c.book.Mint(trader, c.nft.Mint, 1)
	_, err = c.eng.FulfillBuy(context.Background(), engine.FulfillBuyArgs{
		Auth:        engine.Auth{Signer: trader},
		Pool:        addr,
		Asset:       c.nft,
		AssetAmount: 1,
		Referral:    referral,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(4_000_000), c.program.Balance(owner))
	assert.Equal(t, uint64(1), c.book.Balance(owner, c.nft.Mint))
	assert.Equal(t, uint64(2), c.pool(t, addr).SharedEscrowCount)
}

func TestSharedFulfillBuyCommitFailureUndoesEveryEffect(t *testing.T) {
	c := newCustody(t)
	addr := c.createPool(t, "shared-commit", nil)
	c.delegateTo(t, addr, 5_000_000, 3)

	// stray lamports in the local escrow force a sweep back to the delegate
	stray := &storage.Batch{}
	stray.PutEscrow(model.Escrow{Pool: addr, Lamports: 2_000_000})
	require.NoError(t, c.store.Apply(context.Background(), stray))

	c.book.Mint(trader, c.nft.Mint, 1)
	c.store.fail = true
	_, err := c.eng.FulfillBuy(context.Background(), engine.FulfillBuyArgs{
		Auth:        engine.Auth{Signer: trader},
		Pool:        addr,
		Asset:       c.nft,
		AssetAmount: 1,
		Referral:    referral,
	})
	require.ErrorIs(t, err, errDiskFull)

	assert.Equal(t, uint64(5_000_000), c.program.Balance(owner), "delegate balance")
	assert.Equal(t, uint64(1), c.book.Balance(trader, c.nft.Mint), "seller keeps the asset")
	assert.Equal(t, uint64(0), c.book.Balance(owner, c.nft.Mint))
	assert.Equal(t, uint64(3), c.pool(t, addr).SharedEscrowCount)
}

func TestFulfillBuyCannotZeroSpotPrice(t *testing.T) {
	c := newCustody(t)
	addr := c.createPool(t, "zero-spot", func(a *engine.CreatePoolArgs) { a.CurveDelta = a.SpotPrice })
	_, err := c.eng.DepositBuy(context.Background(), engine.DepositBuyArgs{
		Auth: engine.Auth{Signer: owner}, Pool: addr, PaymentAmount: 5_000_000,
	})
	require.NoError(t, err)
	c.book.Mint(trader, c.nft.Mint, 1)

	_, err = c.eng.FulfillBuy(context.Background(), engine.FulfillBuyArgs{
		Auth:        engine.Auth{Signer: trader},
		Pool:        addr,
		Asset:       c.nft,
		AssetAmount: 1,
		Referral:    referral,
	})
	require.ErrorIs(t, err, ammerr.ErrNumericOverflow)

	p := c.pool(t, addr)
	assert.Equal(t, uint64(1_000_000), p.SpotPrice)
	assert.Equal(t, uint64(5_000_000), p.BuysidePaymentAmount)
	assert.Equal(t, uint64(1), c.book.Balance(trader, c.nft.Mint))
}
