package assets

import (
	"fmt"
	"sync"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/model"
)

type holding struct {
	holder model.Pubkey
	mint   model.Pubkey
}

// Book is an in-memory custody ledger of asset balances per holder.
type Book struct {
	mu       sync.Mutex
	balances map[holding]uint64
	accounts map[holding]bool
	frozen   map[model.Pubkey]bool
}

func NewBook() *Book {
	return &Book{
		balances: make(map[holding]uint64),
		accounts: make(map[holding]bool),
		frozen:   make(map[model.Pubkey]bool),
	}
}

// Mint credits amount units of mint to holder.
func (b *Book) Mint(holder, mint model.Pubkey, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := holding{holder: holder, mint: mint}
	b.balances[key] += amount
	b.accounts[key] = true
}

// Freeze marks a mint as non-transferable.
func (b *Book) Freeze(mint model.Pubkey) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frozen[mint] = true
}

func (b *Book) Balance(holder, mint model.Pubkey) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[holding{holder: holder, mint: mint}]
}

// HasAccount reports whether holder has an open account for mint.
func (b *Book) HasAccount(holder, mint model.Pubkey) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accounts[holding{holder: holder, mint: mint}]
}

func (b *Book) move(from, to, mint model.Pubkey, amount uint64, openAccount bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen[mint] {
		return fmt.Errorf("mint %s is frozen: %w", mint, ammerr.ErrAssetTransferRejected)
	}
	src := holding{holder: from, mint: mint}
	if b.balances[src] < amount {
		return fmt.Errorf("%s holds %d of %s, need %d: %w", from, b.balances[src], mint, amount, ammerr.ErrAssetTransferRejected)
	}
	dst := holding{holder: to, mint: mint}
	b.balances[src] -= amount
	b.balances[dst] += amount
	if openAccount {
		b.accounts[dst] = true
	}
	return nil
}

func (b *Book) closeIfEmpty(holder, mint model.Pubkey) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := holding{holder: holder, mint: mint}
	if b.balances[key] == 0 {
		delete(b.balances, key)
		delete(b.accounts, key)
	}
}
