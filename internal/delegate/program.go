package delegate

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common/math"
	"go.uber.org/zap"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/engine"
	"collectibleAMM/internal/model"
)

// Program is an in-memory escrow program holding owners' shared liquidity.
type Program struct {
	id       model.Pubkey
	mu       sync.Mutex
	balances map[model.Pubkey]uint64
	logger   *zap.Logger
}

func NewProgram(id model.Pubkey, logger *zap.Logger) *Program {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Program{id: id, balances: make(map[model.Pubkey]uint64), logger: logger}
}

func (p *Program) ID() model.Pubkey {
	return p.id
}

// EscrowAddress is the owner's escrow account under this program.
func (p *Program) EscrowAddress(owner model.Pubkey) model.Pubkey {
	return model.DelegateEscrowAddress(p.id, owner)
}

// Fund credits lamports to the owner's escrow.
func (p *Program) Fund(owner model.Pubkey, lamports uint64) error {
	return p.Deposit(context.Background(), p.EscrowAddress(owner), lamports)
}

// Balance returns the lamports held for owner.
func (p *Program) Balance(owner model.Pubkey) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balances[p.EscrowAddress(owner)]
}

// Withdraw releases lamports from the owner's escrow to req.Destination.
func (p *Program) Withdraw(_ context.Context, req engine.WithdrawRequest) error {
	if req.Program != p.id {
		return fmt.Errorf("program %s, expected %s: %w", req.Program, p.id, ammerr.ErrPubkeyMismatch)
	}
	if expected := p.EscrowAddress(req.Owner); req.Escrow != expected {
		return fmt.Errorf("escrow %s, expected %s: %w", req.Escrow, expected, ammerr.ErrPubkeyMismatch)
	}
	if req.Authority.IsZero() {
		return fmt.Errorf("withdraw without authority: %w", ammerr.ErrInvalidOwner)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	balance := p.balances[req.Escrow]
	if balance < req.Lamports {
		return fmt.Errorf("escrow holds %d, need %d: %w", balance, req.Lamports, ammerr.ErrInsufficientEscrow)
	}
	p.balances[req.Escrow] = balance - req.Lamports
	p.logger.Debug("delegate withdraw",
		zap.Stringer("escrow", req.Escrow),
		zap.Stringer("authority", req.Authority),
		zap.Uint64("lamports", req.Lamports),
	)
	return nil
}

// Deposit credits lamports to an escrow account.
func (p *Program) Deposit(_ context.Context, escrow model.Pubkey, lamports uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	next, overflow := math.SafeAdd(p.balances[escrow], lamports)
	if overflow {
		return fmt.Errorf("escrow balance: %w", ammerr.ErrNumericOverflow)
	}
	p.balances[escrow] = next
	return nil
}
