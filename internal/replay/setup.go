package replay

import (
	"fmt"

	"collectibleAMM/internal/assets"
	"collectibleAMM/internal/delegate"
	"collectibleAMM/internal/model"
)

// Setup ops prepare custody and delegate balances before the instructions
// that depend on them. They do not go through the engine.
const (
	OpMintAsset        = "mint_asset"
	OpFundSharedEscrow = "fund_shared_escrow"
)

// Environment is the simulated world setup ops act on.
type Environment interface {
	Mint(holder, mint model.Pubkey, amount uint64)
	Fund(owner model.Pubkey, lamports uint64) error
}

// Simulation backs setup ops with the in-memory custody book and delegate
// program the engine is wired to.
type Simulation struct {
	Book     *assets.Book
	Delegate *delegate.Program
}

func (s Simulation) Mint(holder, mint model.Pubkey, amount uint64) {
	s.Book.Mint(holder, mint, amount)
}

func (s Simulation) Fund(owner model.Pubkey, lamports uint64) error {
	if s.Delegate == nil {
		return fmt.Errorf("no delegate program configured")
	}
	return s.Delegate.Fund(owner, lamports)
}

type mintArgs struct {
	Holder model.Pubkey `json:"holder"`
	Mint   model.Pubkey `json:"mint"`
	Amount uint64       `json:"amount"`
}

type fundArgs struct {
	Owner    model.Pubkey `json:"owner"`
	Lamports uint64       `json:"lamports"`
}

func isSetup(op string) bool {
	return op == OpMintAsset || op == OpFundSharedEscrow
}

func applySetup(env Environment, ins Instruction) error {
	if env == nil {
		return fmt.Errorf("%w: %q needs a simulated environment", ErrUnknownOp, ins.Op)
	}
	switch ins.Op {
	case OpMintAsset:
		var args mintArgs
		if err := json.Unmarshal(ins.Args, &args); err != nil {
			return fmt.Errorf("%w: %v", errDecode, err)
		}
		env.Mint(args.Holder, args.Mint, args.Amount)
		return nil
	case OpFundSharedEscrow:
		var args fundArgs
		if err := json.Unmarshal(ins.Args, &args); err != nil {
			return fmt.Errorf("%w: %v", errDecode, err)
		}
		return env.Fund(args.Owner, args.Lamports)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, ins.Op)
	}
}
