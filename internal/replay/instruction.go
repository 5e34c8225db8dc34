package replay

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"collectibleAMM/internal/engine"
	"collectibleAMM/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Op names accepted in an instruction log.
const (
	OpCreatePool             = "create_pool"
	OpUpdatePool             = "update_pool"
	OpSetSharedEscrow        = "set_shared_escrow"
	OpDepositBuy             = "deposit_buy"
	OpWithdrawBuy            = "withdraw_buy"
	OpDepositSell            = "deposit_sell"
	OpWithdrawSell           = "withdraw_sell"
	OpFulfillBuy             = "fulfill_buy"
	OpFulfillSell            = "fulfill_sell"
	OpClosePool              = "close_pool"
	OpCreateDynamicAllowlist = "create_dynamic_allowlist"
	OpUpdateDynamicAllowlist = "update_dynamic_allowlist"
	OpMigratePool            = "migrate_pool"
)

// ErrUnknownOp is returned for an op with no handler.
var ErrUnknownOp = errors.New("unknown op")

var errDecode = errors.New("decode args")

// Instruction is one line of an instruction log. Seq defaults to the line
// number when omitted.
type Instruction struct {
	Seq  uint64              `json:"seq"`
	Op   string              `json:"op"`
	Args jsoniter.RawMessage `json:"args"`
}

type handler func(ctx context.Context, e *engine.Engine, raw []byte) (*engine.Receipt, error)

func bind[A any](call func(*engine.Engine, context.Context, A) (*engine.Receipt, error)) handler {
	return func(ctx context.Context, e *engine.Engine, raw []byte) (*engine.Receipt, error) {
		var args A
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, fmt.Errorf("%w: %v", errDecode, err)
		}
		return call(e, ctx, args)
	}
}

var handlers = map[string]handler{
	OpCreatePool:             bind((*engine.Engine).CreatePool),
	OpUpdatePool:             bind((*engine.Engine).UpdatePool),
	OpSetSharedEscrow:        bind((*engine.Engine).SetSharedEscrow),
	OpDepositBuy:             bind((*engine.Engine).DepositBuy),
	OpWithdrawBuy:            bind((*engine.Engine).WithdrawBuy),
	OpDepositSell:            bind((*engine.Engine).DepositSell),
	OpWithdrawSell:           bind((*engine.Engine).WithdrawSell),
	OpFulfillBuy:             bind((*engine.Engine).FulfillBuy),
	OpFulfillSell:            bind((*engine.Engine).FulfillSell),
	OpClosePool:              bind((*engine.Engine).ClosePool),
	OpCreateDynamicAllowlist: bind((*engine.Engine).CreateDynamicAllowlist),
	OpUpdateDynamicAllowlist: bind((*engine.Engine).UpdateDynamicAllowlist),
	OpMigratePool:            bind((*engine.Engine).MigratePool),
}

// Dispatch decodes the instruction's arguments and runs it on the engine.
func Dispatch(ctx context.Context, e *engine.Engine, ins Instruction) (*engine.Receipt, error) {
	h, ok := handlers[ins.Op]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, ins.Op)
	}
	return h(ctx, e, ins.Args)
}

// poolOf returns the pool an instruction addresses. Dynamic allowlist
// records are not pool scoped and report false. Setup ops never reach it.
func poolOf(programID model.Pubkey, ins Instruction) (model.Pubkey, bool, error) {
	var keys struct {
		Signer model.Pubkey `json:"signer"`
		UUID   model.Pubkey `json:"uuid"`
		Pool   model.Pubkey `json:"pool"`
	}
	switch ins.Op {
	case OpCreateDynamicAllowlist, OpUpdateDynamicAllowlist:
		return model.Pubkey{}, false, nil
	}
	if err := json.Unmarshal(ins.Args, &keys); err != nil {
		return model.Pubkey{}, false, fmt.Errorf("decode args: %w", err)
	}
	if ins.Op == OpCreatePool {
		return model.PoolAddress(programID, keys.Signer, keys.UUID), true, nil
	}
	return keys.Pool, true, nil
}

// ReadInstructions streams an instruction log into fn.
func ReadInstructions(path string, fn func(Instruction) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open instruction log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var line uint64
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 || raw[0] == '#' {
			continue
		}
		var ins Instruction
		if err := json.Unmarshal(raw, &ins); err != nil {
			return fmt.Errorf("decode instruction line %d: %w", line, err)
		}
		if ins.Seq == 0 {
			ins.Seq = line
		}
		if err := fn(ins); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read instruction log: %w", err)
	}
	return nil
}
