package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"collectibleAMM/internal/fees"
	"collectibleAMM/internal/model"
	"collectibleAMM/internal/storage"
)

// Config holds the program level parameters of the engine.
type Config struct {
	ProgramID         model.Pubkey
	DelegateProgramID model.Pubkey
	// RentExemptMinimum is the minimum balance of a zero data account.
	RentExemptMinimum uint64
	PoolRent          uint64
	SellStateRent     uint64
	DynamicRent       uint64
}

// DefaultConfig returns the rent figures of the reference runtime.
func DefaultConfig() Config {
	return Config{
		RentExemptMinimum: 890_880,
		PoolRent:          4_182_960,
		SellStateRent:     2_039_280,
		DynamicRent:       2_853_360,
	}
}

// Deps are the collaborators of the engine. Store is required; the rest
// may be nil when the corresponding instructions are not used.
type Deps struct {
	Store     storage.Store
	Events    storage.EventSink
	Transfers AssetTransfer
	Metadata  MetadataSource
	Delegate  DelegateEscrow
	Recorder  Recorder
	Clock     func() time.Time
}

// Engine executes pool instructions. Instructions on one pool are
// serialized; different pools proceed in parallel.
type Engine struct {
	cfg    Config
	deps   Deps
	logger *zap.Logger
	locks  *keyedMutex
}

// New builds an Engine with its dependencies.
func New(cfg Config, deps Deps, logger *zap.Logger) (*Engine, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if deps.Events == nil {
		deps.Events = storage.NopSink{}
	}
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		locks:  newKeyedMutex(),
	}, nil
}

// Config returns the engine parameters.
func (e *Engine) Config() Config {
	return e.cfg
}

// Receipt is the outcome of a committed instruction.
type Receipt struct {
	Event    model.Event     `json:"event"`
	Payments []model.Payment `json:"payments,omitempty"`
	Split    *fees.Split     `json:"split,omitempty"`
	// Pool is the post instruction state. It is zero when the pool closed.
	Pool model.Pool `json:"pool"`
}

func (e *Engine) execute(ctx context.Context, kind model.EventKind, key model.Pubkey, fn func(s *session) error) (*Receipt, error) {
	unlock := e.locks.lock(key)
	defer unlock()

	s := e.newSession(ctx, kind)
	err := fn(s)
	if err == nil {
		err = s.flush()
		if err == nil {
			if err = s.commit(); err != nil {
				s.unwind(len(s.effects))
			}
		}
	}
	e.deps.Recorder.Instruction(kind, err)
	if err != nil {
		e.logger.Info("instruction rejected", zap.String("kind", string(kind)), zap.Stringer("key", key), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", kind, err)
	}

	receipt := s.receipt()
	if err := e.deps.Events.PutEvents(ctx, []model.Event{receipt.Event}); err != nil {
		e.logger.Warn("journal write failed", zap.String("kind", string(kind)), zap.Stringer("key", key), zap.Error(err))
	}
	if kind.IsFill() {
		e.deps.Recorder.Fill(receipt.Event)
	}
	e.logger.Debug("instruction committed",
		zap.String("kind", string(kind)),
		zap.Stringer("pool", receipt.Event.Pool),
		zap.Uint64("total_price", receipt.Event.TotalPrice),
		zap.Int("payments", len(receipt.Payments)),
		zap.Bool("pool_closed", receipt.Event.PoolClosed),
	)
	return receipt, nil
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[model.Pubkey]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[model.Pubkey]*refMutex)}
}

func (k *keyedMutex) lock(key model.Pubkey) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
