package replay

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/engine"
	"collectibleAMM/internal/model"
)

// RunConfig holds runtime settings for a replay.
type RunConfig struct {
	Path              string
	FromSeq           uint64
	ToSeq             uint64
	Pools             []model.Pubkey
	BatchSize         uint64
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	// StopOnReject aborts the replay at the first instruction the engine
	// rejects instead of recording it and moving on.
	StopOnReject bool
}

// Summary counts what a replay did.
type Summary struct {
	Setup    int
	Applied  int
	Rejected int
	Filtered int
	LastSeq  uint64
}

// Runner applies an instruction log to an engine.
type Runner struct {
	cfg        RunConfig
	engine     *engine.Engine
	env        Environment
	logger     *zap.Logger
	seen       map[uint64]struct{}
	pools      map[model.Pubkey]struct{}
	checkpoint *CheckpointStore
}

// NewRunner builds a Runner with its dependencies. env may be nil when the
// log has no setup ops.
func NewRunner(cfg RunConfig, eng *engine.Engine, env Environment, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	var pools map[model.Pubkey]struct{}
	if len(cfg.Pools) > 0 {
		pools = make(map[model.Pubkey]struct{}, len(cfg.Pools))
		for _, p := range cfg.Pools {
			pools[p] = struct{}{}
		}
	}
	return &Runner{
		cfg:        cfg,
		engine:     eng,
		env:        env,
		logger:     logger,
		seen:       make(map[uint64]struct{}),
		pools:      pools,
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
}

// Run executes the replay loop.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	if r.engine == nil {
		return summary, fmt.Errorf("engine is nil")
	}
	if r.cfg.BatchSize == 0 {
		return summary, fmt.Errorf("batch size must be greater than zero")
	}
	if r.cfg.Path == "" {
		return summary, fmt.Errorf("instruction log path is required")
	}

	var log []Instruction
	var last uint64
	err := ReadInstructions(r.cfg.Path, func(ins Instruction) error {
		if ins.Seq < last {
			return fmt.Errorf("instruction seq %d after %d: log must be ordered", ins.Seq, last)
		}
		last = ins.Seq
		log = append(log, ins)
		return nil
	})
	if err != nil {
		return summary, err
	}
	if len(log) == 0 {
		r.logger.Info("empty instruction log", zap.String("path", r.cfg.Path))
		return summary, nil
	}

	from := r.cfg.FromSeq
	if from == 0 {
		from = log[0].Seq
	}
	to := r.cfg.ToSeq
	if to == 0 || to > last {
		to = last
	}

	logID, err := filepath.Abs(r.cfg.Path)
	if err != nil {
		return summary, fmt.Errorf("resolve log path: %w", err)
	}
	cp, ok, err := r.checkpoint.Load()
	if err != nil {
		return summary, err
	}
	if ok && cp.Log != "" && cp.Log != logID {
		return summary, fmt.Errorf("checkpoint belongs to log %s, not %s", cp.Log, logID)
	}
	if ok && cp.LastAppliedSeq >= from {
		from = cp.LastAppliedSeq + 1
		r.logger.Info("resume from checkpoint", zap.Uint64("last_applied", cp.LastAppliedSeq), zap.Uint64("from", from))
	}

	if from > to {
		r.logger.Info("nothing to replay", zap.Uint64("from", from), zap.Uint64("to", to))
		return summary, nil
	}

	batches, err := Batches(log, from, to, r.cfg.BatchSize)
	if err != nil {
		return summary, err
	}

	for _, batch := range batches {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		applied, rejected := summary.Applied, summary.Rejected
		for _, ins := range batch {
			if r.isDuplicate(ins.Seq) {
				continue
			}
			if err := r.apply(ctx, ins, &summary); err != nil {
				return summary, err
			}
			if err := r.checkpoint.Save(Checkpoint{Log: logID, LastAppliedSeq: ins.Seq}); err != nil {
				return summary, err
			}
			summary.LastSeq = ins.Seq
		}

		r.logger.Info("batch complete",
			zap.Int("applied", summary.Applied-applied),
			zap.Int("rejected", summary.Rejected-rejected),
			zap.Uint64("first_seq", batch[0].Seq),
			zap.Uint64("last_seq", batch[len(batch)-1].Seq),
		)
	}

	return summary, nil
}

func (r *Runner) apply(ctx context.Context, ins Instruction, summary *Summary) error {
	if isSetup(ins.Op) {
		if err := applySetup(r.env, ins); err != nil {
			return fmt.Errorf("instruction %d: %w", ins.Seq, err)
		}
		summary.Setup++
		return nil
	}
	if r.pools != nil {
		pool, scoped, err := poolOf(r.engine.Config().ProgramID, ins)
		if err != nil {
			return fmt.Errorf("instruction %d: %w", ins.Seq, err)
		}
		if _, wanted := r.pools[pool]; scoped && !wanted {
			summary.Filtered++
			return nil
		}
	}

	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		_, err := Dispatch(ctx, r.engine, ins)
		if err != nil && !ammerr.IsEngine(err) {
			r.logger.Warn("instruction failed", zap.Error(err), zap.Uint64("seq", ins.Seq), zap.String("op", ins.Op))
		}
		return err
	})
	switch {
	case err == nil:
		summary.Applied++
		return nil
	case ammerr.IsEngine(err):
		summary.Rejected++
		code, _ := ammerr.CodeOf(err)
		r.logger.Info("instruction rejected", zap.Uint64("seq", ins.Seq), zap.String("op", ins.Op), zap.Uint32("code", uint32(code)), zap.Error(err))
		if r.cfg.StopOnReject {
			return fmt.Errorf("instruction %d: %w", ins.Seq, err)
		}
		return nil
	case errors.Is(err, ErrUnknownOp), errors.Is(err, errDecode):
		return fmt.Errorf("instruction %d: %w", ins.Seq, err)
	default:
		return fmt.Errorf("apply instruction %d: %w", ins.Seq, err)
	}
}

func (r *Runner) isDuplicate(seq uint64) bool {
	if _, ok := r.seen[seq]; ok {
		return true
	}
	r.seen[seq] = struct{}{}
	return false
}
