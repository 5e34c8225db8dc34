package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"collectibleAMM/internal/config"
	"collectibleAMM/internal/replay"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("instruction log path is required")
	}

	pools, err := replay.ParsePools(cfg.Pools)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, cfg.Engine, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	runner := replay.NewRunner(replay.RunConfig{
		Path:              cfg.In,
		FromSeq:           cfg.From,
		ToSeq:             cfg.To,
		Pools:             pools,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
		StopOnReject:      cfg.StopOnReject,
	}, rt.engine, replay.Simulation{Book: rt.book, Delegate: rt.delegate}, logger)

	logger.Info("replay start",
		zap.String("in", cfg.In),
		zap.Uint64("from", cfg.From),
		zap.Uint64("to", cfg.To),
		zap.Int("pools", len(pools)),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("store", cfg.Store.Backend),
		zap.String("pg_dsn", redactDSN(cfg.Store.PGDSN)),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("replay done",
		zap.Int("setup", summary.Setup),
		zap.Int("applied", summary.Applied),
		zap.Int("rejected", summary.Rejected),
		zap.Int("filtered", summary.Filtered),
		zap.Uint64("last_seq", summary.LastSeq),
	)
	return nil
}
