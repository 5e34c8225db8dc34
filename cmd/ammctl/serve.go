package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"collectibleAMM/internal/api"
	"collectibleAMM/internal/config"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, cfg.Engine, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	server := api.NewServer(rt.engine, rt.ledger.store, rt.registry, logger)

	logger.Info("serve start",
		zap.String("listen", cfg.Listen),
		zap.String("store", cfg.Store.Backend),
		zap.String("pg_dsn", redactDSN(cfg.Store.PGDSN)),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
	)

	return server.Serve(ctx, cfg.Listen, cfg.ShutdownTimeout)
}
