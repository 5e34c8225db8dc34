package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "ammctl",
		Short:        "Collectible AMM engine tooling",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Apply an instruction log to the ledger",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("in", "", "instruction log JSONL")
	replayCmd.Flags().Uint64("from", 0, "first instruction seq (inclusive)")
	replayCmd.Flags().Uint64("to", 0, "last instruction seq (inclusive), 0 means end of log")
	replayCmd.Flags().StringSlice("pool", nil, "only replay instructions for these pools (comma-separated)")
	replayCmd.Flags().Uint64("batch-size", 500, "instructions per checkpoint")
	replayCmd.Flags().String("checkpoint", "./data/replay_checkpoint.json", "checkpoint file path")
	replayCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	replayCmd.Flags().Int("max-retries", 5, "maximum retry attempts on store errors")
	replayCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	replayCmd.Flags().Bool("stop-on-reject", false, "abort at the first rejected instruction")
	addEngineFlags(replayCmd)
	addStoreFlags(replayCmd)
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(replayCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a fill against a stored pool",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("pool", "", "pool address")
	quoteCmd.Flags().String("side", "sell", "buy fills the pool's bids, sell takes the pool's listings")
	quoteCmd.Flags().Uint64("amount", 1, "asset units")
	quoteCmd.Flags().String("asset", "", "asset mint, enables royalty quoting")
	quoteCmd.Flags().String("asset-kind", "vanilla", "asset kind")
	quoteCmd.Flags().Int("maker-fee-bp", 0, "maker fee bp (negative for a rebate)")
	quoteCmd.Flags().Uint("taker-fee-bp", 0, "taker fee bp")
	quoteCmd.Flags().Uint("royalty-share-bp", 0, "royalty share bp honoured on pool sells")
	addEngineFlags(quoteCmd)
	addStoreFlags(quoteCmd)
	quoteCmd.Flags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	aggregateCmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate the event journal into window metrics",
		RunE:  runAggregate,
	}

	aggregateCmd.Flags().String("in", "", "event journal JSONL, defaults to the store journal")
	aggregateCmd.Flags().String("out", "", "window metrics JSONL when no Postgres DSN is set")
	aggregateCmd.Flags().String("window", "1h", "aggregation window (e.g. 5m, 1h, 24h)")
	aggregateCmd.Flags().Int("batch-size", 1000, "batch size for metric writes")
	aggregateCmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	aggregateCmd.Flags().String("recompute-from", "", "recompute from timestamp (unix seconds or RFC3339)")
	addStoreFlags(aggregateCmd)
	aggregateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(aggregateCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve read-only pool queries, quotes and metrics over HTTP",
		RunE:  runServe,
	}

	serveCmd.Flags().String("listen", ":8080", "listen address")
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	addEngineFlags(serveCmd)
	addStoreFlags(serveCmd)
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	poolAddressCmd := &cobra.Command{
		Use:   "pool-address",
		Short: "Derive a pool address, generating a uuid when none is given",
		RunE:  runPoolAddress,
	}

	poolAddressCmd.Flags().String("owner", "", "pool owner")
	poolAddressCmd.Flags().String("uuid", "", "pool uuid (base58), generated when empty")
	poolAddressCmd.Flags().String("program-id", "", "program id")

	root.AddCommand(poolAddressCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().String("program-id", "", "program id")
	cmd.Flags().String("delegate-program-id", "", "shared escrow program id")
	cmd.Flags().String("metadata-file", "", "asset metadata JSON file")
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("store", "leveldb", "ledger store (memory, leveldb, postgres)")
	cmd.Flags().String("leveldb-path", "./data/ledger", "LevelDB directory")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().String("journal", "./data/events.jsonl", "event journal JSONL")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
