package main

import (
	"context"
	"fmt"
	"math"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"collectibleAMM/internal/config"
	"collectibleAMM/internal/engine"
	"collectibleAMM/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	args, err := quoteArgs(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	rt, err := newRuntime(ctx, cfg.Engine, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.engine.Quote(ctx, args)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func quoteArgs(cfg config.QuoteConfig) (engine.QuoteArgs, error) {
	var args engine.QuoteArgs
	if cfg.Pool == "" {
		return args, fmt.Errorf("pool is required")
	}
	pool, err := model.ParsePubkey(cfg.Pool)
	if err != nil {
		return args, fmt.Errorf("pool: %w", err)
	}
	args.Pool = pool

	switch cfg.Side {
	case "buy":
		args.FulfillBuy = true
	case "sell":
	default:
		return args, fmt.Errorf("side must be buy or sell")
	}

	if cfg.MakerFeeBP < math.MinInt16 || cfg.MakerFeeBP > math.MaxInt16 {
		return args, fmt.Errorf("maker-fee-bp %d out of range", cfg.MakerFeeBP)
	}
	if cfg.TakerFeeBP > math.MaxUint16 || cfg.RoyaltyShareBP > math.MaxUint16 {
		return args, fmt.Errorf("fee bp out of range")
	}
	args.AssetAmount = cfg.Amount
	args.MakerFeeBP = int16(cfg.MakerFeeBP)
	args.TakerFeeBP = uint16(cfg.TakerFeeBP)
	args.RoyaltyShareBP = uint16(cfg.RoyaltyShareBP)

	if cfg.AssetMint != "" {
		mint, err := model.ParsePubkey(cfg.AssetMint)
		if err != nil {
			return args, fmt.Errorf("asset: %w", err)
		}
		kind, err := model.ParseAssetKind(cfg.AssetKind)
		if err != nil {
			return args, err
		}
		args.Asset = &model.Asset{Kind: kind, Mint: mint}
	}
	return args, nil
}
