package config

import "github.com/spf13/pflag"

// QuoteConfig holds configuration for the quote command.
type QuoteConfig struct {
	Pool           string
	Side           string
	Amount         uint64
	AssetMint      string
	AssetKind      string
	MakerFeeBP     int
	TakerFeeBP     uint
	RoyaltyShareBP uint
	LogLevel       string
	Engine         EngineSettings
	Store          StoreSettings
}

// LoadQuote merges config file, environment variables, and flags into QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"side":       "sell",
		"amount":     uint64(1),
		"asset-kind": "vanilla",
		"log-level":  "warn",
	})
	if err != nil {
		return QuoteConfig{}, err
	}

	return QuoteConfig{
		Pool:           v.GetString("pool"),
		Side:           v.GetString("side"),
		Amount:         v.GetUint64("amount"),
		AssetMint:      v.GetString("asset"),
		AssetKind:      v.GetString("asset-kind"),
		MakerFeeBP:     v.GetInt("maker-fee-bp"),
		TakerFeeBP:     v.GetUint("taker-fee-bp"),
		RoyaltyShareBP: v.GetUint("royalty-share-bp"),
		LogLevel:       v.GetString("log-level"),
		Engine:         engineSettings(v),
		Store:          storeSettings(v),
	}, nil
}
