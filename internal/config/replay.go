package config

import (
	"time"

	"github.com/spf13/pflag"
)

// ReplayConfig holds configuration for the replay command.
type ReplayConfig struct {
	In                string
	From              uint64
	To                uint64
	Pools             []string
	BatchSize         uint64
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	StopOnReject      bool
	LogLevel          string
	Engine            EngineSettings
	Store             StoreSettings
}

// LoadReplay merges config file, environment variables, and flags into ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"batch-size":         uint64(500),
		"checkpoint":         "./data/replay_checkpoint.json",
		"checkpoint-enabled": true,
		"max-retries":        5,
		"retry-backoff":      500 * time.Millisecond,
	})
	if err != nil {
		return ReplayConfig{}, err
	}

	return ReplayConfig{
		In:                v.GetString("in"),
		From:              v.GetUint64("from"),
		To:                v.GetUint64("to"),
		Pools:             getStringSlice(v, "pool"),
		BatchSize:         v.GetUint64("batch-size"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		StopOnReject:      v.GetBool("stop-on-reject"),
		LogLevel:          v.GetString("log-level"),
		Engine:            engineSettings(v),
		Store:             storeSettings(v),
	}, nil
}
