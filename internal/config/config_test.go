package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collectibleAMM/internal/engine"
	"collectibleAMM/internal/model"
)

func TestLoadReplayDefaults(t *testing.T) {
	cfg, err := LoadReplay("", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), cfg.BatchSize)
	assert.True(t, cfg.CheckpointEnabled)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, StoreLevelDB, cfg.Store.Backend)
	assert.Equal(t, "info", cfg.LogLevel)

	ec, err := cfg.Engine.Engine()
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultConfig(), ec)
}

func TestLoadReplayFlagsEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	program := model.PubkeyFromBytes([]byte("program"))

	file := filepath.Join(dir, "amm.yaml")
	require.NoError(t, os.WriteFile(file, []byte("store: memory\npool-rent: 7\nprogram-id: "+program.String()+"\n"), 0o644))
	t.Setenv("AMM_MAX_RETRIES", "9")

	flags := pflag.NewFlagSet("replay", pflag.ContinueOnError)
	flags.String("in", "", "")
	flags.StringSlice("pool", nil, "")
	flags.Uint64("batch-size", 500, "")
	require.NoError(t, flags.Parse([]string{"--in", "log.jsonl", "--pool", "a, b,,c", "--batch-size", "3"}))

	cfg, err := LoadReplay(file, flags)
	require.NoError(t, err)
	assert.Equal(t, "log.jsonl", cfg.In)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Pools)
	assert.Equal(t, uint64(3), cfg.BatchSize)
	assert.Equal(t, 9, cfg.MaxRetries)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)

	ec, err := cfg.Engine.Engine()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), ec.PoolRent)
	assert.Equal(t, program, ec.ProgramID)
}

func TestEngineSettingsRejectBadKey(t *testing.T) {
	_, err := EngineSettings{ProgramID: "0OIl"}.Engine()
	require.Error(t, err)
}

func TestStoreSettingsValidate(t *testing.T) {
	require.NoError(t, StoreSettings{Backend: StoreMemory}.Validate())
	require.Error(t, StoreSettings{Backend: StoreLevelDB}.Validate())
	require.Error(t, StoreSettings{Backend: StorePostgres}.Validate())
	require.NoError(t, StoreSettings{Backend: StorePostgres, PGDSN: "postgres://x"}.Validate())
	require.Error(t, StoreSettings{Backend: "redis"}.Validate())
}

func TestLoadAggregateFallsBackToJournal(t *testing.T) {
	t.Setenv("AMM_JOURNAL", "/var/amm/events.jsonl")

	cfg, err := LoadAggregate("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/var/amm/events.jsonl", cfg.Input)
	assert.Equal(t, "1h", cfg.Window)
	assert.Equal(t, 1000, cfg.BatchSize)
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("1700000000")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_700_000_000), ts)

	ts, err = ParseTimestamp("2023-11-14T22:13:20Z")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_700_000_000), ts)

	ts, err = ParseTimestamp("  ")
	require.NoError(t, err)
	assert.Zero(t, ts)

	_, err = ParseTimestamp("yesterday")
	require.Error(t, err)
}
