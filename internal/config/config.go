package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"collectibleAMM/internal/engine"
	"collectibleAMM/internal/model"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreLevelDB  = "leveldb"
	StorePostgres = "postgres"
)

// EngineSettings are the program parameters shared by every command that
// builds an engine.
type EngineSettings struct {
	ProgramID         string
	DelegateProgramID string
	RentExemptMinimum uint64
	PoolRent          uint64
	SellStateRent     uint64
	DynamicRent       uint64
}

// Engine converts the settings into an engine configuration.
func (s EngineSettings) Engine() (engine.Config, error) {
	program, err := model.ParsePubkey(s.ProgramID)
	if err != nil {
		return engine.Config{}, fmt.Errorf("program-id: %w", err)
	}
	delegate, err := model.ParsePubkey(s.DelegateProgramID)
	if err != nil {
		return engine.Config{}, fmt.Errorf("delegate-program-id: %w", err)
	}
	return engine.Config{
		ProgramID:         program,
		DelegateProgramID: delegate,
		RentExemptMinimum: s.RentExemptMinimum,
		PoolRent:          s.PoolRent,
		SellStateRent:     s.SellStateRent,
		DynamicRent:       s.DynamicRent,
	}, nil
}

// StoreSettings select the ledger backend and the journal.
type StoreSettings struct {
	Backend     string
	LevelDBPath string
	PGDSN       string
	Journal     string
	// MetadataFile is a JSON array of asset metadata served to the engine.
	MetadataFile      string
	MetadataCacheSize int
}

// Validate checks that the selected backend has what it needs.
func (s StoreSettings) Validate() error {
	switch s.Backend {
	case StoreMemory:
	case StoreLevelDB:
		if s.LevelDBPath == "" {
			return fmt.Errorf("leveldb-path is required for the leveldb store")
		}
	case StorePostgres:
		if s.PGDSN == "" {
			return fmt.Errorf("pg-dsn is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store %q", s.Backend)
	}
	return nil
}

// newViper merges config file, environment variables, and flags. Keys are
// flag names; env vars use the AMM_ prefix with dashes as underscores.
func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]any) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("AMM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	setEngineDefaults(v)
	setStoreDefaults(v)
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func setEngineDefaults(v *viper.Viper) {
	d := engine.DefaultConfig()
	v.SetDefault("program-id", "")
	v.SetDefault("delegate-program-id", "")
	v.SetDefault("rent-exempt-minimum", d.RentExemptMinimum)
	v.SetDefault("pool-rent", d.PoolRent)
	v.SetDefault("sell-state-rent", d.SellStateRent)
	v.SetDefault("dynamic-rent", d.DynamicRent)
}

func setStoreDefaults(v *viper.Viper) {
	v.SetDefault("store", StoreLevelDB)
	v.SetDefault("leveldb-path", "./data/ledger")
	v.SetDefault("journal", "./data/events.jsonl")
	v.SetDefault("metadata-cache-size", 4096)
}

func engineSettings(v *viper.Viper) EngineSettings {
	return EngineSettings{
		ProgramID:         v.GetString("program-id"),
		DelegateProgramID: v.GetString("delegate-program-id"),
		RentExemptMinimum: v.GetUint64("rent-exempt-minimum"),
		PoolRent:          v.GetUint64("pool-rent"),
		SellStateRent:     v.GetUint64("sell-state-rent"),
		DynamicRent:       v.GetUint64("dynamic-rent"),
	}
}

func storeSettings(v *viper.Viper) StoreSettings {
	return StoreSettings{
		Backend:           strings.ToLower(v.GetString("store")),
		LevelDBPath:       v.GetString("leveldb-path"),
		PGDSN:             v.GetString("pg-dsn"),
		Journal:           v.GetString("journal"),
		MetadataFile:      v.GetString("metadata-file"),
		MetadataCacheSize: v.GetInt("metadata-cache-size"),
	}
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
