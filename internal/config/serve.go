package config

import (
	"time"

	"github.com/spf13/pflag"
)

// ServeConfig holds configuration for the HTTP API.
type ServeConfig struct {
	Listen          string
	ShutdownTimeout time.Duration
	LogLevel        string
	Engine          EngineSettings
	Store           StoreSettings
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"listen":           ":8080",
		"shutdown-timeout": 10 * time.Second,
	})
	if err != nil {
		return ServeConfig{}, err
	}

	return ServeConfig{
		Listen:          v.GetString("listen"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
		LogLevel:        v.GetString("log-level"),
		Engine:          engineSettings(v),
		Store:           storeSettings(v),
	}, nil
}
