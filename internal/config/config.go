package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Storage StorageConfig
	Escrow  EscrowConfig
	Oracle  OracleConfig
	UI      UIConfig
}

// StorageConfig selects and locates the persistence backend.
type StorageConfig struct {
	Driver string // "sqlite" or "json"
	Path   string
	Seed   bool // seed demo escrows into an empty store
}

// EscrowConfig holds the default terms offered in the creation wizard.
type EscrowConfig struct {
	AutoRelease       bool
	DisputeWindowDays int
	FeeRate           float64
}

// OracleConfig holds verification-provider settings.
type OracleConfig struct {
	Provider     string // "heuristic" or "remote"
	Endpoint     string
	APIKeyEnv    string
	APIKey       string
	DelaySeconds int
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat     string
	CurrencySymbol string
	Timezone       string
}

// Load reads configuration from file and env. Env var overrides use prefix CLEARHOLD_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "clearhold", "clearhold.db"))
	v.SetDefault("storage.seed", true)
	v.SetDefault("escrow.auto_release", true)
	v.SetDefault("escrow.dispute_window_days", 7)
	v.SetDefault("escrow.fee_rate", 0.02)
	v.SetDefault("oracle.provider", "heuristic")
	v.SetDefault("oracle.endpoint", "")
	v.SetDefault("oracle.api_key_env", "CLEARHOLD_ORACLE_KEY")
	v.SetDefault("oracle.api_key", "")
	v.SetDefault("oracle.delay_seconds", 3)
	v.SetDefault("ui.date_format", "02/01/2006")
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("ui.timezone", "UTC")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("CLEARHOLD_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "clearhold"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CLEARHOLD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Storage.Driver != "sqlite" && c.Storage.Driver != "json" {
		return Config{}, fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// This is primarily used by the TUI settings view for non-sensitive preferences.
// The oracle API key belongs in the secrets store or an env var, not here.
func Save(cfg Config) error {
	path := os.Getenv("CLEARHOLD_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "clearhold", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("storage.driver", cfg.Storage.Driver)
	v.Set("storage.path", cfg.Storage.Path)
	v.Set("storage.seed", cfg.Storage.Seed)
	v.Set("escrow.auto_release", cfg.Escrow.AutoRelease)
	v.Set("escrow.dispute_window_days", cfg.Escrow.DisputeWindowDays)
	v.Set("escrow.fee_rate", cfg.Escrow.FeeRate)
	v.Set("oracle.provider", cfg.Oracle.Provider)
	v.Set("oracle.endpoint", cfg.Oracle.Endpoint)
	v.Set("oracle.api_key_env", cfg.Oracle.APIKeyEnv)
	v.Set("oracle.delay_seconds", cfg.Oracle.DelaySeconds)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.timezone", cfg.UI.Timezone)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
