// Package config loads application configuration from an optional YAML file
// and AXIOM_-prefixed environment variables. Every field carries a usable
// default, so the binaries run with no configuration at all.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Provider ProviderConfig `mapstructure:"provider"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Table    TableConfig    `mapstructure:"table"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// ProviderConfig configures the snapshot provider.
type ProviderConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FeedConfig configures the price update source.
type FeedConfig struct {
	// Mode selects the source: "sim" or "ws".
	Mode     string        `mapstructure:"mode"`
	Interval time.Duration `mapstructure:"interval"`
	Seed     int64         `mapstructure:"seed"`
	WSURL    string        `mapstructure:"ws_url"`
}

// TableConfig configures the derived table.
type TableConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is "json" or "console".
	Format string `mapstructure:"format"`
}

// Feed modes.
const (
	FeedModeSim = "sim"
	FeedModeWS  = "ws"
)

// Load reads the configuration. path may name a YAML file; when empty, only
// defaults and environment variables apply (AXIOM_SERVER_ADDR and so on).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_addr", ":9090")
	v.SetDefault("provider.base_url", "https://pro-api.coinmarketcap.com")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.timeout", 30*time.Second)
	v.SetDefault("feed.mode", FeedModeSim)
	v.SetDefault("feed.interval", 1300*time.Millisecond)
	v.SetDefault("feed.seed", 0)
	v.SetDefault("feed.ws_url", "")
	v.SetDefault("table.page_size", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetEnvPrefix("AXIOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Feed.Mode != FeedModeSim && c.Feed.Mode != FeedModeWS {
		return fmt.Errorf("invalid feed mode %q (want %q or %q)", c.Feed.Mode, FeedModeSim, FeedModeWS)
	}
	if c.Feed.Mode == FeedModeWS && c.Feed.WSURL == "" {
		return fmt.Errorf("feed mode %q requires feed.ws_url", FeedModeWS)
	}
	if c.Feed.Interval <= 0 {
		return fmt.Errorf("feed interval must be positive, got %s", c.Feed.Interval)
	}
	if c.Table.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.Table.PageSize)
	}
	return nil
}
