// Package config loads process configuration from environment variables,
// layered over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces every environment variable this process reads,
// e.g. SEGUE_CATALOG_BASE_URL.
const EnvPrefix = "SEGUE_"

// Config is the full process configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Catalog CatalogConfig `koanf:"catalog"`
	Resolve ResolveConfig `koanf:"resolve"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// CatalogConfig configures the upstream catalog adapter.
type CatalogConfig struct {
	BaseURL         string  `koanf:"base_url"`
	TokenURL        string  `koanf:"token_url"`
	ClientID        string  `koanf:"client_id"`
	ClientSecret    string  `koanf:"client_secret"`
	SearchTimeoutMs int     `koanf:"search_timeout_ms"`
	MaxRetries      int     `koanf:"max_retries"`
	RetryBackoffMs  int     `koanf:"retry_backoff_ms"`
	RateLimitRPS    float64 `koanf:"rate_limit_rps"`
	CachePath       string  `koanf:"cache_path"` // empty disables the metadata cache
}

// ResolveConfig configures the resolution pipeline.
type ResolveConfig struct {
	TimeoutMs        int `koanf:"timeout_ms"`
	PerStrategyLimit int `koanf:"per_strategy_limit"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Catalog: CatalogConfig{
			BaseURL:         "https://api.spotify.com",
			TokenURL:        "https://accounts.spotify.com/api/token",
			SearchTimeoutMs: 3000,
			MaxRetries:      3,
			RetryBackoffMs:  500,
			RateLimitRPS:    10,
			CachePath:       "segue-cache.db",
		},
		Resolve: ResolveConfig{
			TimeoutMs:        10000,
			PerStrategyLimit: 10,
		},
	}
}

// Load builds the configuration from defaults overridden by SEGUE_*
// environment variables and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: failed to load defaults: %w", err)
	}

	// SEGUE_CATALOG_BASE_URL -> catalog.base_url
	envProvider := env.Provider(EnvPrefix, ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("config: failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envTransform maps an environment variable name onto a koanf path: the
// first underscore-delimited token becomes the group.
func envTransform(name string) string {
	trimmed := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	group, rest, found := strings.Cut(trimmed, "_")
	if !found {
		return trimmed
	}
	return group + "." + rest
}

// Validate rejects configurations that cannot produce a working process.
func (c *Config) Validate() error {
	var problems []string

	if c.Catalog.BaseURL == "" {
		problems = append(problems, "catalog base URL is required")
	}
	if c.Catalog.TokenURL == "" {
		problems = append(problems, "catalog token URL is required")
	}
	if c.Catalog.ClientID == "" || c.Catalog.ClientSecret == "" {
		problems = append(problems, "catalog client credentials are required")
	}
	if c.Catalog.SearchTimeoutMs <= 0 {
		problems = append(problems, "catalog search timeout must be positive")
	}
	if c.Resolve.TimeoutMs <= 0 {
		problems = append(problems, "resolve timeout must be positive")
	}
	if c.Resolve.PerStrategyLimit < 1 {
		problems = append(problems, "per-strategy limit must be at least 1")
	}

	if len(problems) > 0 {
		return errors.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}
