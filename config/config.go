// Package config loads the tool configuration: YAML first with a JSON
// fallback, then .env / HODL_* environment overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete tool configuration.
type Config struct {
	Store  StoreConfig  `json:"store" yaml:"store"`
	Oracle OracleConfig `json:"oracle" yaml:"oracle"`
	Report ReportConfig `json:"report" yaml:"report"`
	Clean  CleanConfig  `json:"clean" yaml:"clean"`
}

// StoreConfig selects and locates the persistence backend.
type StoreConfig struct {
	Type   string `json:"type" yaml:"type"` // "json" or "sqlite"
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// OracleConfig drives the reference-price fetcher and its fallback chain.
type OracleConfig struct {
	Endpoint         string  `json:"endpoint" yaml:"endpoint"`
	TokenID          string  `json:"token_id" yaml:"token_id"`
	TimeoutSeconds   int     `json:"timeout_seconds" yaml:"timeout_seconds"`
	CachePath        string  `json:"cache_path" yaml:"cache_path"`
	MaxStaleMinutes  int     `json:"max_stale_minutes" yaml:"max_stale_minutes"`
	FallbackPriceUSD float64 `json:"fallback_price_usd" yaml:"fallback_price_usd"`
}

// Timeout converts the configured seconds to a duration.
func (o OracleConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// MaxStale converts the configured minutes to a duration.
func (o OracleConfig) MaxStale() time.Duration {
	return time.Duration(o.MaxStaleMinutes) * time.Minute
}

// ReportConfig shapes the summary command.
type ReportConfig struct {
	WindowDays int `json:"window_days" yaml:"window_days"`
}

// CleanConfig is the sanity ceiling for the clean command.
type CleanConfig struct {
	MaxInitialUSD float64 `json:"max_initial_usd" yaml:"max_initial_usd"`
}

// Default returns a configuration with sensible defaults, rooted under the
// user's home directory.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dir := filepath.Join(home, ".hodl")

	return &Config{
		Store: StoreConfig{
			Type:   "json",
			Path:   filepath.Join(dir, "positions.json"),
			DBPath: filepath.Join(dir, "positions.sqlite"),
		},
		Oracle: OracleConfig{
			Endpoint:         "https://api.coingecko.com/api/v3/simple/price",
			TokenID:          "solana",
			TimeoutSeconds:   10,
			CachePath:        filepath.Join(dir, "price-cache.json"),
			MaxStaleMinutes:  60,
			FallbackPriceUSD: 150,
		},
		Report: ReportConfig{WindowDays: 7},
		Clean:  CleanConfig{MaxInitialUSD: 1_000_000},
	}
}

// Load builds the effective configuration: defaults, then the file at path
// (if it exists), then environment overrides. An empty path means defaults
// plus environment only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// .env is optional; silently skip when absent.
	_ = godotenv.Load()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return nil
}

// SaveToFile writes the configuration, YAML or JSON by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	switch c.Store.Type {
	case "json":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the json backend")
		}
	case "sqlite":
		if c.Store.DBPath == "" {
			return fmt.Errorf("store.db_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("store.type must be 'json' or 'sqlite', got %q", c.Store.Type)
	}

	if c.Oracle.Endpoint == "" {
		return fmt.Errorf("oracle.endpoint is required")
	}
	if c.Oracle.TokenID == "" {
		return fmt.Errorf("oracle.token_id is required")
	}
	if c.Oracle.TimeoutSeconds <= 0 {
		return fmt.Errorf("oracle.timeout_seconds must be positive")
	}
	if c.Oracle.MaxStaleMinutes <= 0 {
		return fmt.Errorf("oracle.max_stale_minutes must be positive")
	}
	if c.Oracle.FallbackPriceUSD <= 0 {
		return fmt.Errorf("oracle.fallback_price_usd must be positive")
	}
	if c.Report.WindowDays <= 0 {
		return fmt.Errorf("report.window_days must be positive")
	}
	if c.Clean.MaxInitialUSD <= 0 {
		return fmt.Errorf("clean.max_initial_usd must be positive")
	}
	return nil
}

// applyEnvOverrides overwrites fields from HODL_* variables when set, so the
// config file can stay untouched on shared machines.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Store.Type, "HODL_STORE_TYPE")
	setStr(&cfg.Store.Path, "HODL_STORE_PATH")
	setStr(&cfg.Store.DBPath, "HODL_STORE_DB_PATH")

	setStr(&cfg.Oracle.Endpoint, "HODL_ORACLE_ENDPOINT")
	setStr(&cfg.Oracle.TokenID, "HODL_ORACLE_TOKEN_ID")
	setInt(&cfg.Oracle.TimeoutSeconds, "HODL_ORACLE_TIMEOUT_SECONDS")
	setStr(&cfg.Oracle.CachePath, "HODL_ORACLE_CACHE_PATH")
	setInt(&cfg.Oracle.MaxStaleMinutes, "HODL_ORACLE_MAX_STALE_MINUTES")
	setFloat64(&cfg.Oracle.FallbackPriceUSD, "HODL_ORACLE_FALLBACK_PRICE_USD")

	setInt(&cfg.Report.WindowDays, "HODL_REPORT_WINDOW_DAYS")
	setFloat64(&cfg.Clean.MaxInitialUSD, "HODL_CLEAN_MAX_INITIAL_USD")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
