// Package config loads the startup JSONC config: default scan address
// bounds, watch interval, results display limit, and log level.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Config holds machscan's ambient startup settings.
type Config struct {
	MinAddress      uint64 `json:"min_address"`
	MaxAddress      uint64 `json:"max_address"`
	WatchIntervalMS int    `json:"watch_interval_ms"`
	ResultsLimit    int    `json:"results_limit"`
	LogLevel        string `json:"log_level"`
}

// Default returns the built-in defaults, used when no config file exists.
func Default() Config {
	return Config{
		MinAddress:      0,
		MaxAddress:      0x00007FFFFFFFFFFF,
		WatchIntervalMS: 1000,
		ResultsLimit:    20,
		LogLevel:        "info",
	}
}

// Load reads a JSONC config file at path, falling back to Default()
// fields for anything unset and to Default() entirely if path does not
// exist.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	parsed, err := parse(data)
	if err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if parsed.MaxAddress != 0 {
		cfg.MaxAddress = parsed.MaxAddress
	}
	cfg.MinAddress = parsed.MinAddress
	if parsed.WatchIntervalMS != 0 {
		cfg.WatchIntervalMS = parsed.WatchIntervalMS
	}
	if parsed.ResultsLimit != 0 {
		cfg.ResultsLimit = parsed.ResultsLimit
	}
	if parsed.LogLevel != "" {
		cfg.LogLevel = parsed.LogLevel
	}

	return cfg, nil
}

func parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}
