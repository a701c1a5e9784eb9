package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/nikbrunner/markdex/internal/cache"
	"github.com/nikbrunner/markdex/internal/index"
)

// Config holds application configuration.
type Config struct {
	// CacheTTL is the snapshot time-to-live in milliseconds. Zero or
	// negative means entries never expire.
	CacheTTL             int64    `json:"cacheTTL"`
	CacheMaxSize         int      `json:"cacheMaxSize"`
	CompressionThreshold int      `json:"compressionThreshold"`
	SearchLimit          int      `json:"searchLimit"`
	CullExcludeDomains   []string `json:"cullExcludeDomains"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		CacheTTL:             0,
		CacheMaxSize:         cache.DefaultMaxSize,
		CompressionThreshold: cache.DefaultCompressionThreshold,
		SearchLimit:          index.DefaultSearchLimit,
		CullExcludeDomains:   []string{"github.com", "gitlab.com"},
	}
}

// Load reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			// Create the config file with defaults
			if saveErr := Save(path, &cfg); saveErr != nil {
				// Non-fatal: return defaults even if save fails
				return &cfg, nil
			}
			return &cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Apply defaults for missing fields
	defaults := Default()
	if cfg.CacheMaxSize <= 0 {
		cfg.CacheMaxSize = defaults.CacheMaxSize
	}
	if cfg.CompressionThreshold <= 0 {
		cfg.CompressionThreshold = defaults.CompressionThreshold
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = defaults.SearchLimit
	}
	if cfg.CullExcludeDomains == nil {
		cfg.CullExcludeDomains = defaults.CullExcludeDomains
	}

	return &cfg, nil
}

// Save writes config to the JSON file.
// Creates the directory if it doesn't exist.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultPath returns the default config path: ~/.config/markdex/config.json
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "markdex", "config.json"), nil
}

// CacheConfig translates the loaded settings into cache options.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		TTL:                  time.Duration(c.CacheTTL) * time.Millisecond,
		MaxSize:              c.CacheMaxSize,
		Compress:             true,
		CompressionThreshold: c.CompressionThreshold,
		Preload:              true,
	}
}
