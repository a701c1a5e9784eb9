package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nikbrunner/markdex/internal/cache"
	"github.com/nikbrunner/markdex/internal/config"
)

func TestLoad_CreatesFileWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.CacheMaxSize != cache.DefaultMaxSize {
		t.Errorf("expected default max size %d, got %d", cache.DefaultMaxSize, cfg.CacheMaxSize)
	}
	if cfg.CacheTTL != 0 {
		t.Errorf("expected TTL 0 (never expire), got %d", cfg.CacheTTL)
	}

	// File should now exist with the defaults written
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file to be created: %v", err)
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"cacheTTL": 60000, "cacheMaxSize": 10, "searchLimit": 5}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.CacheTTL != 60000 {
		t.Errorf("expected TTL 60000, got %d", cfg.CacheTTL)
	}
	if cfg.CacheMaxSize != 10 {
		t.Errorf("expected max size 10, got %d", cfg.CacheMaxSize)
	}
	if cfg.SearchLimit != 5 {
		t.Errorf("expected search limit 5, got %d", cfg.SearchLimit)
	}
	// Missing field falls back to default
	if cfg.CompressionThreshold != cache.DefaultCompressionThreshold {
		t.Errorf("expected default compression threshold, got %d", cfg.CompressionThreshold)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("not json{"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := config.Load(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := config.Default()
	cfg.CacheTTL = 5000
	if err := config.Save(path, &cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.CacheTTL != 5000 {
		t.Errorf("expected TTL 5000 after round-trip, got %d", loaded.CacheTTL)
	}
}

func TestCacheConfig_Translation(t *testing.T) {
	cfg := config.Config{CacheTTL: 1000, CacheMaxSize: 7, CompressionThreshold: 2048}

	cc := cfg.CacheConfig()

	if cc.TTL.Milliseconds() != 1000 {
		t.Errorf("expected 1000ms TTL, got %v", cc.TTL)
	}
	if cc.MaxSize != 7 {
		t.Errorf("expected max size 7, got %d", cc.MaxSize)
	}
	if !cc.Compress || cc.CompressionThreshold != 2048 {
		t.Errorf("expected compression on at 2048, got %v/%d", cc.Compress, cc.CompressionThreshold)
	}
	if !cc.Preload {
		t.Error("expected preload enabled")
	}
}
