// Package cache provides a bounded, TTL- and version-aware snapshot cache
// layered over a pluggable key-value backend. Lookups promote entries in an
// LRU list; overflow evicts the least recently used entry. Backend failures
// never reach the caller: writes fall back to memory, reads degrade to
// misses.
package cache

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// CurrentVersion gates stored entries. Bumping it invalidates every
// previously persisted entry on the next load — an explicit migration gate,
// not an automatic upgrade.
const CurrentVersion = "2.0"

// Defaults applied by New for zero-valued config fields.
const (
	DefaultStorageKey           = "markdex:tree"
	DefaultMaxSize              = 100
	DefaultCompressionThreshold = 5120
)

// Entry wraps a cached payload with its validity metadata. This is the
// persisted JSON envelope.
type Entry struct {
	Payload     any    `json:"payload"`
	Timestamp   int64  `json:"timestamp"`
	Version     string `json:"version"`
	AccessCount int    `json:"accessCount,omitempty"`
	LastAccess  int64  `json:"lastAccess,omitempty"`
}

// Config holds cache tuning options. The zero value is usable; New fills in
// defaults.
type Config struct {
	// StorageKey is the default entry key and the prefix swept by ClearAll
	// and Cleanup.
	StorageKey string
	// TTL bounds entry age; zero or negative means entries never expire.
	TTL time.Duration
	// MaxSize bounds the in-memory LRU entry count.
	MaxSize int
	// Preload populates the LRU from the backend at construction.
	Preload bool
	// Compress enables the payload size gate below.
	Compress bool
	// CompressionThreshold is the serialized size in bytes above which
	// entries are compressed before the backend write.
	CompressionThreshold int
	// Version overrides CurrentVersion, mainly for migration tests.
	Version string
	// Marshal and Unmarshal override the JSON envelope codec.
	Marshal   func(v any) ([]byte, error)
	Unmarshal func(data []byte, v any) error
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Size        int     `json:"size"`
	MaxSize     int     `json:"maxSize"`
	Hits        int     `json:"hits"`
	Misses      int     `json:"misses"`
	HitRate     float64 `json:"hitRate"`
	MemoryUsage int     `json:"memoryUsage"`
}

// Cache is the LRU + backend snapshot store. A nil backend means
// memory-only operation.
type Cache struct {
	mu      sync.Mutex
	cfg     Config
	backend Backend
	lru     *lruList
	hits    int
	misses  int
}

// New creates a cache over the given backend. Pass a nil backend for
// memory-only operation.
func New(cfg Config, backend Backend) *Cache {
	if cfg.StorageKey == "" {
		cfg.StorageKey = DefaultStorageKey
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.CompressionThreshold <= 0 {
		cfg.CompressionThreshold = DefaultCompressionThreshold
	}
	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}
	if cfg.Marshal == nil {
		cfg.Marshal = func(v any) ([]byte, error) { return json.Marshal(v) }
	}
	if cfg.Unmarshal == nil {
		cfg.Unmarshal = json.Unmarshal
	}

	c := &Cache{
		cfg:     cfg,
		backend: backend,
		lru:     newLRUList(cfg.MaxSize),
	}
	if backend != nil && cfg.Preload {
		c.preload()
	}
	return c
}

func (c *Cache) key(key string) string {
	if key == "" {
		return c.cfg.StorageKey
	}
	return key
}

// Save stores a payload under key (or the configured storage key when key is
// empty). Save is best-effort: a failing backend write degrades to the
// in-memory LRU instead of returning an error.
func (c *Cache) Save(payload any, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := c.key(key)
	now := time.Now().UnixMilli()
	entry := &Entry{
		Payload:     payload,
		Timestamp:   now,
		Version:     c.cfg.Version,
		AccessCount: 1,
		LastAccess:  now,
	}

	if c.backend == nil {
		c.setInMemory(k, entry)
		return
	}

	raw, err := c.cfg.Marshal(entry)
	if err != nil {
		log.Printf("cache: serialize failed for %q, keeping in memory: %v", k, err)
		c.setInMemory(k, entry)
		return
	}

	value := string(raw)
	if c.cfg.Compress && len(value) > c.cfg.CompressionThreshold {
		compressed, err := compress(value)
		if err != nil {
			log.Printf("cache: compression failed for %q, storing uncompressed: %v", k, err)
		} else {
			value = compressed
		}
	}

	if err := c.backend.Set(k, value); err != nil {
		log.Printf("cache: backend write failed for %q, keeping in memory: %v", k, err)
		c.setInMemory(k, entry)
	}
}

// Load returns the payload stored under key, or ok=false for missing,
// expired, version-mismatched or unreadable entries. Errors never propagate;
// every failure mode is a miss.
func (c *Cache) Load(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := c.key(key)

	if c.backend == nil {
		return c.loadFromMemory(k)
	}

	raw, ok, err := c.backend.Get(k)
	if err != nil {
		log.Printf("cache: backend read failed for %q, trying memory: %v", k, err)
		return c.loadFromMemory(k)
	}
	if !ok {
		c.misses++
		return nil, false
	}

	entry, err := c.decodeEntry(raw)
	if err != nil {
		log.Printf("cache: discarding unreadable entry %q: %v", k, err)
		c.misses++
		return nil, false
	}
	if !c.isValid(entry) {
		c.misses++
		return nil, false
	}

	entry.AccessCount++
	entry.LastAccess = time.Now().UnixMilli()
	c.resave(k, entry)

	c.hits++
	return entry.Payload, true
}

// Has reports whether a valid entry exists under key. Counts as an access.
func (c *Cache) Has(key string) bool {
	_, ok := c.Load(key)
	return ok
}

// Clear removes one entry from both the LRU and the backend.
func (c *Cache) Clear(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := c.key(key)
	c.lru.delete(k)
	if c.backend != nil {
		if err := c.backend.Delete(k); err != nil {
			log.Printf("cache: backend delete failed for %q: %v", k, err)
		}
	}
}

// ClearAll empties the LRU and removes every backend key sharing the
// configured storage-key prefix.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.clear()
	if c.backend == nil {
		return
	}
	keys, err := c.backend.Keys(c.cfg.StorageKey)
	if err != nil {
		log.Printf("cache: backend key scan failed: %v", err)
		return
	}
	for _, k := range keys {
		if err := c.backend.Delete(k); err != nil {
			log.Printf("cache: backend delete failed for %q: %v", k, err)
		}
	}
}

// Cleanup sweeps the LRU and the backend, dropping entries that are expired,
// carry a stale version, or fail to parse. Returns the number of distinct
// keys removed; a key purged from both stores counts once.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := make(map[string]struct{})
	for _, k := range c.lru.keys() {
		entry, ok := c.lru.peek(k)
		if ok && !c.isValid(entry) {
			c.lru.delete(k)
			removed[k] = struct{}{}
		}
	}

	if c.backend == nil {
		return len(removed)
	}

	keys, err := c.backend.Keys(c.cfg.StorageKey)
	if err != nil {
		log.Printf("cache: backend key scan failed: %v", err)
		return len(removed)
	}
	for _, k := range keys {
		raw, ok, err := c.backend.Get(k)
		if err != nil || !ok {
			continue
		}
		entry, err := c.decodeEntry(raw)
		if err != nil || !c.isValid(entry) {
			if err := c.backend.Delete(k); err != nil {
				log.Printf("cache: backend delete failed for %q: %v", k, err)
				continue
			}
			removed[k] = struct{}{}
		}
	}
	return len(removed)
}

// GetStats returns current cache statistics.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	accesses := c.hits + c.misses
	hitRate := 0.0
	if accesses > 0 {
		hitRate = float64(c.hits) / float64(accesses)
	}
	return Stats{
		Size:        c.lru.len(),
		MaxSize:     c.cfg.MaxSize,
		Hits:        c.hits,
		Misses:      c.misses,
		HitRate:     hitRate,
		MemoryUsage: c.lru.memoryUsage(),
	}
}

// DecodePayload re-marshals a loaded payload into a typed value. Payloads
// round-trip through JSON, so Load hands back generic maps and slices; this
// recovers the concrete type.
func DecodePayload(payload any, v any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// setInMemory inserts into the LRU. Callers hold c.mu.
func (c *Cache) setInMemory(key string, entry *Entry) {
	size := 0
	if raw, err := c.cfg.Marshal(entry); err == nil {
		size = len(raw)
	}
	c.lru.set(key, entry, size)
}

// loadFromMemory looks up the LRU, validating and promoting on presence.
// Callers hold c.mu.
func (c *Cache) loadFromMemory(key string) (any, bool) {
	entry, ok := c.lru.get(key)
	if !ok {
		c.misses++
		return nil, false
	}
	if !c.isValid(entry) {
		c.lru.delete(key)
		c.misses++
		return nil, false
	}
	entry.AccessCount++
	entry.LastAccess = time.Now().UnixMilli()
	c.hits++
	return entry.Payload, true
}

// decodeEntry reverses compression and unmarshals the envelope.
func (c *Cache) decodeEntry(raw string) (*Entry, error) {
	plain, err := decompress(raw)
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := c.cfg.Unmarshal([]byte(plain), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// isValid checks the version gate and the TTL window.
func (c *Cache) isValid(entry *Entry) bool {
	if entry.Version != c.cfg.Version {
		return false
	}
	if c.cfg.TTL > 0 {
		age := time.Now().UnixMilli() - entry.Timestamp
		if age > c.cfg.TTL.Milliseconds() {
			return false
		}
	}
	return true
}

// resave writes updated access bookkeeping back to the backend, best effort.
// Callers hold c.mu.
func (c *Cache) resave(key string, entry *Entry) {
	raw, err := c.cfg.Marshal(entry)
	if err != nil {
		return
	}
	value := string(raw)
	if c.cfg.Compress && len(value) > c.cfg.CompressionThreshold {
		if compressed, err := compress(value); err == nil {
			value = compressed
		}
	}
	if err := c.backend.Set(key, value); err != nil {
		log.Printf("cache: bookkeeping write failed for %q: %v", key, err)
	}
}

// preload hydrates the LRU with every valid backend entry under the storage
// key prefix. Called from New; no lock needed yet.
func (c *Cache) preload() {
	keys, err := c.backend.Keys(c.cfg.StorageKey)
	if err != nil {
		log.Printf("cache: preload key scan failed: %v", err)
		return
	}
	for _, k := range keys {
		raw, ok, err := c.backend.Get(k)
		if err != nil || !ok {
			continue
		}
		entry, err := c.decodeEntry(raw)
		if err != nil || !c.isValid(entry) {
			continue
		}
		c.lru.set(k, entry, len(raw))
	}
}
