package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Backend is a string key-value store the cache persists entries through.
// Implementations must tolerate concurrent calls.
type Backend interface {
	// Get returns the raw value for key, with ok=false for absent keys.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	// Keys returns all stored keys with the given prefix.
	Keys(prefix string) ([]string, error)
	Close() error
}

// MemoryBackend is a map-backed Backend for tests and session-scoped use.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]string

	// FailWrites makes every Set return an error, for exercising the
	// cache's memory-fallback path in tests.
	FailWrites bool
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]string)}
}

var errWriteFailed = errors.New("cache: backend write failed")

func (m *MemoryBackend) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *MemoryBackend) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return errWriteFailed
	}
	m.entries[key] = value
	return nil
}

func (m *MemoryBackend) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryBackend) Keys(prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *MemoryBackend) Close() error { return nil }

// Len returns the number of stored entries.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// FileBackend persists entries as a single JSON object in a file. The whole
// map is rewritten on every mutation, which is fine at bookmark-store scale.
type FileBackend struct {
	mu      sync.Mutex
	path    string
	entries map[string]string
}

// NewFileBackend opens (or creates) a JSON file backend at path.
func NewFileBackend(path string) (*FileBackend, error) {
	b := &FileBackend{path: path, entries: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return b, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &b.entries); err != nil {
		// Corrupt file: start fresh rather than failing open.
		b.entries = make(map[string]string)
	}
	return b, nil
}

// Path returns the backing file path.
func (f *FileBackend) Path() string { return f.path }

func (f *FileBackend) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[key]
	return v, ok, nil
}

func (f *FileBackend) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	return f.flush()
}

func (f *FileBackend) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return f.flush()
}

func (f *FileBackend) Keys(prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *FileBackend) Close() error { return nil }

// flush writes the full map to disk. Callers hold f.mu.
func (f *FileBackend) flush() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(f.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0644)
}
