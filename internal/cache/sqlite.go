package cache

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentSchemaVersion = 1

// SQLiteBackend is a durable Backend storing entries in a key-value table.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// NewSQLiteBackend opens (or creates) a SQLite-backed store at the given
// database path.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Set pragmas for performance
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	b := &SQLiteBackend{db: db, path: path}
	if err := b.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return b, nil
}

// Path returns the database file path.
func (b *SQLiteBackend) Path() string {
	return b.path
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// migrate runs database migrations.
func (b *SQLiteBackend) migrate() error {
	var version int
	err := b.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := b.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema.
func (b *SQLiteBackend) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS cache_entries (
			key TEXT PRIMARY KEY NOT NULL,
			value TEXT NOT NULL
		);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := b.db.Exec(schema)
	return err
}

func (b *SQLiteBackend) Get(key string) (string, bool, error) {
	var value string
	err := b.db.QueryRow("SELECT value FROM cache_entries WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (b *SQLiteBackend) Set(key, value string) error {
	_, err := b.db.Exec(`
		INSERT INTO cache_entries (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (b *SQLiteBackend) Delete(key string) error {
	_, err := b.db.Exec("DELETE FROM cache_entries WHERE key = ?", key)
	return err
}

func (b *SQLiteBackend) Keys(prefix string) ([]string, error) {
	rows, err := b.db.Query(
		"SELECT key FROM cache_entries WHERE key LIKE ? ORDER BY key",
		prefix+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// DefaultDatabasePath returns the default database path:
// ~/.config/markdex/markdex.db
func DefaultDatabasePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "markdex", "markdex.db"), nil
}

// OpenBackend opens the preferred durable backend. SQLite is preferred; on
// failure it falls back to a JSON file store next to the database path.
func OpenBackend() (Backend, error) {
	dbPath, err := DefaultDatabasePath()
	if err != nil {
		return nil, err
	}

	if b, err := NewSQLiteBackend(dbPath); err == nil {
		return b, nil
	}

	jsonPath := filepath.Join(filepath.Dir(dbPath), "cache.json")
	return NewFileBackend(jsonPath)
}
