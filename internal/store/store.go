// Package store owns the journal aggregate and its durable storage.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/soulsync/internal/journal"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

// AppDataKey is the fixed key the aggregate is stored under.
const AppDataKey = "soulSyncAppData"

// SQLite persists the aggregate as one JSON document in an embedded database.
type SQLite struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*SQLite, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory database for testing.
func NewMemory() (*SQLite, error) {
	return New(":memory:")
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *SQLite) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// Load reads the stored aggregate. found is false on first launch.
func (s *SQLite) Load() (data journal.AppData, found bool, err error) {
	var raw string
	err = s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, AppDataKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return journal.AppData{}, false, nil
	}
	if err != nil {
		return journal.AppData{}, false, fmt.Errorf("load app data: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return journal.AppData{}, false, fmt.Errorf("decode app data: %w", err)
	}
	return data, true, nil
}

// Save writes the whole aggregate, replacing the previous document.
func (s *SQLite) Save(data journal.AppData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode app data: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		AppDataKey, string(raw), now,
	)
	if err != nil {
		return fmt.Errorf("save app data: %w", err)
	}
	return nil
}

// DefaultDBPath returns ~/.config/soulsync/soulsync.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "soulsync", "soulsync.db"), nil
}
