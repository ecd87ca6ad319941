// Package localstate persists client-local editor state in SQLite: the
// autosave record and the executor session token. Nothing here is shared
// with other clients; the server-side document store is services/graphstore.
package localstate

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"nodeflow/services/graph"
)

// Fixed namespace keys in the kv table.
const (
	autosaveKey = "nodeflow.autosave"
	sessionKey  = "nodeflow.session"
)

// Store is the SQLite-backed client-local key/value store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the local state database and migrates its schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open local state: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate local state: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS kv (
		namespace  TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`)
	return err
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE namespace = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO kv (namespace, value) VALUES (?, ?)
		ON CONFLICT (namespace) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// autosaveRecord is the persisted autosave shape.
type autosaveRecord struct {
	Graph *graph.Document `json:"graph"`
	Name  string          `json:"name"`
}

// SaveAutosave writes the autosave record, replacing any previous one.
func (s *Store) SaveAutosave(doc *graph.Document, name string) error {
	data, err := json.Marshal(autosaveRecord{Graph: doc, Name: name})
	if err != nil {
		return fmt.Errorf("marshal autosave: %w", err)
	}
	if err := s.set(autosaveKey, string(data)); err != nil {
		return fmt.Errorf("write autosave: %w", err)
	}
	return nil
}

// LoadAutosave returns the stored autosave record, or nil when none exists.
func (s *Store) LoadAutosave() (*graph.Document, string, error) {
	value, ok, err := s.get(autosaveKey)
	if err != nil {
		return nil, "", fmt.Errorf("read autosave: %w", err)
	}
	if !ok {
		return nil, "", nil
	}

	var rec autosaveRecord
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		return nil, "", fmt.Errorf("unmarshal autosave: %w", err)
	}
	return rec.Graph, rec.Name, nil
}

// SessionToken returns the stored executor session token, empty when none.
// Satisfies execclient.TokenStore.
func (s *Store) SessionToken() (string, error) {
	value, _, err := s.get(sessionKey)
	if err != nil {
		return "", fmt.Errorf("read session token: %w", err)
	}
	return value, nil
}

// SetSessionToken replaces the stored session token. Tokens are only ever
// replaced whole, never merged.
func (s *Store) SetSessionToken(token string) error {
	if err := s.set(sessionKey, token); err != nil {
		return fmt.Errorf("write session token: %w", err)
	}
	return nil
}
