// Package session stores client-side settings that survive restarts: the
// configured endpoints and the generated pseudonymous display name. The
// backing store is a small SQLite key-value table.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get for keys that were never set.
var ErrNotFound = errors.New("setting not found")

// KeyUsername holds the generated pseudonymous display name.
const KeyUsername = "username"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// Store is a persistent key-value settings store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the settings database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating settings directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening settings database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing settings schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key, or ErrNotFound.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting setting %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting setting %s: %w", key, err)
	}
	return nil
}

// Username returns the stored display name, generating and persisting one
// on first use. Flags are submitted under this pseudonym rather than any
// real identity.
func (s *Store) Username() (string, error) {
	name, err := s.Get(KeyUsername)
	if err == nil {
		return name, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	name = GeneratePseudonym()
	if err := s.Set(KeyUsername, name); err != nil {
		return "", err
	}
	return name, nil
}

var adjectives = []string{
	"Curious", "Quiet", "Brave", "Swift", "Gentle", "Clever",
	"Patient", "Bright", "Wandering", "Careful", "Honest", "Keen",
}

var animals = []string{
	"Otter", "Badger", "Falcon", "Lynx", "Heron", "Marmot",
	"Raven", "Fox", "Seal", "Ibex", "Magpie", "Tortoise",
}

// GeneratePseudonym returns a readable random display name such as
// "CuriousOtter42".
func GeneratePseudonym() string {
	return fmt.Sprintf("%s%s%d",
		adjectives[rand.IntN(len(adjectives))],
		animals[rand.IntN(len(animals))],
		rand.IntN(90)+10)
}
