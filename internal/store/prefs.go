package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/maidmanager/internal/model"
)

type PrefsStore struct {
	db *sql.DB
}

func NewPrefsStore(db *sql.DB) *PrefsStore {
	return &PrefsStore{db: db}
}

// Get returns the preference stored under key, or nil if there is none.
func (s *PrefsStore) Get(key string) (*model.Pref, error) {
	var p model.Pref
	err := s.db.QueryRow(
		`SELECT key, value, sealed, updated_at FROM prefs WHERE key = ?`, key,
	).Scan(&p.Key, &p.Value, &p.Sealed, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pref %q: %w", key, err)
	}
	return &p, nil
}

func (s *PrefsStore) Set(key string, value []byte, sealed bool) error {
	_, err := s.db.Exec(
		`INSERT INTO prefs (key, value, sealed, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, sealed = excluded.sealed, updated_at = excluded.updated_at`,
		key, value, sealed, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set pref %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *PrefsStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM prefs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete pref %q: %w", key, err)
	}
	return nil
}

func (s *PrefsStore) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM prefs ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list prefs: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan pref: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// SealSalt returns the salt used to derive the sealing key, creating it
// with gen on first use.
func (s *PrefsStore) SealSalt(gen func() ([]byte, error)) ([]byte, error) {
	var salt []byte
	err := s.db.QueryRow(`SELECT salt FROM seal_params WHERE id = 1`).Scan(&salt)
	if err == nil {
		return salt, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("get seal salt: %w", err)
	}

	salt, err = gen()
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(`INSERT INTO seal_params (id, salt) VALUES (1, ?) ON CONFLICT(id) DO NOTHING`, salt); err != nil {
		return nil, fmt.Errorf("insert seal salt: %w", err)
	}
	// Re-read in case another writer won the insert.
	if err := s.db.QueryRow(`SELECT salt FROM seal_params WHERE id = 1`).Scan(&salt); err != nil {
		return nil, fmt.Errorf("reread seal salt: %w", err)
	}
	return salt, nil
}
