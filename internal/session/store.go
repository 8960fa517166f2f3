package session

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukerupert/maidmanager/internal/sealbox"
	"github.com/dukerupert/maidmanager/internal/store"
)

const authTokenKey = "auth_token"

// Store persists the bearer credential across restarts, sealed with a key
// derived from the device passphrase.
type Store struct {
	prefs  *store.PrefsStore
	box    *sealbox.Box
	logger *slog.Logger
}

// NewStore derives the sealing key from passphrase and the database's salt.
func NewStore(db *sql.DB, passphrase string, logger *slog.Logger) (*Store, error) {
	prefs := store.NewPrefsStore(db)
	salt, err := prefs.SealSalt(sealbox.GenerateSalt)
	if err != nil {
		return nil, fmt.Errorf("seal salt: %w", err)
	}
	box, err := sealbox.New(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("seal box: %w", err)
	}
	return &Store{prefs: prefs, box: box, logger: logger}, nil
}

func (s *Store) SaveToken(token string) error {
	sealed, err := s.box.Seal([]byte(token), authTokenKey)
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	if err := s.prefs.Set(authTokenKey, sealed, true); err != nil {
		return err
	}
	s.logger.Debug("auth token saved")
	return nil
}

// FetchToken returns the stored token and whether one was present. A value
// that no longer opens (passphrase rotated, file tampered) is discarded and
// reported as absent.
func (s *Store) FetchToken() (string, bool, error) {
	p, err := s.prefs.Get(authTokenKey)
	if err != nil {
		return "", false, err
	}
	if p == nil {
		return "", false, nil
	}

	value := p.Value
	if p.Sealed {
		value, err = s.box.Open(p.Value, authTokenKey)
		if err != nil {
			s.logger.Warn("discarding unreadable auth token", "error", err)
			if derr := s.prefs.Delete(authTokenKey); derr != nil {
				return "", false, derr
			}
			return "", false, nil
		}
	}
	if len(value) == 0 {
		return "", false, nil
	}
	return string(value), true, nil
}

func (s *Store) ClearToken() error {
	if err := s.prefs.Delete(authTokenKey); err != nil {
		return err
	}
	s.logger.Debug("auth token cleared")
	return nil
}
