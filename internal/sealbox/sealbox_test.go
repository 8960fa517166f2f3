package sealbox

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if len(salt1) != saltSize {
		t.Errorf("salt length = %d, want %d", len(salt1), saltSize)
	}

	salt2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt 2: %v", err)
	}
	if bytes.Equal(salt1, salt2) {
		t.Error("two salts should not be equal")
	}
}

func TestDeriveKeyDeterminism(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("mypassphrase", salt)
	key2 := DeriveKey("mypassphrase", salt)

	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase+salt should produce same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}
	if bytes.Equal(key1, DeriveKey("other", salt)) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	box, err := New("device-passphrase", []byte("1234567890abcdef"))
	if err != nil {
		t.Fatalf("new box: %v", err)
	}

	token := []byte("eyJhbGciOiJIUzI1NiJ9.payload.sig")
	sealed, err := box.Seal(token, "auth_token")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, token) {
		t.Error("sealed value contains plaintext")
	}

	opened, err := box.Open(sealed, "auth_token")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(opened, token) {
		t.Errorf("opened = %q, want %q", opened, token)
	}
}

func TestOpenRejectsOtherKey(t *testing.T) {
	box, _ := New("device-passphrase", []byte("1234567890abcdef"))
	sealed, _ := box.Seal([]byte("secret"), "auth_token")

	if _, err := box.Open(sealed, "base_url"); err == nil {
		t.Error("expected error when opening under a different pref key")
	}

	other, _ := New("wrong-passphrase", []byte("1234567890abcdef"))
	if _, err := other.Open(sealed, "auth_token"); err == nil {
		t.Error("expected error with wrong passphrase")
	}
}

func TestOpenTampered(t *testing.T) {
	box, _ := New("device-passphrase", []byte("1234567890abcdef"))
	sealed, _ := box.Seal([]byte("secret"), "auth_token")
	sealed[nonceSize+1] ^= 0xFF

	if _, err := box.Open(sealed, "auth_token"); err == nil {
		t.Error("expected error with tampered ciphertext")
	}
}

func TestOpenTooSmall(t *testing.T) {
	box, _ := New("device-passphrase", []byte("1234567890abcdef"))
	if _, err := box.Open([]byte("short"), "auth_token"); !errors.Is(err, ErrSealedTooSmall) {
		t.Errorf("err = %v, want ErrSealedTooSmall", err)
	}
}

func TestNewRejectsEmptyPassphrase(t *testing.T) {
	if _, err := New("", []byte("1234567890abcdef")); err == nil {
		t.Error("expected error for empty passphrase")
	}
}

func TestLoadOrCreatePassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "device.key")

	first, err := LoadOrCreatePassphrase(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first == "" {
		t.Fatal("expected non-empty passphrase")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	second, err := LoadOrCreatePassphrase(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if first != second {
		t.Error("passphrase changed on reload")
	}
}
