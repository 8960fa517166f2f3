package sealbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltSize  = 16
	nonceSize = 12
	keySize   = 32
	argonTime = 3
	argonMem  = 64 * 1024
	argonPar  = 4

	passphraseBytes = 32
)

var ErrSealedTooSmall = errors.New("sealed value too small")

// GenerateSalt returns 16 cryptographically random bytes.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives a 32-byte AES-256 key from a passphrase and salt using Argon2id.
func DeriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMem, argonPar, keySize)
}

// Box seals and opens small values with a fixed AES-256-GCM key.
type Box struct {
	aead cipher.AEAD
}

// New derives the key once; sealing and opening are cheap afterwards.
func New(passphrase string, salt []byte) (*Box, error) {
	if passphrase == "" {
		return nil, errors.New("empty passphrase")
	}
	block, err := aes.NewCipher(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return &Box{aead: gcm}, nil
}

// Seal encrypts plaintext. Output format: [12-byte nonce][ciphertext].
// The associated data binds the value to its preference key so a sealed
// value cannot be swapped under another key.
func (b *Box) Seal(plaintext []byte, associated string) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	out := make([]byte, 0, nonceSize+len(plaintext)+b.aead.Overhead())
	out = append(out, nonce...)
	return b.aead.Seal(out, nonce, plaintext, []byte(associated)), nil
}

func (b *Box) Open(sealed []byte, associated string) ([]byte, error) {
	if len(sealed) < nonceSize {
		return nil, ErrSealedTooSmall
	}
	plaintext, err := b.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], []byte(associated))
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

// LoadOrCreatePassphrase reads the device passphrase from path, generating
// a random one (mode 0600) on first use.
func LoadOrCreatePassphrase(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		p := strings.TrimSpace(string(data))
		if p == "" {
			return "", fmt.Errorf("passphrase file %s is empty", path)
		}
		return p, nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("read passphrase file: %w", err)
	}

	raw := make([]byte, passphraseBytes)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", fmt.Errorf("generate passphrase: %w", err)
	}
	p := base64.RawURLEncoding.EncodeToString(raw)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("create passphrase dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(p+"\n"), 0600); err != nil {
		return "", fmt.Errorf("write passphrase file: %w", err)
	}
	return p, nil
}
