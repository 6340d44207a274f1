package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	sealedPrefix = "sb1:"
	nonceSize    = 24
)

// Sealer errors
var (
	ErrSealerKeyTooShort = errors.New("credentials key must be at least 32 characters")
	ErrSealedMalformed   = errors.New("sealed secret is malformed")
	ErrSealedTampered    = errors.New("sealed secret failed authentication")
)

// SecretboxSealer encrypts credential secrets with NaCl secretbox. Sealed
// values are "sb1:" followed by base64(nonce || box).
type SecretboxSealer struct {
	key [32]byte
}

// NewSecretboxSealer derives the box key from passphrase with SHA-256.
func NewSecretboxSealer(passphrase string) (*SecretboxSealer, error) {
	if len(passphrase) < 32 {
		return nil, ErrSealerKeyTooShort
	}
	return &SecretboxSealer{key: sha256.Sum256([]byte(passphrase))}, nil
}

// Seal encrypts plaintext. Empty strings stay empty so optional secrets remain unset.
func (s *SecretboxSealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return sealedPrefix + base64.StdEncoding.EncodeToString(box), nil
}

// Open decrypts a sealed value. Values without the sealed prefix are returned
// unchanged, which lets rows written before a key was configured keep working.
func (s *SecretboxSealer) Open(sealed string) (string, error) {
	if !strings.HasPrefix(sealed, sealedPrefix) {
		return sealed, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSealedMalformed, err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrSealedMalformed
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrSealedTampered
	}
	return string(plain), nil
}
