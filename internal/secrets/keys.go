package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	verrors "github.com/securevault/securevault/internal/errors"
)

const (
	// KeySize is the length in bytes of a SymmetricKey (AES-256).
	KeySize = 32

	// IVSize is the length in bytes of the IV drawn for every encryption.
	IVSize = 12
)

// randReader is the source of key and IV randomness.
var randReader io.Reader = rand.Reader

// SymmetricKey is an AES-256 key usable for both encryption and decryption.
// The zero value is not usable; obtain keys from GenerateKey, ImportKey or
// DeriveKeyFromPassword.
type SymmetricKey struct {
	raw  [KeySize]byte
	aead cipher.AEAD
}

func newSymmetricKey(raw []byte) (*SymmetricKey, error) {
	if len(raw) != KeySize {
		return nil, fmt.Errorf("expected %d key bytes, got %d", KeySize, len(raw))
	}

	key := &SymmetricKey{}
	copy(key.raw[:], raw)

	block, err := aes.NewCipher(key.raw[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	key.aead = aead

	return key, nil
}

// GenerateKey produces a fresh random 256-bit key.
// A failing random source is returned as an error.
func GenerateKey() (*SymmetricKey, error) {
	raw := make([]byte, KeySize)
	if _, err := io.ReadFull(randReader, raw); err != nil {
		return nil, fmt.Errorf("failed to read secure randomness: %w", err)
	}
	return newSymmetricKey(raw)
}

// ExportKey encodes the raw key bytes as standard base64.
func ExportKey(key *SymmetricKey) string {
	if key == nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(key.raw[:])
}

// ImportKey is the inverse of ExportKey.
func ImportKey(encoded string) (*SymmetricKey, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", verrors.ErrDecoding, err)
	}

	key, err := newSymmetricKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", verrors.ErrDecoding, err)
	}

	return key, nil
}

// Equal reports whether both keys hold the same key material.
func (k *SymmetricKey) Equal(other *SymmetricKey) bool {
	if k == nil || other == nil {
		return k == other
	}
	return k.raw == other.raw
}

// usable reports whether the key was constructed by this package.
func (k *SymmetricKey) usable() bool {
	return k != nil && k.aead != nil
}
