package secrets

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/google/tink/go/kwp/subtle"
	"golang.org/x/crypto/pbkdf2"

	verrors "github.com/securevault/securevault/internal/errors"
)

const (
	// SaltSize is the length in bytes of a key derivation salt.
	SaltSize = 16

	// PBKDF2Iterations is the work factor for password key derivation.
	PBKDF2Iterations = 100000

	wrappedKeyPrefix = "kwp:"
)

// GenerateSalt returns SaltSize random bytes for DeriveKeyFromPassword.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(randReader, salt); err != nil {
		return nil, fmt.Errorf("failed to read secure randomness: %w", err)
	}
	return salt, nil
}

// DeriveKeyFromPassword stretches password with PBKDF2-HMAC-SHA256.
func DeriveKeyFromPassword(password string, salt []byte) (*SymmetricKey, error) {
	if password == "" || len(salt) == 0 {
		return nil, verrors.ErrInvalidPassword
	}
	raw := pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, KeySize, sha256.New)
	return newSymmetricKey(raw)
}

// WrapKey protects key with a password. The result is "kwp:" followed by
// base64(salt || AES-KWP(raw key)).
func WrapKey(key *SymmetricKey, password string) (string, error) {
	if key == nil {
		return "", fmt.Errorf("%w: no key to wrap", verrors.ErrEncryptFailed)
	}

	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}

	kek, err := DeriveKeyFromPassword(password, salt)
	if err != nil {
		return "", err
	}

	kwp, err := subtle.NewKWP(kek.raw[:])
	if err != nil {
		return "", fmt.Errorf("%w: %v", verrors.ErrEncryptFailed, err)
	}

	wrapped, err := kwp.Wrap(key.raw[:])
	if err != nil {
		return "", fmt.Errorf("%w: %v", verrors.ErrEncryptFailed, err)
	}

	return wrappedKeyPrefix + base64.StdEncoding.EncodeToString(append(salt, wrapped...)), nil
}

// UnwrapKey reverses WrapKey. A wrong password fails the KWP integrity check
// and is reported as ErrAuthentication.
func UnwrapKey(wrapped string, password string) (*SymmetricKey, error) {
	if !IsWrappedKey(wrapped) {
		return nil, fmt.Errorf("%w: missing %q prefix", verrors.ErrDecoding, wrappedKeyPrefix)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(wrapped, wrappedKeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", verrors.ErrDecoding, err)
	}
	if len(data) <= SaltSize {
		return nil, fmt.Errorf("%w: wrapped key is too short", verrors.ErrDecoding)
	}

	kek, err := DeriveKeyFromPassword(password, data[:SaltSize])
	if err != nil {
		return nil, err
	}

	kwp, err := subtle.NewKWP(kek.raw[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", verrors.ErrDecryptFailed, err)
	}

	raw, err := kwp.Unwrap(data[SaltSize:])
	if err != nil {
		return nil, verrors.ErrAuthentication
	}

	key, err := newSymmetricKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", verrors.ErrDecoding, err)
	}
	return key, nil
}

// IsWrappedKey reports whether s looks like the output of WrapKey.
func IsWrappedKey(s string) bool {
	return strings.HasPrefix(s, wrappedKeyPrefix)
}
