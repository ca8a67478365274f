package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	verrors "github.com/securevault/securevault/internal/errors"
)

// SaveKeyFile writes the exported key to path with 0600 permissions.
// The write is atomic, so a crash never leaves a half-written key behind.
func SaveKeyFile(path string, key *SymmetricKey) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}

	if err := atomic.WriteFile(path, strings.NewReader(ExportKey(key)+"\n")); err != nil {
		return fmt.Errorf("failed to write key file %s: %w", path, err)
	}

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to restrict key file permissions: %w", err)
	}

	return nil
}

// LoadKeyFile reads a key written by SaveKeyFile.
func LoadKeyFile(path string) (*SymmetricKey, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from user configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", verrors.ErrKeyNotFound, path)
		}
		return nil, fmt.Errorf("failed to read key file %s: %w", path, err)
	}

	return ImportKey(strings.TrimSpace(string(data)))
}

// KeyFileExists reports whether a key file is present at path.
func KeyFileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
