package workflows

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/securevault/securevault/internal/audit"
	"github.com/securevault/securevault/internal/configs"
	verrors "github.com/securevault/securevault/internal/errors"
	"github.com/securevault/securevault/internal/secrets"
)

// KeyGenerateOptions configures the key generation workflow.
type KeyGenerateOptions struct {
	// Force replaces an existing key. Files encrypted under the old key can
	// no longer be decrypted afterwards.
	Force bool

	// StorePath overrides the configured store directory.
	StorePath string
}

// KeyGenerateResult contains the outcome of key generation.
type KeyGenerateResult struct {
	KeyPath  string
	Replaced bool
}

// KeyGenerate creates a new vault key and writes it to the key file.
//
// Returns ErrKeyExists if a key file exists and Force is not set.
func KeyGenerate(ctx context.Context, opts KeyGenerateOptions) (*KeyGenerateResult, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, err
	}
	storePath := resolveStorePath(config, opts.StorePath)
	keyPath := config.KeyFilePath(storePath)

	exists := secrets.KeyFileExists(keyPath)
	if exists && !opts.Force {
		return nil, fmt.Errorf("%w: %s", verrors.ErrKeyExists, keyPath)
	}

	key, err := secrets.GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := secrets.SaveKeyFile(keyPath, key); err != nil {
		return nil, err
	}

	auditEntry := audit.LogWithUser("keygen")
	auditEntry.OutputPath = keyPath
	audit.Log(storePath, auditEntry)

	return &KeyGenerateResult{KeyPath: keyPath, Replaced: exists}, nil
}

// KeyExportOptions configures the key export workflow.
type KeyExportOptions struct {
	// Password wraps the exported key when set; otherwise the raw key is
	// exported as base64.
	Password string

	// OutputPath writes the export to a file instead of returning it only.
	OutputPath string

	// StorePath overrides the configured store directory.
	StorePath string
}

// KeyExportResult contains the exported key.
type KeyExportResult struct {
	Key        string
	Wrapped    bool
	OutputPath string
}

// KeyExport exports the vault key for backup or transfer.
//
// Returns ErrKeyNotFound if no key file exists.
func KeyExport(ctx context.Context, opts KeyExportOptions) (*KeyExportResult, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, err
	}

	storePath := resolveStorePath(config, opts.StorePath)
	key, err := secrets.LoadKeyFile(config.KeyFilePath(storePath))
	if err != nil {
		return nil, err
	}

	result := &KeyExportResult{}
	if opts.Password != "" {
		result.Key, err = secrets.WrapKey(key, opts.Password)
		if err != nil {
			return nil, err
		}
		result.Wrapped = true
	} else {
		result.Key = secrets.ExportKey(key)
	}

	if opts.OutputPath != "" {
		absPath, err := filepath.Abs(opts.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", opts.OutputPath, err)
		}
		if err := writePrivateFile(absPath, []byte(result.Key+"\n")); err != nil {
			return nil, err
		}
		result.OutputPath = absPath
	}

	auditEntry := audit.LogWithUser("key-export")
	auditEntry.OutputPath = result.OutputPath
	auditEntry.Wrapped = result.Wrapped
	audit.Log(storePath, auditEntry)

	return result, nil
}

// KeyImportOptions configures the key import workflow.
type KeyImportOptions struct {
	// Data is an exported key, raw or password-wrapped.
	Data string

	// Password unwraps a wrapped key.
	Password string

	// Force replaces an existing key file.
	Force bool

	// StorePath overrides the configured store directory.
	StorePath string
}

// KeyImportResult contains the outcome of a key import.
type KeyImportResult struct {
	KeyPath  string
	Wrapped  bool
	Replaced bool
}

// KeyImport installs an exported key as the vault key.
//
// Returns ErrDecoding if the data is not a valid exported key.
// Returns ErrInvalidPassword if the key is wrapped and no password is given.
// Returns ErrAuthentication if the password is wrong.
// Returns ErrKeyExists if a key file exists and Force is not set.
func KeyImport(ctx context.Context, opts KeyImportOptions) (*KeyImportResult, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, err
	}
	storePath := resolveStorePath(config, opts.StorePath)
	keyPath := config.KeyFilePath(storePath)

	data := strings.TrimSpace(opts.Data)
	wrapped := secrets.IsWrappedKey(data)

	var key *secrets.SymmetricKey
	if wrapped {
		if opts.Password == "" {
			return nil, fmt.Errorf("%w: the key is password protected", verrors.ErrInvalidPassword)
		}
		key, err = secrets.UnwrapKey(data, opts.Password)
	} else {
		key, err = secrets.ImportKey(data)
	}
	if err != nil {
		return nil, err
	}

	exists := secrets.KeyFileExists(keyPath)
	if exists && !opts.Force {
		current, err := secrets.LoadKeyFile(keyPath)
		if err == nil && current.Equal(key) {
			return &KeyImportResult{KeyPath: keyPath, Wrapped: wrapped}, nil
		}
		return nil, fmt.Errorf("%w: %s", verrors.ErrKeyExists, keyPath)
	}

	if err := secrets.SaveKeyFile(keyPath, key); err != nil {
		return nil, err
	}

	auditEntry := audit.LogWithUser("key-import")
	auditEntry.Wrapped = wrapped
	audit.Log(storePath, auditEntry)

	return &KeyImportResult{KeyPath: keyPath, Wrapped: wrapped, Replaced: exists}, nil
}
