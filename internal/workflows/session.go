package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/securevault/securevault/internal/audit"
	"github.com/securevault/securevault/internal/configs"
	verrors "github.com/securevault/securevault/internal/errors"
	"github.com/securevault/securevault/internal/secrets"
	"github.com/securevault/securevault/internal/vault"
)

// SessionOptions configures OpenSession.
type SessionOptions struct {
	// StorePath overrides the configured store directory.
	StorePath string
}

// Session is an open vault: configuration, the active key, the folder tree
// and the blob store it refers to.
type Session struct {
	Config    *configs.Config
	StorePath string
	Manager   *vault.Manager
	Store     *vault.DiskStore
	// KeyPath is the key file of this store.
	KeyPath string

	// Ephemeral is set when the key was generated for this run only.
	Ephemeral bool
	// KeyCreated is set when no key file existed and a new one was written.
	KeyCreated bool
}

// OpenSession loads the configuration, the session key and the manifest.
//
// With persist_key enabled the key is read from the key file; an empty vault
// without a key file gets a new key. A vault that already holds files but
// has no key file returns ErrKeyNotFound rather than silently switching keys.
// With persist_key disabled a fresh key is generated for every session.
func OpenSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	config, err := configs.LoadConfig()
	if err != nil {
		return nil, err
	}

	storePath := resolveStorePath(config, opts.StorePath)

	manifest, err := vault.LoadManifest(storePath)
	if err != nil {
		return nil, err
	}

	store, err := vault.NewDiskStore(storePath)
	if err != nil {
		return nil, err
	}

	session := &Session{
		Config:    config,
		StorePath: storePath,
		Store:     store,
		KeyPath:   config.KeyFilePath(storePath),
	}

	key, err := session.loadKey(manifest)
	if err != nil {
		return nil, err
	}

	sortConfig, err := vault.ParseSort(config.Display.Sort, config.Display.Direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", verrors.ErrInvalidConfig, err)
	}

	session.Manager = vault.NewManager(key, store,
		vault.WithConcurrency(config.Vault.UploadConcurrency),
		vault.WithSort(sortConfig),
		vault.WithViewMode(vault.ViewMode{Type: config.Display.View, ShowDetails: config.Display.ShowDetails}),
	)
	if err := session.Manager.Restore(manifest); err != nil {
		return nil, fmt.Errorf("failed to restore manifest: %w", err)
	}

	return session, nil
}

func (s *Session) loadKey(manifest vault.Manifest) (*secrets.SymmetricKey, error) {
	if !s.Config.Vault.PersistKey {
		s.Ephemeral = true
		return secrets.GenerateKey()
	}

	keyPath := s.KeyPath
	key, err := secrets.LoadKeyFile(keyPath)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, verrors.ErrKeyNotFound) || manifestHasFiles(manifest) {
		return nil, err
	}

	key, err = secrets.GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := secrets.SaveKeyFile(keyPath, key); err != nil {
		return nil, err
	}
	s.KeyCreated = true

	entry := audit.LogWithUser("keygen")
	entry.OutputPath = keyPath
	audit.Log(s.StorePath, entry)

	return key, nil
}

// resolveStorePath returns override when set, otherwise the configured store.
func resolveStorePath(config *configs.Config, override string) string {
	if override != "" {
		return override
	}
	return config.Vault.StorePath
}

func manifestHasFiles(manifest vault.Manifest) bool {
	for _, folder := range manifest.Folders {
		if len(folder.Files) > 0 {
			return true
		}
	}
	return false
}

// Save persists the folder tree.
func (s *Session) Save() error {
	return vault.SaveManifest(s.StorePath, s.Manager.Snapshot())
}

// resolveFile expands an id or id prefix that must name a file.
func (s *Session) resolveFile(id string) (vault.FileItem, error) {
	resolved, kind, err := s.Manager.ResolveID(id)
	if err != nil {
		if errors.Is(err, verrors.ErrItemNotFound) {
			return vault.FileItem{}, fmt.Errorf("%w: %s", verrors.ErrFileNotFound, id)
		}
		return vault.FileItem{}, err
	}
	if kind != vault.KindFile {
		return vault.FileItem{}, fmt.Errorf("%w: %s is a folder", verrors.ErrFileNotFound, id)
	}
	return s.Manager.File(resolved)
}
