package configs

import (
	"fmt"
	"os"
	"path/filepath"

	verrors "github.com/securevault/securevault/internal/errors"
)

const (
	DefaultUploadConcurrency = 4
	maxUploadConcurrency     = 64

	// KeyFileName is the key file kept inside a store when key_path is unset.
	KeyFileName = "vault.key"
)

type Config struct {
	Vault   VaultConfig   `toml:"vault"`
	Display DisplayConfig `toml:"display"`
}

type VaultConfig struct {
	// StorePath is the directory holding manifest.toml, blobs/ and audit.jsonl.
	StorePath string `toml:"store_path"`
	// KeyPath is the key file used when PersistKey is set. Empty means
	// vault.key inside the store, so each store keeps its own key.
	KeyPath string `toml:"key_path"`
	// PersistKey keeps the session key on disk between runs. When false every
	// run generates a fresh key and earlier files become undecryptable.
	PersistKey        bool `toml:"persist_key"`
	UploadConcurrency int  `toml:"upload_concurrency"`
}

type DisplayConfig struct {
	Sort        string `toml:"sort"`
	Direction   string `toml:"direction"`
	View        string `toml:"view"`
	ShowDetails bool   `toml:"show_details"`
}

// DefaultConfig returns the configuration used when no config.toml exists.
func DefaultConfig() *Config {
	return &Config{
		Vault: VaultConfig{
			StorePath:         filepath.Join(UserVaultSettings.DataPath, "store"),
			PersistKey:        true,
			UploadConcurrency: DefaultUploadConcurrency,
		},
		Display: DisplayConfig{
			Sort:        "name",
			Direction:   "asc",
			View:        "grid",
			ShowDetails: true,
		},
	}
}

// LoadConfig loads config.toml, filling unset fields with defaults and
// applying the SECUREVAULT_STORE override.
func LoadConfig() (*Config, error) {
	config := DefaultConfig()
	configPath := ConfigFilePath()

	if _, err := os.Stat(configPath); err == nil {
		if err := LoadTOML(configPath, config); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to check config file: %w", err)
	}

	if store := os.Getenv(StoreEnvVar); store != "" {
		config.Vault.StorePath = store
	}

	defaults := DefaultConfig()
	if config.Vault.StorePath == "" {
		config.Vault.StorePath = defaults.Vault.StorePath
	}
	if config.Vault.UploadConcurrency == 0 {
		config.Vault.UploadConcurrency = defaults.Vault.UploadConcurrency
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// KeyFilePath returns the key file for the store at storePath.
func (c *Config) KeyFilePath(storePath string) string {
	if c.Vault.KeyPath != "" {
		return c.Vault.KeyPath
	}
	return filepath.Join(storePath, KeyFileName)
}

// SaveConfig writes config.toml.
func SaveConfig(config *Config) error {
	if err := SaveTOML(ConfigFilePath(), config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Validate rejects values the vault does not understand.
func (c *Config) Validate() error {
	switch c.Display.Sort {
	case "name", "size", "date", "type":
	default:
		return fmt.Errorf("%w: unknown sort %q", verrors.ErrInvalidConfig, c.Display.Sort)
	}

	switch c.Display.Direction {
	case "asc", "desc":
	default:
		return fmt.Errorf("%w: unknown direction %q", verrors.ErrInvalidConfig, c.Display.Direction)
	}

	switch c.Display.View {
	case "grid", "list":
	default:
		return fmt.Errorf("%w: unknown view %q", verrors.ErrInvalidConfig, c.Display.View)
	}

	if c.Vault.UploadConcurrency < 1 || c.Vault.UploadConcurrency > maxUploadConcurrency {
		return fmt.Errorf("%w: upload_concurrency must be between 1 and %d, got %d",
			verrors.ErrInvalidConfig, maxUploadConcurrency, c.Vault.UploadConcurrency)
	}

	return nil
}
