package configs

import (
	"log"
	"os"
	"path/filepath"

	"github.com/securevault/securevault/internal/utils"
)

// StoreEnvVar overrides the configured store path when set.
const StoreEnvVar = "SECUREVAULT_STORE"

type UserSettings struct {
	// DataPath holds the vault store and key file by default.
	DataPath string
	// ConfigPath holds config.toml.
	ConfigPath string
	Username   string
}

var UserVaultSettings *UserSettings

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("error getting home directory: %s", err)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatalf("error getting config directory: %s", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	username, err := utils.GetUsername()
	if err != nil {
		log.Fatalf("error getting username: %s", err)
	}

	UserVaultSettings = &UserSettings{
		DataPath:   filepath.Join(dataDir, "securevault"),
		ConfigPath: filepath.Join(configDir, "securevault"),
		Username:   username,
	}
}

// ConfigFilePath returns the location of config.toml.
func ConfigFilePath() string {
	return filepath.Join(UserVaultSettings.ConfigPath, "config.toml")
}
