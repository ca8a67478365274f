package vault

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/securevault/securevault/internal/configs"
)

const (
	manifestFile    = "manifest.toml"
	manifestVersion = 1
)

// Manifest is the persisted form of a Manager's folder tree.
type Manifest struct {
	Version     int      `toml:"version"`
	CurrentPath string   `toml:"current_path"`
	Folders     []Folder `toml:"folders"`
}

// ManifestPath returns the manifest location inside a store directory.
func ManifestPath(storeDir string) string {
	return filepath.Join(storeDir, manifestFile)
}

// LoadManifest reads the manifest of storeDir. A missing manifest yields an
// empty vault.
func LoadManifest(storeDir string) (Manifest, error) {
	path := ManifestPath(storeDir)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Manifest{Version: manifestVersion, CurrentPath: rootPath}, nil
	}

	var manifest Manifest
	if err := configs.LoadTOML(path, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("failed to load manifest: %w", err)
	}
	if manifest.Version > manifestVersion {
		return Manifest{}, fmt.Errorf("manifest version %d is newer than supported version %d",
			manifest.Version, manifestVersion)
	}

	return manifest, nil
}

// SaveManifest writes manifest to storeDir.
func SaveManifest(storeDir string, manifest Manifest) error {
	manifest.Version = manifestVersion
	if err := configs.SaveTOML(ManifestPath(storeDir), manifest); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	return nil
}
