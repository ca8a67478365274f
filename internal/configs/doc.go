// Package configs manages SecureVault configuration.
//
// Configuration is stored in TOML format at config.toml inside the user
// config directory (os.UserConfigDir()/securevault).
//
// # Vault Section
//
//   - store_path: directory with manifest.toml, blobs/ and audit.jsonl
//   - key_path: key file location, vault.key inside the store when unset
//   - persist_key: keep the session key between runs (default true)
//   - upload_concurrency: files encrypted in parallel (default 4)
//
// # Display Section
//
//   - sort: name, size, date or type
//   - direction: asc or desc
//   - view: grid or list
//   - show_details: include size and date columns
//
// # Settings
//
// UserVaultSettings is initialized at startup from XDG locations. The
// default data directory is $XDG_DATA_HOME/securevault, falling back to
// ~/.local/share/securevault. SECUREVAULT_STORE overrides the store path.
package configs
