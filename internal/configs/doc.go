// Package configs manages user and vault configuration for docuvault.
//
// Configuration is stored in TOML format at two levels:
//
//   - User config: <config dir>/docuvault/config.toml (identity, wallet session)
//   - Vault config: .docuvault/config.toml (vault identity, storage, viewer policy)
//
// # User Configuration
//
// The user config stores a UUID generated on first use, the last wallet
// session (account, connected flag, time) and the vaults the user holds
// keys for.
//
// # Vault Configuration
//
// The vault config stores the vault name and UUID, blob store settings
// (path, minimum free space, retry policy) and the secure viewer policy
// (cool-down, termination grace, violation limit, detection thresholds).
// Missing values fall back to the defaults in this package.
//
// # Settings
//
// Global settings are initialized at startup:
//   - UserDocuvaultSettings: paths to user config and key directories
//   - VaultDocuvaultSettings: the current vault's paths
//
// Call InitVaultSettings() before accessing VaultDocuvaultSettings.
// It walks up the directory tree to find the nearest .docuvault directory.
package configs
