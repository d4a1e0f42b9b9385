package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

type UserConfig struct {
	User   User              `toml:"user"`
	Wallet Wallet            `toml:"wallet"`
	Vaults map[string]string `toml:"vaults"` // Vault UUID -> vault path.
}

type User struct {
	UUID string `toml:"user_uuid"`
	Name string `toml:"name"`
}

// Wallet is the persisted wallet session.
type Wallet struct {
	Account     string    `toml:"account"`
	Connected   bool      `toml:"connected"`
	ConnectedAt time.Time `toml:"connected_at"`
}

type VaultConfig struct {
	Vault   Vault        `toml:"vault"`
	Storage Storage      `toml:"storage"`
	Viewer  ViewerConfig `toml:"viewer"`
}

type Vault struct {
	UUID      string    `toml:"vault_uuid"`
	Name      string    `toml:"name"`
	CreatedAt time.Time `toml:"created_at"`
}

// Storage configures the blob store.
type Storage struct {
	// BlobPath is relative to the vault root unless absolute.
	BlobPath           string `toml:"blob_path"`
	MinimumFreeSpaceGB int    `toml:"minimum_free_space_gb"`
	RetryAttempts      int    `toml:"retry_attempts"`
	RetryBackoffMS     int    `toml:"retry_backoff_ms"`
}

// ViewerConfig configures the secure viewer lockout policy.
type ViewerConfig struct {
	CoolDownMS         int `toml:"cool_down_ms"`
	TerminationGraceMS int `toml:"termination_grace_ms"`
	MaxViolations      int `toml:"max_violations"`
	DevToolsThreshold  int `toml:"devtools_threshold"`
	// ResizeColumns is the terminal shrink, in columns or rows, treated as
	// an inspection pane opening.
	ResizeColumns int `toml:"resize_columns"`
}

// Default configuration values.
const (
	DefaultBlobPath           = ".docuvault/blobs"
	DefaultRetryAttempts      = 3
	DefaultRetryBackoffMS     = 200
	DefaultCoolDownMS         = 3000
	DefaultTerminationGraceMS = 5000
	DefaultMaxViolations      = 3
	DefaultDevToolsThreshold  = 160
	DefaultResizeColumns      = 20
)

// DefaultVaultConfig returns a fresh vault config named name.
func DefaultVaultConfig(name string) *VaultConfig {
	vc := &VaultConfig{
		Vault: Vault{
			UUID:      GenerateVaultUUID(),
			Name:      name,
			CreatedAt: time.Now().UTC(),
		},
	}
	vc.ApplyDefaults()
	return vc
}

// ApplyDefaults fills unset storage and viewer values.
func (vc *VaultConfig) ApplyDefaults() {
	s := &vc.Storage
	if s.BlobPath == "" {
		s.BlobPath = DefaultBlobPath
	}
	if s.RetryAttempts <= 0 {
		s.RetryAttempts = DefaultRetryAttempts
	}
	if s.RetryBackoffMS <= 0 {
		s.RetryBackoffMS = DefaultRetryBackoffMS
	}

	v := &vc.Viewer
	if v.CoolDownMS <= 0 {
		v.CoolDownMS = DefaultCoolDownMS
	}
	if v.TerminationGraceMS <= 0 {
		v.TerminationGraceMS = DefaultTerminationGraceMS
	}
	if v.MaxViolations <= 0 {
		v.MaxViolations = DefaultMaxViolations
	}
	if v.DevToolsThreshold <= 0 {
		v.DevToolsThreshold = DefaultDevToolsThreshold
	}
	if v.ResizeColumns <= 0 {
		v.ResizeColumns = DefaultResizeColumns
	}
}

// ResolveBlobPath returns the absolute blob store path for a vault rooted
// at vaultPath.
func (s Storage) ResolveBlobPath(vaultPath string) string {
	if filepath.IsAbs(s.BlobPath) {
		return s.BlobPath
	}
	return filepath.Join(vaultPath, s.BlobPath)
}

// LoadUserConfig loads the user configuration from the config file.
func LoadUserConfig() (*UserConfig, error) {
	configPath := filepath.Join(UserDocuvaultSettings.UserConfigsPath, "config.toml")

	config := &UserConfig{
		Vaults: make(map[string]string),
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	if config.Vaults == nil {
		config.Vaults = make(map[string]string)
	}

	return config, nil
}

// SaveUserConfig saves the user configuration to the config file.
func SaveUserConfig(config *UserConfig) error {
	configPath := filepath.Join(UserDocuvaultSettings.UserConfigsPath, "config.toml")

	if err := SaveTOML(configPath, config); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}

	return nil
}

// GenerateUserUUID generates a new UUID for the user.
func GenerateUserUUID() string {
	return uuid.New().String()
}

// EnsureUserConfig ensures the user configuration exists and has a UUID.
func EnsureUserConfig() (*UserConfig, error) {
	config, err := LoadUserConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if config.User.UUID == "" {
		config.User.UUID = GenerateUserUUID()
		if err := SaveUserConfig(config); err != nil {
			return nil, fmt.Errorf("failed to save user config: %w", err)
		}
	}

	return config, nil
}

// LoadVaultConfig loads the vault configuration, with defaults applied.
// Note: Caller should ensure InitVaultSettings is called before calling this function.
func LoadVaultConfig() (*VaultConfig, error) {
	configPath := filepath.Join(VaultDocuvaultSettings.VaultDir, "config.toml")

	config := &VaultConfig{}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config.ApplyDefaults()
		return config, nil
	}

	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load vault config: %w", err)
	}
	config.ApplyDefaults()

	return config, nil
}

// SaveVaultConfig saves the vault configuration.
// Note: Caller should ensure InitVaultSettings is called before calling this function.
func SaveVaultConfig(config *VaultConfig) error {
	configPath := filepath.Join(VaultDocuvaultSettings.VaultDir, "config.toml")

	if err := SaveTOML(configPath, config); err != nil {
		return fmt.Errorf("failed to save vault config: %w", err)
	}

	return nil
}

// GenerateVaultUUID generates a new UUID for a vault.
func GenerateVaultUUID() string {
	return uuid.New().String()
}
