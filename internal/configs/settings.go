package configs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/docuvault/internal/utils"
)

type UserSettings struct {
	UserKeysPath    string
	UserConfigsPath string
	Username        string
}

type VaultSettings struct {
	VaultUUID string
	VaultName string
	// VaultPath is the directory containing .docuvault.
	VaultPath      string
	VaultDir       string
	PublicKeysPath string
	DocumentsPath  string
	LedgerPath     string
}

var (
	UserDocuvaultSettings  *UserSettings
	VaultDocuvaultSettings *VaultSettings
)

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

	// This is independent of what vault you are in, so it is ok to init here
	UserDocuvaultSettings = &UserSettings{
		UserKeysPath:    filepath.Join(dataDir, "docuvault", "keys"),
		UserConfigsPath: filepath.Join(configDir, "docuvault"),
		Username:        username,
	}
	VaultDocuvaultSettings = &VaultSettings{}
}

// InitVaultSettings locates the enclosing vault and fills
// VaultDocuvaultSettings. Outside a vault the paths stay empty.
func InitVaultSettings() error {
	vaultPath, err := utils.FindVaultRoot()
	if err != nil {
		return fmt.Errorf("error getting vault root: %w", err)
	}
	if vaultPath == "" {
		VaultDocuvaultSettings = &VaultSettings{}
		return nil
	}

	SetVaultPath(vaultPath)
	return nil
}

// SetVaultPath points VaultDocuvaultSettings at the vault rooted at
// vaultPath.
func SetVaultPath(vaultPath string) {
	vaultDir := filepath.Join(vaultPath, utils.VaultDirName)
	VaultDocuvaultSettings = &VaultSettings{
		VaultName:      filepath.Base(vaultPath),
		VaultPath:      vaultPath,
		VaultDir:       vaultDir,
		PublicKeysPath: filepath.Join(vaultDir, "public_keys"),
		DocumentsPath:  filepath.Join(vaultDir, "documents"),
		LedgerPath:     filepath.Join(vaultDir, "ledger.jsonl"),
	}
}

// UserKeyPath returns the private key path for account in the vault
// identified by vaultUUID.
func UserKeyPath(vaultUUID, account string) string {
	return filepath.Join(UserDocuvaultSettings.UserKeysPath, vaultUUID, account+".key")
}
