package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/docuvault/internal/configs"
	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/utils"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	// Path is the directory to create the vault in. If empty, uses the
	// working directory.
	Path string

	// Name is the vault name. If empty, uses the directory name.
	Name string
}

// InitResult contains the outcome of an init operation.
type InitResult struct {
	// VaultName is the name of the initialized vault.
	VaultName string

	// VaultUUID is the unique identifier assigned to the vault.
	VaultUUID string

	// VaultPath is the directory holding .docuvault.
	VaultPath string

	// BlobPath is where ciphertext will be stored.
	BlobPath string
}

// Init creates a new vault.
//
// It creates the .docuvault directory with its documents and public_keys
// folders, writes the vault config, and remembers the vault in the user
// config. Keys are created separately with CreateKeys.
//
// Returns ErrVaultAlreadyInitialized if a .docuvault directory already exists.
func Init(ctx context.Context, opts InitOptions) (*InitResult, error) {
	root := opts.Path
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault path: %w", err)
	}

	vaultDir := filepath.Join(root, utils.VaultDirName)
	if _, err := os.Stat(vaultDir); err == nil {
		return nil, kerrors.ErrVaultAlreadyInitialized
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(root)
	}
	name = utils.SanitizeName(name)

	userConfig, err := configs.EnsureUserConfig()
	if err != nil {
		return nil, fmt.Errorf("ensuring user config: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			os.RemoveAll(vaultDir)
		}
	}()

	configs.SetVaultPath(root)
	settings := configs.VaultDocuvaultSettings
	for _, dir := range []string{settings.DocumentsPath, settings.PublicKeysPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	vaultConfig := configs.DefaultVaultConfig(name)
	if err := configs.SaveVaultConfig(vaultConfig); err != nil {
		return nil, fmt.Errorf("saving vault config: %w", err)
	}
	settings.VaultUUID = vaultConfig.Vault.UUID
	settings.VaultName = name

	userConfig.Vaults[vaultConfig.Vault.UUID] = name
	if err := configs.SaveUserConfig(userConfig); err != nil {
		return nil, fmt.Errorf("updating user config with vault: %w", err)
	}

	cleanupNeeded = false

	return &InitResult{
		VaultName: name,
		VaultUUID: vaultConfig.Vault.UUID,
		VaultPath: root,
		BlobPath:  vaultConfig.Storage.ResolveBlobPath(root),
	}, nil
}
