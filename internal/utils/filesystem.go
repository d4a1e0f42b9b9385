package utils

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// VaultDirName is the per-project vault directory.
const VaultDirName = ".docuvault"

// FindVaultRoot traverses up directories to find the directory holding a
// .docuvault vault. Returns an empty string if none is found.
// Stops searching when it reaches the user's home directory.
func FindVaultRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	for {
		// Stop searching at one level above home directory
		if currentDir == path.Join(homeDir, "..") {
			return "", nil
		}

		vaultDir := filepath.Join(currentDir, VaultDirName)
		fileInfo, err := os.Stat(vaultDir)
		if err == nil {
			if fileInfo.IsDir() {
				return currentDir, nil
			}
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("error checking for %s directory at %s: %w", VaultDirName, currentDir, err)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", nil
		}
		currentDir = parentDir
	}
}
