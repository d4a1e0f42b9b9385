package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func useTempUserConfig(t *testing.T) {
	t.Helper()
	old := UserDocuvaultSettings.UserConfigsPath
	UserDocuvaultSettings.UserConfigsPath = t.TempDir()
	t.Cleanup(func() { UserDocuvaultSettings.UserConfigsPath = old })
}

func useTempVault(t *testing.T) string {
	t.Helper()
	old := VaultDocuvaultSettings
	dir := t.TempDir()
	SetVaultPath(dir)
	t.Cleanup(func() { VaultDocuvaultSettings = old })
	return dir
}

func TestGenerateUUIDs(t *testing.T) {
	for name, gen := range map[string]func() string{
		"user":  GenerateUserUUID,
		"vault": GenerateVaultUUID,
	} {
		if id := gen(); len(id) != 36 {
			t.Errorf("Expected %s UUID length 36, got %q", name, id)
		}
	}
}

func TestSaveAndLoadUserConfig(t *testing.T) {
	useTempUserConfig(t)

	config := &UserConfig{
		User: User{UUID: "user-uuid-123", Name: "alice"},
		Wallet: Wallet{
			Account:     "0xabc",
			Connected:   true,
			ConnectedAt: time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC),
		},
		Vaults: map[string]string{"vault-uuid-1": "/srv/contracts"},
	}

	if err := SaveUserConfig(config); err != nil {
		t.Fatalf("SaveUserConfig failed: %v", err)
	}

	loaded, err := LoadUserConfig()
	if err != nil {
		t.Fatalf("LoadUserConfig failed: %v", err)
	}

	if loaded.User != config.User {
		t.Errorf("Expected user %+v, got %+v", config.User, loaded.User)
	}
	if loaded.Wallet.Account != "0xabc" || !loaded.Wallet.Connected {
		t.Errorf("Wallet not restored: %+v", loaded.Wallet)
	}
	if !loaded.Wallet.ConnectedAt.Equal(config.Wallet.ConnectedAt) {
		t.Errorf("Expected ConnectedAt %v, got %v", config.Wallet.ConnectedAt, loaded.Wallet.ConnectedAt)
	}
	if loaded.Vaults["vault-uuid-1"] != "/srv/contracts" {
		t.Errorf("Vaults not restored: %v", loaded.Vaults)
	}
}

func TestLoadUserConfigNonExistent(t *testing.T) {
	useTempUserConfig(t)

	config, err := LoadUserConfig()
	if err != nil {
		t.Fatalf("LoadUserConfig failed: %v", err)
	}
	if config.User.UUID != "" {
		t.Errorf("Expected empty UUID, got %q", config.User.UUID)
	}
	if config.Vaults == nil {
		t.Error("Expected initialised vault map")
	}
}

func TestEnsureUserConfigCreatesUUID(t *testing.T) {
	useTempUserConfig(t)

	config, err := EnsureUserConfig()
	if err != nil {
		t.Fatalf("EnsureUserConfig failed: %v", err)
	}
	if config.User.UUID == "" {
		t.Fatal("EnsureUserConfig did not generate UUID")
	}

	again, err := EnsureUserConfig()
	if err != nil {
		t.Fatalf("EnsureUserConfig failed: %v", err)
	}
	if again.User.UUID != config.User.UUID {
		t.Errorf("UUID changed: %q then %q", config.User.UUID, again.User.UUID)
	}
}

func TestSaveAndLoadVaultConfig(t *testing.T) {
	useTempVault(t)

	config := DefaultVaultConfig("contracts")
	config.Viewer.MaxViolations = 5
	config.Storage.BlobPath = "/mnt/blobs"

	if err := SaveVaultConfig(config); err != nil {
		t.Fatalf("SaveVaultConfig failed: %v", err)
	}

	loaded, err := LoadVaultConfig()
	if err != nil {
		t.Fatalf("LoadVaultConfig failed: %v", err)
	}

	if loaded.Vault.UUID != config.Vault.UUID || loaded.Vault.Name != "contracts" {
		t.Errorf("Vault identity not restored: %+v", loaded.Vault)
	}
	if loaded.Viewer.MaxViolations != 5 {
		t.Errorf("Expected MaxViolations 5, got %d", loaded.Viewer.MaxViolations)
	}
	if loaded.Viewer.CoolDownMS != DefaultCoolDownMS {
		t.Errorf("Expected default cool-down, got %d", loaded.Viewer.CoolDownMS)
	}
	if got := loaded.Storage.ResolveBlobPath("/ignored"); got != "/mnt/blobs" {
		t.Errorf("Absolute blob path changed: %s", got)
	}
}

func TestLoadVaultConfigFillsDefaults(t *testing.T) {
	dir := useTempVault(t)

	partial := "[vault]\nvault_uuid = \"v-1\"\nname = \"x\"\n\n[viewer]\nmax_violations = 2\n"
	if err := os.MkdirAll(VaultDocuvaultSettings.VaultDir, 0700); err != nil {
		t.Fatalf("Failed to create vault dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(VaultDocuvaultSettings.VaultDir, "config.toml"), []byte(partial), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadVaultConfig()
	if err != nil {
		t.Fatalf("LoadVaultConfig failed: %v", err)
	}

	if config.Viewer.MaxViolations != 2 {
		t.Errorf("Expected MaxViolations 2, got %d", config.Viewer.MaxViolations)
	}
	if config.Viewer.TerminationGraceMS != DefaultTerminationGraceMS {
		t.Errorf("Expected default grace, got %d", config.Viewer.TerminationGraceMS)
	}
	if got, want := config.Storage.ResolveBlobPath(dir), filepath.Join(dir, DefaultBlobPath); got != want {
		t.Errorf("Expected blob path %s, got %s", want, got)
	}
}

func TestLoadVaultConfigMalformed(t *testing.T) {
	useTempVault(t)

	if err := os.MkdirAll(VaultDocuvaultSettings.VaultDir, 0700); err != nil {
		t.Fatalf("Failed to create vault dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(VaultDocuvaultSettings.VaultDir, "config.toml"), []byte("[vault\n"), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := LoadVaultConfig(); err == nil {
		t.Fatal("Expected error when loading malformed config")
	}
}

func TestSetVaultPath(t *testing.T) {
	old := VaultDocuvaultSettings
	defer func() { VaultDocuvaultSettings = old }()

	SetVaultPath("/srv/contracts")
	s := VaultDocuvaultSettings

	if s.VaultName != "contracts" {
		t.Errorf("Expected name contracts, got %s", s.VaultName)
	}
	if s.PublicKeysPath != "/srv/contracts/.docuvault/public_keys" {
		t.Errorf("Unexpected public keys path %s", s.PublicKeysPath)
	}
	if s.LedgerPath != "/srv/contracts/.docuvault/ledger.jsonl" {
		t.Errorf("Unexpected ledger path %s", s.LedgerPath)
	}
}
