package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/PolarWolf314/docuvault/internal/configs"
)

func TestWalletConnectStatusDisconnect(t *testing.T) {
	setupTestEnvironment(t, t.TempDir(), t.TempDir())

	output := runCLI(t, WalletCmd, "status")
	if !strings.Contains(output, "No wallet has been connected") {
		t.Errorf("Expected no wallet, got: %s", output)
	}

	output = runCLI(t, WalletCmd, "connect", "../escape")
	if !strings.Contains(output, "Invalid account") {
		t.Errorf("Expected invalid account message, got: %s", output)
	}

	output = runCLI(t, WalletCmd, "connect", "0xalice")
	if !strings.Contains(output, "Connected as") {
		t.Errorf("Expected connect success, got: %s", output)
	}

	runCLI(t, WalletCmd, "disconnect")
	output = runCLI(t, WalletCmd, "status")
	if !strings.Contains(output, "Disconnected") {
		t.Errorf("Expected disconnected status, got: %s", output)
	}

	output = runCLI(t, WalletCmd, "connect")
	if !strings.Contains(output, "0xalice") {
		t.Errorf("Expected reconnect to the last account, got: %s", output)
	}

	config, err := configs.LoadUserConfig()
	if err != nil {
		t.Fatalf("Failed to load user config: %v", err)
	}
	if !config.Wallet.Connected || config.Wallet.Account != "0xalice" {
		t.Errorf("Unexpected persisted wallet: %+v", config.Wallet)
	}
}

func TestConfigSetPolicyAndShow(t *testing.T) {
	newTestVault(t, testOwner)

	output := runCLI(t, ConfigCmd, "set-policy")
	if !strings.Contains(output, "Nothing to change") {
		t.Errorf("Expected nothing-to-change message, got: %s", output)
	}
	ResetConfigState()

	output = runCLI(t, ConfigCmd, "set-policy", "--max-violations", "0")
	if !strings.Contains(output, "must be positive") {
		t.Errorf("Expected validation error, got: %s", output)
	}
	ResetConfigState()

	output = runCLI(t, ConfigCmd, "set-policy", "--max-violations", "5", "--cool-down", "10s")
	if !strings.Contains(output, "Updated 2 setting(s)") {
		t.Errorf("Expected two settings updated, got: %s", output)
	}
	ResetConfigState()

	output = runCLI(t, ConfigCmd, "show", "--vault", "--json")
	var vc configs.VaultConfig
	if err := json.Unmarshal([]byte(output), &vc); err != nil {
		t.Fatalf("Failed to parse vault config JSON: %v\nOutput: %s", err, output)
	}
	if vc.Viewer.MaxViolations != 5 || vc.Viewer.CoolDownMS != 10000 {
		t.Errorf("Policy not saved: %+v", vc.Viewer)
	}
	if vc.Viewer.TerminationGraceMS != configs.DefaultTerminationGraceMS {
		t.Errorf("Unchanged setting was modified: %+v", vc.Viewer)
	}
	ResetConfigState()

	output = runCLI(t, ConfigCmd, "show")
	if !strings.Contains(output, testOwner) {
		t.Errorf("Expected wallet account in user config, got: %s", output)
	}
}
