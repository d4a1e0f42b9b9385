package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/PolarWolf314/docuvault/internal/configs"
	"github.com/PolarWolf314/docuvault/internal/ui"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	configShowVault bool
	configShowJSON  bool
)

func init() {
	configShowCmd.Flags().BoolVar(&configShowVault, "vault", false, "show vault configuration instead of user configuration")
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")
	ConfigCmd.AddCommand(configShowCmd)
}

// resetConfigShowState resets the config show command's global state for testing.
func resetConfigShowState() {
	configShowVault = false
	configShowJSON = false
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Displays the current docuvault configuration.

By default, shows the user configuration. Use --vault to show the
configuration of the enclosing vault from .docuvault/config.toml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ConfigLogger.Infof("Starting config show command")
		ConfigLogger.Debugf("Flags: vault=%t, json=%t", configShowVault, configShowJSON)

		if configShowVault {
			return showVaultConfig()
		}
		return showUserConfig()
	},
}

func showUserConfig() error {
	ConfigLogger.Debugf("Loading user config from %s", configs.UserDocuvaultSettings.UserConfigsPath)
	userConfig, err := configs.LoadUserConfig()
	if err != nil {
		return ConfigLogger.ErrorfAndReturn("Failed to load user config: %v", err)
	}

	if userConfig.User.UUID == "" && userConfig.Wallet.Account == "" {
		ConfigLogger.Infof("No user configuration found")
		if configShowJSON {
			fmt.Println("{}")
			return nil
		}
		fmt.Println(ui.Warning.Sprint("⚠") + " No user configuration found.")
		fmt.Println()
		fmt.Println(ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("docuvault wallet connect <account>") + " to get started")
		return nil
	}

	if configShowJSON {
		return outputConfigJSON(userConfig)
	}

	fmt.Println(ui.Info.Sprint("User Configuration") + " " + ui.Muted.Sprint(configs.UserDocuvaultSettings.UserConfigsPath))
	fmt.Println()
	fmt.Println(ui.Field("User ID", 9, ui.Highlight.Sprint(userConfig.User.UUID)))
	if userConfig.User.Name != "" {
		fmt.Println(ui.Field("Name", 9, userConfig.User.Name))
	}
	if w := userConfig.Wallet; w.Account != "" {
		state := "disconnected"
		if w.Connected {
			state = "connected " + humanize.Time(w.ConnectedAt)
		}
		fmt.Println(ui.Field("Wallet", 9, ui.Account.Sprint(w.Account)+" "+ui.Muted.Sprint(state)))
	}

	if len(userConfig.Vaults) > 0 {
		fmt.Println()
		fmt.Println(ui.Info.Sprint("Vaults:"))
		ids := make([]string, 0, len(userConfig.Vaults))
		for id := range userConfig.Vaults {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			short := id
			if len(id) > 8 {
				short = id[:8] + "..."
			}
			fmt.Printf("  %s → %s\n", ui.Highlight.Sprint(short), userConfig.Vaults[id])
		}
	}
	return nil
}

func showVaultConfig() error {
	if err := configs.InitVaultSettings(); err != nil {
		return ConfigLogger.ErrorfAndReturn("Failed to locate vault: %v", err)
	}
	if configs.VaultDocuvaultSettings.VaultPath == "" {
		ConfigLogger.Infof("Not in a vault directory")
		if configShowJSON {
			fmt.Println("{\"error\": \"not in a vault directory\"}")
			return nil
		}
		fmt.Println(ui.Error.Sprint("✗") + " Not in a docuvault vault")
		fmt.Println()
		fmt.Println(ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("docuvault vault init") + " to create one")
		return nil
	}

	vaultConfig, err := configs.LoadVaultConfig()
	if err != nil {
		return ConfigLogger.ErrorfAndReturn("Failed to load vault config: %v", err)
	}
	ConfigLogger.Infof("Vault config loaded (name: %s, UUID: %s)", vaultConfig.Vault.Name, vaultConfig.Vault.UUID)

	if configShowJSON {
		return outputConfigJSON(vaultConfig)
	}

	ms := func(n int) string { return (time.Duration(n) * time.Millisecond).String() }
	v, s := vaultConfig.Viewer, vaultConfig.Storage

	fmt.Println(ui.Info.Sprint("Vault Configuration") + " " + ui.Muted.Sprint(configs.VaultDocuvaultSettings.VaultDir))
	fmt.Println()
	fmt.Println(ui.Field("Name", 18, ui.Highlight.Sprint(vaultConfig.Vault.Name)))
	fmt.Println(ui.Field("Vault ID", 18, vaultConfig.Vault.UUID))
	fmt.Println(ui.Field("Created", 18, humanize.Time(vaultConfig.Vault.CreatedAt)))
	fmt.Println()
	fmt.Println(ui.Info.Sprint("Storage:"))
	fmt.Println(ui.Field("Blob path", 18, ui.Path.Sprint(s.ResolveBlobPath(configs.VaultDocuvaultSettings.VaultPath))))
	fmt.Println(ui.Field("Minimum free space", 18, fmt.Sprintf("%d GB", s.MinimumFreeSpaceGB)))
	fmt.Println(ui.Field("Retries", 18, fmt.Sprintf("%d every %s", s.RetryAttempts, ms(s.RetryBackoffMS))))
	fmt.Println()
	fmt.Println(ui.Info.Sprint("Viewer policy:"))
	fmt.Println(ui.Field("Cool-down", 18, ms(v.CoolDownMS)))
	fmt.Println(ui.Field("Termination grace", 18, ms(v.TerminationGraceMS)))
	fmt.Println(ui.Field("Max violations", 18, fmt.Sprint(v.MaxViolations)))
	fmt.Println(ui.Field("DevTools threshold", 18, fmt.Sprintf("%d px", v.DevToolsThreshold)))
	fmt.Println(ui.Field("Resize threshold", 18, fmt.Sprintf("%d cells", v.ResizeColumns)))
	return nil
}

func outputConfigJSON(config any) error {
	output, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return ConfigLogger.ErrorfAndReturn("Failed to marshal config to JSON: %v", err)
	}
	fmt.Println(string(output))
	return nil
}
