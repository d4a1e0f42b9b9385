package cmd

import (
	"fmt"
	"time"

	"github.com/PolarWolf314/docuvault/internal/configs"
	"github.com/PolarWolf314/docuvault/internal/ui"
	"github.com/spf13/cobra"
)

var (
	policyCoolDown         time.Duration
	policyTerminationGrace time.Duration
	policyMaxViolations    int
	policyDevTools         int
	policyResizeColumns    int
	policyRetryAttempts    int
	policyMinFreeSpaceGB   int
)

func init() {
	setPolicyCmd.Flags().DurationVar(&policyCoolDown, "cool-down", 0, "how long content stays blurred after a violation")
	setPolicyCmd.Flags().DurationVar(&policyTerminationGrace, "termination-grace", 0, "how long the final warning shows before the session ends")
	setPolicyCmd.Flags().IntVar(&policyMaxViolations, "max-violations", 0, "violations that end a session")
	setPolicyCmd.Flags().IntVar(&policyDevTools, "devtools-threshold", 0, "viewport shrink in pixels treated as an inspection pane")
	setPolicyCmd.Flags().IntVar(&policyResizeColumns, "resize-columns", 0, "terminal shrink in cells treated as an inspection pane")
	setPolicyCmd.Flags().IntVar(&policyRetryAttempts, "retry-attempts", 0, "blob store retry attempts")
	setPolicyCmd.Flags().IntVar(&policyMinFreeSpaceGB, "min-free-space", 0, "refuse uploads below this many GB free")
	ConfigCmd.AddCommand(setPolicyCmd)
}

func resetSetPolicyState() {
	policyCoolDown = 0
	policyTerminationGrace = 0
	policyMaxViolations = 0
	policyDevTools = 0
	policyResizeColumns = 0
	policyRetryAttempts = 0
	policyMinFreeSpaceGB = 0
}

var setPolicyCmd = &cobra.Command{
	Use:   "set-policy",
	Short: "Tunes the vault's viewer and storage settings",
	Long: `Updates .docuvault/config.toml in the enclosing vault. Only the flags you
pass are changed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ConfigLogger.Infof("Starting set-policy command")
		spinner, cleanup := startSpinnerWithFlags("Updating vault policy...", configVerbose, configDebug)
		defer cleanup()

		if err := configs.InitVaultSettings(); err != nil {
			return ConfigLogger.ErrorfAndReturn("Failed to locate vault: %v", err)
		}
		if configs.VaultDocuvaultSettings.VaultPath == "" {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " Not in a docuvault vault\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("docuvault vault init") + " first"
			return nil
		}

		vc, err := configs.LoadVaultConfig()
		if err != nil {
			return ConfigLogger.ErrorfAndReturn("Failed to load vault config: %v", err)
		}

		flags := cmd.Flags()
		changed := 0
		positive := func(name string, value int, dst *int) error {
			if !flags.Changed(name) {
				return nil
			}
			if value <= 0 {
				return fmt.Errorf("--%s must be positive", name)
			}
			*dst = value
			changed++
			return nil
		}
		steps := []error{
			positive("cool-down", int(policyCoolDown/time.Millisecond), &vc.Viewer.CoolDownMS),
			positive("termination-grace", int(policyTerminationGrace/time.Millisecond), &vc.Viewer.TerminationGraceMS),
			positive("max-violations", policyMaxViolations, &vc.Viewer.MaxViolations),
			positive("devtools-threshold", policyDevTools, &vc.Viewer.DevToolsThreshold),
			positive("resize-columns", policyResizeColumns, &vc.Viewer.ResizeColumns),
			positive("retry-attempts", policyRetryAttempts, &vc.Storage.RetryAttempts),
		}
		for _, err := range steps {
			if err != nil {
				spinner.FinalMSG = ui.Error.Sprint("✗") + " " + err.Error()
				return nil
			}
		}
		if flags.Changed("min-free-space") {
			if policyMinFreeSpaceGB < 0 {
				spinner.FinalMSG = ui.Error.Sprint("✗") + " --min-free-space cannot be negative"
				return nil
			}
			vc.Storage.MinimumFreeSpaceGB = policyMinFreeSpaceGB
			changed++
		}

		if changed == 0 {
			spinner.FinalMSG = ui.Warning.Sprint("⚠") + " Nothing to change\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("docuvault config set-policy --help") + " to see the available settings"
			return nil
		}

		if err := configs.SaveVaultConfig(vc); err != nil {
			return ConfigLogger.ErrorfAndReturn("Failed to save vault config: %v", err)
		}
		ConfigLogger.Infof("Updated %d setting(s)", changed)
		spinner.FinalMSG = ui.Success.Sprint("✓") + fmt.Sprintf(" Updated %d setting(s) for vault ", changed) +
			ui.Highlight.Sprint(vc.Vault.Name)
		return nil
	},
}
