package cmd

import (
	logger "github.com/PolarWolf314/docuvault/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configVerbose bool
	configDebug   bool
	ConfigLogger  logger.Logger

	// ConfigCmd is the top-level config command.
	ConfigCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage docuvault configuration",
		Long: `Provides commands for reading user and vault configuration and for
tuning the secure viewer's lockout policy.

Examples:
  # Show user configuration
  docuvault config show

  # Show the current vault's configuration
  docuvault config show --vault

  # End sessions after five violations with a ten second cool-down
  docuvault config set-policy --max-violations 5 --cool-down 10s`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ConfigLogger = logger.Logger{
				Verbose: configVerbose,
				Debug:   configDebug,
			}
			ConfigLogger.Debugf("Initializing config command with verbose=%t, debug=%t", configVerbose, configDebug)
		},
	}
)

func init() {
	ConfigCmd.PersistentFlags().BoolVarP(&configVerbose, "verbose", "v", false, "enable verbose output")
	ConfigCmd.PersistentFlags().BoolVarP(&configDebug, "debug", "d", false, "enable debug output")
}

// ResetConfigState resets all config command global variables to their default values for testing.
func ResetConfigState() {
	configVerbose = false
	configDebug = false
	resetConfigShowState()
	resetSetPolicyState()
	resetCobraFlagState(ConfigCmd)
}
