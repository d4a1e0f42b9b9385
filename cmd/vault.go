package cmd

import (
	logger "github.com/PolarWolf314/docuvault/internal/logging"
	"github.com/PolarWolf314/docuvault/internal/workflows"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	// VaultCmd groups the document commands.
	VaultCmd = &cobra.Command{
		Use:   "vault",
		Short: "Store, share and view encrypted documents",
		Long: `Provides vault initialization, key management, document upload, access
control, secure viewing and the vault ledger.

Documents are encrypted with a fresh AES-256 key on upload. The key is
wrapped for every account allowed to open the document; the ciphertext
itself is stored once in the vault's blob store.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			workflows.Logger = Logger.Logrus()
			Logger.Debugf("Initializing vault command with verbose=%t, debug=%t", verbose, debug)
		},
	}
)

func init() {
	VaultCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	VaultCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	resetKeysCommandState()
	resetUploadCommandState()
	resetRevokeCommandState()
	resetLogCommandState()
	resetViewCommandState()
	resetDoctorCommandState()
	grantKeyStdin = false
	accessJSONOutput = false
	initVaultName = ""
	registerFile = ""
	registerKey = ""
	registerForce = false
	deriveIterations = 0
	deriveSaltHex = ""
	resetCobraFlagState(VaultCmd)
}

// resetCobraFlagState clears the Changed mark on every flag to prevent test pollution.
func resetCobraFlagState(root *cobra.Command) {
	for _, c := range append([]*cobra.Command{root}, root.Commands()...) {
		c.Flags().VisitAll(func(flag *pflag.Flag) {
			flag.Changed = false
		})
	}
}
