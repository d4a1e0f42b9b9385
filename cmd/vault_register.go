package cmd

import (
	"context"
	"errors"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/ui"
	"github.com/PolarWolf314/docuvault/internal/utils"
	"github.com/PolarWolf314/docuvault/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	registerFile  string
	registerKey   string
	registerForce bool
)

func init() {
	registerCmd.Flags().StringVar(&registerFile, "file", "", "path to the account's public key file")
	registerCmd.Flags().StringVar(&registerKey, "pubkey", "", "public key text")
	registerCmd.Flags().BoolVarP(&registerForce, "force", "f", false, "replace an existing public key")
	registerCmd.MarkFlagsMutuallyExclusive("file", "pubkey")
	VaultCmd.AddCommand(registerCmd)
}

var registerCmd = &cobra.Command{
	Use:   "register <account>",
	Short: "Publishes another account's public key in the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting register command for %s", args[0])
		spinner, cleanup := startSpinner("Registering public key...", verbose)
		defer cleanup()

		result, err := workflows.Register(context.Background(), workflows.RegisterOptions{
			Account:       args[0],
			PublicKeyText: registerKey,
			FilePath:      registerFile,
			Force:         registerForce,
		})
		if err != nil {
			switch {
			case errors.Is(err, kerrors.ErrPublicKeyExists):
				spinner.FinalMSG = ui.Error.Sprint("✗") + " A public key is already registered for " + ui.Account.Sprint(args[0]) + "\n" +
					ui.Info.Sprint("→") + " Use " + ui.Flag.Sprint("--force") + " to replace it"
				return nil
			case errors.Is(err, kerrors.ErrInvalidKey):
				spinner.FinalMSG = ui.Error.Sprint("✗") + " No valid public key given\n" +
					ui.Info.Sprint("→") + " Pass " + ui.Flag.Sprint("--file") + " or " + ui.Flag.Sprint("--pubkey")
				return nil
			case errors.Is(err, kerrors.ErrFileNotFound):
				spinner.FinalMSG = ui.Error.Sprint("✗") + " Public key file not found: " + ui.Path.Sprint(registerFile)
				return nil
			}
			return finish(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Registered " + ui.Account.Sprint(utils.ShortAccount(result.Account)) + "\n" +
			"  Public key:  " + ui.Path.Sprint(result.PublicKeyPath) + "\n" +
			"  Fingerprint: " + ui.Muted.Sprint(result.Fingerprint)
		return nil
	},
}
