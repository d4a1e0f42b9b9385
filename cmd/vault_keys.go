package cmd

import (
	"context"
	"errors"

	"github.com/PolarWolf314/docuvault/internal/crypto"
	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/ui"
	"github.com/PolarWolf314/docuvault/internal/utils"
	"github.com/PolarWolf314/docuvault/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	keysForce      bool
	keysPassphrase bool
)

func init() {
	keysCmd.Flags().BoolVarP(&keysForce, "force", "f", false, "replace existing keys for the connected account")
	keysCmd.Flags().BoolVar(&keysPassphrase, "passphrase", false, "seal the private key with a passphrase")
	VaultCmd.AddCommand(keysCmd)
}

func resetKeysCommandState() {
	keysForce = false
	keysPassphrase = false
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Creates the connected account's key pair for this vault",
	Long: `Generates an X25519 key pair for the connected wallet account.

The private key is written to your user data directory. The public key is
published in the vault so owners can grant you access to documents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys command")

		var passphrase []byte
		if keysPassphrase {
			p, err := utils.ReadPassphrase("Enter passphrase for new private key: ")
			if err != nil {
				return Logger.ErrorfAndReturn("Failed to read passphrase: %v", err)
			}
			passphrase = p
			defer crypto.Wipe(passphrase)
		}

		spinner, cleanup := startSpinner("Creating keys...", verbose)
		defer cleanup()

		result, err := workflows.CreateKeys(context.Background(), workflows.CreateKeysOptions{
			Passphrase: passphrase,
			Force:      keysForce,
		})
		if err != nil {
			if errors.Is(err, kerrors.ErrPublicKeyExists) {
				spinner.FinalMSG = ui.Error.Sprint("✗") + " Keys already exist for the connected account\n" +
					ui.Info.Sprint("→") + " Use " + ui.Flag.Sprint("--force") + " to replace them. Documents wrapped for the old key become unreadable"
				return nil
			}
			return finish(spinner, err)
		}

		Logger.Infof("Keys created for %s", result.Account)
		sealed := ""
		if result.Sealed {
			sealed = " (sealed)"
		}
		spinner.FinalMSG = ui.Success.Sprint("✓") + " Keys created for " + ui.Account.Sprint(utils.ShortAccount(result.Account)) + "\n" +
			"  Private key: " + ui.Path.Sprint(result.PrivateKeyPath) + sealed + "\n" +
			"  Public key:  " + ui.Path.Sprint(result.PublicKeyPath) + "\n" +
			"  Fingerprint: " + ui.Muted.Sprint(result.Fingerprint)
		return nil
	},
}
