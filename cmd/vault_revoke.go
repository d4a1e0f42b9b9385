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

var revokeDryRun bool

func init() {
	revokeCmd.Flags().BoolVar(&revokeDryRun, "dry-run", false, "preview the revocation without changing the manifest")
	VaultCmd.AddCommand(revokeCmd)
}

func resetRevokeCommandState() {
	revokeDryRun = false
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <document-id> <account>",
	Short: "Removes an account's access to a document you own",
	Long: `Deletes the recipient's wrapped key from the document manifest.

The document key is not rotated. A recipient who saved the plaintext or
the unwrapped key while they had access keeps it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting revoke command: %s -x- %s (dry-run=%t)", args[0], args[1], revokeDryRun)
		spinner, cleanup := startSpinner("Revoking access...", verbose)
		defer cleanup()

		result, err := workflows.Revoke(context.Background(), workflows.RevokeOptions{
			DocumentID: args[0],
			Recipient:  args[1],
			DryRun:     revokeDryRun,
		})
		if err != nil {
			if errors.Is(err, kerrors.ErrSelfRevoke) {
				spinner.FinalMSG = ui.Error.Sprint("✗") + " The owner's access cannot be revoked"
				return nil
			}
			return finish(spinner, err)
		}

		who := ui.Account.Sprint(utils.ShortAccount(result.Recipient))
		if result.DryRun {
			spinner.FinalMSG = ui.Warning.Sprint("⚠") + " Dry run: would revoke " + who +
				" from " + ui.Highlight.Sprint(result.Document.Name) + "\n" +
				ui.Info.Sprint("→") + " No changes made"
			return nil
		}
		spinner.FinalMSG = ui.Success.Sprint("✓") + " Revoked " + who + " from " + ui.Highlight.Sprint(result.Document.Name)
		return nil
	},
}
