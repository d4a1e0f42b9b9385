package cmd

import (
	"context"

	"github.com/PolarWolf314/docuvault/internal/ui"
	"github.com/PolarWolf314/docuvault/internal/utils"
	"github.com/PolarWolf314/docuvault/internal/workflows"
	"github.com/spf13/cobra"
)

var grantKeyStdin bool

func init() {
	grantCmd.Flags().BoolVar(&grantKeyStdin, "private-key-stdin", false, "read your private key from stdin")
	VaultCmd.AddCommand(grantCmd)
}

var grantCmd = &cobra.Command{
	Use:   "grant <document-id> <account>",
	Short: "Gives another account access to a document you own",
	Long: `Unwraps the document key with your private key and wraps it again for the
recipient's published public key. The ciphertext is not touched.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting grant command: %s -> %s", args[0], args[1])

		src, err := keySource(grantKeyStdin)
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to read private key: %v", err)
		}

		spinner, cleanup := startSpinner("Granting access...", verbose)
		defer cleanup()

		result, err := workflows.Grant(context.Background(), workflows.GrantOptions{
			DocumentID: args[0],
			Recipient:  args[1],
			Key:        src,
		})
		if err != nil {
			return finish(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " " + ui.Account.Sprint(utils.ShortAccount(result.Recipient)) +
			" can now open " + ui.Highlight.Sprint(result.Document.Name)
		return nil
	},
}
