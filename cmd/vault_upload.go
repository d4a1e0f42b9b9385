package cmd

import (
	"context"
	"errors"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/ui"
	"github.com/PolarWolf314/docuvault/internal/workflows"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var uploadName string

func init() {
	uploadCmd.Flags().StringVarP(&uploadName, "name", "n", "", "display name (defaults to the file name)")
	VaultCmd.AddCommand(uploadCmd)
}

func resetUploadCommandState() {
	uploadName = ""
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Encrypts a document and stores it in the vault",
	Long: `Encrypts the file with a fresh AES-256-GCM key, stores the ciphertext in
the vault blob store and wraps the key for your own account. Use
'docuvault vault grant' to share it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting upload command for %s", args[0])
		spinner, cleanup := startSpinner("Encrypting document...", verbose)
		defer cleanup()

		result, err := workflows.Upload(context.Background(), workflows.UploadOptions{
			FilePath: args[0],
			Name:     uploadName,
		})
		if err != nil {
			if errors.Is(err, kerrors.ErrFileNotFound) {
				spinner.FinalMSG = ui.Error.Sprint("✗") + " File not found: " + ui.Path.Sprint(args[0])
				return nil
			}
			return finish(spinner, err)
		}

		doc := result.Document
		Logger.Infof("Uploaded %s as %s", doc.Name, doc.ID)
		spinner.FinalMSG = ui.Success.Sprint("✓") + " Uploaded " + ui.Highlight.Sprint(doc.Name) + "\n" +
			"  ID:   " + ui.Code.Sprint(doc.ID) + "\n" +
			"  Size: " + humanize.Bytes(uint64(doc.Size)) + "\n" +
			ui.Info.Sprint("→") + " Share it with " + ui.Code.Sprint("docuvault vault grant "+doc.ID+" <account>")
		return nil
	},
}
