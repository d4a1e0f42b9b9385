package cmd

import (
	"context"
	"errors"

	"github.com/PolarWolf314/docuvault/internal/configs"
	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/ui"
	"github.com/PolarWolf314/docuvault/internal/utils"
	"github.com/PolarWolf314/docuvault/internal/workflows"
	"github.com/spf13/cobra"
)

var initVaultName string

func init() {
	initCmd.Flags().StringVarP(&initVaultName, "name", "n", "", "vault name (defaults to the directory name)")
	VaultCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initializes a new document vault",
	Long: `Creates a .docuvault directory holding the vault config, the document
manifests, published public keys, the blob store and the vault ledger.

If no path is given the current directory is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting init command")
		spinner, cleanup := startSpinner("Initializing vault...", verbose)
		defer cleanup()

		path := "."
		if len(args) == 1 {
			path = args[0]
		}

		result, err := workflows.Init(context.Background(), workflows.InitOptions{
			Path: path,
			Name: initVaultName,
		})
		if err != nil {
			if errors.Is(err, kerrors.ErrVaultAlreadyInitialized) {
				spinner.FinalMSG = ui.Error.Sprint("✗") + " A vault already exists at " + ui.Path.Sprint(path) + "\n" +
					ui.Info.Sprint("→") + " Nothing to do"
				return nil
			}
			return finish(spinner, err)
		}

		Logger.Infof("Vault %s (%s) initialized at %s", result.VaultName, result.VaultUUID, result.VaultPath)
		settings := configs.VaultDocuvaultSettings
		spinner.FinalMSG = ui.Success.Sprint("✓") + " Vault " + ui.Highlight.Sprint(result.VaultName) + " initialized at:" +
			utils.FormatPaths([]string{settings.DocumentsPath, settings.PublicKeysPath, result.BlobPath}) +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("docuvault vault keys") + " to create your key pair"
		return nil
	},
}
