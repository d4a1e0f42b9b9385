package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/docuvault/cmd"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docuvault",
	Short: "Docuvault - encrypted document storage with a secure viewer.",
	Long: `Docuvault stores documents encrypted in a local vault, shares them with
other wallet accounts by wrapping each document key for the recipient,
and shows them in a secure terminal viewer that blurs and eventually
closes when someone tries to copy, print or capture the content.

Usage:
  docuvault <command> [flags]

Available Commands:
  vault     Store, share and view encrypted documents
  wallet    Connect or disconnect the wallet account
  config    Manage docuvault configuration

Run 'docuvault help <command>' for more details on a specific command.
`,
	Run: func(cmd *cobra.Command, args []string) {
		figure.NewColorFigure("docuvault", "small", "cyan", true).Print()
		fmt.Println()
		fmt.Println("Welcome to docuvault! Run 'docuvault --help' to see available commands.")
	},
}

func init() {
	rootCmd.AddCommand(cmd.VaultCmd, cmd.WalletCmd, cmd.ConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
