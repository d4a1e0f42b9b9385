package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/PolarWolf314/docuvault/internal/configs"
	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/ui"
	"github.com/PolarWolf314/docuvault/internal/utils"
	"github.com/PolarWolf314/docuvault/internal/wallet"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// WalletCmd manages the persisted wallet session.
var WalletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Connect or disconnect the wallet account",
	Long: `The connected wallet account is the identity every vault command acts
as. Connecting persists the account in your user config; disconnecting
keeps the account but stops commands from using it until you reconnect.`,
}

func init() {
	WalletCmd.AddCommand(walletConnectCmd, walletDisconnectCmd, walletStatusCmd)
}

var walletConnectCmd = &cobra.Command{
	Use:   "connect [account]",
	Short: "Connects a wallet account",
	Long: `Connects the given account. Without an argument the last connected
account is reconnected.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		account := ""
		if len(args) == 1 {
			account = args[0]
		} else {
			last, err := wallet.ConfigProvider{}.RequestAccount(context.Background())
			if err != nil {
				if errors.Is(err, kerrors.ErrWalletDisconnected) {
					fmt.Println(ui.Error.Sprint("✗") + " No account given and none connected before")
					return nil
				}
				return err
			}
			account = last
		}

		if err := wallet.Remember(account); err != nil {
			if errors.Is(err, kerrors.ErrInvalidAccount) {
				fmt.Println(ui.Error.Sprint("✗") + " Invalid account " + ui.Account.Sprint(account) + "\n" +
					ui.Info.Sprint("→") + " Accounts start with a letter or digit and may not contain '/' or '..'")
				return nil
			}
			return err
		}
		fmt.Println(ui.Success.Sprint("✓") + " Connected as " + ui.Account.Sprint(account))
		return nil
	},
}

var walletDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Disconnects the wallet account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wallet.Forget(); err != nil {
			return err
		}
		fmt.Println(ui.Success.Sprint("✓") + " Wallet disconnected")
		return nil
	},
}

var walletStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows the connected wallet account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := configs.LoadUserConfig()
		if err != nil {
			return err
		}
		w := config.Wallet
		switch {
		case w.Account == "":
			fmt.Println(ui.Warning.Sprint("⚠") + " No wallet has been connected\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("docuvault wallet connect <account>"))
		case !w.Connected:
			fmt.Println(ui.Warning.Sprint("⚠") + " Disconnected " + ui.Muted.Sprint("last account "+utils.ShortAccount(w.Account)))
		default:
			fmt.Println(ui.Success.Sprint("✓") + " Connected as " + ui.Account.Sprint(w.Account) +
				" " + ui.Muted.Sprint(humanize.Time(w.ConnectedAt)))
		}
		return nil
	},
}
