package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/ledger"
	"github.com/PolarWolf314/docuvault/internal/ui"
	"github.com/PolarWolf314/docuvault/internal/utils"
	"github.com/PolarWolf314/docuvault/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logAccount   string
	logDocument  string
	logSession   string
	logOperation string
	logSince     string
	logUntil     string
	logOneline   bool
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logAccount, "account", "", "filter by acting or target account")
	logCmd.Flags().StringVar(&logDocument, "document", "", "filter by document ID")
	logCmd.Flags().StringVar(&logSession, "session", "", "filter by viewing session ID")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")

	VaultCmd.AddCommand(logCmd)
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logAccount = ""
	logDocument = ""
	logSession = ""
	logOperation = ""
	logSince = ""
	logUntil = ""
	logOneline = false
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the vault ledger",
	Long: `Displays the vault ledger: uploads, access changes and every secure
viewing session with its violations.

Examples:
  docuvault vault log                                # View full ledger
  docuvault vault log -n 10                          # Last 10 entries
  docuvault vault log --reverse                      # Most recent first
  docuvault vault log --account 0xabc...             # Filter by account
  docuvault vault log --operation violation,terminated
  docuvault vault log --document <id>                # One document
  docuvault vault log --since 2024-01-01             # Filter by date
  docuvault vault log --json                         # JSON output`,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	spinner, cleanup := startSpinner("Loading vault ledger...", verbose)
	defer cleanup()

	result, err := workflows.Log(context.Background(), workflows.LogOptions{
		Limit:      logLimit,
		Reverse:    logReverse,
		Account:    logAccount,
		DocumentID: logDocument,
		SessionID:  logSession,
		Operations: logOperation,
		Since:      logSince,
		Until:      logUntil,
	})
	if err != nil {
		spinner.FinalMSG = formatLogError(err)
		if isLogUnexpectedError(err) {
			return err
		}
		return nil
	}

	Logger.Debugf("Parsed %d entries from vault ledger", result.TotalEntriesBeforeFilter)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	spinner.FinalMSG = ""
	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Println("No ledger entries found.")
		} else {
			fmt.Println("No ledger entries found matching the filters.")
		}
		return nil
	}

	if logJSON {
		return outputLogJSON(result.Entries)
	}
	if logOneline {
		outputLogOneline(result.Entries)
		return nil
	}
	outputLogDefault(result.Entries)
	return nil
}

// formatLogError formats a log error for display to the user.
func formatLogError(err error) string {
	if errors.Is(err, kerrors.ErrInvalidDateFormat) {
		return ui.Error.Sprint("✗") + " " + err.Error()
	}
	if msg, ok := formatVaultError(err); ok {
		return msg
	}
	return ui.Error.Sprint("✗") + " Failed to read vault ledger: " + err.Error()
}

// isLogUnexpectedError returns true if the error is unexpected and should cause a non-zero exit.
func isLogUnexpectedError(err error) bool {
	switch {
	case errors.Is(err, kerrors.ErrVaultNotInitialized),
		errors.Is(err, kerrors.ErrInvalidDateFormat):
		return false
	default:
		return true
	}
}

func outputLogJSON(entries []ledger.Event) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries to JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func outputLogOneline(entries []ledger.Event) {
	for _, e := range entries {
		date := workflows.FormatDateTime(e)[:10]
		fmt.Printf("%s %s %s %s\n", date, utils.ShortAccount(e.Account), e.Operation, workflows.FormatDetails(e))
	}
}

func outputLogDefault(entries []ledger.Event) {
	for _, e := range entries {
		fmt.Printf("%-19s  %-13s  %-14s  %s\n",
			workflows.FormatDateTime(e), utils.ShortAccount(e.Account), e.Operation, workflows.FormatDetails(e))
	}
}
