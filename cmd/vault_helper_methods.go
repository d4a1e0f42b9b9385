package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/ui"
	"github.com/PolarWolf314/docuvault/internal/utils"
	"github.com/PolarWolf314/docuvault/internal/workflows"
	"github.com/briandowns/spinner"
)

// startSpinner starts a spinner unless vault --verbose or --debug is set.
// FinalMSG does not need a trailing newline; cleanup adds one.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	return startSpinnerWithFlags(message, verbose, debug)
}

// startSpinnerWithFlags is startSpinner for commands with their own flags.
func startSpinnerWithFlags(message string, verbose, debugFlag bool) (*spinner.Spinner, func()) {
	quiet := !verbose && !debugFlag
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			s.FinalMSG = ""
		}
		if quiet {
			s.Stop()
		}
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// keySource builds the private key source for commands that unwrap a
// document key. With fromStdin the PEM key is read from stdin.
func keySource(fromStdin bool) (workflows.KeySource, error) {
	src := workflows.KeySource{
		Passphrase: func() ([]byte, error) {
			return utils.ReadPassphrase("Enter passphrase for private key: ")
		},
	}
	if fromStdin {
		Logger.Debugf("Reading private key from stdin")
		data, err := utils.ReadStdin()
		if err != nil {
			return src, err
		}
		src.Data = data
	}
	return src, nil
}

// formatVaultError returns the user-facing message for errors shared by
// every vault command, and whether it was recognised.
func formatVaultError(err error) (string, bool) {
	switch {
	case errors.Is(err, kerrors.ErrVaultNotInitialized):
		return ui.Error.Sprint("✗") + " Docuvault has not been initialized\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("docuvault vault init") + " first", true
	case errors.Is(err, kerrors.ErrWalletDisconnected):
		return ui.Error.Sprint("✗") + " No wallet is connected\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("docuvault wallet connect <account>") + " first", true
	case errors.Is(err, kerrors.ErrInvalidAccount):
		return ui.Error.Sprint("✗") + " Invalid account: " + err.Error(), true
	case errors.Is(err, kerrors.ErrPrivateKeyNotFound):
		return ui.Error.Sprint("✗") + " Private key not found for this vault\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("docuvault vault keys") + " to create one", true
	case errors.Is(err, kerrors.ErrPublicKeyNotFound):
		return ui.Error.Sprint("✗") + " Public key not found: " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " The account must run " + ui.Code.Sprint("docuvault vault keys") +
			" or be added with " + ui.Code.Sprint("docuvault vault register"), true
	case errors.Is(err, kerrors.ErrWrongPassphrase):
		return ui.Error.Sprint("✗") + " Wrong passphrase for private key\n" +
			ui.Info.Sprint("→") + " Run this command from a terminal so the passphrase can be read", true
	case errors.Is(err, kerrors.ErrDocumentNotFound):
		return ui.Error.Sprint("✗") + " Document not found: " + err.Error(), true
	case errors.Is(err, kerrors.ErrNotOwner):
		return ui.Error.Sprint("✗") + " Only the document owner can change who has access", true
	case errors.Is(err, kerrors.ErrNoAccess):
		return ui.Error.Sprint("✗") + " Account has no access to this document", true
	case errors.Is(err, kerrors.ErrStorage):
		return ui.Error.Sprint("✗") + " Blob storage failed\n" +
			ui.Error.Sprint("Error: ") + err.Error(), true
	}
	return "", false
}

// finish sets the spinner's final message for err. Unrecognised errors are
// returned so cobra reports them; recognised ones are shown and swallowed.
func finish(s *spinner.Spinner, err error) error {
	if msg, ok := formatVaultError(err); ok {
		s.FinalMSG = msg
		return nil
	}
	s.FinalMSG = ui.Error.Sprint("✗") + " " + err.Error()
	return err
}
