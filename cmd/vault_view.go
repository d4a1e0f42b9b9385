package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/ui"
	"github.com/PolarWolf314/docuvault/internal/viewer"
	"github.com/PolarWolf314/docuvault/internal/workflows"
	"github.com/spf13/cobra"
)

var viewKeyStdin bool

func init() {
	viewCmd.Flags().BoolVar(&viewKeyStdin, "private-key-stdin", false, "read your private key from stdin")
	VaultCmd.AddCommand(viewCmd)
}

func resetViewCommandState() {
	viewKeyStdin = false
}

// viewSummary collects what the session reported so it can be shown once
// the terminal is restored.
type viewSummary struct {
	viewer.NopObserver

	mu         sync.Mutex
	state      viewer.State
	violations []viewer.Violation
	reason     string
	viewed     time.Duration
}

func (v *viewSummary) StateChanged(_, to viewer.State, _ int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = to
}

func (v *viewSummary) ViolationRecorded(violation viewer.Violation, _ int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.violations = append(v.violations, violation)
}

func (v *viewSummary) Terminated(reason string, viewed time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reason = reason
	v.viewed = viewed
}

func (v *viewSummary) String() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out string
	if v.reason != "" {
		out = ui.Info.Sprint("→") + " Session " + ui.State(v.state.String()) + ": " + v.reason +
			" after " + v.viewed.Round(time.Second).String()
	}
	if n := len(v.violations); n > 0 {
		out += "\n" + ui.Warning.Sprint("⚠") + fmt.Sprintf(" %d violation(s) recorded to the vault ledger", n)
	}
	return out
}

func cannotDisplayMessage() string {
	return ui.Error.Sprint("✗") + " Document cannot be displayed: it failed integrity checks\n" +
		ui.Info.Sprint("→") + " The stored ciphertext or its manifest was modified"
}

var viewCmd = &cobra.Command{
	Use:   "view <document-id>",
	Short: "Opens a document in the secure viewer",
	Long: `Decrypts a document into memory and opens it in a full-screen secure
viewer. Nothing is written to disk.

Press 'e' to show the document and 'q' to hide it or quit. Copying,
printing, saving, leaving the window or shrinking it blurs the content.
Repeated violations end the session. All activity is recorded to the
vault ledger.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting view command for %s", args[0])

		src, err := keySource(viewKeyStdin)
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to read private key: %v", err)
		}

		in := os.Stdin
		if viewKeyStdin {
			// Stdin carried the key, so read keystrokes from the controlling terminal.
			tty, err := os.Open("/dev/tty")
			if err != nil {
				return Logger.ErrorfAndReturn("Failed to open terminal: %v", err)
			}
			defer tty.Close()
			in = tty
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary := &viewSummary{}
		result, err := workflows.OpenDocument(ctx, workflows.OpenOptions{
			DocumentID:   args[0],
			Key:          src,
			Presenter:    &viewer.TerminalPresenter{Out: os.Stdout},
			Observer:     summary,
			CellViewport: true,
		})
		if err != nil {
			if errors.Is(err, kerrors.ErrCannotDisplay) {
				fmt.Println(cannotDisplayMessage())
				return nil
			}
			if msg, ok := formatVaultError(err); ok {
				fmt.Println(msg)
				return nil
			}
			return Logger.ErrorfAndReturn("Failed to open document: %v", err)
		}
		defer result.Close()

		Logger.Debugf("Session %s opened for %s", result.Session.ID(), result.Account)

		term := &viewer.Terminal{
			In:      in,
			Out:     os.Stdout,
			Monitor: result.Monitor,
		}
		runErr := term.Run(ctx, result.Session)
		result.Close()

		if errors.Is(runErr, viewer.ErrNotTerminal) {
			fmt.Println(ui.Error.Sprint("✗") + " The secure viewer needs an interactive terminal")
			return nil
		}
		if errors.Is(runErr, kerrors.ErrCannotDisplay) {
			// The blob changed while the session was open.
			fmt.Println(cannotDisplayMessage())
			return nil
		}
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			return Logger.ErrorfAndReturn("Viewer failed: %v", runErr)
		}

		if s := summary.String(); s != "" {
			fmt.Println(s)
		}
		return nil
	},
}
