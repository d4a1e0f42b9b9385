package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/PolarWolf314/docuvault/internal/ui"
	"github.com/PolarWolf314/docuvault/internal/workflows"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	doctorJSON bool
	// exitWith ends the process with the doctor's exit code. Tests swap it.
	exitWith = os.Exit
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "print the report as JSON")
	VaultCmd.AddCommand(doctorCmd)
}

func resetDoctorCommandState() {
	doctorJSON = false
	exitWith = os.Exit
}

// SetDoctorExitFunc replaces the function the doctor command exits with.
func SetDoctorExitFunc(f func(int)) {
	exitWith = f
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the vault, your keys and every stored document",
	Long: `Checks the vault in three groups and prints a report.

  Setup      vault and user configuration, wallet connection
  Keys       private key presence and permissions, published key match
  Documents  manifests, recipients with published keys, and the
             ciphertext of every document in the blob store

Each document is listed with its recipients, size and blob state.

Exit codes:
  0 - everything passed
  1 - warnings only
  2 - at least one check failed`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	Logger.Infof("Checking vault health")

	spinner, cleanup := startSpinner("Checking vault...", verbose)
	report, err := workflows.Doctor(context.Background(), workflows.DoctorOptions{})
	if err != nil {
		spinner.FinalMSG = ui.Error.Sprint("✗") + " Failed to check the vault: " + err.Error()
		cleanup()
		return err
	}
	spinner.FinalMSG = ""
	cleanup()

	for _, c := range report.Checks {
		Logger.Debugf("%s/%s: %s (%s)", c.Group, c.Name, c.Status, c.Message)
	}

	if doctorJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		writeDoctorReport(os.Stdout, report)
	}

	if code := doctorExitCode(report.Summary); code != 0 {
		exitWith(code)
	}
	return nil
}

func doctorExitCode(s workflows.DoctorSummary) int {
	switch {
	case s.Errors > 0:
		return 2
	case s.Warnings > 0:
		return 1
	}
	return 0
}

func statusIcon(s workflows.CheckStatus) string {
	switch s {
	case workflows.CheckWarning:
		return ui.Warning.Sprint("⚠")
	case workflows.CheckError:
		return ui.Error.Sprint("✗")
	}
	return ui.Success.Sprint("✓")
}

// writeDoctorReport prints checks under their group headings, then the
// per-document table, then totals and suggestions.
func writeDoctorReport(w io.Writer, report *workflows.DoctorResult) {
	group := ""
	for _, c := range report.Checks {
		if c.Group != group {
			if group != "" {
				fmt.Fprintln(w)
			}
			group = c.Group
			fmt.Fprintln(w, group)
		}
		fmt.Fprintf(w, "  %s %-22s %s\n", statusIcon(c.Status), c.Name, c.Message)
	}

	if len(report.Documents) > 0 {
		var intact int
		var total uint64
		for _, d := range report.Documents {
			total += uint64(d.Size)
			if d.Intact {
				intact++
			}
		}
		fmt.Fprintf(w, "\n%d document(s), %d blob(s) intact, %s of plaintext\n",
			len(report.Documents), intact, humanize.Bytes(total))
		for _, d := range report.Documents {
			state := ui.Success.Sprint("intact")
			icon := workflows.CheckPass
			if !d.Intact {
				state = ui.Error.Sprint(d.Problem)
				icon = workflows.CheckError
			}
			fmt.Fprintf(w, "  %s %s %s, %d recipient(s), %s\n", statusIcon(icon),
				ui.Highlight.Sprint(d.Name), ui.Muted.Sprint(shortID(d.ID)), d.Recipients, humanize.Bytes(uint64(d.Size)))
			fmt.Fprintf(w, "      %s\n", state)
		}
	}

	s := report.Summary
	fmt.Fprintf(w, "\n%d passed", s.Passed)
	if s.Warnings > 0 {
		fmt.Fprintf(w, ", %s", ui.Warning.Sprintf("%d warning(s)", s.Warnings))
	}
	if s.Errors > 0 {
		fmt.Fprintf(w, ", %s", ui.Error.Sprintf("%d failed", s.Errors))
	}
	fmt.Fprintln(w)

	for _, hint := range report.Suggestions {
		fmt.Fprintf(w, "%s %s\n", ui.Info.Sprint("→"), hint)
	}
}

// shortID keeps the tail of a CID; the leading characters encode the
// version and codec and are the same for every document.
func shortID(id string) string {
	if len(id) <= 10 {
		return id
	}
	return "…" + id[len(id)-10:]
}
