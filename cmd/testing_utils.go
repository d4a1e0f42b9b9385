package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/docuvault/internal/configs"
	logger "github.com/PolarWolf314/docuvault/internal/logging"
	"github.com/PolarWolf314/docuvault/internal/wallet"
	"github.com/PolarWolf314/docuvault/internal/workflows"
	"github.com/spf13/cobra"
)

// setupTestEnvironment points the user settings at tempUserDir, changes
// into tempDir and restores both when the test ends.
func setupTestEnvironment(t *testing.T, tempDir, tempUserDir string) {
	t.Helper()

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	originalUserSettings := configs.UserDocuvaultSettings

	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to change to original directory: %v", err)
		}
		configs.UserDocuvaultSettings = originalUserSettings
		configs.VaultDocuvaultSettings = &configs.VaultSettings{}
		ResetGlobalState()
		ResetConfigState()
	})

	configs.UserDocuvaultSettings = &configs.UserSettings{
		UserKeysPath:    filepath.Join(tempUserDir, "keys"),
		UserConfigsPath: filepath.Join(tempUserDir, "config"),
		Username:        "testuser",
	}
	configs.VaultDocuvaultSettings = &configs.VaultSettings{}
}

// newTestVault creates a vault in a temp directory with keys for account,
// and leaves the test inside it.
func newTestVault(t *testing.T, account string) string {
	t.Helper()

	tempDir := t.TempDir()
	setupTestEnvironment(t, tempDir, t.TempDir())

	if err := wallet.Remember(account); err != nil {
		t.Fatalf("Failed to connect wallet: %v", err)
	}
	if _, err := workflows.Init(context.Background(), workflows.InitOptions{Path: tempDir}); err != nil {
		t.Fatalf("Failed to initialize vault: %v", err)
	}
	if _, err := workflows.CreateKeys(context.Background(), workflows.CreateKeysOptions{}); err != nil {
		t.Fatalf("Failed to create keys: %v", err)
	}
	return tempDir
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	outputChan := make(chan string, 2)

	for _, r := range []*os.File{stdoutReader, stderrReader} {
		go func(r *os.File) {
			var buf bytes.Buffer
			if _, err := io.Copy(&buf, r); err != nil {
				log.Fatalf("Failed to run copy command: %s", err)
			}
			outputChan <- buf.String()
		}(r)
	}

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-outputChan + <-outputChan, err
}

// createTestCLI builds a root command that runs args below the given
// top-level command.
func createTestCLI(top *cobra.Command, args []string, verboseFlag, debugFlag bool) *cobra.Command {
	verbose = verboseFlag
	debug = debugFlag
	Logger = logger.Logger{
		Verbose: verbose,
		Debug:   debug,
	}

	rootCmd := &cobra.Command{
		Use:   "docuvault",
		Short: "Docuvault - encrypted document storage with a secure viewer.",
	}
	rootCmd.AddCommand(top)
	rootCmd.SetArgs(append([]string{top.Name()}, args...))

	if top == VaultCmd {
		if err := VaultCmd.PersistentFlags().Set("verbose", fmt.Sprintf("%t", verboseFlag)); err != nil {
			log.Fatalf("Failed to set verbose flag for testing: %s", err)
		}
		if err := VaultCmd.PersistentFlags().Set("debug", fmt.Sprintf("%t", debugFlag)); err != nil {
			log.Fatalf("Failed to set debug flag for testing: %s", err)
		}
	}
	return rootCmd
}

// runCLI executes args under top and returns the captured output.
func runCLI(t *testing.T, top *cobra.Command, args ...string) string {
	t.Helper()
	output, err := captureOutput(func() error {
		return createTestCLI(top, args, false, false).Execute()
	})
	if err != nil {
		t.Fatalf("%s %v failed: %v\nOutput: %s", top.Name(), args, err, output)
	}
	return output
}
