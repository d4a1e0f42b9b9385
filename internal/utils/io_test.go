package utils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pipedFile(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stdin")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open input: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestReadPiped(t *testing.T) {
	data, err := readPiped(pipedFile(t, "-----BEGIN X25519 PRIVATE KEY-----"))
	if err != nil {
		t.Fatalf("readPiped failed: %v", err)
	}
	if !strings.HasPrefix(string(data), "-----BEGIN") {
		t.Errorf("Unexpected data: %q", data)
	}
}

func TestReadPiped_Empty(t *testing.T) {
	_, err := readPiped(pipedFile(t, ""))
	if !errors.Is(err, ErrNoPipedInput) {
		t.Errorf("Expected ErrNoPipedInput, got %v", err)
	}
}

func TestReadPiped_TooLarge(t *testing.T) {
	_, err := readPiped(pipedFile(t, strings.Repeat("a", MaxStdinBytes+1)))
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("Expected size error, got %v", err)
	}
}

func TestReadHidden_NotTerminal(t *testing.T) {
	var out strings.Builder
	_, err := readHidden(pipedFile(t, "secret\n"), &out, "Passphrase: ")
	if !errors.Is(err, ErrNoTerminal) {
		t.Errorf("Expected ErrNoTerminal, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Prompt should not be printed without a terminal, got %q", out.String())
	}
}
