package utils

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNoTerminal is returned when a prompt needs an interactive terminal.
var ErrNoTerminal = errors.New("stdin is not a terminal")

// ReadPassphrase prints prompt on stderr and reads a line from stdin with
// echo disabled.
func ReadPassphrase(prompt string) ([]byte, error) {
	return readHidden(os.Stdin, os.Stderr, prompt)
}

func readHidden(in *os.File, out io.Writer, prompt string) ([]byte, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot read passphrase: %w", ErrNoTerminal)
	}

	fmt.Fprint(out, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	return secret, nil
}
