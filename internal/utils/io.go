package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// MaxStdinBytes bounds what ReadStdin accepts. Piped input is a PEM key.
const MaxStdinBytes = 64 << 10

// ErrNoPipedInput is returned when stdin is a terminal or empty.
var ErrNoPipedInput = errors.New("no data piped to stdin")

// ReadStdin reads piped stdin, up to MaxStdinBytes.
func ReadStdin() ([]byte, error) {
	return readPiped(os.Stdin)
}

func readPiped(f *os.File) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("inspecting stdin: %w", err)
	}
	if info.Mode()&os.ModeCharDevice != 0 {
		return nil, fmt.Errorf("%w (hint: pipe the private key to this command)", ErrNoPipedInput)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxStdinBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	switch {
	case len(data) == 0:
		return nil, ErrNoPipedInput
	case len(data) > MaxStdinBytes:
		return nil, fmt.Errorf("stdin exceeds %d bytes", MaxStdinBytes)
	}
	return data, nil
}
