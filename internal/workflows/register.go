package workflows

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/PolarWolf314/docuvault/internal/crypto"
	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
)

// RegisterOptions configures the register workflow.
type RegisterOptions struct {
	// Account is the recipient being registered.
	Account string

	// PublicKeyText contains the PEM public key. Takes precedence over FilePath.
	PublicKeyText string

	// FilePath is the path to a PEM public key file.
	FilePath string

	// Force replaces an already published key.
	Force bool
}

// RegisterResult contains the outcome of a register operation.
type RegisterResult struct {
	Account       string
	PublicKeyPath string
	Fingerprint   string
}

// Register publishes another account's public key in the vault so that
// owners can grant it access. The recipient hands over the public key
// printed by their own keys command.
//
// Returns ErrInvalidAccount if the account name is malformed.
// Returns ErrInvalidKey if the key cannot be parsed.
// Returns ErrPublicKeyExists if a key is already published and Force is unset.
func Register(ctx context.Context, opts RegisterOptions) (*RegisterResult, error) {
	v, err := loadVault()
	if err != nil {
		return nil, err
	}

	data := []byte(opts.PublicKeyText)
	if len(data) == 0 {
		if opts.FilePath == "" {
			return nil, fmt.Errorf("%w: no public key given", kerrors.ErrInvalidKey)
		}
		data, err = os.ReadFile(opts.FilePath)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrFileNotFound, opts.FilePath)
		}
		if err != nil {
			return nil, fmt.Errorf("reading public key: %w", err)
		}
	}

	pub, err := crypto.DecodePublicKey(data)
	if err != nil {
		return nil, err
	}

	path, err := v.catalogue.SavePublicKey(opts.Account, pub, opts.Force)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{
		Account:       opts.Account,
		PublicKeyPath: path,
		Fingerprint:   crypto.Fingerprint(pub[:]),
	}, nil
}
