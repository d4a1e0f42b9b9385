package workflows

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/docuvault/internal/configs"
	"github.com/PolarWolf314/docuvault/internal/crypto"
	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/wallet"
)

// CreateKeysOptions configures the keys workflow.
type CreateKeysOptions struct {
	// Wallet supplies the account the keys belong to. If nil, the persisted
	// wallet session is used.
	Wallet *wallet.Session

	// Passphrase seals the private key on disk when non-empty.
	Passphrase []byte

	// Force replaces existing keys for the account.
	Force bool
}

// CreateKeysResult contains the outcome of a keys operation.
type CreateKeysResult struct {
	// Account is the account the keys were created for.
	Account string

	// PrivateKeyPath is where the private key was written.
	PrivateKeyPath string

	// PublicKeyPath is where the public key was published in the vault.
	PublicKeyPath string

	// Fingerprint identifies the public key.
	Fingerprint string

	// Sealed reports whether the private key is passphrase protected.
	Sealed bool
}

// CreateKeys generates the account's X25519 key pair for this vault.
//
// The private key goes to the user data directory, sealed with the
// passphrase if one is given. The public key is published in the vault so
// owners can grant the account access.
//
// Returns ErrVaultNotInitialized if there is no vault.
// Returns ErrWalletDisconnected if no account is connected.
// Returns ErrPublicKeyExists if the account already has a key and Force is unset.
func CreateKeys(ctx context.Context, opts CreateKeysOptions) (*CreateKeysResult, error) {
	v, err := loadVault()
	if err != nil {
		return nil, err
	}
	_, account, err := connectedAccount(ctx, opts.Wallet)
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		if _, err := v.catalogue.LoadPublicKey(account); err == nil {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrPublicKeyExists, account)
		}
	}

	kp, err := crypto.GenerateRecipientKeyPair()
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(kp.Private[:])

	// The user's copy of the public key sits beside the private key.
	privatePath := configs.UserKeyPath(v.settings.VaultUUID, account)
	localPublicPath := strings.TrimSuffix(privatePath, filepath.Ext(privatePath)) + ".pub"
	if err := crypto.SaveRecipientKeyPair(privatePath, localPublicPath, kp, opts.Passphrase); err != nil {
		return nil, err
	}

	publicPath, err := v.catalogue.SavePublicKey(account, kp.Public, true)
	if err != nil {
		return nil, err
	}

	return &CreateKeysResult{
		Account:        account,
		PrivateKeyPath: privatePath,
		PublicKeyPath:  publicPath,
		Fingerprint:    crypto.Fingerprint(kp.Public[:]),
		Sealed:         len(opts.Passphrase) > 0,
	}, nil
}
