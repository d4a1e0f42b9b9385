package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/docuvault/internal/crypto"
	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/ledger"
	"github.com/PolarWolf314/docuvault/internal/vault"
	"github.com/PolarWolf314/docuvault/internal/wallet"
)

// GrantOptions configures the grant workflow.
type GrantOptions struct {
	// DocumentID is the document to share.
	DocumentID string

	// Recipient is the account receiving access. It must have a published
	// public key.
	Recipient string

	// Wallet supplies the owner account. If nil, the persisted wallet
	// session is used.
	Wallet *wallet.Session

	// Key locates the owner's private key.
	Key KeySource
}

// GrantResult contains the outcome of a grant operation.
type GrantResult struct {
	Document  *vault.Document
	Recipient string
}

// Grant gives Recipient access to a document.
//
// The owner's wrapped copy of the document key is opened with the owner's
// private key and wrapped again for the recipient's public key. The
// ciphertext is untouched.
//
// Returns ErrNotOwner if the connected account does not own the document.
// Returns ErrPublicKeyNotFound if the recipient has no published key.
// Returns ErrUnwrap if the owner's private key cannot open the document key.
func Grant(ctx context.Context, opts GrantOptions) (*GrantResult, error) {
	v, err := loadVault()
	if err != nil {
		return nil, err
	}
	_, account, err := connectedAccount(ctx, opts.Wallet)
	if err != nil {
		return nil, err
	}

	doc, err := v.catalogue.LoadDocument(opts.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc.Owner != account {
		return nil, kerrors.ErrNotOwner
	}

	recipientKey, err := v.catalogue.LoadPublicKey(opts.Recipient)
	if err != nil {
		return nil, err
	}

	ownerWrapped, err := doc.WrappedKeyFor(account)
	if err != nil {
		return nil, err
	}
	priv, err := v.privateKey(account, opts.Key)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(priv[:])

	key, err := crypto.UnwrapKey(ownerWrapped, priv)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(key[:])

	wrapped, err := crypto.WrapKeyForRecipient(key, recipientKey)
	if err != nil {
		return nil, fmt.Errorf("wrapping document key: %w", err)
	}

	doc, err = v.catalogue.GrantAccess(doc.ID, account, opts.Recipient, wrapped)
	if err != nil {
		return nil, err
	}

	v.record(ledger.Event{
		Account:       account,
		Operation:     ledger.OpGrant,
		DocumentID:    doc.ID,
		DocumentName:  doc.Name,
		TargetAccount: opts.Recipient,
	})

	return &GrantResult{Document: doc, Recipient: opts.Recipient}, nil
}
