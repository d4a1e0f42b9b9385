package workflows

import (
	"context"
	"fmt"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/ledger"
	"github.com/PolarWolf314/docuvault/internal/vault"
	"github.com/PolarWolf314/docuvault/internal/wallet"
)

// RevokeOptions configures the revoke workflow.
type RevokeOptions struct {
	// DocumentID is the document to stop sharing.
	DocumentID string

	// Recipient is the account whose access is removed.
	Recipient string

	// Wallet supplies the owner account. If nil, the persisted wallet
	// session is used.
	Wallet *wallet.Session

	// DryRun checks that the revocation would succeed without changing
	// the manifest.
	DryRun bool
}

// RevokeResult contains the outcome of a revoke operation.
type RevokeResult struct {
	Document  *vault.Document
	Recipient string

	// DryRun indicates whether this was a dry-run (no changes made).
	DryRun bool
}

// Revoke removes Recipient's wrapped key from a document.
//
// Revocation stops future opens through the vault. It cannot recall a key
// or plaintext the recipient already obtained.
//
// Returns ErrNotOwner if the connected account does not own the document.
// Returns ErrSelfRevoke if the owner tries to revoke themselves.
// Returns ErrNoAccess if the recipient holds no key.
func Revoke(ctx context.Context, opts RevokeOptions) (*RevokeResult, error) {
	v, err := loadVault()
	if err != nil {
		return nil, err
	}
	_, account, err := connectedAccount(ctx, opts.Wallet)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		doc, err := v.catalogue.LoadDocument(opts.DocumentID)
		if err != nil {
			return nil, err
		}
		switch {
		case doc.Owner != account:
			return nil, kerrors.ErrNotOwner
		case opts.Recipient == doc.Owner:
			return nil, kerrors.ErrSelfRevoke
		}
		if _, ok := doc.Access[opts.Recipient]; !ok {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrNoAccess, opts.Recipient)
		}
		return &RevokeResult{Document: doc, Recipient: opts.Recipient, DryRun: true}, nil
	}

	doc, err := v.catalogue.RevokeAccess(opts.DocumentID, account, opts.Recipient)
	if err != nil {
		return nil, err
	}

	v.record(ledger.Event{
		Account:       account,
		Operation:     ledger.OpRevoke,
		DocumentID:    doc.ID,
		DocumentName:  doc.Name,
		TargetAccount: opts.Recipient,
	})

	return &RevokeResult{Document: doc, Recipient: opts.Recipient}, nil
}
