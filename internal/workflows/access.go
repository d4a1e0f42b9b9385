package workflows

import (
	"context"

	"github.com/PolarWolf314/docuvault/internal/vault"
	"github.com/PolarWolf314/docuvault/internal/wallet"
)

// RecipientStatus represents how an account relates to a document.
type RecipientStatus string

const (
	// RecipientStatusOwner is the account that uploaded the document.
	RecipientStatusOwner RecipientStatus = "owner"
	// RecipientStatusActive means the account holds a key and has a published public key.
	RecipientStatusActive RecipientStatus = "active"
	// RecipientStatusOrphan means the account holds a key but its public key is gone.
	RecipientStatusOrphan RecipientStatus = "orphan"
)

// RecipientInfo describes one account with access to a document.
type RecipientInfo struct {
	Account string
	Status  RecipientStatus
}

// AccessOptions configures the access workflow.
type AccessOptions struct {
	// DocumentID selects a single document. If empty, the connected
	// account's documents are listed.
	DocumentID string

	// Wallet supplies the account. If nil, the persisted wallet session is
	// used.
	Wallet *wallet.Session
}

// AccessResult contains the outcome of an access operation.
type AccessResult struct {
	// Account is the connected account.
	Account string

	// Document and Recipients are set when a DocumentID was given.
	Document   *vault.Document
	Recipients []RecipientInfo

	// Owned lists documents uploaded by Account.
	Owned []*vault.Document

	// Shared lists documents owned by others that Account can open.
	Shared []*vault.Document
}

// Access reports who can open what.
//
// With a DocumentID it lists the document's recipients and whether each
// still has a published public key. Without one it lists the documents the
// connected account owns and those shared with it.
//
// Returns ErrDocumentNotFound if the document does not exist.
func Access(ctx context.Context, opts AccessOptions) (*AccessResult, error) {
	v, err := loadVault()
	if err != nil {
		return nil, err
	}
	_, account, err := connectedAccount(ctx, opts.Wallet)
	if err != nil {
		return nil, err
	}

	result := &AccessResult{Account: account}

	if opts.DocumentID != "" {
		doc, err := v.catalogue.LoadDocument(opts.DocumentID)
		if err != nil {
			return nil, err
		}
		result.Document = doc
		for _, recipient := range doc.Recipients() {
			status := RecipientStatusActive
			if recipient == doc.Owner {
				status = RecipientStatusOwner
			} else if _, err := v.catalogue.LoadPublicKey(recipient); err != nil {
				status = RecipientStatusOrphan
			}
			result.Recipients = append(result.Recipients, RecipientInfo{Account: recipient, Status: status})
		}
		return result, nil
	}

	owned, err := v.catalogue.ListDocuments(account)
	if err != nil {
		return nil, err
	}
	result.Owned = owned

	accessible, err := v.catalogue.ListAccessible(account)
	if err != nil {
		return nil, err
	}
	for _, doc := range accessible {
		if doc.Owner != account {
			result.Shared = append(result.Shared, doc)
		}
	}

	return result, nil
}
