package workflows

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/docuvault/internal/crypto"
	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/ledger"
	"github.com/PolarWolf314/docuvault/internal/vault"
	"github.com/PolarWolf314/docuvault/internal/viewer"
	"github.com/PolarWolf314/docuvault/internal/wallet"
)

// UploadOptions configures the upload workflow.
type UploadOptions struct {
	// FilePath is the document to upload.
	FilePath string

	// Name is the display name. If empty, uses the file name.
	Name string

	// Wallet supplies the owner account. If nil, the persisted wallet
	// session is used.
	Wallet *wallet.Session
}

// UploadResult contains the outcome of an upload operation.
type UploadResult struct {
	Document *vault.Document
}

// Upload encrypts a document and stores it in the vault.
//
// A fresh AES-256 key and nonce are generated for the document. The
// ciphertext goes to the blob store, whose identifier becomes the document
// ID. The key is wrapped for the owner's published public key and kept in
// the manifest; the plaintext key never touches disk.
//
// Returns ErrWalletDisconnected if no account is connected.
// Returns ErrPublicKeyNotFound if the owner has not created keys yet.
// Returns ErrFileNotFound if the document does not exist.
// Returns ErrStorage if the blob store fails after retries.
func Upload(ctx context.Context, opts UploadOptions) (*UploadResult, error) {
	v, err := loadVault()
	if err != nil {
		return nil, err
	}
	_, account, err := connectedAccount(ctx, opts.Wallet)
	if err != nil {
		return nil, err
	}

	ownerKey, err := v.catalogue.LoadPublicKey(account)
	if err != nil {
		return nil, err
	}

	plaintext, err := os.ReadFile(opts.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrFileNotFound, opts.FilePath)
	}
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	defer crypto.Wipe(plaintext)

	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(key[:])

	payload, km, err := crypto.Encrypt(plaintext, &key)
	if err != nil {
		return nil, fmt.Errorf("encrypting document: %w", err)
	}

	wrapped, err := crypto.WrapKeyForRecipient(key, ownerKey)
	if err != nil {
		return nil, fmt.Errorf("wrapping document key: %w", err)
	}

	var id string
	err = v.retry(ctx, func(ctx context.Context) error {
		store, err := v.openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		id, err = store.Upload(ctx, payload.Ciphertext)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("uploading ciphertext: %w", err)
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(opts.FilePath)
	}

	doc := &vault.Document{
		ID:          id,
		Name:        name,
		Owner:       account,
		ContentType: string(viewer.DetectContentType(plaintext)),
		CreatedAt:   time.Now().UTC(),
		Size:        int64(len(plaintext)),
		Access:      make(map[string]string),
	}
	doc.SetIV(km.IV)
	if err := doc.SetWrappedKey(account, wrapped); err != nil {
		return nil, err
	}
	if err := v.catalogue.SaveDocument(doc); err != nil {
		return nil, err
	}

	v.record(ledger.Event{
		Account:      account,
		Operation:    ledger.OpUpload,
		DocumentID:   doc.ID,
		DocumentName: doc.Name,
	})

	return &UploadResult{Document: doc}, nil
}
