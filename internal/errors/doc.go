// Package errors provides typed error values for the docuvault application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. This makes
// error handling more robust and refactoring-safe.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Crypto errors: Encryption/decryption failures (ErrAuthentication, ErrUnwrap,
//     ErrEntropySource)
//   - Storage errors: Blob store boundary failures (ErrStorage, ErrNotFound,
//     ErrIntegrity)
//   - Viewer errors: Invalid session transitions (ErrInvalidTransition)
//   - Vault errors: Vault state and access issues (ErrVaultNotInitialized, ErrNoAccess)
//
// # Retry Policy
//
// Crypto errors are final for the call that produced them: retrying with the
// same key and IV cannot succeed. Storage errors may be retried by the caller
// with backoff (see blobstore.Retry).
//
// # Usage
//
// Return errors from internal packages:
//
//	if _, err := gcm.Open(nil, iv, ct, nil); err != nil {
//	    return nil, errors.ErrAuthentication
//	}
//
// Handle errors in the CLI layer:
//
//	session, err := workflows.OpenDocument(ctx, opts)
//	if errors.Is(err, kerrors.ErrCannotDisplay) {
//	    // Show "cannot display document", never partial content
//	}
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("downloading document %s: %w", id, errors.ErrNotFound)
package errors
