// Package workflows provides high-level orchestration for docuvault commands.
//
// Workflows coordinate the vault catalogue, blob store, crypto, wallet and
// ledger packages to implement complete user-facing features. Each workflow
// handles a single command's business logic, independent of CLI concerns
// like flag parsing, spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Loading configuration (user and vault)
//   - Resolving the connected wallet account
//   - Performing the core operation
//   - Recording ledger events
//
// # Available Workflows
//
//   - Init: Creates a new vault
//   - CreateKeys: Generates the account's key pair for the vault
//   - Register: Publishes another account's public key
//   - Upload: Encrypts and stores a document
//   - Grant / Revoke: Share or stop sharing a document
//   - Access: Lists who can open what
//   - OpenDocument: Decrypts a document into a secure viewing session
//   - Log: Reads the ledger
//   - Doctor: Runs vault health checks
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching. Use errors.Is() to check for specific error conditions:
//
//	result, err := workflows.OpenDocument(ctx, opts)
//	if errors.Is(err, kerrors.ErrCannotDisplay) {
//	    // The ciphertext or key was tampered with
//	}
//
// Ledger write failures are logged to Logger and never fail a workflow.
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// It bounds blob store retries, including the re-download each time a
// viewing session enters secure mode.
package workflows
