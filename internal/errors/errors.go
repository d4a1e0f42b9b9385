package errors

import "errors"

// Cryptographic errors indicate failures during encryption or decryption operations.
var (
	// ErrAuthentication indicates the GCM tag did not verify: the ciphertext was
	// corrupted or the key or IV is wrong.
	ErrAuthentication = errors.New("ciphertext failed authentication")

	// ErrUnwrap indicates a wrapped key could not be opened with the given private key.
	ErrUnwrap = errors.New("failed to unwrap key")

	// ErrEntropySource indicates the platform random source is unavailable.
	// Key generation must abort.
	ErrEntropySource = errors.New("entropy source unavailable")

	// ErrInvalidKey indicates key material has an unexpected length or encoding.
	ErrInvalidKey = errors.New("invalid key material")

	// ErrInvalidSalt indicates a password salt is missing or malformed.
	ErrInvalidSalt = errors.New("invalid salt")

	// ErrWrongPassphrase indicates a sealed private key could not be opened.
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted key file")
)

// Storage errors are raised at the blob store boundary and may be retried.
var (
	// ErrStorage indicates a generic blob store failure.
	ErrStorage = errors.New("blob storage failure")

	// ErrNotFound indicates the blob identifier is unknown to the store.
	ErrNotFound = errors.New("blob not found")

	// ErrIntegrity indicates stored content no longer matches its identifier.
	// Reading it again returns the same bytes, so it is not retried.
	ErrIntegrity = errors.New("blob failed integrity check")
)

// Viewer errors indicate misuse of a secure viewing session.
var (
	// ErrInvalidTransition indicates a transition not allowed from the current state.
	ErrInvalidTransition = errors.New("invalid viewer state transition")

	// ErrCannotDisplay is what the user sees when a document fails to decrypt.
	ErrCannotDisplay = errors.New("cannot display document")
)

// Vault errors indicate issues with the vault layout or document access.
var (
	// ErrVaultNotInitialized indicates the working tree has no .docuvault directory.
	ErrVaultNotInitialized = errors.New("vault has not been initialized")

	// ErrVaultAlreadyInitialized indicates a .docuvault directory already exists.
	ErrVaultAlreadyInitialized = errors.New("vault has already been initialized")

	// ErrDocumentNotFound indicates no manifest exists for the document.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrNoAccess indicates the account holds no wrapped key for the document.
	ErrNoAccess = errors.New("account does not have access to this document")

	// ErrNotOwner indicates a grant or revoke by someone other than the owner.
	ErrNotOwner = errors.New("only the document owner can change access")

	// ErrPublicKeyNotFound indicates a recipient public key could not be located.
	ErrPublicKeyNotFound = errors.New("public key not found")

	// ErrPrivateKeyNotFound indicates the user's private key could not be located.
	ErrPrivateKeyNotFound = errors.New("private key not found")

	// ErrPublicKeyExists indicates a public key already exists for this account.
	ErrPublicKeyExists = errors.New("public key already exists")

	// ErrSelfRevoke indicates an owner attempted to revoke their own access.
	ErrSelfRevoke = errors.New("cannot revoke your own access")
)

// Session errors relate to the wallet session collaborator.
var (
	// ErrWalletDisconnected indicates no account is connected.
	ErrWalletDisconnected = errors.New("no wallet account connected")

	// ErrInvalidAccount indicates an account identifier is malformed.
	ErrInvalidAccount = errors.New("invalid account identifier")
)

// Input errors indicate malformed command input.
var (
	// ErrInvalidDateFormat indicates a date filter could not be parsed.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrFileNotFound indicates a specific file could not be located.
	ErrFileNotFound = errors.New("file not found")
)
