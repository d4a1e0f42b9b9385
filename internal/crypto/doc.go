// Package crypto provides the cryptographic operations for docuvault.
//
// This package handles document encryption and decryption with AES-256-GCM,
// wrapping of per-document keys for recipients, and password-based key
// derivation. It holds no package-level state: every operation takes its
// key material explicitly, so callers and tests may run concurrently.
//
// # Encryption Architecture
//
// docuvault uses a hybrid encryption scheme:
//
//  1. A random 256-bit key and a random 96-bit IV encrypt each document
//  2. Each recipient's X25519 public key wraps a copy of the document key
//  3. Recipients unwrap the key with their private key, then decrypt
//
// Wrapping uses an ephemeral X25519 key agreement, HKDF-SHA256 to derive a
// key-encryption key, and AES-256-GCM with the ephemeral public key bound
// as additional data.
//
// # Failure Behaviour
//
// Decrypt never returns unauthenticated plaintext. A tag mismatch caused by
// corrupted ciphertext, a wrong key or a wrong IV returns ErrAuthentication.
// UnwrapKey returns ErrUnwrap on any mismatch. Neither is retried.
//
// # Key Files
//
// Recipient key pairs are stored as PEM blocks:
//   - Private keys in the user data directory, mode 0600, optionally sealed
//     with a passphrase
//   - Public keys in the vault's .docuvault/public_keys/ directory
package crypto
