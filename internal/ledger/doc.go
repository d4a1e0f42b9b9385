// Package ledger records document and viewing events.
//
// Every upload, access change and secure viewing transition is appended to
// a ledger. The vault keeps a project-level ledger as JSON Lines at:
//
//	.docuvault/ledger.jsonl
//
// Each event contains:
//   - Event ID (UUID) and timestamp (RFC3339 with microseconds, UTC)
//   - Acting account
//   - Operation name
//   - Operation-specific details (document, target account, violation)
//
// # Failure Handling
//
// Recording is best-effort from the caller's point of view. Record returns
// an error so callers can log it, but no operation should fail because the
// ledger could not be written.
//
// # Reading
//
// The ledger is append-only; nothing in the vault reads it back except the
// log command, through ReadEntries. Malformed lines are skipped to handle
// partial writes.
package ledger
