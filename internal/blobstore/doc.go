// Package blobstore stores encrypted document bytes.
//
// Stores only ever see ciphertext. Identifiers are content addressed: the
// CIDv1 (raw codec, sha2-256) of the uploaded bytes, so uploading the same
// ciphertext twice yields the same identifier. Callers that need retries
// wrap operations with Retry; stores never retry internally.
package blobstore
