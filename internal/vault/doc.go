// Package vault is the document catalogue of a docuvault.
//
// Ciphertext lives in the blob store. Everything else needed to open a
// document lives here, as one TOML manifest per document:
//
//	.docuvault/documents/<id>.toml
//
// A manifest names the owner, the GCM nonce and the document key wrapped
// once per account that may open it. Recipient public keys are kept as PEM
// files next to the manifests:
//
//	.docuvault/public_keys/<account>.pub
//
// Only the owner may grant or revoke access. Revoking drops the wrapped key
// from the manifest; copies of the key made before the revocation are out of
// reach.
package vault
