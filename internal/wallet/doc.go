// Package wallet tracks the connected wallet account.
//
// The account is an opaque identity string used for watermarks, ledger
// entries and key file names. It is never used for authorisation:
// possession of the recipient private key is what grants access.
package wallet
