// Package utils provides shared helpers for docuvault.
//
// # Filesystem Utilities
//
//   - FindVaultRoot: walks up directories to find .docuvault
//
// # String Utilities
//
//   - FormatPaths: formats file paths for human-readable output
//   - IsValidAccount, ShortAccount: wallet account checks and display
//   - SanitizeName: normalizes names for safe storage
//
// # Terminal and I/O Utilities
//
//   - ReadPassphrase: reads a hidden passphrase
//   - ReadStdin: reads piped input, bounded by MaxStdinBytes
package utils
