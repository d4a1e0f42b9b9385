// Package ui provides semantic text formatting for CLI output.
//
// Formatters render content by type (commands, paths, accounts, viewer
// states) and adapt to terminal capabilities. When colors are available,
// content is colorized. When NO_COLOR is set or the terminal doesn't
// support colors, text decorations (backticks, quotes) are used instead.
//
// # Semantic Formatters
//
//	ui.Code.Sprint("docuvault vault init")    // Commands and code
//	ui.Path.Sprint(".docuvault/config.toml")  // File paths
//	ui.Account.Sprint("0x5290...9EE7")        // Wallet accounts
//	ui.Success.Sprint("✓")                     // Success indicators
//	ui.Error.Sprint("✗")                       // Error indicators
//	ui.Danger.Sprint("terminated")            // Irreversible outcomes
//	ui.Muted.Sprint("optional")               // De-emphasized text
//
// State colours a viewer state name, and Field lays out "label: value"
// rows for status output.
//
// # Color Behavior
//
// Colors are disabled when:
//   - NO_COLOR environment variable is set (any value)
//   - Terminal doesn't support colors (TERM=dumb, not a TTY)
package ui
