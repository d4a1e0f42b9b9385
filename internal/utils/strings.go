package utils

import (
	"regexp"
	"strings"

	"github.com/PolarWolf314/docuvault/internal/ui"
)

// accountRegex accepts wallet addresses and simple account names that are
// safe to use as file names.
var accountRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._@+\-]{0,127}$`)

// FormatPaths formats a slice of paths into a readable string.
func FormatPaths(paths []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, path := range paths {
		b.WriteString("    - ")
		b.WriteString(ui.Path.Sprint(path))
		b.WriteString("\n")
	}
	return b.String()
}

// IsValidAccount checks that account can name a public key file.
func IsValidAccount(account string) bool {
	if strings.Contains(account, "..") {
		return false
	}
	return accountRegex.MatchString(account)
}

// ShortAccount abbreviates long wallet addresses for display.
func ShortAccount(account string) string {
	if len(account) <= 14 {
		return account
	}
	return account[:6] + "..." + account[len(account)-4:]
}
