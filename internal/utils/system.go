package utils

import (
	"os/user"
	"regexp"
	"strings"
)

// GetUsername returns the current username.
func GetUsername() (string, error) {
	user, err := user.Current()
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

var (
	unsafeNameChars = regexp.MustCompile(`[^a-z0-9\-_]`)
	repeatedHyphens = regexp.MustCompile(`-+`)
)

// SanitizeName lowercases name, converts spaces to hyphens and drops
// anything that is not alphanumeric, a hyphen or an underscore.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = unsafeNameChars.ReplaceAllString(name, "")
	name = repeatedHyphens.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")

	if name == "" {
		name = "vault"
	}
	return name
}
