package utils

import (
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"My Documents", "my-documents"},
		{"  Contracts 2024  ", "contracts-2024"},
		{"legal--docs", "legal-docs"},
		{"Q3/Board Pack!", "q3board-pack"},
		{"under_score", "under_score"},
		{"---", "vault"},
		{"", "vault"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := SanitizeName(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeName(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetUsername(t *testing.T) {
	username, err := GetUsername()
	if err != nil {
		t.Fatalf("GetUsername() returned error: %v", err)
	}
	if username == "" {
		t.Error("GetUsername() returned empty string")
	}
}

func TestIsValidAccount(t *testing.T) {
	tests := []struct {
		account string
		valid   bool
	}{
		{"0x52908400098527886E0F7030069857D2E4169EE7", true},
		{"alice", true},
		{"alice@example.com", true},
		{"", false},
		{"../etc/passwd", false},
		{"has space", false},
		{".hidden", false},
	}

	for _, tt := range tests {
		if got := IsValidAccount(tt.account); got != tt.valid {
			t.Errorf("IsValidAccount(%q) = %v, expected %v", tt.account, got, tt.valid)
		}
	}
}

func TestShortAccount(t *testing.T) {
	if got := ShortAccount("0x52908400098527886E0F7030069857D2E4169EE7"); got != "0x5290...9EE7" {
		t.Errorf("Unexpected short form %q", got)
	}
	if got := ShortAccount("alice"); got != "alice" {
		t.Errorf("Short accounts should be unchanged, got %q", got)
	}
}
