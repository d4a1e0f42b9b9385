package crypto

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
)

func TestSaveAndLoadRecipientKeyPair(t *testing.T) {
	tempDir := t.TempDir()
	privatePath := filepath.Join(tempDir, "keys", "alice")
	publicPath := filepath.Join(tempDir, "public_keys", "alice.pub")

	kp, err := GenerateRecipientKeyPair()
	if err != nil {
		t.Fatalf("GenerateRecipientKeyPair failed: %v", err)
	}

	if err := SaveRecipientKeyPair(privatePath, publicPath, kp, nil); err != nil {
		t.Fatalf("SaveRecipientKeyPair failed: %v", err)
	}

	info, err := os.Stat(privatePath)
	if err != nil {
		t.Fatalf("Failed to stat private key: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected private key mode 0600, got %o", info.Mode().Perm())
	}

	priv, err := LoadPrivateKey(privatePath, nil)
	if err != nil {
		t.Fatalf("LoadPrivateKey failed: %v", err)
	}
	if priv != kp.Private {
		t.Error("Loaded private key does not match")
	}

	pub, err := LoadPublicKey(publicPath)
	if err != nil {
		t.Fatalf("LoadPublicKey failed: %v", err)
	}
	if pub != kp.Public {
		t.Error("Loaded public key does not match")
	}
}

func TestSealedPrivateKey(t *testing.T) {
	kp, err := GenerateRecipientKeyPair()
	if err != nil {
		t.Fatalf("GenerateRecipientKeyPair failed: %v", err)
	}

	data, err := EncodePrivateKey(kp.Private, []byte("correct horse"))
	if err != nil {
		t.Fatalf("EncodePrivateKey failed: %v", err)
	}
	if !IsSealedPrivateKey(data) {
		t.Fatal("Expected sealed private key")
	}

	priv, err := DecodePrivateKey(data, []byte("correct horse"))
	if err != nil {
		t.Fatalf("DecodePrivateKey failed: %v", err)
	}
	if priv != kp.Private {
		t.Error("Decoded private key does not match")
	}

	if _, err := DecodePrivateKey(data, []byte("battery staple")); !errors.Is(err, kerrors.ErrWrongPassphrase) {
		t.Errorf("Expected ErrWrongPassphrase, got %v", err)
	}
	if _, err := DecodePrivateKey(data, nil); !errors.Is(err, kerrors.ErrWrongPassphrase) {
		t.Errorf("Expected ErrWrongPassphrase without passphrase, got %v", err)
	}
}

func TestDecodePublicKey_Invalid(t *testing.T) {
	if _, err := DecodePublicKey([]byte("not pem")); !errors.Is(err, kerrors.ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey, got %v", err)
	}
}

func TestDeriveKeyFromPassword_DefaultIterations(t *testing.T) {
	salt := []byte("0123456789abcdef")
	a, err := DeriveKeyFromPassword([]byte("pw"), salt, 0)
	if err != nil {
		t.Fatalf("DeriveKeyFromPassword failed: %v", err)
	}
	b, err := DeriveKeyFromPassword([]byte("pw"), salt, DefaultIterations)
	if err != nil {
		t.Fatalf("DeriveKeyFromPassword failed: %v", err)
	}
	if a != b {
		t.Error("Expected zero iterations to select DefaultIterations")
	}
}

func TestDeriveKeyFromPassword_EmptySalt(t *testing.T) {
	if _, err := DeriveKeyFromPassword([]byte("pw"), nil, 1); !errors.Is(err, kerrors.ErrInvalidSalt) {
		t.Errorf("Expected ErrInvalidSalt, got %v", err)
	}
}
