package crypto

import (
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
)

const (
	privateKeyBlockType       = "X25519 PRIVATE KEY"
	sealedPrivateKeyBlockType = "ENCRYPTED X25519 PRIVATE KEY"
	publicKeyBlockType        = "X25519 PUBLIC KEY"

	// sealedKeyFormatVersion is the current format of passphrase-sealed key files.
	sealedKeyFormatVersion = 1
)

// EncodePrivateKey PEM-encodes priv. A non-empty passphrase seals the key
// with a PBKDF2-derived key and AES-256-GCM.
func EncodePrivateKey(priv PrivateKey, passphrase []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return pem.EncodeToMemory(&pem.Block{Type: privateKeyBlockType, Bytes: priv[:]}), nil
	}

	salt, err := NewSalt()
	if err != nil {
		return nil, err
	}
	kek, err := DeriveKeyFromPassword(passphrase, salt, DefaultIterations)
	if err != nil {
		return nil, err
	}
	defer Wipe(kek[:])

	payload, km, err := Encrypt(priv[:], &kek)
	if err != nil {
		return nil, fmt.Errorf("sealing private key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{
		Type: sealedPrivateKeyBlockType,
		Headers: map[string]string{
			"Version":    strconv.Itoa(sealedKeyFormatVersion),
			"Salt":       base64.StdEncoding.EncodeToString(salt),
			"Iterations": strconv.Itoa(DefaultIterations),
			"IV":         base64.StdEncoding.EncodeToString(km.IV[:]),
		},
		Bytes: payload.Ciphertext,
	}), nil
}

// DecodePrivateKey parses a PEM private key produced by EncodePrivateKey.
func DecodePrivateKey(data, passphrase []byte) (PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return PrivateKey{}, fmt.Errorf("%w: failed to decode PEM block containing private key", kerrors.ErrInvalidKey)
	}

	switch block.Type {
	case privateKeyBlockType:
		return privateKeyFromBytes(block.Bytes)
	case sealedPrivateKeyBlockType:
		return openSealedPrivateKey(block, passphrase)
	default:
		return PrivateKey{}, fmt.Errorf("%w: unexpected PEM block %q", kerrors.ErrInvalidKey, block.Type)
	}
}

// IsSealedPrivateKey reports whether data holds a passphrase-sealed key.
func IsSealedPrivateKey(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil && block.Type == sealedPrivateKeyBlockType
}

func openSealedPrivateKey(block *pem.Block, passphrase []byte) (PrivateKey, error) {
	version, err := strconv.Atoi(block.Headers["Version"])
	if err != nil || version > sealedKeyFormatVersion {
		return PrivateKey{}, fmt.Errorf("%w: unsupported key file version %q", kerrors.ErrInvalidKey, block.Headers["Version"])
	}
	if len(passphrase) == 0 {
		return PrivateKey{}, kerrors.ErrWrongPassphrase
	}

	salt, err := base64.StdEncoding.DecodeString(block.Headers["Salt"])
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: bad salt header", kerrors.ErrInvalidKey)
	}
	iterations, err := strconv.Atoi(block.Headers["Iterations"])
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: bad iterations header", kerrors.ErrInvalidKey)
	}
	rawIV, err := base64.StdEncoding.DecodeString(block.Headers["IV"])
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: bad IV header", kerrors.ErrInvalidKey)
	}
	iv, err := IVFromBytes(rawIV)
	if err != nil {
		return PrivateKey{}, err
	}

	kek, err := DeriveKeyFromPassword(passphrase, salt, iterations)
	if err != nil {
		return PrivateKey{}, err
	}
	defer Wipe(kek[:])

	raw, err := Decrypt(Payload{Ciphertext: block.Bytes}, KeyMaterial{Key: kek, IV: iv})
	if err != nil {
		return PrivateKey{}, kerrors.ErrWrongPassphrase
	}
	defer Wipe(raw)

	return privateKeyFromBytes(raw)
}

func privateKeyFromBytes(b []byte) (PrivateKey, error) {
	var priv PrivateKey
	if len(b) != len(priv) {
		return priv, fmt.Errorf("%w: private key must be %d bytes", kerrors.ErrInvalidKey, len(priv))
	}
	copy(priv[:], b)
	return priv, nil
}

// EncodePublicKey PEM-encodes pub.
func EncodePublicKey(pub PublicKey) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: publicKeyBlockType, Bytes: pub[:]})
}

// DecodePublicKey parses a PEM public key.
func DecodePublicKey(data []byte) (PublicKey, error) {
	var pub PublicKey
	block, _ := pem.Decode(data)
	if block == nil || block.Type != publicKeyBlockType {
		return pub, fmt.Errorf("%w: failed to decode PEM block containing public key", kerrors.ErrInvalidKey)
	}
	if len(block.Bytes) != len(pub) {
		return pub, fmt.Errorf("%w: public key must be %d bytes", kerrors.ErrInvalidKey, len(pub))
	}
	copy(pub[:], block.Bytes)
	return pub, nil
}

// LoadPrivateKey loads a private key from disk.
func LoadPrivateKey(path string, passphrase []byte) (PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PrivateKey{}, err
	}
	return DecodePrivateKey(data, passphrase)
}

// LoadPublicKey loads a public key from disk.
func LoadPublicKey(path string) (PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PublicKey{}, err
	}
	return DecodePublicKey(data)
}

// SaveRecipientKeyPair writes the key pair to disk, creating parent
// directories as needed.
func SaveRecipientKeyPair(privatePath, publicPath string, kp RecipientKeyPair, passphrase []byte) error {
	privateDir := filepath.Dir(privatePath)
	if err := os.MkdirAll(privateDir, 0700); err != nil {
		return fmt.Errorf("failed to create directory for private key at %s: %w", privateDir, err)
	}
	publicDir := filepath.Dir(publicPath)
	if err := os.MkdirAll(publicDir, 0700); err != nil {
		return fmt.Errorf("failed to create directory for public key at %s: %w", publicDir, err)
	}

	privPem, err := EncodePrivateKey(kp.Private, passphrase)
	if err != nil {
		return fmt.Errorf("failed to encode private key: %w", err)
	}
	if err := os.WriteFile(privatePath, privPem, 0600); err != nil {
		return fmt.Errorf("failed to write private key file at %s: %w", privatePath, err)
	}

	// #nosec G306 -- public keys are shared with the vault.
	if err := os.WriteFile(publicPath, EncodePublicKey(kp.Public), 0644); err != nil {
		return fmt.Errorf("failed to write public key file at %s: %w", publicPath, err)
	}

	return nil
}
