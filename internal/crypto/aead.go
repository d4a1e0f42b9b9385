package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// IVSize is the GCM nonce length in bytes.
	IVSize = 12

	// TagSize is the GCM authentication tag length appended to ciphertext.
	TagSize = 16
)

// Key is a 256-bit AES key.
type Key [KeySize]byte

// IV is a 96-bit GCM nonce. It must never be reused with the same key.
type IV [IVSize]byte

// KeyMaterial is the key and IV used for a single encryption.
type KeyMaterial struct {
	Key Key
	IV  IV
}

// Payload is AES-GCM ciphertext with the authentication tag appended.
type Payload struct {
	Ciphertext []byte
}

// GenerateKey returns a fresh random AES-256 key.
func GenerateKey() (Key, error) {
	return generateKey(rand.Reader)
}

func generateKey(r io.Reader) (Key, error) {
	var k Key
	if _, err := io.ReadFull(r, k[:]); err != nil {
		return Key{}, fmt.Errorf("%w: %v", kerrors.ErrEntropySource, err)
	}
	return k, nil
}

func generateIV(r io.Reader) (IV, error) {
	var iv IV
	if _, err := io.ReadFull(r, iv[:]); err != nil {
		return IV{}, fmt.Errorf("%w: %v", kerrors.ErrEntropySource, err)
	}
	return iv, nil
}

// Encrypt seals plaintext with AES-256-GCM under a fresh random IV.
//
// If key is nil a new key is generated. The returned KeyMaterial holds the
// key and IV needed to decrypt the payload.
func Encrypt(plaintext []byte, key *Key) (Payload, KeyMaterial, error) {
	return encrypt(rand.Reader, plaintext, key)
}

func encrypt(r io.Reader, plaintext []byte, key *Key) (Payload, KeyMaterial, error) {
	var km KeyMaterial
	if key == nil {
		k, err := generateKey(r)
		if err != nil {
			return Payload{}, KeyMaterial{}, err
		}
		km.Key = k
	} else {
		km.Key = *key
	}

	iv, err := generateIV(r)
	if err != nil {
		return Payload{}, KeyMaterial{}, err
	}
	km.IV = iv

	gcm, err := newGCM(km.Key[:])
	if err != nil {
		return Payload{}, KeyMaterial{}, err
	}

	ct := gcm.Seal(nil, km.IV[:], plaintext, nil)
	return Payload{Ciphertext: ct}, km, nil
}

// Decrypt opens an AES-256-GCM payload.
//
// Returns ErrAuthentication if the tag does not verify. No plaintext is
// returned in that case.
func Decrypt(p Payload, km KeyMaterial) ([]byte, error) {
	if len(p.Ciphertext) < TagSize {
		return nil, fmt.Errorf("%w: ciphertext shorter than tag", kerrors.ErrAuthentication)
	}

	gcm, err := newGCM(km.Key[:])
	if err != nil {
		return nil, err
	}

	pt, err := gcm.Open(nil, km.IV[:], p.Ciphertext, nil)
	if err != nil {
		return nil, kerrors.ErrAuthentication
	}
	return pt, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", kerrors.ErrInvalidKey, KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return gcm, nil
}

// KeyFromBytes copies b into a Key.
func KeyFromBytes(b []byte) (Key, error) {
	var k Key
	if len(b) != KeySize {
		return k, fmt.Errorf("%w: expected %d bytes, got %d", kerrors.ErrInvalidKey, KeySize, len(b))
	}
	copy(k[:], b)
	return k, nil
}

// IVFromBytes copies b into an IV.
func IVFromBytes(b []byte) (IV, error) {
	var iv IV
	if len(b) != IVSize {
		return iv, fmt.Errorf("%w: expected %d byte IV, got %d", kerrors.ErrInvalidKey, IVSize, len(b))
	}
	copy(iv[:], b)
	return iv, nil
}
