package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

const wrapInfo = "docuvault-wrap-v1"

// PublicKey is an X25519 public key.
type PublicKey [32]byte

// PrivateKey is a clamped X25519 private scalar.
type PrivateKey [32]byte

// RecipientKeyPair holds a recipient's X25519 key pair.
type RecipientKeyPair struct {
	Private PrivateKey
	Public  PublicKey
}

// WrappedKey is a document key sealed for a single recipient.
// Wire format: ephemeral public key (32) || nonce (12) || ciphertext+tag.
type WrappedKey struct {
	EphemeralPublic PublicKey
	Nonce           IV
	Ciphertext      []byte
}

// GenerateRecipientKeyPair returns a fresh X25519 key pair.
// The private key is clamped per RFC 7748.
func GenerateRecipientKeyPair() (RecipientKeyPair, error) {
	return generateRecipientKeyPair(rand.Reader)
}

func generateRecipientKeyPair(r io.Reader) (RecipientKeyPair, error) {
	var kp RecipientKeyPair
	if _, err := io.ReadFull(r, kp.Private[:]); err != nil {
		return RecipientKeyPair{}, fmt.Errorf("%w: %v", kerrors.ErrEntropySource, err)
	}
	clamp(&kp.Private)

	pub, err := curve25519.X25519(kp.Private[:], curve25519.Basepoint)
	if err != nil {
		return RecipientKeyPair{}, fmt.Errorf("deriving public key: %w", err)
	}
	copy(kp.Public[:], pub)
	return kp, nil
}

// PublicKeyOf derives the public key for priv.
func PublicKeyOf(priv PrivateKey) (PublicKey, error) {
	var pub PublicKey
	b, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return pub, fmt.Errorf("%w: %v", kerrors.ErrInvalidKey, err)
	}
	copy(pub[:], b)
	return pub, nil
}

// WrapKeyForRecipient seals key so that only the holder of the private key
// matching recipient can recover it.
func WrapKeyForRecipient(key Key, recipient PublicKey) (WrappedKey, error) {
	return wrapKey(rand.Reader, key, recipient)
}

func wrapKey(r io.Reader, key Key, recipient PublicKey) (WrappedKey, error) {
	ephemeral, err := generateRecipientKeyPair(r)
	if err != nil {
		return WrappedKey{}, err
	}
	defer Wipe(ephemeral.Private[:])

	shared, err := curve25519.X25519(ephemeral.Private[:], recipient[:])
	if err != nil {
		return WrappedKey{}, fmt.Errorf("%w: recipient public key rejected: %v", kerrors.ErrInvalidKey, err)
	}
	defer Wipe(shared)

	kek, err := deriveKEK(shared, ephemeral.Public, recipient)
	if err != nil {
		return WrappedKey{}, err
	}
	defer Wipe(kek[:])

	nonce, err := generateIV(r)
	if err != nil {
		return WrappedKey{}, err
	}

	gcm, err := newGCM(kek[:])
	if err != nil {
		return WrappedKey{}, err
	}

	return WrappedKey{
		EphemeralPublic: ephemeral.Public,
		Nonce:           nonce,
		Ciphertext:      gcm.Seal(nil, nonce[:], key[:], ephemeral.Public[:]),
	}, nil
}

// UnwrapKey recovers a document key sealed with WrapKeyForRecipient.
//
// Returns ErrUnwrap if priv does not match the recipient the key was
// wrapped for, or if the wrapped key was modified.
func UnwrapKey(w WrappedKey, priv PrivateKey) (Key, error) {
	shared, err := curve25519.X25519(priv[:], w.EphemeralPublic[:])
	if err != nil {
		return Key{}, fmt.Errorf("%w: %v", kerrors.ErrUnwrap, err)
	}
	defer Wipe(shared)

	self, err := PublicKeyOf(priv)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %v", kerrors.ErrUnwrap, err)
	}

	kek, err := deriveKEK(shared, w.EphemeralPublic, self)
	if err != nil {
		return Key{}, err
	}
	defer Wipe(kek[:])

	gcm, err := newGCM(kek[:])
	if err != nil {
		return Key{}, err
	}

	raw, err := gcm.Open(nil, w.Nonce[:], w.Ciphertext, w.EphemeralPublic[:])
	if err != nil {
		return Key{}, kerrors.ErrUnwrap
	}
	defer Wipe(raw)

	k, err := KeyFromBytes(raw)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %v", kerrors.ErrUnwrap, err)
	}
	return k, nil
}

// Bytes serializes the wrapped key.
func (w WrappedKey) Bytes() []byte {
	out := make([]byte, 0, len(w.EphemeralPublic)+len(w.Nonce)+len(w.Ciphertext))
	out = append(out, w.EphemeralPublic[:]...)
	out = append(out, w.Nonce[:]...)
	out = append(out, w.Ciphertext...)
	return out
}

// ParseWrappedKey deserializes a wrapped key.
func ParseWrappedKey(data []byte) (WrappedKey, error) {
	const headerLen = 32 + IVSize
	if len(data) < headerLen+TagSize {
		return WrappedKey{}, fmt.Errorf("%w: wrapped key too short", kerrors.ErrUnwrap)
	}

	var w WrappedKey
	copy(w.EphemeralPublic[:], data[:32])
	copy(w.Nonce[:], data[32:headerLen])
	w.Ciphertext = append([]byte(nil), data[headerLen:]...)
	return w, nil
}

func deriveKEK(shared []byte, ephemeral, recipient PublicKey) (Key, error) {
	salt := make([]byte, 0, 64)
	salt = append(salt, ephemeral[:]...)
	salt = append(salt, recipient[:]...)

	var kek Key
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, salt, []byte(wrapInfo)), kek[:]); err != nil {
		return Key{}, fmt.Errorf("deriving key-encryption key: %w", err)
	}
	return kek, nil
}

func clamp(k *PrivateKey) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}
