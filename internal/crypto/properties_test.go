package crypto

import (
	"bytes"
	"errors"
	"testing"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"pgregory.net/rapid"
)

// Generators

func genKey(t *rapid.T, label string) Key {
	var k Key
	copy(k[:], rapid.SliceOfN(rapid.Byte(), KeySize, KeySize).Draw(t, label))
	return k
}

func TestProperty_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		plaintext := rapid.SliceOf(rapid.Byte()).Draw(rt, "plaintext")
		key, err := GenerateKey()
		if err != nil {
			rt.Fatalf("GenerateKey failed: %v", err)
		}

		payload, km, err := Encrypt(plaintext, &key)
		if err != nil {
			rt.Fatalf("Encrypt failed: %v", err)
		}
		got, err := Decrypt(payload, km)
		if err != nil {
			rt.Fatalf("Decrypt failed: %v", err)
		}
		if !bytes.Equal(got, plaintext) {
			rt.Fatalf("round trip mismatch: got %x, want %x", got, plaintext)
		}
	})
}

func TestProperty_TamperedCiphertextFails(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		plaintext := rapid.SliceOf(rapid.Byte()).Draw(rt, "plaintext")
		payload, km, err := Encrypt(plaintext, nil)
		if err != nil {
			rt.Fatalf("Encrypt failed: %v", err)
		}

		bit := rapid.IntRange(0, len(payload.Ciphertext)*8-1).Draw(rt, "bit")
		tampered := append([]byte(nil), payload.Ciphertext...)
		tampered[bit/8] ^= 1 << (bit % 8)

		pt, err := Decrypt(Payload{Ciphertext: tampered}, km)
		if !errors.Is(err, kerrors.ErrAuthentication) {
			rt.Fatalf("expected ErrAuthentication, got %v", err)
		}
		if pt != nil {
			rt.Fatalf("plaintext returned for tampered ciphertext")
		}
	})
}

func TestProperty_TamperedIVFails(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		plaintext := rapid.SliceOf(rapid.Byte()).Draw(rt, "plaintext")
		payload, km, err := Encrypt(plaintext, nil)
		if err != nil {
			rt.Fatalf("Encrypt failed: %v", err)
		}

		bit := rapid.IntRange(0, IVSize*8-1).Draw(rt, "bit")
		km.IV[bit/8] ^= 1 << (bit % 8)

		if _, err := Decrypt(payload, km); !errors.Is(err, kerrors.ErrAuthentication) {
			rt.Fatalf("expected ErrAuthentication, got %v", err)
		}
	})
}

func TestProperty_UnrelatedKeyFails(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		plaintext := rapid.SliceOf(rapid.Byte()).Draw(rt, "plaintext")
		payload, km, err := Encrypt(plaintext, nil)
		if err != nil {
			rt.Fatalf("Encrypt failed: %v", err)
		}

		other := genKey(rt, "other")
		if other == km.Key {
			rt.Skip("drew the encryption key")
		}
		km.Key = other

		if _, err := Decrypt(payload, km); !errors.Is(err, kerrors.ErrAuthentication) {
			rt.Fatalf("expected ErrAuthentication, got %v", err)
		}
	})
}

func TestProperty_DerivationDeterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		password := rapid.SliceOf(rapid.Byte()).Draw(rt, "password")
		salt := rapid.SliceOfN(rapid.Byte(), 1, 32).Draw(rt, "salt")
		iterations := rapid.IntRange(1, 2000).Draw(rt, "iterations")

		a, err := DeriveKeyFromPassword(password, salt, iterations)
		if err != nil {
			rt.Fatalf("DeriveKeyFromPassword failed: %v", err)
		}
		b, err := DeriveKeyFromPassword(password, salt, iterations)
		if err != nil {
			rt.Fatalf("DeriveKeyFromPassword failed: %v", err)
		}
		if a != b {
			rt.Fatalf("derivation not deterministic")
		}

		otherSalt := rapid.SliceOfN(rapid.Byte(), 1, 32).Draw(rt, "otherSalt")
		if bytes.Equal(otherSalt, salt) {
			rt.Skip("drew the same salt")
		}
		c, err := DeriveKeyFromPassword(password, otherSalt, iterations)
		if err != nil {
			rt.Fatalf("DeriveKeyFromPassword failed: %v", err)
		}
		if c == a {
			rt.Fatalf("different salts produced the same key")
		}
	})
}

func TestProperty_WrapUnwrap(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		key := genKey(rt, "key")
		recipient, err := GenerateRecipientKeyPair()
		if err != nil {
			rt.Fatalf("GenerateRecipientKeyPair failed: %v", err)
		}

		wrapped, err := WrapKeyForRecipient(key, recipient.Public)
		if err != nil {
			rt.Fatalf("WrapKeyForRecipient failed: %v", err)
		}
		parsed, err := ParseWrappedKey(wrapped.Bytes())
		if err != nil {
			rt.Fatalf("ParseWrappedKey failed: %v", err)
		}

		got, err := UnwrapKey(parsed, recipient.Private)
		if err != nil {
			rt.Fatalf("UnwrapKey failed: %v", err)
		}
		if got != key {
			rt.Fatalf("unwrapped key mismatch")
		}
	})
}
