package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the PBKDF2 iteration count used when none is given.
	DefaultIterations = 100000

	// SaltSize is the length of salts produced by NewSalt.
	SaltSize = 16
)

// DeriveKeyFromPassword derives an AES-256 key with PBKDF2-HMAC-SHA256.
//
// The result is deterministic for identical inputs. An iteration count of
// zero or less selects DefaultIterations.
func DeriveKeyFromPassword(password, salt []byte, iterations int) (Key, error) {
	if len(salt) == 0 {
		return Key{}, kerrors.ErrInvalidSalt
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	raw := pbkdf2.Key(password, salt, iterations, KeySize, sha256.New)
	defer Wipe(raw)

	var k Key
	copy(k[:], raw)
	return k, nil
}

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrEntropySource, err)
	}
	return salt, nil
}
