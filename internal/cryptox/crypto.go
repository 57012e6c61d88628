// Package cryptox implements the primitives behind the credential vault:
// PBKDF2-HMAC-SHA256 key derivation, Fernet authenticated encryption and the
// PIN digest.
//
// The encodings match vault files written by earlier releases: the 32 derived
// bytes are used directly as a Fernet key (16 bytes signing, 16 bytes AES-128)
// and tokens are URL-safe base64 with padding.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/signout/internal/common"
	"github.com/fernet/fernet-go"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the length of the per-write salt stored in front of the token.
	SaltSize = 16

	// KeySize is the length of the derived key (a full Fernet key).
	KeySize = 32

	// DefaultIterations is the PBKDF2 work factor used for vault files.
	DefaultIterations = 100_000

	// Fernet tokens carry a creation time stamp; vault tokens never expire.
	noExpiry = -1
)

var (
	ErrShortSalt         = errors.New("salt too short")
	ErrInvalidIterations = errors.New("iteration count must be positive")
	ErrDecrypt           = errors.New("token authentication failed")
)

// NewSalt returns SaltSize fresh random bytes.
func NewSalt() ([]byte, error) {
	return common.RandomBytes(SaltSize)
}

// DeriveKey stretches passphrase with salt into a Fernet key using
// PBKDF2-HMAC-SHA256.
func DeriveKey(passphrase string, salt []byte, iterations int) (*fernet.Key, error) {
	if len(salt) < SaltSize {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrShortSalt, SaltSize, len(salt))
	}
	if iterations <= 0 {
		return nil, ErrInvalidIterations
	}

	raw := pbkdf2.Key([]byte(passphrase), salt, iterations, KeySize, sha256.New)
	defer common.WipeByteArray(raw)

	var k fernet.Key
	copy(k[:], raw)
	return &k, nil
}

// Seal encrypts and authenticates plaintext, returning a Fernet token.
// Every call uses a fresh random IV, so equal inputs give different tokens.
func Seal(plaintext []byte, key *fernet.Key) ([]byte, error) {
	tok, err := fernet.EncryptAndSign(plaintext, key)
	if err != nil {
		return nil, fmt.Errorf("fernet encrypt: %w", err)
	}
	return tok, nil
}

// Open verifies and decrypts a Fernet token. Any malformed, truncated or
// tampered token, as well as a wrong key, yields ErrDecrypt and no data.
func Open(token []byte, key *fernet.Key) ([]byte, error) {
	msg := fernet.VerifyAndDecrypt(token, noExpiry, []*fernet.Key{key})
	if msg == nil {
		return nil, ErrDecrypt
	}
	return msg, nil
}

// HashPIN returns the lowercase hex SHA-256 digest of the PIN characters.
//
// There is no salt and no iteration: the digest only keeps PINs out of the
// plaintext payload, the vault encryption is the confidentiality boundary.
func HashPIN(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

// EqualHash compares two PIN digests in constant time.
func EqualHash(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
