package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const (
	// digestLen is the stored width of the base64-encoded digest.
	digestLen = 43
	saltBytes = 16
)

// Hasher derives salted password digests. Every credential carries its own
// random salt; the pepper is a process-wide secret mixed into every digest so
// a leaked table alone is not enough to mount an offline attack.
type Hasher struct {
	pepper []byte
}

// NewHasher builds a Hasher with the configured pepper.
func NewHasher(pepper string) *Hasher {
	return &Hasher{pepper: []byte(pepper)}
}

// Hash computes the digest of password under the given salt. Deterministic:
// the same (password, salt) pair always yields the same digest.
func (h *Hasher) Hash(password, salt string) string {
	d, _ := blake2b.New256(nil)
	d.Write([]byte(password))
	d.Write([]byte(salt))
	d.Write(h.pepper)
	sum := d.Sum(nil)
	return base64.StdEncoding.EncodeToString(sum)[:digestLen]
}

// Verify re-hashes and compares in constant time.
func (h *Hasher) Verify(password, salt, digest string) bool {
	computed := h.Hash(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// NewSalt returns a fresh per-credential salt.
func NewSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
