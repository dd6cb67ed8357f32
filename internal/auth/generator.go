package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	// DefaultTokenLength gives ~280 bits of entropy over the token charset.
	DefaultTokenLength = 44
	// MinTokenLength is the floor below which a token no longer qualifies
	// as a security token.
	MinTokenLength = 16

	letters   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits    = "0123456789"
	punct     = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
	specials  = "@$!%*?&"
	tokenSet  = letters + digits + punct
	passwdSet = letters + digits + specials
)

// ErrTokenTooShort is returned when a caller asks for a token with too
// little entropy.
var ErrTokenTooShort = errors.New("token length below safe minimum")

// RandomToken returns an opaque token of the given length drawn uniformly
// from letters, digits and punctuation using a CSPRNG.
func RandomToken(length int) (string, error) {
	if length < MinTokenLength {
		return "", ErrTokenTooShort
	}
	return randomString(tokenSet, length)
}

// GeneratePassword returns a random password restricted to the characters
// the password policy accepts.
func GeneratePassword(length int) (string, error) {
	if length < MinTokenLength {
		return "", ErrTokenTooShort
	}
	return randomString(passwdSet, length)
}

func randomString(charset string, length int) (string, error) {
	max := big.NewInt(int64(len(charset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random token: %w", err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}
