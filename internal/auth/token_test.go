package auth_test

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manocorp/account-service/internal/auth"
)

func TestNewTokenManager(t *testing.T) {
	t.Run("accepts HMAC algorithms", func(t *testing.T) {
		for _, alg := range []string{"HS256", "HS384", "HS512"} {
			_, err := auth.NewTokenManager("secret", alg, 60)
			assert.NoError(t, err, alg)
		}
	})

	t.Run("rejects unknown algorithm", func(t *testing.T) {
		_, err := auth.NewTokenManager("secret", "HS1024", 60)
		assert.Error(t, err)
	})

	t.Run("rejects non-HMAC algorithm", func(t *testing.T) {
		_, err := auth.NewTokenManager("secret", "RS256", 60)
		assert.Error(t, err)
	})
}

func TestTokenRoundTrip(t *testing.T) {
	tm, err := auth.NewTokenManager("secret", "HS256", 60)
	require.NoError(t, err)

	token, expiresAt, err := tm.Generate("user-1", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
}

func TestTokenParseFailures(t *testing.T) {
	tm, err := auth.NewTokenManager("secret", "HS256", 60)
	require.NoError(t, err)

	t.Run("tampered signature", func(t *testing.T) {
		token, _, err := tm.Generate("user-1", "alice")
		require.NoError(t, err)

		last := token[len(token)-1]
		flipped := byte('A')
		if last == 'A' {
			flipped = 'B'
		}
		_, err = tm.Parse(token[:len(token)-1] + string(flipped))
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := auth.NewTokenManager("other-secret", "HS256", 60)
		require.NoError(t, err)

		token, _, err := other.Generate("user-1", "alice")
		require.NoError(t, err)

		_, err = tm.Parse(token)
		assert.Error(t, err)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := tm.Parse("not-a-token")
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := &auth.Claims{
			Username: "alice",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = tm.Parse(token)
		assert.Error(t, err)
	})

	t.Run("missing expiry fails closed", func(t *testing.T) {
		claims := &auth.Claims{
			Username: "alice",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:  "user-1",
				IssuedAt: jwt.NewNumericDate(time.Now()),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = tm.Parse(token)
		assert.Error(t, err)
	})

	t.Run("wrong signing method", func(t *testing.T) {
		claims := &auth.Claims{
			Username: "alice",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = tm.Parse(token)
		assert.Error(t, err)
	})
}
