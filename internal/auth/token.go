package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenManager handles issuing and validating session tokens.
type TokenManager struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

// NewTokenManager builds a manager for the configured HMAC algorithm.
// Non-HMAC algorithms are rejected: the service signs and verifies with a
// single shared secret.
func NewTokenManager(secret, algorithm string, ttlMinutes int) (*TokenManager, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("algorithm %q is not an HMAC method", algorithm)
	}
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{
		secret: []byte(secret),
		method: method,
		ttl:    time.Duration(ttlMinutes) * time.Minute,
	}, nil
}

// Claims describes the session token payload.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Generate builds and signs a session token for the user. Every token
// carries an expiry; sessions are never open-ended.
func (tm *TokenManager) Generate(userID, username string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(tm.method, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Parse validates a token and returns its claims. Tokens without an expiry
// claim fail closed.
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			return tm.secret, nil
		},
		jwt.WithValidMethods([]string{tm.method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
