package domain

import (
	"errors"
	"regexp"
	"strings"
)

// PasswordSpecials is the set of special characters accepted by the password
// policy. Generated passwords draw their specials from the same set.
const PasswordSpecials = "@$!%*?&"

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]+$`)

var (
	ErrUsernameTooShort   = errors.New("Username should be more than 2 characters")
	ErrUsernameTooLong    = errors.New("Username should be less than 255 characters")
	ErrUsernameBadCharset = errors.New("Username must be alphanumeric, underscore and dots only")
	ErrPasswordTooShort   = errors.New("Password should be more than 8 characters")
	ErrPasswordTooWeak    = errors.New("Password must have at least one uppercase letter, one lowercase letter, one number, and one special character")
)

// NormalizeUsername lowercases and trims surrounding whitespace.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername checks a normalized username against the account naming
// rules: 3-254 characters, lowercase alphanumerics plus dot, dash and
// underscore, and never the soft-delete marker.
func ValidateUsername(username string) error {
	if len(username) <= 2 {
		return ErrUsernameTooShort
	}
	if len(username) >= 255 {
		return ErrUsernameTooLong
	}
	if !usernamePattern.MatchString(username) {
		return ErrUsernameBadCharset
	}
	if strings.Contains(username, DeletedMarker) {
		return ErrUsernameBadCharset
	}
	return nil
}

// ValidatePassword enforces the password strength policy: more than 8
// characters with at least one lowercase letter, one uppercase letter, one
// digit and one special character.
func ValidatePassword(password string) error {
	if len(password) <= 8 {
		return ErrPasswordTooShort
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		}
	}
	if !lower || !upper || !digit || !special {
		return ErrPasswordTooWeak
	}
	return nil
}
