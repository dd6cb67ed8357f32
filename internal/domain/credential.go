package domain

import "time"

// Credential is the authentication record bound to a user. The password is
// stored as a salted digest, never plaintext. ResetToken is blank except
// between issuance and consumption of a password reset; a consumed token is
// cleared in the same write that stores the new digest.
type Credential struct {
	ID           string
	UserID       string
	PasswordHash string
	Salt         string
	Active       bool
	ResetToken   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}
