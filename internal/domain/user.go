package domain

import "time"

// DeletedMarker is appended to the username when an account is soft-deleted.
// A username carrying the marker can never collide with a live account
// because the marker characters are outside the allowed username charset.
const DeletedMarker = "[deleted]"

// User is the domain model for an account.
type User struct {
	ID        string
	Username  string
	Email     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Deleted reports whether the account has been soft-deleted.
func (u *User) Deleted() bool {
	return u.DeletedAt != nil
}
