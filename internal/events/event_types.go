package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated            EventType = "user_created"
	EventUserUpdated            EventType = "user_updated"
	EventUserDeleted            EventType = "user_deleted"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordChanged        EventType = "password_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserUpdatedPayload payload.
type UserUpdatedPayload struct {
	OldUsername string `json:"old_username"`
	NewUsername string `json:"new_username"`
	IsActive    bool   `json:"is_active"`
}

// UserDeletedPayload payload.
type UserDeletedPayload struct {
	Username string `json:"username"`
}

// PasswordResetRequestedPayload carries the plaintext token for out-of-band
// delivery. It is never persisted and never returned to the API caller.
type PasswordResetRequestedPayload struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
}

// PasswordChangedPayload payload.
type PasswordChangedPayload struct {
	Username string `json:"username"`
}
