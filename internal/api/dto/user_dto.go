package dto

import (
	"time"

	"github.com/manocorp/account-service/internal/domain"
)

// CreateUserRequest payload for new accounts.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// UpdateUserRequest payload for renames and activation toggles.
type UpdateUserRequest struct {
	ID       string `json:"id" validate:"required,uuid"`
	Username string `json:"username" validate:"required"`
	IsActive bool   `json:"is_active"`
}

// UserResponse is the public account representation. Email and deletion
// timestamps are not exposed.
type UserResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// NewUserResponse maps a domain user onto the wire shape.
func NewUserResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
	if !user.UpdatedAt.IsZero() {
		updated := user.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

// NewUserResponses maps a page of users.
func NewUserResponses(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserResponse(user))
	}
	return out
}
