package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusUnprocessableEntity, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewInvalidResetLink covers every failed username/token lookup during a
// password reset. Both halves of the lookup fail with this same value so the
// response never reveals which part was wrong.
func NewInvalidResetLink() error {
	return NewDomainError("NOT_FOUND", "Something went wrong. Invalid link.", http.StatusBadRequest, nil)
}

// NewPasswordMismatch signals that the confirmation does not match.
func NewPasswordMismatch() error {
	return NewDomainError("PASSWORD_MISMATCH", "Passwords don't match.", http.StatusBadRequest, nil)
}

// NewWeakPassword signals a password policy violation.
func NewWeakPassword(reason string) error {
	return NewDomainError("WEAK_PASSWORD", reason, http.StatusBadRequest, nil)
}

// NewInvalidCredentials is returned for any login failure. Unknown usernames
// and wrong passwords are deliberately indistinguishable.
func NewInvalidCredentials() error {
	return NewDomainError("INVALID_CREDENTIALS", "Invalid credentials", http.StatusUnprocessableEntity, nil)
}

// NewInvalidToken signals a session token that failed to decode.
func NewInvalidToken(message string) error {
	return NewDomainError("INVALID_TOKEN", message, http.StatusUnauthorized, nil)
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError. Anything that is not
// already a DomainError becomes an opaque internal error; raw error text
// never reaches the client.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
