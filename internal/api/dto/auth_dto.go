package dto

// LoginRequest payload for credential verification.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the minted session token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// PasswordResetRequest payload for consuming a reset token.
type PasswordResetRequest struct {
	Username           string `json:"username" validate:"required"`
	ResetToken         string `json:"reset_token" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required"`
}

// PasswordResetMessage confirms a successful password set.
type PasswordResetMessage struct {
	Message string `json:"message"`
}

// ForgotPasswordRequest payload for issuing a fresh reset token.
type ForgotPasswordRequest struct {
	Username string `json:"username" validate:"required"`
}
