package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/manocorp/account-service/internal/auth"
	"github.com/manocorp/account-service/internal/config"
	"github.com/manocorp/account-service/internal/domain"
	"github.com/manocorp/account-service/internal/events"
	"github.com/manocorp/account-service/internal/repository"
	"github.com/manocorp/account-service/pkg/util/errorutil"
)

// PasswordSetMessage is the confirmation returned after a successful reset.
const PasswordSetMessage = "Your password has been set."

// Shared error values. Login failures and reset-link failures each map to a
// single value so different causes are indistinguishable to the caller.
var (
	errInvalidCredentials = errorutil.NewInvalidCredentials()
	errInvalidResetLink   = errorutil.NewInvalidResetLink()
)

// AuthService coordinates login and password reset flows.
type AuthService struct {
	users         repository.UserRepository
	creds         repository.CredentialRepository
	hasher        *auth.Hasher
	tokenMgr      *auth.TokenManager
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	resetTokenLen int
}

// AuthDependencies encapsulates collaborator requirements for auth service.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	CredentialRepo repository.CredentialRepository
	Hasher         *auth.Hasher
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) (*AuthService, error) {
	tokenMgr, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm, cfg.Auth.AccessTokenTTLMinutes)
	if err != nil {
		return nil, err
	}

	resetTokenLen := cfg.Auth.ResetTokenLength
	if resetTokenLen < auth.MinTokenLength {
		resetTokenLen = auth.DefaultTokenLength
	}

	return &AuthService{
		users:         deps.UserRepo,
		creds:         deps.CredentialRepo,
		hasher:        deps.Hasher,
		tokenMgr:      tokenMgr,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
		resetTokenLen: resetTokenLen,
	}, nil
}

// Login verifies the credentials and mints a session token. Unknown
// usernames and wrong passwords fail with the same error value.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	username = domain.NormalizeUsername(username)

	user, err := s.users.GetActiveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, errInvalidCredentials
		}
		return "", time.Time{}, err
	}

	cred, err := s.creds.GetActiveByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, errInvalidCredentials
		}
		return "", time.Time{}, err
	}

	if !s.hasher.Verify(password, cred.Salt, cred.PasswordHash) {
		return "", time.Time{}, errInvalidCredentials
	}

	return s.tokenMgr.Generate(user.ID, user.Username)
}

// PasswordReset consumes a one-time reset token and stores the new password.
// Username and token must jointly match; a valid token presented with the
// wrong username fails exactly like a bogus token.
func (s *AuthService) PasswordReset(ctx context.Context, username, resetToken, newPassword, newPasswordConfirm string) (string, error) {
	username = domain.NormalizeUsername(username)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errInvalidResetLink
		}
		return "", err
	}
	if user.Deleted() {
		return "", errInvalidResetLink
	}

	if _, err := s.creds.GetByUserAndResetToken(ctx, user.ID, resetToken); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errInvalidResetLink
		}
		return "", err
	}

	if newPassword != newPasswordConfirm {
		return "", errorutil.NewPasswordMismatch()
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return "", errorutil.NewWeakPassword(err.Error())
	}

	salt, err := auth.NewSalt()
	if err != nil {
		return "", err
	}
	hash := s.hasher.Hash(newPassword, salt)

	// Guarded by the original token value: a concurrent consumption of the
	// same token loses the race and reports the link as invalid.
	if err := s.creds.ConsumeResetToken(ctx, user.ID, resetToken, hash, salt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errInvalidResetLink
		}
		return "", err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventPasswordChanged,
		UserID:  user.ID,
		Payload: events.PasswordChangedPayload{Username: user.Username},
	})

	return PasswordSetMessage, nil
}

// RequestPasswordReset issues a fresh reset token for the account and
// publishes it for out-of-band delivery. Unknown usernames succeed silently
// so the endpoint cannot be used to enumerate accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, username string) error {
	username = domain.NormalizeUsername(username)

	user, err := s.users.GetActiveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug("reset requested for unknown username")
			return nil
		}
		return err
	}

	cred, err := s.creds.GetActiveByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug("reset requested for user without credential", zap.String("user_id", user.ID))
			return nil
		}
		return err
	}

	token, err := auth.RandomToken(s.resetTokenLen)
	if err != nil {
		return err
	}
	if err := s.creds.SetResetToken(ctx, cred.ID, token); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:   events.EventPasswordResetRequested,
		UserID: user.ID,
		Payload: events.PasswordResetRequestedPayload{
			Username:   user.Username,
			Email:      user.Email,
			ResetToken: token,
		},
	})
	return nil
}

// DecodeToken validates a bearer token and returns its claims.
func (s *AuthService) DecodeToken(tokenStr string) (*auth.Claims, error) {
	claims, err := s.tokenMgr.Parse(tokenStr)
	if err != nil {
		return nil, errorutil.NewInvalidToken("invalid token")
	}
	return claims, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
