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

// UserCache is the profile cache consumed by the user service.
type UserCache interface {
	Get(ctx context.Context, username string) (*domain.User, bool)
	Set(ctx context.Context, user *domain.User)
	Invalidate(ctx context.Context, usernames ...string)
}

// UserService implements the account lifecycle: create, read, update and
// soft-delete. Creation also seeds the credential record with a generated
// password and an initial reset token, delivered out of band.
type UserService struct {
	users         repository.UserRepository
	creds         repository.CredentialRepository
	hasher        *auth.Hasher
	dispatcher    events.Dispatcher
	cache         UserCache
	logger        *zap.Logger
	resetTokenLen int
}

// UserDependencies encapsulates collaborator requirements for user service.
type UserDependencies struct {
	UserRepo       repository.UserRepository
	CredentialRepo repository.CredentialRepository
	Hasher         *auth.Hasher
	Dispatcher     events.Dispatcher
	Cache          UserCache
	Logger         *zap.Logger
}

// NewUserService builds the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	resetTokenLen := cfg.Auth.ResetTokenLength
	if resetTokenLen < auth.MinTokenLength {
		resetTokenLen = auth.DefaultTokenLength
	}

	return &UserService{
		users:         deps.UserRepo,
		creds:         deps.CredentialRepo,
		hasher:        deps.Hasher,
		dispatcher:    deps.Dispatcher,
		cache:         deps.Cache,
		logger:        deps.Logger,
		resetTokenLen: resetTokenLen,
	}
}

// Create registers a new account and seeds its credential.
func (s *UserService) Create(ctx context.Context, username, email string) (*domain.User, error) {
	username = domain.NormalizeUsername(username)
	if err := domain.ValidateUsername(username); err != nil {
		return nil, errorutil.NewValidationError(err.Error(), nil)
	}

	user := &domain.User{
		Username: username,
		Email:    email,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errorutil.NewConflict("User already exists", nil)
		}
		return nil, err
	}

	resetToken, err := s.seedCredential(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventUserCreated,
		UserID:  user.ID,
		Payload: events.UserCreatedPayload{Username: user.Username, Email: user.Email},
	})
	s.publish(ctx, events.Event{
		Type:   events.EventPasswordResetRequested,
		UserID: user.ID,
		Payload: events.PasswordResetRequestedPayload{
			Username:   user.Username,
			Email:      user.Email,
			ResetToken: resetToken,
		},
	})

	return user, nil
}

// Get returns an active, non-deleted account by username.
func (s *UserService) Get(ctx context.Context, username string) (*domain.User, error) {
	username = domain.NormalizeUsername(username)

	if cached, ok := s.cache.Get(ctx, username); ok {
		return cached, nil
	}

	user, err := s.users.GetActiveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("User", nil)
		}
		return nil, err
	}

	s.cache.Set(ctx, user)
	return user, nil
}

// List returns one page of active accounts ordered by username.
func (s *UserService) List(ctx context.Context, page int) ([]*domain.User, error) {
	return s.users.List(ctx, page)
}

// Update renames and/or toggles an account. The new username must not be
// taken by another account.
func (s *UserService) Update(ctx context.Context, id, username string, isActive bool) (*domain.User, error) {
	username = domain.NormalizeUsername(username)
	if err := domain.ValidateUsername(username); err != nil {
		return nil, errorutil.NewValidationError(err.Error(), nil)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("User", nil)
		}
		return nil, err
	}

	taken, err := s.users.UsernameTakenByOther(ctx, username, user.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errorutil.NewConflict("User already exists", nil)
	}

	oldUsername := user.Username
	user.Username = username
	user.IsActive = isActive
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errorutil.NewConflict("User already exists", nil)
		}
		return nil, err
	}

	s.cache.Invalidate(ctx, oldUsername, user.Username)
	s.publish(ctx, events.Event{
		Type:   events.EventUserUpdated,
		UserID: user.ID,
		Payload: events.UserUpdatedPayload{
			OldUsername: oldUsername,
			NewUsername: user.Username,
			IsActive:    user.IsActive,
		},
	})

	return user, nil
}

// Delete soft-deletes an account: the row is kept, the username gets the
// deletion marker appended and the account disappears from active lookups.
func (s *UserService) Delete(ctx context.Context, username string) (*domain.User, error) {
	username = domain.NormalizeUsername(username)

	user, err := s.users.SoftDelete(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("User", nil)
		}
		return nil, err
	}

	s.cache.Invalidate(ctx, username)
	s.publish(ctx, events.Event{
		Type:    events.EventUserDeleted,
		UserID:  user.ID,
		Payload: events.UserDeletedPayload{Username: username},
	})

	return user, nil
}

// seedCredential stores a credential with a generated password and an
// initial reset token, and returns the token for out-of-band delivery.
func (s *UserService) seedCredential(ctx context.Context, userID string) (string, error) {
	password, err := auth.GeneratePassword(auth.DefaultTokenLength)
	if err != nil {
		return "", err
	}
	salt, err := auth.NewSalt()
	if err != nil {
		return "", err
	}
	resetToken, err := auth.RandomToken(s.resetTokenLen)
	if err != nil {
		return "", err
	}

	cred := &domain.Credential{
		UserID:       userID,
		PasswordHash: s.hasher.Hash(password, salt),
		Salt:         salt,
		Active:       true,
		ResetToken:   resetToken,
	}
	if err := s.creds.Create(ctx, cred); err != nil {
		return "", err
	}
	return resetToken, nil
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
