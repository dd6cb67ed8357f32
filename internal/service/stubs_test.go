package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/manocorp/account-service/internal/config"
	"github.com/manocorp/account-service/internal/domain"
	"github.com/manocorp/account-service/internal/repository"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			JWTAlgorithm:          "HS256",
			AccessTokenTTLMinutes: 60,
			PasswordPepper:        "test-pepper",
			ResetTokenLength:      44,
		},
	}
}

// stubUserRepo is an in-memory repository.UserRepository.
type stubUserRepo struct {
	users  map[string]*domain.User // keyed by ID
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	r.nextID++
	user.ID = "user-" + strconv.Itoa(r.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	existing, ok := r.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	for _, other := range r.users {
		if other.ID != user.ID && other.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	user.UpdatedAt = time.Now()
	*existing = *user
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneUser(user), nil
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return cloneUser(user), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) GetActiveByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username && user.IsActive && user.DeletedAt == nil {
			return cloneUser(user), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) List(_ context.Context, page int) ([]*domain.User, error) {
	if page < 1 {
		page = 1
	}
	active := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		if user.IsActive && user.DeletedAt == nil {
			active = append(active, cloneUser(user))
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Username < active[j].Username })

	start := (page - 1) * repository.PageSize
	if start >= len(active) {
		return nil, nil
	}
	end := start + repository.PageSize
	if end > len(active) {
		end = len(active)
	}
	return active[start:end], nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username && user.DeletedAt == nil {
			now := time.Now()
			user.IsActive = false
			user.Username = user.Username + domain.DeletedMarker
			user.DeletedAt = &now
			user.UpdatedAt = now
			return cloneUser(user), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) UsernameTakenByOther(_ context.Context, username, excludeID string) (bool, error) {
	for _, user := range r.users {
		if user.ID != excludeID && user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// stubCredentialRepo is an in-memory repository.CredentialRepository holding
// one credential per user.
type stubCredentialRepo struct {
	creds  map[string]*domain.Credential // keyed by user ID
	nextID int
}

func newStubCredentialRepo() *stubCredentialRepo {
	return &stubCredentialRepo{creds: make(map[string]*domain.Credential)}
}

func cloneCredential(c *domain.Credential) *domain.Credential {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

func (r *stubCredentialRepo) Create(_ context.Context, cred *domain.Credential) error {
	r.nextID++
	cred.ID = "cred-" + strconv.Itoa(r.nextID)
	cred.CreatedAt = time.Now()
	cred.UpdatedAt = cred.CreatedAt
	r.creds[cred.UserID] = cloneCredential(cred)
	return nil
}

func (r *stubCredentialRepo) GetActiveByUser(_ context.Context, userID string) (*domain.Credential, error) {
	cred, ok := r.creds[userID]
	if !ok || !cred.Active || cred.DeletedAt != nil {
		return nil, pgx.ErrNoRows
	}
	return cloneCredential(cred), nil
}

func (r *stubCredentialRepo) GetByUserAndResetToken(_ context.Context, userID, token string) (*domain.Credential, error) {
	cred, ok := r.creds[userID]
	if !ok || !cred.Active || cred.DeletedAt != nil {
		return nil, pgx.ErrNoRows
	}
	if token == "" || cred.ResetToken == "" || cred.ResetToken != token {
		return nil, pgx.ErrNoRows
	}
	return cloneCredential(cred), nil
}

func (r *stubCredentialRepo) SetResetToken(_ context.Context, credentialID, token string) error {
	for _, cred := range r.creds {
		if cred.ID == credentialID && cred.Active && cred.DeletedAt == nil {
			cred.ResetToken = token
			cred.UpdatedAt = time.Now()
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *stubCredentialRepo) ConsumeResetToken(_ context.Context, userID, token, newHash, newSalt string) error {
	cred, ok := r.creds[userID]
	if !ok || !cred.Active || cred.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	if token == "" || cred.ResetToken == "" || cred.ResetToken != token {
		return pgx.ErrNoRows
	}
	cred.PasswordHash = newHash
	cred.Salt = newSalt
	cred.ResetToken = ""
	cred.UpdatedAt = time.Now()
	return nil
}

// recordingCache implements UserCache and records activity.
type recordingCache struct {
	entries     map[string]*domain.User
	invalidated []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: make(map[string]*domain.User)}
}

func (c *recordingCache) Get(_ context.Context, username string) (*domain.User, bool) {
	user, ok := c.entries[username]
	return user, ok
}

func (c *recordingCache) Set(_ context.Context, user *domain.User) {
	c.entries[user.Username] = cloneUser(user)
}

func (c *recordingCache) Invalidate(_ context.Context, usernames ...string) {
	for _, name := range usernames {
		delete(c.entries, name)
		c.invalidated = append(c.invalidated, name)
	}
}
