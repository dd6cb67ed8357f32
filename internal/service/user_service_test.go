package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/manocorp/account-service/internal/auth"
	"github.com/manocorp/account-service/internal/domain"
	"github.com/manocorp/account-service/internal/events"
	"github.com/manocorp/account-service/pkg/util/errorutil"
)

type userFixture struct {
	svc        *UserService
	users      *stubUserRepo
	creds      *stubCredentialRepo
	cache      *recordingCache
	dispatcher events.Dispatcher
	published  *[]events.Event
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	cfg := testConfig()
	users := newStubUserRepo()
	creds := newStubCredentialRepo()
	cache := newRecordingCache()
	dispatcher := events.NewInMemoryDispatcher()

	published := &[]events.Event{}
	record := func(_ context.Context, e events.Event) error {
		*published = append(*published, e)
		return nil
	}
	for _, eventType := range []events.EventType{
		events.EventUserCreated,
		events.EventUserUpdated,
		events.EventUserDeleted,
		events.EventPasswordResetRequested,
	} {
		dispatcher.Subscribe(eventType, record)
	}

	svc := NewUserService(cfg, UserDependencies{
		UserRepo:       users,
		CredentialRepo: creds,
		Hasher:         auth.NewHasher(cfg.Auth.PasswordPepper),
		Dispatcher:     dispatcher,
		Cache:          cache,
		Logger:         zap.NewNop(),
	})

	return &userFixture{svc: svc, users: users, creds: creds, cache: cache, dispatcher: dispatcher, published: published}
}

func (f *userFixture) eventsOfType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, e := range *f.published {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func TestCreateUserSeedsCredential(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	user, err := f.svc.Create(ctx, "  Alice ", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username, "username is normalized before storage")
	assert.True(t, user.IsActive)
	assert.NotEmpty(t, user.ID)

	cred, err := f.creds.GetActiveByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, cred.PasswordHash)
	assert.Len(t, cred.PasswordHash, 43)
	assert.NotEmpty(t, cred.Salt)
	assert.Len(t, cred.ResetToken, auth.DefaultTokenLength)

	created := f.eventsOfType(events.EventUserCreated)
	require.Len(t, created, 1)
	assert.Equal(t, user.ID, created[0].UserID)

	resets := f.eventsOfType(events.EventPasswordResetRequested)
	require.Len(t, resets, 1)
	payload, ok := resets[0].Payload.(events.PasswordResetRequestedPayload)
	require.True(t, ok)
	assert.Equal(t, cred.ResetToken, payload.ResetToken)
}

func TestCreateUserRejectsInvalidUsername(t *testing.T) {
	f := newUserFixture(t)

	cases := []struct {
		name     string
		username string
	}{
		{"too short", "ab"},
		{"bad charset", "al ice"},
		{"deletion marker", "alice[deleted]"},
		{"too long", strings.Repeat("a", 255)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tc.username, "a@example.com")
			require.Error(t, err)
			de := errorutil.ToDomainError(err)
			assert.Equal(t, "VALIDATION_FAILED", de.Code)
			assert.Equal(t, 422, de.HTTPStatus)
		})
	}

	assert.Empty(t, *f.published, "no events for rejected creations")
}

func TestCreateUserDuplicateConflicts(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "alice", "alice@example.com")
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, "alice", "other@example.com")
	de := errorutil.ToDomainError(err)
	assert.Equal(t, "CONFLICT", de.Code)
	assert.Equal(t, 409, de.HTTPStatus)
	assert.Equal(t, "User already exists", de.Message)
}

func TestGetUser(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "alice", "alice@example.com")
	require.NoError(t, err)

	user, err := f.svc.Get(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	// The lookup warmed the cache.
	cached, ok := f.cache.Get(ctx, "alice")
	require.True(t, ok)
	assert.Equal(t, created.ID, cached.ID)
}

func TestGetUserCacheHitSkipsRepository(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	f.cache.Set(ctx, &domain.User{ID: "user-9", Username: "alice", IsActive: true})

	user, err := f.svc.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "user-9", user.ID)
}

func TestGetUserNotFound(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.Get(context.Background(), "nobody")
	de := errorutil.ToDomainError(err)
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, 404, de.HTTPStatus)
}

func TestListUsersPaged(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	names := []string{"carol", "alice", "bob"}
	for _, name := range names {
		_, err := f.svc.Create(ctx, name, name+"@example.com")
		require.NoError(t, err)
	}
	_, err := f.svc.Delete(ctx, "bob")
	require.NoError(t, err)

	page, err := f.svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "alice", page[0].Username)
	assert.Equal(t, "carol", page[1].Username)

	empty, err := f.svc.List(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateUserRename(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "alice", "alice@example.com")
	require.NoError(t, err)
	f.cache.Set(ctx, created)

	updated, err := f.svc.Update(ctx, created.ID, "alice.new", false)
	require.NoError(t, err)
	assert.Equal(t, "alice.new", updated.Username)
	assert.False(t, updated.IsActive)

	// Both the old and the new cache keys are dropped.
	assert.Contains(t, f.cache.invalidated, "alice")
	assert.Contains(t, f.cache.invalidated, "alice.new")

	changes := f.eventsOfType(events.EventUserUpdated)
	require.Len(t, changes, 1)
	payload, ok := changes[0].Payload.(events.UserUpdatedPayload)
	require.True(t, ok)
	assert.Equal(t, "alice", payload.OldUsername)
	assert.Equal(t, "alice.new", payload.NewUsername)
}

func TestUpdateUserTakenUsernameConflicts(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	alice, err := f.svc.Create(ctx, "alice", "alice@example.com")
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "bob", "bob@example.com")
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, alice.ID, "bob", true)
	de := errorutil.ToDomainError(err)
	assert.Equal(t, "CONFLICT", de.Code)
}

func TestUpdateUserNotFound(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.Update(context.Background(), "missing-id", "alice", true)
	de := errorutil.ToDomainError(err)
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestDeleteUserAppendsMarker(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "alice", "alice@example.com")
	require.NoError(t, err)

	deleted, err := f.svc.Delete(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice"+domain.DeletedMarker, deleted.Username)
	assert.True(t, deleted.Deleted())
	assert.False(t, deleted.IsActive)
	assert.Equal(t, created.ID, deleted.ID)

	// Gone from active lookups, row still present.
	_, err = f.svc.Get(ctx, "alice")
	assert.Equal(t, "NOT_FOUND", errorutil.ToDomainError(err).Code)
	row, err := f.users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NotNil(t, row.DeletedAt)

	assert.Contains(t, f.cache.invalidated, "alice")
	removals := f.eventsOfType(events.EventUserDeleted)
	require.Len(t, removals, 1)
}

func TestDeleteUserNotFound(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.Delete(context.Background(), "nobody")
	de := errorutil.ToDomainError(err)
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, 404, de.HTTPStatus)
}

func TestDeleteThenRecreateSameUsername(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, "alice", "alice@example.com")
	require.NoError(t, err)
	_, err = f.svc.Delete(ctx, "alice")
	require.NoError(t, err)

	second, err := f.svc.Create(ctx, "alice", "alice2@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}
