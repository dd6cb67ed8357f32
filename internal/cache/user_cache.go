package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/manocorp/account-service/internal/domain"
	"github.com/manocorp/account-service/internal/persistence"
)

const userKeyPrefix = "user:"

// UserCache is a redis-backed read-through cache of user profiles keyed by
// username. Cache failures are logged and degrade to the repository; they
// never fail the request.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewUserCache builds the cache around an existing redis connection.
func NewUserCache(r *persistence.Redis, ttl time.Duration, logger *zap.Logger) *UserCache {
	var client *redis.Client
	if r != nil {
		client = r.Client
	}
	return &UserCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached user for the username, if present.
func (c *UserCache) Get(ctx context.Context, username string) (*domain.User, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, userKeyPrefix+username).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("user cache get failed", zap.Error(err))
		}
		return nil, false
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		c.logger.Warn("user cache entry corrupt", zap.String("username", username), zap.Error(err))
		return nil, false
	}
	return &user, true
}

// Set stores the user under its username.
func (c *UserCache) Set(ctx context.Context, user *domain.User) {
	if c == nil || c.client == nil || user == nil {
		return
	}

	raw, err := json.Marshal(user)
	if err != nil {
		c.logger.Warn("user cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, userKeyPrefix+user.Username, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("user cache set failed", zap.Error(err))
	}
}

// Invalidate drops cached entries for the given usernames.
func (c *UserCache) Invalidate(ctx context.Context, usernames ...string) {
	if c == nil || c.client == nil || len(usernames) == 0 {
		return
	}

	keys := make([]string, 0, len(usernames))
	for _, name := range usernames {
		keys = append(keys, userKeyPrefix+name)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("user cache invalidate failed", zap.Error(err))
	}
}
