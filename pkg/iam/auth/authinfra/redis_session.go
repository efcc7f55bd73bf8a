package authinfra

import (
	"context"
	"time"

	"github.com/hayat-market/authgate/pkg/iam"
	"github.com/hayat-market/authgate/pkg/iam/auth"
	"github.com/hayat-market/authgate/pkg/kernel"
	"github.com/hayat-market/authgate/pkg/keyval"
)

const sessionKeyPrefix = "active_session:"

// RedisSessionRegistry keeps the single active token per user. Register is a
// plain overwrite, so concurrent logins race harmlessly: whichever write lands
// last owns the session and the loser's token stops verifying.
type RedisSessionRegistry struct {
	store keyval.Store
}

// NewRedisSessionRegistry creates a store-backed session registry.
func NewRedisSessionRegistry(store keyval.Store) auth.SessionRegistry {
	return &RedisSessionRegistry{store: store}
}

func sessionKey(userID kernel.UserID) string {
	return sessionKeyPrefix + iam.KeyName(userID.String())
}

// Register records the token as the user's active session for the token's
// lifetime.
func (r *RedisSessionRegistry) Register(ctx context.Context, userID kernel.UserID, token string, ttl time.Duration) error {
	return r.store.Set(ctx, sessionKey(userID), token, ttl)
}

// Active returns the registered token, if any.
func (r *RedisSessionRegistry) Active(ctx context.Context, userID kernel.UserID) (string, bool, error) {
	return r.store.Get(ctx, sessionKey(userID))
}

// Clear drops the user's active session.
func (r *RedisSessionRegistry) Clear(ctx context.Context, userID kernel.UserID) error {
	return r.store.Delete(ctx, sessionKey(userID))
}
