package authinfra

import (
	"context"
	"time"

	"github.com/hayat-market/authgate/pkg/iam/auth"
	"github.com/hayat-market/authgate/pkg/keyval"
)

const revokedKeyPrefix = "inactive_token:"

// RedisRevocationList stores revoked tokens in the TTL key/value store. Each
// entry carries the token's remaining lifetime so the list cleans itself: once
// the token would have expired anyway, the entry disappears with it.
type RedisRevocationList struct {
	store keyval.Store
}

// NewRedisRevocationList creates a store-backed revocation list.
func NewRedisRevocationList(store keyval.Store) auth.RevocationList {
	return &RedisRevocationList{store: store}
}

// Revoke blacklists the token for its remaining lifetime. A token that has
// already lapsed needs no entry.
func (l *RedisRevocationList) Revoke(ctx context.Context, token string, remaining time.Duration) error {
	if remaining <= 0 {
		return nil
	}
	return l.store.Set(ctx, revokedKeyPrefix+token, "revoked", remaining)
}

// IsRevoked reports whether the token is on the blacklist. Store failures
// surface as errors, never as "not revoked".
func (l *RedisRevocationList) IsRevoked(ctx context.Context, token string) (bool, error) {
	_, found, err := l.store.Get(ctx, revokedKeyPrefix+token)
	if err != nil {
		return false, err
	}
	return found, nil
}
