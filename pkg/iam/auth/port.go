package auth

import (
	"context"
	"time"

	"github.com/hayat-market/authgate/pkg/kernel"
)

// TokenService defines the contract for session token signing and verification.
type TokenService interface {
	Issue(data map[string]any, ttl time.Duration) (string, error)
	Verify(token string) (*TokenClaims, error)
}

// PasswordService defines the contract for password hashing.
type PasswordService interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// RevocationList tracks tokens invalidated before their natural expiry. An
// entry only needs to outlive the token it blocks, so Revoke takes the
// remaining lifetime as its TTL.
type RevocationList interface {
	Revoke(ctx context.Context, token string, remaining time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// SessionRegistry records the single active token per user. Register always
// overwrites: the newest login wins and earlier tokens stop matching.
type SessionRegistry interface {
	Register(ctx context.Context, userID kernel.UserID, token string, ttl time.Duration) error
	Active(ctx context.Context, userID kernel.UserID) (string, bool, error)
	Clear(ctx context.Context, userID kernel.UserID) error
}

// AuditService defines the contract for authentication audit logging.
type AuditService interface {
	LogLoginAttempt(ctx context.Context, userID kernel.UserID, method string, success bool, ip string, userAgent string)
	LogLogout(ctx context.Context, userID kernel.UserID, ip string)
	LogOTPIssued(ctx context.Context, owner string, purpose string)
	LogOTPVerification(ctx context.Context, contact string, success bool)
	LogAccountCreated(ctx context.Context, userID kernel.UserID, method string, ip string)
	LogAccountLinked(ctx context.Context, userID kernel.UserID, provider string)
	LogPasswordReset(ctx context.Context, userID kernel.UserID, ip string)
}
