package auth

import (
	"net/http"
	"time"

	"github.com/hayat-market/authgate/pkg/errx"
)

// CookieName is the HTTP-only cookie carrying the session token for browser
// clients that do not set an Authorization header.
const CookieName = "auth_token"

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("AUTH")

var (
	// CodeInvalidCredentials covers every way a login can fail: unknown user,
	// wrong password, bad or consumed OTP. Responses never reveal which.
	CodeInvalidCredentials = ErrRegistry.Register("INVALID_CREDENTIALS", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid credentials")

	CodeInvalidSignature = ErrRegistry.Register("INVALID_SIGNATURE", errx.TypeAuthorization, http.StatusUnauthorized, "Token signature verification failed")
	CodeMalformedToken   = ErrRegistry.Register("MALFORMED_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Token payload is malformed")
	CodeExpiredToken     = ErrRegistry.Register("EXPIRED_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Token has expired")

	CodeTokenGenerationFailed = ErrRegistry.Register("TOKEN_GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to generate token")
	CodePasswordHashFailed    = ErrRegistry.Register("PASSWORD_HASH_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to hash password")
)

func ErrInvalidCredentials() *errx.Error    { return ErrRegistry.New(CodeInvalidCredentials) }
func ErrInvalidSignature() *errx.Error      { return ErrRegistry.New(CodeInvalidSignature) }
func ErrMalformedToken() *errx.Error        { return ErrRegistry.New(CodeMalformedToken) }
func ErrExpiredToken() *errx.Error          { return ErrRegistry.New(CodeExpiredToken) }
func ErrTokenGenerationFailed() *errx.Error { return ErrRegistry.New(CodeTokenGenerationFailed) }
func ErrPasswordHashFailed() *errx.Error    { return ErrRegistry.New(CodePasswordHashFailed) }

// ============================================================================
// Token claims
// ============================================================================

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	Username  string
	Data      map[string]any
	ExpiresAt time.Time
}

// RemainingTTL is how long the token stays valid from now. Zero or negative
// means it already lapsed.
func (c *TokenClaims) RemainingTTL() time.Duration {
	return time.Until(c.ExpiresAt)
}
