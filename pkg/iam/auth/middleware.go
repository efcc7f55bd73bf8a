package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hayat-market/authgate/pkg/errx"
	"github.com/hayat-market/authgate/pkg/iam"
	"github.com/hayat-market/authgate/pkg/kernel"
)

// TokenLocalsKey is the Fiber locals key holding the raw bearer token of the
// current request, for handlers that need to act on the token itself.
const TokenLocalsKey = "auth_raw_token"

// TokenMiddleware authenticates requests against signed session tokens.
type TokenMiddleware struct {
	tokens      TokenService
	revocations RevocationList
	// sessions is nil when the single-session policy is disabled.
	sessions SessionRegistry
}

// NewTokenMiddleware creates the authentication middleware. Pass a nil
// session registry to skip the active-session check.
func NewTokenMiddleware(tokens TokenService, revocations RevocationList, sessions SessionRegistry) *TokenMiddleware {
	return &TokenMiddleware{
		tokens:      tokens,
		revocations: revocations,
		sessions:    sessions,
	}
}

// extractToken prefers the Authorization bearer header and falls back to the
// session cookie set at login.
func extractToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
			return parts[1]
		}
	}
	return c.Cookies(CookieName)
}

func writeError(c *fiber.Ctx, err *errx.Error) error {
	return c.Status(err.HTTPStatus).JSON(err.ToHTTPResponse())
}

// Authenticate validates the request token: revocation first, then signature
// and expiry, then the active-session match when the policy is on. On success
// the verified identity lands in the request locals.
func (am *TokenMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return writeError(c, iam.ErrUnauthorized())
		}

		// A revoked token is dead even while its signature still verifies.
		revoked, err := am.revocations.IsRevoked(c.UserContext(), token)
		if err != nil {
			var e *errx.Error
			if errx.As(err, &e) {
				return writeError(c, e)
			}
			return err
		}
		if revoked {
			return writeError(c, iam.ErrInvalidToken())
		}

		claims, err := am.tokens.Verify(token)
		if err != nil {
			return writeError(c, iam.ErrInvalidToken())
		}

		if am.sessions != nil {
			active, found, err := am.sessions.Active(c.UserContext(), kernel.UserID(claims.Username))
			if err != nil {
				var e *errx.Error
				if errx.As(err, &e) {
					return writeError(c, e)
				}
				return err
			}
			// A superseded token answers exactly like an invalid one.
			if !found || active != token {
				return writeError(c, iam.ErrInvalidToken())
			}
		}

		c.Locals(string(kernel.AuthContextKey), &kernel.AuthContext{
			UserID:   kernel.UserID(claims.Username),
			Username: claims.Username,
		})
		c.Locals(TokenLocalsKey, token)

		return c.Next()
	}
}

// CurrentUser returns the authenticated identity injected by Authenticate.
func CurrentUser(c *fiber.Ctx) (*kernel.AuthContext, bool) {
	ac, ok := c.Locals(string(kernel.AuthContextKey)).(*kernel.AuthContext)
	if !ok || ac == nil || !ac.IsValid() {
		return nil, false
	}
	return ac, true
}

// CurrentToken returns the raw token of the authenticated request.
func CurrentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(TokenLocalsKey).(string)
	return token
}
