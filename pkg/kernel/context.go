package kernel

// AuthContext is the authenticated identity injected into each request after
// token verification. The token layer only establishes who is calling;
// anything finer-grained belongs to the consuming service.
type AuthContext struct {
	UserID   UserID `json:"user_id"`
	Username string `json:"username"`
}

// IsValid reports whether the context identifies a caller.
func (ac *AuthContext) IsValid() bool {
	return !ac.UserID.IsEmpty()
}

type ContextKey string

const (
	// AuthContextKey is the Fiber locals key holding the *AuthContext.
	AuthContextKey ContextKey = "auth_context"

	// RequestIDKey holds the per-request correlation ID.
	RequestIDKey ContextKey = "request_id"
)
