package sso

import (
	"context"
	"net/http"

	"github.com/hayat-market/authgate/pkg/errx"
)

// Profile is the normalized identity a federated provider returns for an
// access token. Every provider-specific payload collapses into this shape
// before it reaches the reconciliation flow.
type Profile struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// ProfileFetcher resolves a provider access token into the profile it grants
// access to.
type ProfileFetcher interface {
	Fetch(ctx context.Context, provider string, accessToken string) (*Profile, error)
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("SSO")

var (
	// CodeInvalidProviderData means the provider answered but the profile is
	// unusable (no stable id or no email). No user record is created.
	CodeInvalidProviderData = ErrRegistry.Register("INVALID_PROVIDER_DATA", errx.TypeValidation, http.StatusBadRequest, "Identity provider returned incomplete profile data")
	CodeUnknownProvider     = ErrRegistry.Register("UNKNOWN_PROVIDER", errx.TypeValidation, http.StatusBadRequest, "Unknown or disabled identity provider")
	CodeProviderUnavailable = ErrRegistry.Register("PROVIDER_UNAVAILABLE", errx.TypeExternal, http.StatusBadGateway, "Identity provider request failed")
)

func ErrInvalidProviderData() *errx.Error { return ErrRegistry.New(CodeInvalidProviderData) }
func ErrUnknownProvider() *errx.Error     { return ErrRegistry.New(CodeUnknownProvider) }
func ErrProviderUnavailable() *errx.Error { return ErrRegistry.New(CodeProviderUnavailable) }
