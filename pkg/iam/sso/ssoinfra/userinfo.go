package ssoinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hayat-market/authgate/pkg/config"
	"github.com/hayat-market/authgate/pkg/iam/sso"
)

// UserInfoClient implements sso.ProfileFetcher against the providers' OIDC
// userinfo endpoints. The access token is the one the client app obtained
// from the provider; this service only exchanges it for a profile.
type UserInfoClient struct {
	providers map[string]config.SSOProviderConfig
	http      *http.Client
}

// NewUserInfoClient creates a fetcher for the configured providers.
func NewUserInfoClient(cfg config.SSOConfig) *UserInfoClient {
	return &UserInfoClient{
		providers: cfg.Providers,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch calls the provider's userinfo endpoint and normalizes the response.
func (c *UserInfoClient) Fetch(ctx context.Context, provider string, accessToken string) (*sso.Profile, error) {
	pc, ok := c.providers[provider]
	if !ok || !pc.Enabled {
		return nil, sso.ErrUnknownProvider().WithDetail("provider", provider)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pc.UserInfoEndpoint, nil)
	if err != nil {
		return nil, sso.ErrProviderUnavailable().WithDetail("error", err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, sso.ErrProviderUnavailable().WithDetail("error", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, sso.ErrInvalidProviderData().
			WithDetail("provider", provider).
			WithDetail("reason", "access token rejected")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, sso.ErrProviderUnavailable().
			WithDetail("provider", provider).
			WithDetail("status", resp.StatusCode)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, sso.ErrProviderUnavailable().WithDetail("error", err.Error())
	}
	return normalize(provider, raw), nil
}

// normalize maps each provider's payload shape onto the common profile.
func normalize(provider string, raw map[string]any) *sso.Profile {
	str := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := raw[k].(string); ok && v != "" {
				return v
			}
		}
		return ""
	}

	p := &sso.Profile{Email: str("email")}

	switch provider {
	case "google", "microsoft":
		p.ID = str("sub")
		p.FirstName = str("given_name")
		p.LastName = str("family_name")
	case "facebook":
		p.ID = str("id")
		p.FirstName = str("first_name")
		p.LastName = str("last_name")
	case "github":
		// GitHub ids are numeric in the JSON payload.
		if id, ok := raw["id"].(float64); ok {
			p.ID = fmt.Sprintf("%.0f", id)
		}
		name := str("name")
		if name == "" {
			name = str("login")
		}
		p.FirstName, p.LastName = splitName(name)
	}
	return p
}

func splitName(full string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}
