package config

// SSOProviderConfig describes one federated identity provider.
type SSOProviderConfig struct {
	Enabled          bool
	UserInfoEndpoint string
}

// SSOConfig maps provider names to their userinfo endpoints.
type SSOConfig struct {
	Providers map[string]SSOProviderConfig
}

func loadSSOConfig() SSOConfig {
	providers := map[string]SSOProviderConfig{
		"google": {
			Enabled:          getEnvBool("SSO_GOOGLE_ENABLED", true),
			UserInfoEndpoint: getEnv("SSO_GOOGLE_USERINFO", "https://openidconnect.googleapis.com/v1/userinfo"),
		},
		"facebook": {
			Enabled:          getEnvBool("SSO_FACEBOOK_ENABLED", false),
			UserInfoEndpoint: getEnv("SSO_FACEBOOK_USERINFO", "https://graph.facebook.com/me?fields=id,first_name,last_name,email"),
		},
		"github": {
			Enabled:          getEnvBool("SSO_GITHUB_ENABLED", false),
			UserInfoEndpoint: getEnv("SSO_GITHUB_USERINFO", "https://api.github.com/user"),
		},
		"microsoft": {
			Enabled:          getEnvBool("SSO_MICROSOFT_ENABLED", false),
			UserInfoEndpoint: getEnv("SSO_MICROSOFT_USERINFO", "https://graph.microsoft.com/oidc/userinfo"),
		},
	}
	return SSOConfig{Providers: providers}
}
