package config

import "time"

// AuthConfig configures token signing, OTP issuance and session policy.
type AuthConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration

	OTPTTL       time.Duration
	OTPLength    int
	OTPResendGap time.Duration

	BcryptCost int

	// SingleSession enables the one-active-token-per-user policy: every login
	// overwrites the registered session and older tokens stop verifying.
	SingleSession bool
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AccessTokenTTL: getEnvDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		OTPTTL:         getEnvDuration("OTP_TTL", 5*time.Minute),
		OTPLength:      getEnvInt("OTP_LENGTH", 6),
		OTPResendGap:   getEnvDuration("OTP_RESEND_GAP", time.Minute),
		BcryptCost:     getEnvInt("BCRYPT_COST", 12),
		SingleSession:  getEnvBool("AUTH_SINGLE_SESSION", false),
	}
}
