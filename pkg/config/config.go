package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every configurable concern of the service.
type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Repository RepositoryConfig
	Notifx     NotifxConfig
	SSO        SSOConfig
}

// Load reads the full configuration from the environment.
func Load() *Config {
	return &Config{
		Server:     loadServerConfig(),
		Redis:      loadRedisConfig(),
		Auth:       loadAuthConfig(),
		Repository: loadRepositoryConfig(),
		Notifx:     loadNotifxConfig(),
		SSO:        loadSSOConfig(),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvStringSlice(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
