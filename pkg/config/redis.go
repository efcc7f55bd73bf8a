package config

import (
	"fmt"
	"time"
)

// RedisConfig configures the ephemeral key/value store connection.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	// OpTimeout bounds every single store operation.
	OpTimeout time.Duration
	// MaxRetries is the transient-failure retry budget inside the adapter.
	MaxRetries int
}

func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Host:       getEnv("REDIS_HOST", "127.0.0.1"),
		Port:       getEnvInt("REDIS_PORT", 6379),
		Password:   getEnv("REDIS_PASSWORD", ""),
		DB:         getEnvInt("REDIS_DB", 0),
		OpTimeout:  getEnvDuration("REDIS_OP_TIMEOUT", 3*time.Second),
		MaxRetries: getEnvInt("REDIS_MAX_RETRIES", 2),
	}
}
