package config

import "time"

// RepositoryConfig selects and configures the user-record backend.
//
// Mode "repo" talks to the external content repository over HTTP; mode
// "postgres" owns the user table directly.
type RepositoryConfig struct {
	Mode string

	// Content repository backend.
	RepoURL      string
	RepoUsername string
	RepoPassword string
	RepoSpace    string
	RepoTimeout  time.Duration

	// Postgres backend.
	PGHost          string
	PGPort          int
	PGUser          string
	PGPassword      string
	PGName          string
	PGSSLMode       string
	PGMaxOpenConns  int
	PGMaxIdleConns  int
	PGConnMaxLifetime time.Duration
}

func loadRepositoryConfig() RepositoryConfig {
	return RepositoryConfig{
		Mode:         getEnv("REPOSITORY_MODE", "repo"),
		RepoURL:      getEnv("REPO_URL", "http://localhost:8282"),
		RepoUsername: getEnv("REPO_USERNAME", ""),
		RepoPassword: getEnv("REPO_PASSWORD", ""),
		RepoSpace:    getEnv("REPO_SPACE", "acme"),
		RepoTimeout:  getEnvDuration("REPO_TIMEOUT", 10*time.Second),

		PGHost:            getEnv("PG_HOST", "localhost"),
		PGPort:            getEnvInt("PG_PORT", 5432),
		PGUser:            getEnv("PG_USER", "authgate"),
		PGPassword:        getEnv("PG_PASSWORD", ""),
		PGName:            getEnv("PG_NAME", "authgate"),
		PGSSLMode:         getEnv("PG_SSLMODE", "disable"),
		PGMaxOpenConns:    getEnvInt("PG_MAX_OPEN_CONNS", 25),
		PGMaxIdleConns:    getEnvInt("PG_MAX_IDLE_CONNS", 5),
		PGConnMaxLifetime: getEnvDuration("PG_CONN_MAX_LIFETIME", 30*time.Minute),
	}
}
