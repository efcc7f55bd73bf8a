package config

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host        string
	Port        int
	BasePath    string
	CORSOrigins []string
	LogLevel    string
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:        getEnv("LISTEN_HOST", "0.0.0.0"),
		Port:        getEnvInt("LISTEN_PORT", 8081),
		BasePath:    getEnv("BASE_PATH", "/api/v1"),
		CORSOrigins: getEnvStringSlice("CORS_ORIGINS", []string{"*"}),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}
