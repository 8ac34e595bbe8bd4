// Package config handles environment configuration loading.
package config

import (
	"os"
	"strconv"
)

// Config holds all configuration values for the application.
type Config struct {
	Port           string
	Environment    string
	DBUrl          string
	DBMaxConns     int
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RateLimitRPM   int
	OTLPEndpoint   string
	Migrate        bool
	AllowedOrigins string
	TrustedProxies string
	AuditWorkers   int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENV", "dev"),
		DBUrl:          getEnv("DB_URL", ""),
		DBMaxConns:     getEnvInt("DB_MAX_CONNS", 10),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RateLimitRPM:   getEnvInt("RATE_LIMIT_RPM", 120),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", ""),
		Migrate:        getEnv("APP_MIGRATE", "false") == "true",
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
		TrustedProxies: getEnv("TRUSTED_PROXIES", ""),
		AuditWorkers:   getEnvInt("AUDIT_WORKERS", 2),
	}
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable, falling back to the default
// when the variable is unset or malformed.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// GetAddr returns the full address string for the server.
func (c *Config) GetAddr() string {
	return ":" + c.Port
}
