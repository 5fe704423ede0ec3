package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port       string
	Production bool // APP_ENV=production; enables Secure cookies
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Driver string // sqlite, postgres or mysql
	DSN    string
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret      string
	TokenTTL       time.Duration
	CookieDomain   string
	RevokeOnLogout bool
}

const (
	defaultTokenTTL = 30 * 24 * time.Hour
	devSecret       = "dev-secret-change-me"
)

// Load loads configuration from environment variables with sensible defaults.
// JWT_SECRET is required.
func Load() (*Config, error) {
	cfg, err := load("")

	if err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	return cfg, nil
}

// LoadWithDefaults is like Load but falls back to a fixed development secret.
// Only use in development.
func LoadWithDefaults() (*Config, error) {
	return load(devSecret)
}

func load(secretDefault string) (*Config, error) {
	ttl, err := getEnvDuration("TOKEN_TTL", defaultTokenTTL)

	if err != nil {
		return nil, err
	}

	revoke, err := getEnvBool("REVOKE_ON_LOGOUT", false)

	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:       getEnv("PORT", "5000"),
			Production: strings.EqualFold(getEnv("APP_ENV", "development"), "production"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:    getEnv("DATABASE_URL", "taskboard.db"),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", secretDefault),
			TokenTTL:       ttl,
			CookieDomain:   getEnv("COOKIE_DOMAIN", ""),
			RevokeOnLogout: revoke,
		},
	}

	if cfg.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.Auth.TokenTTL)
	}

	return cfg, nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %s, DB: %s, Production: %t, TokenTTL: %s, RevokeOnLogout: %t, Auth: ***}",
		c.Server.Port, c.Database.Driver, c.Server.Production, c.Auth.TokenTTL, c.Auth.RevokeOnLogout)
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid boolean for %s: %w", key, err)
		}
		return b, nil
	}
	return defaultVal, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return d, nil
	}
	return defaultVal, nil
}
