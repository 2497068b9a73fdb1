// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTSecret() []byte
}

// RemoteServicesConfig provides settings for the user-service and
// survey-service collaborators.
type RemoteServicesConfig interface {
	GetUserServiceURL() string
	GetSurveyServiceURL() string
	GetProbeTimeout() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env              string
	HTTPAddr         string
	DatabaseURL      string
	JWTSecret        []byte
	JWTExpiration    time.Duration
	UserServiceURL   string
	SurveyServiceURL string
	ProbeTimeout     time.Duration
	CORSAllowAll     bool
	CORSOrigins      []string
	CORSAllowCreds   bool
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTSecret() []byte { return c.JWTSecret }

// RemoteServicesConfig implementation
func (c *Config) GetUserServiceURL() string      { return c.UserServiceURL }
func (c *Config) GetSurveyServiceURL() string    { return c.SurveyServiceURL }
func (c *Config) GetProbeTimeout() time.Duration { return c.ProbeTimeout }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	rawSecret := getEnv("JWT_SECRET", "")
	if rawSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	secret, err := base64.StdEncoding.DecodeString(rawSecret)
	if err != nil {
		return nil, fmt.Errorf("JWT_SECRET must be base64 encoded: %w", err)
	}

	probeTimeout, err := time.ParseDuration(getEnv("PROBE_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("PROBE_TIMEOUT must be a valid duration: %w", err)
	}

	jwtExpiration, err := millisDuration(getEnv("JWT_EXPIRATION", "3600000"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRATION must be a millisecond count: %w", err)
	}

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		JWTSecret:        secret,
		JWTExpiration:    jwtExpiration,
		UserServiceURL:   getEnv("USER_SERVICE_URL", ""),
		SurveyServiceURL: getEnv("SURVEY_SERVICE_URL", ""),
		ProbeTimeout:     probeTimeout,
		CORSAllowAll:     corsAllowAll,
		CORSOrigins:      corsOrigins,
		CORSAllowCreds:   strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.UserServiceURL == "" {
		return nil, fmt.Errorf("USER_SERVICE_URL is required")
	}
	if cfg.SurveyServiceURL == "" {
		return nil, fmt.Errorf("SURVEY_SERVICE_URL is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

// millisDuration parses a millisecond count, matching the token issuer's
// jwt.expiration convention.
func millisDuration(value string) (time.Duration, error) {
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
