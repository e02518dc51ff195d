// Package config provides configuration management for the forum API.
// It handles loading and validation of configuration values from environment variables,
// with support for required variables, default values, and collective error reporting.
package config

import (
	"fmt"
	// `os` package provides operating system functionalities, like reading environment variables.
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// PoolConfig represents configuration for the database connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxSize  int
}

// DSN builds a postgres:// connection string, understood by both pgx and golang-migrate.
func (p *PoolConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

// StorageConfig selects the storage backend.
type StorageConfig struct {
	Driver         string
	MigrationsPath string
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret      string        // Secret key for signing JWTs
	TokenDuration  time.Duration // Lifetime of issued tokens
	BcryptCost     int           // Cost factor for password hashing
	SecureCookie   bool          // Whether the jwt cookie carries the Secure attribute
	RateLimitRPS   float64       // Per-IP requests per second on /auth routes
	RateLimitBurst int           // Per-IP burst on /auth routes
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port              string // Port for the HTTP server
	AllowedOrigins    []string
	ViewFlushInterval time.Duration
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	Env      string
	LogLevel string
	Storage  *StorageConfig
	DB       *PoolConfig
	Auth     *AuthConfig
	Server   *ServerConfig
}

// IsProduction reports whether the app runs in a production-like environment.
func (c *AppConfig) IsProduction() bool {
	return isProductionEnv(c.Env)
}

func isProductionEnv(env string) bool {
	switch strings.ToLower(env) {
	case "production", "prod", "staging":
		return true
	}
	return false
}

// Helper function to get a required environment variable.
// Appends an error to the errors slice if the variable is not set.
func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return "" // Return empty string, error is collected
	}
	return value
}

// Helper function to get an optional environment variable with a default string value.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// Helper function to get an optional environment variable parsed as an int.
// Uses defaultValue if not set or if parsing fails. Appends an error if parsing fails.
func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// Helper function to get an optional environment variable parsed as a float.
func getOptionalEnvFloat(key string, defaultValue float64, errors *[]string) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected number, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return value
}

// Helper function to get an optional environment variable parsed as time.Duration.
// `time.ParseDuration` expects a string like "15m", "1h30s".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	if valueDuration <= 0 {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: duration must be positive, got '%s'", key, valueStr))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps the pool size between 2 and 100, recording a note when it clamps.
func clampPoolSize(size int, errors *[]string) int {
	if size < 2 {
		*errors = append(*errors, fmt.Sprintf("DB_POOL_SIZE (%d) is less than minimum 2", size))
		return 2
	}
	if size > 100 {
		*errors = append(*errors, fmt.Sprintf("DB_POOL_SIZE (%d) is greater than maximum 100", size))
		return 100
	}
	return size
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadConfig creates and returns an AppConfig by reading and validating environment variables.
// It collects all errors encountered during loading and returns a single error if any exist.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	env := getOptionalEnv("APP_ENV", "development")
	logLevel := strings.ToLower(getOptionalEnv("LOG_LEVEL", "info"))
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid value for LOG_LEVEL: %q (expected debug, info, warn or error)", logLevel))
	}

	// Storage Configuration
	driver := strings.ToLower(getOptionalEnv("STORAGE_DRIVER", StoragePostgres))
	storageConfig := &StorageConfig{
		Driver:         driver,
		MigrationsPath: getOptionalEnv("MIGRATIONS_PATH", "./migrations"),
	}

	var dbConfig *PoolConfig
	switch driver {
	case StoragePostgres:
		dbConfig = &PoolConfig{
			User:     getRequiredEnv("DB_USER", &errors),
			Password: getRequiredEnv("DB_PASSWORD", &errors),
			DBName:   getRequiredEnv("DB_NAME", &errors),
			Host:     getOptionalEnv("DB_HOST", "localhost"),
			Port:     getOptionalEnvInt("DB_PORT", 5432, &errors),
			SSLMode:  getOptionalEnv("DB_SSLMODE", "disable"),
			MaxSize:  clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errors), &errors),
		}
	case StorageMemory:
		// No database settings are needed for the in-memory backend.
	default:
		errors = append(errors, fmt.Sprintf("invalid value for STORAGE_DRIVER: %q (expected %s or %s)", driver, StoragePostgres, StorageMemory))
	}

	// Auth Configuration
	bcryptCost := getOptionalEnvInt("BCRYPT_COST", bcrypt.DefaultCost, &errors)
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		errors = append(errors, fmt.Sprintf("invalid value for BCRYPT_COST: %d (expected %d..%d)", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
		bcryptCost = bcrypt.DefaultCost
	}
	authConfig := &AuthConfig{
		JWTSecret:      getRequiredEnv("JWT_SECRET", &errors),
		TokenDuration:  getOptionalEnvDuration("JWT_EXPIRES_IN", time.Hour, &errors),
		BcryptCost:     bcryptCost,
		SecureCookie:   isProductionEnv(env),
		RateLimitRPS:   getOptionalEnvFloat("AUTH_RATE_LIMIT_RPS", 5, &errors),
		RateLimitBurst: getOptionalEnvInt("AUTH_RATE_LIMIT_BURST", 10, &errors),
	}

	// Server Configuration
	serverConfig := &ServerConfig{
		// Server port is a string because it's used directly in the listen address (e.g., ":8080").
		Port:              getOptionalEnv("PORT", "8080"),
		AllowedOrigins:    splitList(getOptionalEnv("CORS_ALLOWED_ORIGINS", "*")),
		ViewFlushInterval: getOptionalEnvDuration("VIEW_FLUSH_INTERVAL", 10*time.Second, &errors),
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		Env:      env,
		LogLevel: logLevel,
		Storage:  storageConfig,
		DB:       dbConfig,
		Auth:     authConfig,
		Server:   serverConfig,
	}, nil
}
