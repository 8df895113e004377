// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Storage backends for the local snapshot.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// AI providers for recipe formatting.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	DataDir        string
	StorageBackend string
	StorageKey     string

	// Remote store. Empty DatabaseURL runs everything local-only.
	DatabaseURL     string
	AuthJWTSecret   string
	CatalogFunction string

	AIProvider   string
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string

	LogLevel  string
	LogFormat string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		DataDir:         getEnv("EASYDISH_DATA_DIR", "./data"),
		StorageBackend:  strings.ToLower(getEnv("EASYDISH_STORAGE_BACKEND", BackendFile)),
		StorageKey:      getEnv("EASYDISH_STORAGE_KEY", "easydish-storage"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AuthJWTSecret:   os.Getenv("AUTH_JWT_SECRET"),
		CatalogFunction: os.Getenv("CATALOG_MATCH_FUNCTION"),
		AIProvider:      strings.ToLower(getEnv("AI_PROVIDER", ProviderGemini)),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     os.Getenv("GEMINI_MODEL"),
		GroqAPIKey:      os.Getenv("GROQ_API_KEY"),
		GroqModel:       os.Getenv("GROQ_MODEL"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if cfg.DatabaseURL != "" && cfg.AuthJWTSecret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET environment variable not set")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.StorageBackend, validation.Required, validation.In(BackendFile, BackendSQLite)),
		validation.Field(&c.StorageKey, validation.Required),
		validation.Field(&c.AIProvider, validation.In(ProviderGemini, ProviderGroq)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
	)
}

// RemoteEnabled reports whether a remote store is configured.
func (c *Config) RemoteEnabled() bool {
	return c.DatabaseURL != ""
}

// RequireAI checks that the key for the selected provider is present.
func (c *Config) RequireAI() error {
	switch c.AIProvider {
	case ProviderGroq:
		if c.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	default:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	}
	return nil
}

// KVPath is the snapshot directory for the file backend or the database file
// for the sqlite backend.
func (c *Config) KVPath() string {
	if c.StorageBackend == BackendSQLite {
		return filepath.Join(c.DataDir, "easydish.db")
	}
	return filepath.Join(c.DataDir, "state")
}

// MetricsDBPath is the SQLite file holding execution metrics.
func (c *Config) MetricsDBPath() string {
	return filepath.Join(c.DataDir, "easydish.db")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
