// Package config provides configuration loading and validation for the service.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds everything the server needs to run. Values come from the
// environment (optionally seeded from a .env file by the entrypoint).
type Config struct {
	// Server
	Port int // HTTP listen port

	// External collaborators
	DatabaseURL    string // PostgreSQL connection URL
	GeminiAPIKey   string // Google Gemini API key (generation + embeddings)
	PineconeHost   string // Pinecone index host URL
	PineconeKey    string // Pinecone API key
	GeminiModel    string // Generative model name
	EmbeddingModel string // Embedding model name

	// Auth
	JWTSecret   string // HS256 signing secret for recruiter tokens
	RequireAuth bool   // When true, mutating endpoints require a bearer token

	// Logging
	JSONLog bool
	Debug   bool
}

// Defaults applied when the corresponding variable is unset.
const (
	DefaultPort           = 8080
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultEmbeddingModel = "embedding-001"
)

// FromEnv reads configuration from environment variables.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:           DefaultPort,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		PineconeHost:   os.Getenv("PINECONE_HOST"),
		PineconeKey:    os.Getenv("PINECONE_API_KEY"),
		GeminiModel:    envOr("GEMINI_MODEL", DefaultGeminiModel),
		EmbeddingModel: envOr("EMBEDDING_MODEL", DefaultEmbeddingModel),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		RequireAuth:    envBool("REQUIRE_AUTH"),
		JSONLog:        envBool("LOG_JSON"),
		Debug:          envBool("LOG_DEBUG"),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("config error: invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: port %d out of range", c.Port)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("config error: GEMINI_API_KEY is required")
	}
	if c.PineconeHost == "" {
		return fmt.Errorf("config error: PINECONE_HOST is required")
	}
	if c.PineconeKey == "" {
		return fmt.Errorf("config error: PINECONE_API_KEY is required")
	}
	if c.RequireAuth && c.JWTSecret == "" {
		return fmt.Errorf("config error: REQUIRE_AUTH=true needs JWT_SECRET")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v := os.Getenv(key)
	return v == "1" || v == "true" || v == "yes"
}
