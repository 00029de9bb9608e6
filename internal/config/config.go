// SPDX-License-Identifier: MIT

// Package config builds the immutable application configuration from the
// process environment. The snapshot is constructed once in main and passed
// by value to every component; nothing mutates it afterwards.
package config

import (
	"strings"
	"time"
)

// AppConfig is the immutable configuration snapshot for the backend.
type AppConfig struct {
	// Server
	Addr        string
	Environment string // "development" or "production"

	// CORS
	CORSOrigins string // raw comma-separated CORS_ORIGINS value

	// Storage
	DatabasePath  string
	RedisAddr     string // empty disables the Redis cache backend
	RedisPassword string
	RedisDB       int

	// Vector search
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	// LLM provider
	OpenAIKey            string
	OpenAIModel          string
	OpenAIEmbeddingModel string
	OpenAIBaseURL        string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Rate limiting
	RateLimitRPM int

	// Caching
	ContentCacheTTL time.Duration
}

// FromEnv reads the full configuration from environment variables,
// applying defaults for everything that is optional.
func FromEnv() AppConfig {
	return AppConfig{
		Addr:        ParseString("ADDR", ":"+ParseString("PORT", "7860")),
		Environment: strings.ToLower(ParseString("ENVIRONMENT", "development")),

		CORSOrigins: ParseString("CORS_ORIGINS", ""),

		DatabasePath:  ParseString("DATABASE_PATH", "data/textbook.db"),
		RedisAddr:     ParseString("REDIS_ADDR", ""),
		RedisPassword: ParseString("REDIS_PASSWORD", ""),
		RedisDB:       ParseInt("REDIS_DB", 0),

		QdrantURL:        ParseString("QDRANT_URL", ""),
		QdrantAPIKey:     ParseString("QDRANT_API_KEY", ""),
		QdrantCollection: ParseString("QDRANT_COLLECTION", "textbook_chapters"),

		OpenAIKey:            ParseString("OPENAI_API_KEY", ""),
		OpenAIModel:          ParseString("OPENAI_MODEL", "gpt-4o"),
		OpenAIEmbeddingModel: ParseString("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		OpenAIBaseURL:        ParseString("OPENAI_BASE_URL", "https://api.openai.com"),

		JWTSecret: ParseString("JWT_SECRET", ""),
		TokenTTL:  ParseDuration("TOKEN_TTL", 24*time.Hour),

		RateLimitRPM: ParseInt("RATE_LIMIT_RPM", 60),

		ContentCacheTTL: ParseDuration("CONTENT_CACHE_TTL", time.Hour),
	}
}

// IsDevelopment reports whether the snapshot selects development mode.
// Only the exact value "development" (case-insensitive) does; anything
// else, including unset, selects production behaviour.
func (c AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}
