// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the example assistant and integration wiring
// need. Library packages never read it directly; they take explicit
// arguments.
type Config struct {
	AnthropicAPIKey string
	AnthropicModel  string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	EmbeddingsModel      string
	EmbeddingsDimensions int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MemoryCap       int
	CacheThreshold  float64
	SessionTTL      time.Duration
	DefaultLocale   string
	DefaultProvider string
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		EmbeddingsModel:      getEnv("EMBEDDINGS_MODEL", "text-embedding-3-small"),
		EmbeddingsDimensions: getEnvInt("EMBEDDINGS_DIMENSIONS", 1536),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MemoryCap:       getEnvInt("MEMORY_CAP", 128),
		CacheThreshold:  getEnvFloat("CACHE_THRESHOLD", 0.22),
		SessionTTL:      getEnvDuration("SESSION_TTL", 30*time.Minute),
		DefaultLocale:   getEnv("DEFAULT_LOCALE", "pt-BR"),
		DefaultProvider: getEnv("LLM_PROVIDER", "anthropic"),
	}
}
