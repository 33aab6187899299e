// Package config loads runtime configuration from environment variables.
// An optional .env file is read first; variables already set in the environment win.
// Every field has a default so the binary starts locally with only a Gemini key.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration for prdgen.
type Config struct {
	// Storage + HTTP
	DBPath string // PRDGEN_DB_PATH — default: "./data/prdgen.db"
	Host   string // PRDGEN_HOST — default: "0.0.0.0"
	Port   int    // PRDGEN_PORT — default: 8080

	// Providers
	GeminiAPIKey  string // GEMINI_API_KEY — deployment credential for Gemini
	GeminiBaseURL string // GEMINI_BASE_URL — default: public endpoint
	GroqAPIKey    string // GROQ_API_KEY — initial provider credential; users may override it
	GroqBaseURL   string // GROQ_BASE_URL — default: public endpoint

	// Generation
	DefaultModel    string        // DEFAULT_MODEL — default: "gemini-2.5-flash"
	FallbackModel   string        // FALLBACK_MODEL — default: "gemini-2.5-flash"
	ImageModel      string        // IMAGE_MODEL — default: "gemini-2.5-flash-image"
	LLMTimeout      time.Duration // LLM_TIMEOUT — default: 60s
	ChatMaxHistory  int           // CHAT_MAX_HISTORY — default: 20
	BulkConcurrency int           // BULK_CONCURRENCY — default: 4

	// Auth + logging
	JWTSecret string        // JWT_SECRET — required by serve and token
	JWTExpiry time.Duration // JWT_EXPIRY — hours, default: 24
	LogLevel  slog.Level    // LOG_LEVEL — debug|info|warn|error, default: info
}

const (
	envKeyDBPath          = "PRDGEN_DB_PATH"
	envKeyHost            = "PRDGEN_HOST"
	envKeyPort            = "PRDGEN_PORT"
	envKeyGeminiAPIKey    = "GEMINI_API_KEY"
	envKeyGeminiBaseURL   = "GEMINI_BASE_URL"
	envKeyGroqAPIKey      = "GROQ_API_KEY"
	envKeyGroqBaseURL     = "GROQ_BASE_URL"
	envKeyDefaultModel    = "DEFAULT_MODEL"
	envKeyFallbackModel   = "FALLBACK_MODEL"
	envKeyImageModel      = "IMAGE_MODEL"
	envKeyLLMTimeout      = "LLM_TIMEOUT"
	envKeyChatMaxHistory  = "CHAT_MAX_HISTORY"
	envKeyBulkConcurrency = "BULK_CONCURRENCY"
	envKeyJWTSecret       = "JWT_SECRET"
	envKeyJWTExpiry       = "JWT_EXPIRY"
	envKeyLogLevel        = "LOG_LEVEL"

	// MinJWTSecretLength is the shortest accepted HS256 secret.
	MinJWTSecretLength = 32
)

// ErrJWTSecret is returned by RequireJWT when the secret is missing or too short.
var ErrJWTSecret = fmt.Errorf("config: %s must be set to at least %d characters", envKeyJWTSecret, MinJWTSecretLength)

// LoadDotEnv loads the given files (default ".env") into the environment without overriding
// variables that are already set. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults for missing or
// unparsable values.
func Load() Config {
	return Config{
		DBPath:          envOr(envKeyDBPath, "./data/prdgen.db"),
		Host:            envOr(envKeyHost, "0.0.0.0"),
		Port:            envInt(envKeyPort, 8080),
		GeminiAPIKey:    os.Getenv(envKeyGeminiAPIKey),
		GeminiBaseURL:   os.Getenv(envKeyGeminiBaseURL),
		GroqAPIKey:      os.Getenv(envKeyGroqAPIKey),
		GroqBaseURL:     os.Getenv(envKeyGroqBaseURL),
		DefaultModel:    envOr(envKeyDefaultModel, "gemini-2.5-flash"),
		FallbackModel:   envOr(envKeyFallbackModel, "gemini-2.5-flash"),
		ImageModel:      envOr(envKeyImageModel, "gemini-2.5-flash-image"),
		LLMTimeout:      envDuration(envKeyLLMTimeout, 60*time.Second),
		ChatMaxHistory:  envInt(envKeyChatMaxHistory, 20),
		BulkConcurrency: envInt(envKeyBulkConcurrency, 4),
		JWTSecret:       os.Getenv(envKeyJWTSecret),
		JWTExpiry:       time.Duration(envInt(envKeyJWTExpiry, 24)) * time.Hour,
		LogLevel:        parseLevel(os.Getenv(envKeyLogLevel)),
	}
}

// Addr returns host:port for the HTTP listener.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RequireJWT fails when the JWT secret cannot sign tokens safely.
func (c Config) RequireJWT() error {
	if len(c.JWTSecret) < MinJWTSecretLength {
		return ErrJWTSecret
	}
	return nil
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// envInt parses a positive integer, or returns fallback.
func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(envOr(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// envDuration accepts Go durations ("90s") or bare seconds ("90").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := envOr(key, "")
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func parseLevel(v string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
		return slog.LevelInfo
	}
	return level
}
