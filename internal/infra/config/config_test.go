// No t.Parallel(): env vars are process-global.
package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var allKeys = []string{
	envKeyDBPath, envKeyHost, envKeyPort, envKeyGeminiAPIKey, envKeyGeminiBaseURL, envKeyGroqAPIKey,
	envKeyGroqBaseURL, envKeyDefaultModel, envKeyFallbackModel, envKeyImageModel, envKeyLLMTimeout,
	envKeyChatMaxHistory, envKeyBulkConcurrency, envKeyJWTSecret, envKeyJWTExpiry, envKeyLogLevel,
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.DBPath != "./data/prdgen.db" || cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("unexpected storage/http defaults: %+v", cfg)
	}
	if cfg.DefaultModel != "gemini-2.5-flash" || cfg.FallbackModel != "gemini-2.5-flash" || cfg.ImageModel != "gemini-2.5-flash-image" {
		t.Errorf("unexpected model defaults: %+v", cfg)
	}
	if cfg.LLMTimeout != 60*time.Second || cfg.ChatMaxHistory != 20 || cfg.BulkConcurrency != 4 {
		t.Errorf("unexpected generation defaults: %+v", cfg)
	}
	if cfg.JWTExpiry != 24*time.Hour || cfg.LogLevel != slog.LevelInfo {
		t.Errorf("unexpected auth/log defaults: %+v", cfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(envKeyPort, "9090")
	t.Setenv(envKeyDefaultModel, "llama-3.3-70b-versatile")
	t.Setenv(envKeyGroqAPIKey, "gsk_x")
	t.Setenv(envKeyLLMTimeout, "90")
	t.Setenv(envKeyChatMaxHistory, "8")
	t.Setenv(envKeyJWTExpiry, "2")
	t.Setenv(envKeyLogLevel, "debug")

	cfg := Load()

	if cfg.Port != 9090 || cfg.DefaultModel != "llama-3.3-70b-versatile" || cfg.GroqAPIKey != "gsk_x" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.LLMTimeout != 90*time.Second || cfg.ChatMaxHistory != 8 || cfg.JWTExpiry != 2*time.Hour {
		t.Errorf("numeric overrides not applied: %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v; want debug", cfg.LogLevel)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv(envKeyPort, "http")
	t.Setenv(envKeyLLMTimeout, "-5s")
	t.Setenv(envKeyBulkConcurrency, "0")
	t.Setenv(envKeyLogLevel, "loud")

	cfg := Load()

	if cfg.Port != 8080 || cfg.LLMTimeout != 60*time.Second || cfg.BulkConcurrency != 4 || cfg.LogLevel != slog.LevelInfo {
		t.Errorf("invalid values must fall back to defaults: %+v", cfg)
	}
}

func TestEnvDuration_GoSyntax(t *testing.T) {
	t.Setenv("TEST_DURATION_KEY", "1m30s")
	if got := envDuration("TEST_DURATION_KEY", time.Second); got != 90*time.Second {
		t.Errorf("envDuration = %v; want 1m30s", got)
	}
}

func TestRequireJWT(t *testing.T) {
	if err := (Config{JWTSecret: "short"}).RequireJWT(); !errors.Is(err, ErrJWTSecret) {
		t.Errorf("expected ErrJWTSecret, got %v", err)
	}
	if err := (Config{JWTSecret: "test-secret-key-32-chars-min!!!!"}).RequireJWT(); err != nil {
		t.Errorf("expected valid secret, got %v", err)
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv(envKeyGroqAPIKey, "from-env")
	// godotenv treats a variable set to "" as present.
	os.Unsetenv(envKeyGeminiAPIKey) //nolint:errcheck

	path := filepath.Join(t.TempDir(), ".env")
	content := "GROQ_API_KEY=from-file\nGEMINI_API_KEY=gemini-from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	cfg := Load()
	if cfg.GroqAPIKey != "from-env" {
		t.Errorf("existing variable overridden: %q", cfg.GroqAPIKey)
	}
	if cfg.GeminiAPIKey != "gemini-from-file" {
		t.Errorf("file variable not loaded: %q", cfg.GeminiAPIKey)
	}
}

func TestLoadDotEnv_MissingFileIsFine(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing file must be ignored, got %v", err)
	}
}
