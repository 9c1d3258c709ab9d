package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "REDIS_URL", "DEFAULT_LANGUAGE", "ALLOWED_ORIGINS", "LOG_LEVEL",
		"NOTIFY_TTL", "NOTIFY_WELCOME_DELAY", "MAIL_FROM",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, "zh", cfg.DefaultLanguage)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.NotifyTTL)
	assert.Equal(t, 5*time.Second, cfg.NotifyWelcomeDelay)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DEFAULT_LANGUAGE", "en")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NOTIFY_TTL", "2h")
	t.Setenv("NOTIFY_WELCOME_DELAY", "0s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "en", cfg.DefaultLanguage)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 2*time.Hour, cfg.NotifyTTL)
	assert.Zero(t, cfg.NotifyWelcomeDelay)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad log level", "LOG_LEVEL", "loud"},
		{"non-numeric port", "PORT", "http"},
		{"negative ttl", "NOTIFY_TTL", "-1h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_BadDuration(t *testing.T) {
	for _, key := range []string{"NOTIFY_TTL", "NOTIFY_WELCOME_DELAY"} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, "soon")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is present, even if empty.
	os.Unsetenv("MAIL_FROM")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MAIL_FROM=news@melon.example\n"), 0o600))

	require.NoError(t, LoadDotEnv(path))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "news@melon.example", cfg.MailFrom)
}

func TestLoadDotEnv_Missing(t *testing.T) {
	assert.Error(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
