package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port               string
	RedisURL           string
	DefaultLanguage    string
	AllowedOrigins     []string
	LogLevel           slog.Level
	NotifyTTL          time.Duration
	NotifyWelcomeDelay time.Duration
	MailFrom           string
}

// LoadDotEnv reads .env into the environment if the file exists. Variables
// already set are not overridden.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load reads configuration from environment variables.
// An empty REDIS_URL selects the in-memory notification store.
func Load() (*Config, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("parsing LOG_LEVEL: %w", err)
	}

	ttl, err := getEnvDuration("NOTIFY_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	welcomeDelay, err := getEnvDuration("NOTIFY_WELCOME_DELAY", 5*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		RedisURL:           getEnv("REDIS_URL", ""),
		DefaultLanguage:    getEnv("DEFAULT_LANGUAGE", "zh"),
		AllowedOrigins:     getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:           level,
		NotifyTTL:          ttl,
		NotifyWelcomeDelay: welcomeDelay,
		MailFrom:           getEnv("MAIL_FROM", "hello@melon.example"),
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
	}
	if cfg.NotifyTTL < 0 || cfg.NotifyWelcomeDelay < 0 {
		return nil, fmt.Errorf("NOTIFY_TTL and NOTIFY_WELCOME_DELAY must not be negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
