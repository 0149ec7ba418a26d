package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	SessionSecret    string
	SessionRedisAddr string

	TemplateGlob string

	SeedSampleData bool
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:8080"),

		SessionSecret:    getEnv("SESSION_SECRET", "change-me"),
		SessionRedisAddr: os.Getenv("SESSION_REDIS_ADDR"),

		TemplateGlob: getEnv("TEMPLATE_GLOB", "web/templates/*.html"),
	}

	cfg.SeedSampleData = getEnv("SEED_SAMPLE_DATA", "") == "true" || cfg.AppEnv == "development"

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
