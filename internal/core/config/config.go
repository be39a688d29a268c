package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	APIBaseURL  string
	DBPath      string
	WebhookURL  string
	Env         string
	StartOnline bool
}

// LoadConfig reads .env and returns a Config with sane defaults.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on system env variables")
	}

	return &Config{
		Port:       getEnv("PORT", "8480"),
		APIBaseURL: getEnv("API_BASE_URL", "https://6870d44c7ca4d06b34b83a49.mockapi.io/api/core"),
		DBPath:     getEnv("DB_PATH", "banktech.db"),
		WebhookURL: getEnv("WEBHOOK_URL", ""),
		Env:        getEnv("ENV", "development"),
		// The daemon assumes connectivity until the UI reports otherwise.
		StartOnline: getEnv("START_ONLINE", "true") != "false",
	}
}

// Helper to get env with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
