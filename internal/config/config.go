package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	Port           string `env:"PORT" envDefault:"8080"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	PredictURL     string `env:"PREDICT_URL" envDefault:"http://localhost:5000/predict"`
	RequestTimeout int    `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds
	RequestsPerSec int    `env:"REQUESTS_PER_SEC" envDefault:"5"`
	MaxRetries     int    `env:"PREDICT_MAX_RETRIES" envDefault:"0"`
	HistoryKey     string `env:"HISTORY_KEY" envDefault:"prediction_history"`
	StorageDriver  string `env:"STORAGE_DRIVER" envDefault:"file"`
	StoragePath    string `env:"STORAGE_PATH" envDefault:"data"`
	SessionIdle    int    `env:"SESSION_IDLE_TIMEOUT" envDefault:"24"` // hours
	AllowOrigin    string `env:"CORS_ALLOW_ORIGIN" envDefault:"*"`
	TelegramToken  string `env:"TELEGRAM_BOT_TOKEN"`

	DB DatabaseConfig
}

// DatabaseConfig holds PostgreSQL settings used by the postgres storage driver
type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	DBName   string `env:"DB_NAME" envDefault:"heartrisk"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.Port = getEnvWithDefault("PORT", "8080")
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.PredictURL = getEnvWithDefault("PREDICT_URL", "http://localhost:5000/predict")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)
	cfg.MaxRetries = getEnvIntWithDefault("PREDICT_MAX_RETRIES", 0)
	cfg.HistoryKey = getEnvWithDefault("HISTORY_KEY", "prediction_history")
	cfg.StorageDriver = getEnvWithDefault("STORAGE_DRIVER", "file")
	cfg.StoragePath = getEnvWithDefault("STORAGE_PATH", "data")
	cfg.SessionIdle = getEnvIntWithDefault("SESSION_IDLE_TIMEOUT", 24)
	cfg.AllowOrigin = getEnvWithDefault("CORS_ALLOW_ORIGIN", "*")
	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	cfg.DB = DatabaseConfig{
		Host:     getEnvWithDefault("DB_HOST", "localhost"),
		Port:     getEnvWithDefault("DB_PORT", "5432"),
		User:     getEnvWithDefault("DB_USER", "postgres"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   getEnvWithDefault("DB_NAME", "heartrisk"),
		SSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),
	}

	return &cfg, nil
}

// Timeout returns the per-call prediction timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// SessionIdleTimeout returns how long an untouched session is kept
func (c *Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.SessionIdle) * time.Hour
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
