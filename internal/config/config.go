package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	// HTTP Server
	Port   string
	APIKey string

	// Logging
	LogLevel string

	// Google Cloud
	GCPProject string
	BQDataset  string
	GCSBucket  string

	// Model
	GeminiModel       string
	ExtractionTimeout time.Duration

	// Telegram
	TelegramToken string

	// Notion
	NotionToken string
	NotionDBID  string

	// Digest
	DigestHour int

	// Extraction queue
	QueueWorkers int
	QueueBuffer  int
}

// Load reads .env (when present) and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:   getEnv("PORT", "8080"),
		APIKey: getEnv("API_KEY", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		GCPProject: getEnv("GCP_PROJECT", ""),
		BQDataset:  getEnv("BQ_DATASET", "expense_tracker"),
		GCSBucket:  getEnv("GCS_BUCKET", ""),

		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		ExtractionTimeout: getEnvDuration("EXTRACTION_TIMEOUT", 30*time.Second),

		TelegramToken: getEnv("TELEGRAM_TOKEN", ""),

		NotionToken: getEnv("NOTION_TOKEN", ""),
		NotionDBID:  getEnv("NOTION_DB_ID", ""),

		DigestHour: getEnvInt("DIGEST_HOUR", 9),

		QueueWorkers: getEnvInt("QUEUE_WORKERS", 5),
		QueueBuffer:  getEnvInt("QUEUE_BUFFER", 100),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}

	if c.ExtractionTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid extraction timeout %v: must be at least 1 second", c.ExtractionTimeout))
	} else if c.ExtractionTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid extraction timeout %v: must be at most 5 minutes", c.ExtractionTimeout))
	}

	if c.DigestHour < 0 || c.DigestHour > 23 {
		errors = append(errors, fmt.Sprintf("invalid digest hour %d: must be between 0 and 23", c.DigestHour))
	}

	if c.QueueWorkers < 1 || c.QueueWorkers > 64 {
		errors = append(errors, fmt.Sprintf("invalid queue workers %d: must be between 1 and 64", c.QueueWorkers))
	}
	if c.QueueBuffer < 1 {
		errors = append(errors, fmt.Sprintf("invalid queue buffer %d: must be at least 1", c.QueueBuffer))
	}

	if c.NotionDBID != "" && c.NotionToken == "" {
		errors = append(errors, "NOTION_TOKEN is required when NOTION_DB_ID is set")
	}

	return combine(errors)
}

// RequireStorage checks the settings every BigQuery-backed command needs.
func (c *Config) RequireStorage() error {
	var errors []string
	if c.GCPProject == "" {
		errors = append(errors, "GCP_PROJECT is required")
	}
	if c.BQDataset == "" {
		errors = append(errors, "BQ_DATASET is required")
	}
	return combine(errors)
}

// RequireTelegram checks the bot settings.
func (c *Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return combine([]string{"TELEGRAM_TOKEN is required"})
	}
	return nil
}

// RequireNotion checks the export settings.
func (c *Config) RequireNotion() error {
	var errors []string
	if c.NotionToken == "" {
		errors = append(errors, "NOTION_TOKEN is required")
	}
	if c.NotionDBID == "" {
		errors = append(errors, "NOTION_DB_ID is required")
	}
	return combine(errors)
}

func combine(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
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
