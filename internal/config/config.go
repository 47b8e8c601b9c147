package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported generation providers.
const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// DefaultDatabasePath is used when DATABASE_PATH is unset.
const DefaultDatabasePath = "data/goalfit.db"

// Config holds the configuration for the application.
type Config struct {
	LLMProvider  string
	LLMAPIKey    string
	LLMTimeout   time.Duration
	DatabasePath string

	// HTTP
	Port           string
	JWTSecret      string
	AllowedOrigins []string
	FrontendURL    string

	// Mail
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	// Telegram admin alerts, disabled when the token is empty
	TelegramBotToken    string
	TelegramAdminChatID int64

	// Scheduler
	Timezone               string
	PlanRefreshSchedule    string
	WeightReminderSchedule string
}

// NewFromEnv creates a new Config object from environment variables.
// A .env file in the working directory is loaded first when present.
func NewFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI))
	var keyName string
	switch provider {
	case ProviderOpenAI:
		keyName = "OPENAI_API_KEY"
	case ProviderGroq:
		keyName = "GROQ_API_KEY"
	case ProviderGemini:
		keyName = "GEMINI_API_KEY"
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", provider)
	}

	apiKey := os.Getenv(keyName)
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable not set", keyName)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	timeoutSeconds, err := getEnvAsInt("LLM_TIMEOUT_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	if timeoutSeconds <= 0 {
		return nil, fmt.Errorf("LLM_TIMEOUT_SECONDS must be positive, got %d", timeoutSeconds)
	}

	smtpPort, err := getEnvAsInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	var adminChatID int64
	if raw := os.Getenv("TELEGRAM_ADMIN_CHAT_ID"); raw != "" {
		adminChatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_CHAT_ID %q: %w", raw, err)
		}
	}

	frontendURL := strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/")

	return &Config{
		LLMProvider:            provider,
		LLMAPIKey:              apiKey,
		LLMTimeout:             time.Duration(timeoutSeconds) * time.Second,
		DatabasePath:           getEnv("DATABASE_PATH", DefaultDatabasePath),
		Port:                   getEnv("PORT", "8080"),
		JWTSecret:              jwtSecret,
		AllowedOrigins:         getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{frontendURL}),
		FrontendURL:            frontendURL,
		SMTPHost:               getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:               smtpPort,
		SMTPUser:               os.Getenv("SMTP_USER"),
		SMTPPass:               os.Getenv("SMTP_PASS"),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAdminChatID:    adminChatID,
		Timezone:               getEnv("SCHEDULER_TIMEZONE", "Europe/Paris"),
		PlanRefreshSchedule:    getEnv("PLAN_REFRESH_SCHEDULE", "0 0 */2 * *"),
		WeightReminderSchedule: getEnv("WEIGHT_REMINDER_SCHEDULE", "0 8 * * 1"),
	}, nil
}

// Location resolves the scheduler timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DataDir is the directory holding the database file.
func (c *Config) DataDir() string {
	return filepath.Dir(c.DatabasePath)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getEnvAsSlice(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
