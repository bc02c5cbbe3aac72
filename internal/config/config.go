package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	UserStore   string // "memory" | "redis" | "dynamo"
	EmailSender string // "smtp" | "ses"

	AWSRegion        string
	AWSEndpointURL   string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID   string
	AWSSecretKey     string
	DynamoUsersTable string

	RedisURL      string
	RedisUsersKey string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SESRegion string
	SESFrom   string

	RegistrationSubject string
	RegisterRateLimit   float64 // requests per second per client IP
	RegisterRateBurst   int

	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		UserStore:   getEnv("USER_STORE", "memory"),
		EmailSender: getEnv("EMAIL_SENDER", "smtp"),

		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL:   getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID:   getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoUsersTable: getEnv("DYNAMO_TABLE_USERS", "registered_users"),

		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisUsersKey: getEnv("REDIS_USERS_KEY", "registration:users"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SESRegion: getEnv("SES_REGION", "us-east-1"),
		SESFrom:   getEnv("SES_FROM", "noreply@example.com"),

		RegistrationSubject: getEnv("REGISTRATION_SUBJECT", "Confirm your registration"),
		RegisterRateLimit:   getEnvFloat("REGISTER_RATE_LIMIT", 5),
		RegisterRateBurst:   getEnvInt("REGISTER_RATE_BURST", 10),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
