package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port         string
	LogLevel     string
	JWTSecret    string
	DatabasePath string

	// External collaborators.
	ParserServiceURL string
	FinanceAPIURL    string

	// Review session lifetime.
	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration

	MaxUploadSizeBytes int64
	ClientTimeout      time.Duration
	AllowedOrigin      string
}

var Cfg *AppConfig

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found. Relying on OS environment variables and defaults.")
	} else {
		log.Println(".env file loaded successfully.")
	}

	jwtSecret := getEnv("JWT_SECRET", "insecure-development-jwt-secret-at-least-32-bytes")
	if jwtSecret == "insecure-development-jwt-secret-at-least-32-bytes" {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET for production.")
	}

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	Cfg = &AppConfig{
		Port:         getEnv("PORT", "8081"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		JWTSecret:    jwtSecret,
		DatabasePath: getEnv("DATABASE_PATH", "./importer.db"),

		ParserServiceURL: getEnv("PARSER_SERVICE_URL", "http://localhost:8000"),
		FinanceAPIURL:    getEnv("FINANCE_API_URL", "http://localhost:8080"),

		SessionTTL:             getEnvAsDuration("SESSION_TTL", 45*time.Minute),
		SessionCleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute),

		MaxUploadSizeBytes: maxUploadSizeBytes,
		ClientTimeout:      getEnvAsDuration("CLIENT_TIMEOUT", 90*time.Second),
		AllowedOrigin:      getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, ParserURL=%s, FinanceURL=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.ParserServiceURL, Cfg.FinanceAPIURL)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
