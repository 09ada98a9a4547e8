package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port         int
	MaxWorkers   int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Logging configuration
	LogFormat string // "json" or "pretty"
	LogLevel  string

	// OCR service configuration
	OCRServiceURL string
	OCRAPIKey     string
	OCRTimeout    time.Duration

	// Extraction configuration
	MinConfidence     int
	ReportingCurrency string

	// Auth configuration
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Storage configuration
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageRegion    string
}

// LoadConfig loads the application configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env file. Using environment variables.")
	}

	config := &Config{
		// Server configuration
		Port:         getEnvInt("PORT", 8080),
		MaxWorkers:   getEnvInt("MAX_WORKERS", 5),
		ReadTimeout:  time.Duration(getEnvInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvInt("WRITE_TIMEOUT", 30)) * time.Second,

		// Logging configuration
		LogFormat: getEnvString("LOG_FORMAT", "json"),
		LogLevel:  getEnvString("LOG_LEVEL", "info"),

		// OCR service configuration
		OCRServiceURL: os.Getenv("OCR_SERVICE_URL"),
		OCRAPIKey:     os.Getenv("OCR_API_KEY"),
		OCRTimeout:    time.Duration(getEnvInt("OCR_TIMEOUT", 30)) * time.Second,

		// Extraction configuration
		MinConfidence:     getEnvInt("MIN_CONFIDENCE", 40),
		ReportingCurrency: getEnvString("REPORTING_CURRENCY", "USD"),

		// Auth configuration
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  time.Duration(getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 15)) * time.Minute,
		RefreshTokenTTL: time.Duration(getEnvInt("REFRESH_TOKEN_TTL_HOURS", 168)) * time.Hour,

		// Storage configuration
		StorageEndpoint:  os.Getenv("STORAGE_ENDPOINT"),
		StorageAccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey: os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:    getEnvString("STORAGE_BUCKET", "receipts"),
		StorageRegion:    getEnvString("STORAGE_REGION", "us-east-1"),
	}

	validateConfig(config)

	return config, nil
}

// validateConfig checks if critical configuration values are set and logs warnings if they're missing
func validateConfig(config *Config) {
	if config.OCRServiceURL == "" {
		log.Println("Warning: No OCR service URL provided. Receipt scanning will fail.")
	}

	if config.JWTSecret == "" {
		log.Println("Warning: No JWT secret provided. Authentication will not be secure.")
	}

	if config.StorageEndpoint == "" {
		log.Println("Warning: No storage endpoint provided. Receipt images will not be archived.")
	}

	if config.MinConfidence < 0 || config.MinConfidence > 100 {
		log.Printf("Invalid MIN_CONFIDENCE %d, using default: 40", config.MinConfidence)
		config.MinConfidence = 40
	}
}

// getEnvInt gets an integer from an environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvBool gets a boolean from an environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	valueStr = strings.ToLower(valueStr)
	return valueStr == "true" || valueStr == "1" || valueStr == "yes"
}

// getEnvString gets a string from an environment variable with a default value
func getEnvString(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
