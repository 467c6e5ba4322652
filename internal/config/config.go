package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env         string
	Port        string
	EnablePprof bool

	// MetricsAPIKey guards /metrics when set
	MetricsAPIKey string

	// CORS origin patterns, matched with glob syntax (e.g. "https://*.example.com")
	CORSAllowOrigins []string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Auth provider tokens
	AuthJWTSecret   string
	AuthJWTIssuer   string
	AuthJWTAudience string

	// Events
	AMQPURL      string
	AMQPExchange string

	// BusinessLocation is the fixed zone month boundaries are computed in.
	BusinessLocation *time.Location
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:         getEnv("ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		EnablePprof: getEnvBool("ENABLE_PPROF", false),

		MetricsAPIKey: os.Getenv("METRICS_API_KEY"),

		CORSAllowOrigins: strings.Fields(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "spacebudget"),
		DBPassword: getEnv("DB_PASSWORD", "spacebudget"),
		DBName:     getEnv("DB_NAME", "spacebudget"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		AuthJWTSecret:   os.Getenv("AUTH_JWT_SECRET"),
		AuthJWTIssuer:   os.Getenv("AUTH_JWT_ISSUER"),
		AuthJWTAudience: os.Getenv("AUTH_JWT_AUDIENCE"),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spacebudget.events"),
	}

	if config.AuthJWTSecret == "" {
		return nil, errors.New("AUTH_JWT_SECRET is required")
	}

	offsetStr := getEnv("BUSINESS_TZ_OFFSET_HOURS", "9")
	offset, err := strconv.Atoi(offsetStr)
	if err != nil || offset < -12 || offset > 14 {
		log.Printf("Warning: invalid BUSINESS_TZ_OFFSET_HOURS value '%s', falling back to 9\n", offsetStr)
		offset = 9
	}
	config.BusinessLocation = FixedZone(offset)

	return config, nil
}

// FixedZone returns a zone at a whole-hour offset from UTC, named like "UTC+9".
func FixedZone(offsetHours int) *time.Location {
	name := "UTC"
	if offsetHours >= 0 {
		name += "+"
	}
	return time.FixedZone(name+strconv.Itoa(offsetHours), offsetHours*60*60)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
