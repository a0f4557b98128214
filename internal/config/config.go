package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration read from the environment.
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Access tokens
	AccessTokenTTL time.Duration

	// When set, the documentation field on users must be a valid
	// Brazilian CPF.
	OnlyBrazilianCPF bool
}

var appConfig *Config

// Load reads configuration from the environment, falling back to
// development defaults. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "centavo"),
		DBPassword: getEnv("DB_PASSWORD", "centavo"),
		DBName:     getEnv("DB_NAME", "centavo"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		OnlyBrazilianCPF: getEnvBool("ONLY_BRAZILIAN_CPF", true),
	}

	// ACCESS_TOKEN_TTL is expressed in minutes.
	ttlMinutes := 30
	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			log.Printf("Warning: invalid ACCESS_TOKEN_TTL value '%s', falling back to 30\n", v)
		} else {
			ttlMinutes = parsed
		}
	}
	config.AccessTokenTTL = time.Duration(ttlMinutes) * time.Minute

	appConfig = config
	return config, nil
}

// Get returns the application configuration, loading it on first use.
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Set replaces the cached configuration. Tests use it to pin a known TTL.
func Set(c *Config) {
	appConfig = c
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
