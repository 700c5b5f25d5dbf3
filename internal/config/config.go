package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	PublicURL string

	// WAHA bridge settings
	WahaURL     string
	WahaSession string
	WahaToken   string
	WahaTimeout int // seconds

	// Database settings
	DBDriver   string // "postgres" or "sqlite"
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		PublicURL:   getEnv("PUBLIC_URL", "http://localhost:8080"),
		WahaURL:     getEnv("WAHA_URL", ""),
		WahaSession: getEnv("WAHA_SESSION", ""),
		WahaToken:   getEnv("WAHA_TOKEN", ""),
		WahaTimeout: getEnvInt("WAHA_TIMEOUT", 30),
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DBPath:      getEnv("DB_PATH", "./waha-gateway.db"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "waha_gateway"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
