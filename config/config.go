package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every externally configurable knob. Loaded once in main
// and passed down explicitly.
type Config struct {
	Port           string
	FrontendURL    string
	DBPath         string
	JWTSecret      string
	JWTExpiryHours int
	PingInterval   time.Duration
	Environment    string
}

// Load reads .env (if present) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := Config{
		Port:           getEnv("PORT", "5000"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		DBPath:         getEnv("DB_PATH", "cyberapp.db"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTExpiryHours: 24,
		PingInterval:   5 * time.Minute,
		Environment:    getEnv("APP_ENV", "development"),
	}

	if raw := os.Getenv("JWT_EXPIRY_HOURS"); raw != "" {
		if h, err := time.ParseDuration(raw + "h"); err == nil {
			cfg.JWTExpiryHours = int(h.Hours())
		}
	}
	if raw := os.Getenv("PING_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.PingInterval = d
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
