package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreFirebase = "firebase"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds application runtime configuration.
type Config struct {
	Env                 string
	HTTPPort            string
	StoreDriver         string
	DatabaseURL         string
	JWTSecret           string
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	GoogleClientID      string
	FirebaseProjectID   string
	FirebaseDatabaseURL string
	FirebaseCredFile    string
	FirebaseAPIKey      string
	NurseryID           string
	AdminEmail          string
	AdminPassword       string
	Location            *time.Location
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	IdleTimeout         time.Duration
	ShutdownTimeout     time.Duration
}

// Load reads environment variables and .env (if present).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		StoreDriver:         getEnv("STORE_DRIVER", StoreFirebase),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		AccessTokenTTL:      getDuration("ACCESS_TOKEN_TTL", 12*time.Hour),
		RefreshTokenTTL:     getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		FirebaseProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseDatabaseURL: os.Getenv("FIREBASE_DATABASE_URL"),
		FirebaseCredFile:    os.Getenv("FIREBASE_CREDENTIALS"),
		FirebaseAPIKey:      os.Getenv("FIREBASE_API_KEY"),
		NurseryID:           getEnv("NURSERY_ID", "funny-banny"),
		AdminEmail:          os.Getenv("ADMIN_EMAIL"),
		AdminPassword:       os.Getenv("ADMIN_PASSWORD"),
		ReadTimeout:         getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:        getDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:         getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:     getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	loc, err := time.LoadLocation(getEnv("NURSERY_TIMEZONE", "Africa/Cairo"))
	if err != nil {
		return cfg, fmt.Errorf("NURSERY_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET is required")
	}
	switch cfg.StoreDriver {
	case StoreFirebase:
		if cfg.FirebaseProjectID == "" || cfg.FirebaseDatabaseURL == "" {
			return cfg, errors.New("FIREBASE_PROJECT_ID and FIREBASE_DATABASE_URL are required for the firebase store")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return cfg, errors.New("DATABASE_URL is required for the postgres store")
		}
	case StoreMemory:
	default:
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg, nil
}

// UsesFirebase reports whether Firebase services (auth, messaging) are configured.
func (c Config) UsesFirebase() bool {
	return c.FirebaseProjectID != ""
}

func getEnv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		// Support seconds as integer without suffix.
		if secs, convErr := strconv.Atoi(val); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		return fallback
	}
	return d
}
