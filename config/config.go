package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Ledger   LedgerConfig
	Events   EventsConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// RateLimit allows this many requests per client IP per RateWindow.
	RateLimit  int
	RateWindow time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// AdminConfig seeds the first operator account on startup.
type AdminConfig struct {
	Email    string
	Password string
}

type LedgerConfig struct {
	// DefaultFeePercent seeds the system default used when the rate history
	// is empty. Stored as a system setting, so later changes go through the API.
	DefaultFeePercent float64
	// SweepInterval runs the all-partner rebuild periodically; 0 disables it.
	SweepInterval time.Duration
}

// EventsConfig enables NATS publishing of applied ledger events.
// Empty URL disables publishing.
type EventsConfig struct {
	NatsURL string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getenv("TIKETI_PORT", "8088"),
			Env:          getenv("TIKETI_ENV", "development"),
			ReadTimeout:  getenvDuration("TIKETI_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getenvDuration("TIKETI_WRITE_TIMEOUT", 10*time.Second),
			RateLimit:    getenvInt("TIKETI_RATE_LIMIT", 100),
			RateWindow:   getenvDuration("TIKETI_RATE_WINDOW", time.Minute),
		},
		Database: DatabaseConfig{
			DSN:             getenv("TIKETI_DB_DSN", "tiketi:tiketi@tcp(localhost:3306)/tiketi?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    getenvInt("TIKETI_DB_MAX_IDLE", 10),
			MaxOpenConns:    getenvInt("TIKETI_DB_MAX_OPEN", 100),
			ConnMaxLifetime: getenvDuration("TIKETI_DB_CONN_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			Secret: getenv("TIKETI_JWT_SECRET", "change-me-in-production"),
			Expiry: getenvDuration("TIKETI_JWT_EXPIRY", 12*time.Hour),
			Issuer: getenv("TIKETI_JWT_ISSUER", "tiketi"),
		},
		Admin: AdminConfig{
			Email:    getenv("TIKETI_ADMIN_EMAIL", "admin@tiketi.local"),
			Password: getenv("TIKETI_ADMIN_PASSWORD", "admin123"),
		},
		Ledger: LedgerConfig{
			DefaultFeePercent: getenvFloat("TIKETI_DEFAULT_FEE_PERCENT", 0),
			SweepInterval:     getenvDuration("TIKETI_RECONCILE_SWEEP_INTERVAL", 0),
		},
		Events: EventsConfig{
			NatsURL: os.Getenv("TIKETI_NATS_URL"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
