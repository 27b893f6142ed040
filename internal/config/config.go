package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Defaults applied when the environment does not override them
const (
	DefaultThresholdAmount = 5000
	DefaultThresholdDays   = 2
	DefaultServerAddr      = ":8080"
)

// Config holds all host-provided settings. It is built once at process start
// and passed to the services; business logic never reads the environment.
type Config struct {
	ServerAddr string
	DBConnStr  string

	// ThresholdAmount is the collected balance that latches the freeze timestamp
	ThresholdAmount decimal.Decimal

	// FreezeAfter is the grace period after latching before the collector
	// is actually considered frozen
	FreezeAfter time.Duration
}

// Load builds the configuration from a .env file (if present) and the
// process environment, falling back to defaults for anything unset
func Load() (Config, error) {
	// A missing .env file is fine; the environment still applies
	_ = godotenv.Load()

	cfg := Config{
		ServerAddr:      envOrDefault("SERVER_ADDR", DefaultServerAddr),
		DBConnStr:       buildDBConnStr(),
		ThresholdAmount: decimal.NewFromInt(DefaultThresholdAmount),
		FreezeAfter:     DefaultThresholdDays * 24 * time.Hour,
	}

	if raw := os.Getenv("THRESHOLD_AMOUNT"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid THRESHOLD_AMOUNT %q: %w", raw, err)
		}
		if amount.LessThanOrEqual(decimal.Zero) {
			return Config{}, fmt.Errorf("THRESHOLD_AMOUNT must be positive, got %q", raw)
		}
		cfg.ThresholdAmount = amount
	}

	if raw := os.Getenv("THRESHOLD_DAYS"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return Config{}, fmt.Errorf("invalid THRESHOLD_DAYS %q", raw)
		}
		cfg.FreezeAfter = time.Duration(days) * 24 * time.Hour
	}

	return cfg, nil
}

// buildDBConnStr returns DB_CONN_STR when set, otherwise assembles a
// connection string from individual vars (Docker friendly)
func buildDBConnStr() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}

	host := envOrDefault("DB_HOST", "localhost")
	port := envOrDefault("DB_PORT", "5432")
	user := envOrDefault("DB_USER", "postgres")
	password := envOrDefault("DB_PASSWORD", "postgres")
	dbname := envOrDefault("DB_NAME", "cashcollector")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
