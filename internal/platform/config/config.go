// Package config builds runtime configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures server and collaborator configuration.
type Config struct {
	Addr string

	// DatabaseURL selects the PostgreSQL-backed stores when set; the service
	// falls back to in-memory stores otherwise (dev mode).
	DatabaseURL string

	// RedisURL selects the Redis-backed sequencer when set and no database is
	// configured.
	RedisURL string

	// KafkaBrokers enables the issued-receipt event publisher when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// CorrelativePrefix and CorrelativeWidth define the canonical receipt
	// number form, e.g. prefix "R" and width 5 render counter 42 as "R-00042".
	CorrelativePrefix string
	CorrelativeWidth  int

	// CollaboratorTimeout bounds every call to an external collaborator
	// (directory, sequencer, renderer, stores).
	CollaboratorTimeout time.Duration

	ShutdownTimeout time.Duration
}

// FromEnv builds a Config from environment variables. A .env file is loaded
// first when present so local development does not need exported variables.
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:                envOr("RECIBO_ADDR", ":8080"),
		DatabaseURL:         os.Getenv("RECIBO_DATABASE_URL"),
		RedisURL:            os.Getenv("RECIBO_REDIS_URL"),
		KafkaTopic:          envOr("RECIBO_KAFKA_TOPIC", "receipt_issued"),
		CorrelativePrefix:   envOr("RECIBO_CORRELATIVE_PREFIX", "R"),
		CorrelativeWidth:    envIntOr("RECIBO_CORRELATIVE_WIDTH", 5),
		CollaboratorTimeout: envDurationOr("RECIBO_COLLABORATOR_TIMEOUT", 10*time.Second),
		ShutdownTimeout:     envDurationOr("RECIBO_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if brokers := os.Getenv("RECIBO_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
