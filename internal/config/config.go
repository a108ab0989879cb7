package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Draft store backends accepted in DRAFT_STORE.
const (
	DraftStoreMemory   = "memory"
	DraftStorePostgres = "postgres"
	DraftStoreRedis    = "redis"
	DraftStoreSQLite   = "sqlite"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	DBConnString    string
	DraftStore      string
	RedisAddr       string
	SQLitePath      string
	KafkaBrokers    []string
	KafkaTopic      string
	SessionSecret   string
	PaymentDelay    time.Duration
	AuthDelay       time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() Config {
	return Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		DBConnString:    envOrDefault("DB_DSN", ""),
		DraftStore:      strings.ToLower(envOrDefault("DRAFT_STORE", DraftStoreMemory)),
		RedisAddr:       envOrDefault("REDIS_ADDR", "localhost:6379"),
		SQLitePath:      envOrDefault("SQLITE_PATH", "fluxo-drafts.db"),
		KafkaBrokers:    envList("KAFKA_BROKERS"),
		KafkaTopic:      envOrDefault("KAFKA_TOPIC", "checkout-payments"),
		SessionSecret:   envOrDefault("SESSION_SECRET", "fluxo-dev-secret"),
		PaymentDelay:    envMillis("PAYMENT_DELAY_MS", 1500*time.Millisecond),
		AuthDelay:       envMillis("AUTH_DELAY_MS", 500*time.Millisecond),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		CORSOrigins:     envList("CORS_ORIGINS"),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envMillis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		ms, err := strconv.Atoi(v)
		if err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

// envList splits a comma separated value, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
