package config

import (
	"os"
	"strings"
	"time"
)

// Config carries every process-level setting, including the payment
// processor credentials. Nothing configuration-shaped lives in package
// globals; the Stripe adapter receives its keys from here.
type Config struct {
	HTTPPort            string
	MySQLDSN            string
	MigrationsDir       string
	RedisAddr           string
	KafkaBrokers        []string
	KafkaTopic          string
	StripeAPIKey        string
	StripeWebhookSecret string
	Currency            string
	ShutdownTimeout     time.Duration
}

func Load() *Config {
	return &Config{
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		MySQLDSN:            getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/atelier?parseTime=true"),
		MigrationsDir:       getEnv("MIGRATIONS_DIR", "migrations"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:        splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "order-events"),
		StripeAPIKey:        os.Getenv("STRIPE_API_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            getEnv("CURRENCY", "eur"),
		ShutdownTimeout:     10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
