package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Port string

	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	RedisAddr   string
	KafkaBroker string

	JWTSecret string

	MidtransServerKey string
	MidtransSnapURL   string
	MidtransCoreURL   string
	GatewayTimeout    time.Duration

	// How long a pending payment stays payable before the sweeper expires it.
	PaymentExpiry time.Duration
	SweepInterval time.Duration

	CacheTTL time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "3009"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBUser: getEnv("DB_USER", "postgres"),
		DBPass: getEnv("DB_PASS", "postgres"),
		DBName: getEnv("DB_NAME", "edupaydb"),

		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker: getEnv("KAFKA_BROKER", "kafka:9092"),

		JWTSecret: getEnv("JWT_SECRET", "supersecret"),

		MidtransServerKey: getEnv("MIDTRANS_SERVER_KEY", ""),
		MidtransSnapURL:   getEnv("MIDTRANS_SNAP_URL", "https://app.sandbox.midtrans.com"),
		MidtransCoreURL:   getEnv("MIDTRANS_CORE_URL", "https://api.sandbox.midtrans.com"),
		GatewayTimeout:    getDuration("GATEWAY_TIMEOUT", 10*time.Second),

		PaymentExpiry: getDuration("PAYMENT_EXPIRY", 30*time.Minute),
		SweepInterval: getDuration("SWEEP_INTERVAL", 5*time.Minute),

		CacheTTL: getDuration("CACHE_TTL", 5*time.Minute),
	}
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort,
	)
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getDuration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return d
}
