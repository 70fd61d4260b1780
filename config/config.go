package config

import (
	"os"
	"strconv"
	"strings"

	"sandwich-shop-service/internal/database"

	"go.uber.org/zap"
)

type Config struct {
	Port string
	DB   DB

	Redis Redis
	Kafka Kafka
	SMTP  SMTP

	StripeWebhookSecret string
	AdminEmail          string
	CORSOrigins         []string
}

type DB struct {
	database.Config
}

type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type Kafka struct {
	Enabled bool
	Brokers []string
	Topic   string
	GroupID string
}

type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Load reads the API server configuration. Redis and Kafka are optional: the
// service degrades to status-guard-only idempotency and log-only
// notifications when they are absent.
func Load(log *zap.Logger) *Config {
	kafkaBrokers := splitAndTrim(os.Getenv("KAFKA_BROKERS"))
	return &Config{
		Port: getEnv("APP_PORT", log),
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnv("DB_SSLMODE", log),
			},
		},
		Redis: Redis{
			Enabled:  os.Getenv("REDIS_ADDR") != "",
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       atoiDefault(os.Getenv("REDIS_DB"), 0),
		},
		Kafka: Kafka{
			Enabled: len(kafkaBrokers) > 0,
			Brokers: kafkaBrokers,
			Topic:   os.Getenv("KAFKA_TOPIC_NOTIFICATIONS"),
			GroupID: os.Getenv("KAFKA_GROUP_ID"),
		},
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", log),
		AdminEmail:          getEnv("ADMIN_EMAIL", log),
		CORSOrigins:         splitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}
}

// LoadNotifier reads the notifier worker configuration; SMTP and Kafka are
// required there.
func LoadNotifier(log *zap.Logger) *Config {
	return &Config{
		Kafka: Kafka{
			Enabled: true,
			Brokers: splitAndTrim(getEnv("KAFKA_BROKERS", log)),
			Topic:   getEnv("KAFKA_TOPIC_NOTIFICATIONS", log),
			GroupID: getEnv("KAFKA_GROUP_ID", log),
		},
		SMTP: SMTP{
			Host:     getEnv("SMTP_HOST", log),
			Port:     getEnvInt("SMTP_PORT", log),
			User:     getEnv("SMTP_USER", log),
			Password: getEnv("SMTP_PASSWORD", log),
			From:     getEnv("SMTP_FROM", log),
		},
	}
}

// LoadMigrate reads only what the migration runner needs.
func LoadMigrate(log *zap.Logger) *Config {
	return &Config{
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnv("DB_SSLMODE", log),
			},
		},
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("required environment variable not set", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvInt(key string, log *zap.Logger) int {
	valStr := getEnv(key, log)
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Error("environment variable is not an int", zap.String("key", key), zap.Error(err))
		panic("invalid int value for environment variable: " + key)
	}
	return val
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
