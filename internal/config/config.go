package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Tuning defaults
const (
	DefaultPort               = "3000"
	DefaultQueuePassInterval  = 10 * time.Second
	DefaultRetryPassInterval  = 300 * time.Second
	DefaultMaxRetries         = 3
	DefaultSendRatePerSecond  = 50
	DefaultSMTPPort           = "587"
	DefaultKafkaTopic         = "domain-events"
	DefaultKafkaConsumerGroup = "notifier"
)

// Configuration loaded from environment
var (
	Port        string
	DatabaseURL string
	JWTSecret   string

	QueuePassInterval time.Duration
	RetryPassInterval time.Duration
	MaxRetries        int
	SendRatePerSecond int

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPPassword string

	SMSGatewayURL   string
	SMSGatewayToken string

	KafkaBrokers       string
	KafkaTopic         string
	KafkaConsumerGroup string
)

func Load() {
	Port = GetEnv("PORT", DefaultPort)
	DatabaseURL = os.Getenv("DATABASE_URL")
	JWTSecret = os.Getenv("JWT_SECRET")

	QueuePassInterval = GetEnvDuration("QUEUE_PASS_INTERVAL", DefaultQueuePassInterval)
	RetryPassInterval = GetEnvDuration("RETRY_PASS_INTERVAL", DefaultRetryPassInterval)
	MaxRetries = GetEnvInt("MAX_RETRIES", DefaultMaxRetries)
	SendRatePerSecond = GetEnvInt("SEND_RATE_PER_SECOND", DefaultSendRatePerSecond)

	SMTPHost = os.Getenv("SMTP_HOST")
	SMTPPort = GetEnv("SMTP_PORT", DefaultSMTPPort)
	SMTPFrom = os.Getenv("SMTP_FROM")
	SMTPPassword = os.Getenv("SMTP_PASSWORD")

	SMSGatewayURL = os.Getenv("SMS_GATEWAY_URL")
	SMSGatewayToken = os.Getenv("SMS_GATEWAY_TOKEN")

	KafkaBrokers = os.Getenv("KAFKA_BROKERS")
	KafkaTopic = GetEnv("KAFKA_TOPIC", DefaultKafkaTopic)
	KafkaConsumerGroup = GetEnv("KAFKA_CONSUMER_GROUP", DefaultKafkaConsumerGroup)
}

// GetEnv retrieves an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt retrieves an integer environment variable or returns a default value
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Int("default", defaultValue).Msg("invalid integer value, using default")
	}
	return defaultValue
}

// GetEnvDuration retrieves a duration environment variable (e.g. "10s", "5m")
// or returns a default value
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Warn().Str("key", key).Dur("default", defaultValue).Msg("invalid duration value, using default")
	}
	return defaultValue
}
