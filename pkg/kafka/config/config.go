package kafka_config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Config holds the settings of the booking event producer.
type Config struct {
	Brokers      []string
	ClientID     string
	BookingTopic string
	DLQTopic     string

	ProducerMaxAttempts  int
	ProducerBatchTimeout time.Duration
	ProducerWriteTimeout time.Duration
	ProducerRequireAcks  int
	ProducerCompression  string
	ProducerAsync        bool

	EnableMiddleware    bool
	PublishRetryBackoff time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Brokers:      parseBrokers(getEnvStr(EnvKafkaBrokers, DefaultKafkaBrokers)),
		ClientID:     getEnvStr(EnvKafkaClientID, DefaultKafkaClientID),
		BookingTopic: getEnvStr(EnvKafkaBookingTopic, DefaultBookingTopic),
		DLQTopic:     getEnvStr(EnvKafkaDLQTopic, ""),

		ProducerMaxAttempts:  getEnvInt(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
		ProducerBatchTimeout: getEnvDuration(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout),
		ProducerWriteTimeout: getEnvDuration(EnvKafkaProducerWriteTimeout, DefaultProducerWriteTimeout),
		ProducerRequireAcks:  getEnvInt(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks),
		ProducerCompression:  strings.ToLower(getEnvStr(EnvKafkaProducerCompression, DefaultProducerCompression)),
		ProducerAsync:        getEnvBool(EnvKafkaProducerAsync, DefaultProducerAsync),

		EnableMiddleware:    getEnvBool(EnvKafkaEnableMiddleware, DefaultEnableMiddleware),
		PublishRetryBackoff: getEnvDuration(EnvKafkaPublishRetryBackoff, DefaultPublishRetryBackoff),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Enabled reports whether at least one broker is configured.
func (cfg *Config) Enabled() bool {
	return len(cfg.Brokers) > 0
}

// Validate reports every invalid field at once.
func (cfg *Config) Validate() error {
	var problems []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Errorf(format, args...))
		}
	}

	for i, broker := range cfg.Brokers {
		check(broker != "", "broker %d is empty", i)
	}
	if cfg.Enabled() {
		check(cfg.BookingTopic != "", "%s is required when brokers are set", EnvKafkaBookingTopic)
	}
	check(cfg.DLQTopic == "" || cfg.DLQTopic != cfg.BookingTopic, "%s must differ from the booking topic", EnvKafkaDLQTopic)
	check(cfg.ProducerMaxAttempts > 0, "%s must be positive, got %d", EnvKafkaProducerMaxAttempts, cfg.ProducerMaxAttempts)
	check(cfg.ProducerBatchTimeout > 0, "%s must be positive, got %s", EnvKafkaProducerBatchTimeout, cfg.ProducerBatchTimeout)
	check(cfg.ProducerWriteTimeout > 0, "%s must be positive, got %s", EnvKafkaProducerWriteTimeout, cfg.ProducerWriteTimeout)
	check(cfg.PublishRetryBackoff >= 0, "%s must not be negative, got %s", EnvKafkaPublishRetryBackoff, cfg.PublishRetryBackoff)
	check(slices.Contains(compressionCodecs, cfg.ProducerCompression),
		"%s must be one of %v, got %q", EnvKafkaProducerCompression, compressionCodecs, cfg.ProducerCompression)
	check(slices.Contains(requiredAcksLevels, cfg.ProducerRequireAcks),
		"%s must be one of %v, got %d", EnvKafkaProducerRequireAcks, requiredAcksLevels, cfg.ProducerRequireAcks)

	if len(problems) > 0 {
		return fmt.Errorf("kafka configuration: %w", errors.Join(problems...))
	}
	return nil
}

func (cfg *Config) LogConfiguration(logFunc func(msg string, args ...any)) {
	if logFunc == nil {
		return
	}

	logFunc("Kafka configuration loaded",
		"brokers", cfg.Brokers,
		"client_id", cfg.ClientID,
		"booking_topic", cfg.BookingTopic,
		"dlq_topic", cfg.DLQTopic,
		"max_attempts", cfg.ProducerMaxAttempts,
		"require_acks", cfg.ProducerRequireAcks,
		"compression", cfg.ProducerCompression,
		"async", cfg.ProducerAsync,
		"middleware", cfg.EnableMiddleware,
		"retry_backoff", cfg.PublishRetryBackoff,
	)
}

func parseBrokers(raw string) []string {
	brokers := make([]string, 0)
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func getEnvStr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
