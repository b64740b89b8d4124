package bootstrap

import (
	"fmt"

	"auravindex/internal/lending/events"
	"auravindex/internal/lending/policy"
	"auravindex/internal/lending/repository"
	"auravindex/internal/lending/service"
	"auravindex/internal/lending/validator"
	"auravindex/pkg/config"
	"auravindex/pkg/kafka"
	kafka_config "auravindex/pkg/kafka/config"
	kafka_middleware "auravindex/pkg/kafka/middleware"
)

// Lending is the wired booking core shared by the HTTP service and the reconcile job.
type Lending struct {
	Service   service.BookingService
	Publisher events.Publisher
}

func (l *Lending) Close() error {
	return l.Publisher.Close()
}

// New expects cfg.SetMongo to have been called.
func New(cfg *config.Config) (*Lending, error) {
	rules, err := policy.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid booking policy: %w", err)
	}

	publisher, err := NewPublisher(cfg)
	if err != nil {
		return nil, err
	}

	svc := service.NewBookingService(
		repository.NewMongoBookingRepository(cfg),
		repository.NewMongoResourceDirectory(cfg),
		repository.NewMongoLeaseRepository(cfg),
		validator.NewBookingValidator(cfg.Log),
		rules,
		publisher,
		cfg,
	)

	cfg.Log.Info("Lending service initialized",
		"database", cfg.MongoDatabaseName,
		"max_renewals", rules.MaxRenewals,
		"max_window_days", rules.MaxWindowDays,
		"timezone", rules.Location.String(),
	)
	return &Lending{Service: svc, Publisher: publisher}, nil
}

// NewPublisher returns a Kafka-backed publisher when brokers are configured, otherwise a no-op.
func NewPublisher(cfg *config.Config) (events.Publisher, error) {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid kafka configuration: %w", err)
	}
	if !kafkaCfg.Enabled() {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return events.NopPublisher{}, nil
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.BookingTopic, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.RetryProducerMiddleware(kafkaCfg.ProducerMaxAttempts, kafkaCfg.PublishRetryBackoff))
	}

	cfg.Log.Info("Booking events enabled", "topic", kafkaCfg.BookingTopic, "brokers", kafkaCfg.Brokers)
	return events.NewKafkaPublisher(producer), nil
}
