package kafka_middleware

import (
	"context"
	"time"

	"auravindex/pkg/kafka"
	"auravindex/pkg/logger"
)

func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		attrs := []any{
			"topic", msg.Topic,
			"key", msg.Key,
			"event_id", msg.Header(kafka.HeaderEventID),
			"event_type", msg.Header(kafka.HeaderEventType),
			"correlation_id", msg.Header(kafka.HeaderCorrelationID),
			"duration", time.Since(start),
		}
		if err != nil {
			log.Error("Failed to publish message", append(attrs, "error", err)...)
			return err
		}
		log.Debug("Published message", attrs...)
		return nil
	}
}

// RetryProducerMiddleware retries transient failures with linear backoff.
func RetryProducerMiddleware(attempts int, backoff time.Duration) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		var err error
		for i := 0; i < max(1, attempts); i++ {
			if err = next(ctx, msg); err == nil || !kafka.IsTransient(err) {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff * time.Duration(i+1)):
			}
		}
		return err
	}
}
