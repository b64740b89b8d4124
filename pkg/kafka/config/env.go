package kafka_config

// Publishing is disabled while EnvKafkaBrokers is empty.
const (
	EnvKafkaBrokers      = "KAFKA_BROKERS"
	EnvKafkaClientID     = "KAFKA_CLIENT_ID"
	EnvKafkaBookingTopic = "KAFKA_BOOKING_TOPIC"
	EnvKafkaDLQTopic     = "KAFKA_DLQ_TOPIC"

	EnvKafkaProducerMaxAttempts  = "KAFKA_PRODUCER_MAX_ATTEMPTS"
	EnvKafkaProducerBatchTimeout = "KAFKA_PRODUCER_BATCH_TIMEOUT"
	EnvKafkaProducerWriteTimeout = "KAFKA_PRODUCER_WRITE_TIMEOUT"
	EnvKafkaProducerRequireAcks  = "KAFKA_PRODUCER_REQUIRE_ACKS"
	EnvKafkaProducerCompression  = "KAFKA_PRODUCER_COMPRESSION"
	EnvKafkaProducerAsync        = "KAFKA_PRODUCER_ASYNC"

	EnvKafkaEnableMiddleware    = "KAFKA_ENABLE_MIDDLEWARE"
	EnvKafkaPublishRetryBackoff = "KAFKA_PUBLISH_RETRY_BACKOFF"
)
