package kafka_config

import "time"

const (
	DefaultKafkaBrokers  = ""
	DefaultKafkaClientID = "auravindex"
	DefaultBookingTopic  = "library-booking-events"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerWriteTimeout = 5 * time.Second
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false

	DefaultEnableMiddleware    = true
	DefaultPublishRetryBackoff = 200 * time.Millisecond
)

var (
	compressionCodecs = []string{"none", "gzip", "snappy", "lz4", "zstd"}

	// -1 waits for all in-sync replicas, 0 for none, 1 for the leader.
	requiredAcksLevels = []int{-1, 0, 1}
)
