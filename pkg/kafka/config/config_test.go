package kafka_config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NoBrokersMeansDisabled(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled())
	assert.Empty(t, cfg.Brokers)
	assert.Equal(t, DefaultBookingTopic, cfg.BookingTopic)
}

func TestLoad_ParsesBrokerListAndOverrides(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " broker-1:9092 , broker-2:9092,, ")
	t.Setenv(EnvKafkaBookingTopic, "branch-7-bookings")
	t.Setenv(EnvKafkaProducerCompression, "LZ4")
	t.Setenv(EnvKafkaPublishRetryBackoff, "50ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled())
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Brokers)
	assert.Equal(t, "branch-7-bookings", cfg.BookingTopic)
	assert.Equal(t, "lz4", cfg.ProducerCompression)
	assert.Equal(t, 50*time.Millisecond, cfg.PublishRetryBackoff)
}

func TestLoad_UnparsableValuesFallBack(t *testing.T) {
	t.Setenv(EnvKafkaProducerMaxAttempts, "many")
	t.Setenv(EnvKafkaProducerWriteTimeout, "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultProducerMaxAttempts, cfg.ProducerMaxAttempts)
	assert.Equal(t, DefaultProducerWriteTimeout, cfg.ProducerWriteTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Brokers:              []string{"localhost:9092"},
			BookingTopic:         DefaultBookingTopic,
			ProducerMaxAttempts:  3,
			ProducerBatchTimeout: 10 * time.Millisecond,
			ProducerWriteTimeout: time.Second,
			ProducerRequireAcks:  -1,
			ProducerCompression:  "snappy",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr []string
	}{
		{"valid", func(c *Config) {}, nil},
		{"bad compression", func(c *Config) { c.ProducerCompression = "brotli" }, []string{EnvKafkaProducerCompression}},
		{"bad acks", func(c *Config) { c.ProducerRequireAcks = 2 }, []string{EnvKafkaProducerRequireAcks}},
		{"zero attempts", func(c *Config) { c.ProducerMaxAttempts = 0 }, []string{EnvKafkaProducerMaxAttempts}},
		{"empty broker", func(c *Config) { c.Brokers = []string{""} }, []string{"broker 0 is empty"}},
		{"missing topic", func(c *Config) { c.BookingTopic = "" }, []string{EnvKafkaBookingTopic}},
		{"dlq equals topic", func(c *Config) { c.DLQTopic = c.BookingTopic }, []string{EnvKafkaDLQTopic}},
		{"all problems reported", func(c *Config) {
			c.ProducerMaxAttempts = 0
			c.ProducerCompression = "brotli"
		}, []string{EnvKafkaProducerMaxAttempts, EnvKafkaProducerCompression}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
