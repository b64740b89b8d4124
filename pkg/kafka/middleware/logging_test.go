package kafka_middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"auravindex/pkg/kafka"
	"auravindex/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage(t *testing.T) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().WithKey("r1").WithEvent("evt-1", "booking.created").WithValue("x").Build()
	require.NoError(t, err)
	return msg
}

func TestRetryProducerMiddleware_RetriesTransientFailures(t *testing.T) {
	calls := 0
	next := func(context.Context, kafka.Message) error {
		calls++
		if calls < 3 {
			return errors.New("dial tcp: connection refused")
		}
		return nil
	}

	err := RetryProducerMiddleware(3, time.Millisecond)(context.Background(), testMessage(t), next)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryProducerMiddleware_StopsOnPermanentFailure(t *testing.T) {
	calls := 0
	next := func(context.Context, kafka.Message) error {
		calls++
		return kafka.ErrEmptyKey
	}

	err := RetryProducerMiddleware(5, time.Millisecond)(context.Background(), testMessage(t), next)
	assert.ErrorIs(t, err, kafka.ErrEmptyKey)
	assert.Equal(t, 1, calls)
}

func TestRetryProducerMiddleware_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	next := func(context.Context, kafka.Message) error {
		cancel()
		return errors.New("i/o timeout")
	}

	err := RetryProducerMiddleware(5, time.Hour)(ctx, testMessage(t), next)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoggingProducerMiddleware_LogsFailuresWithEventHeaders(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: logger.DEBUG, Output: &buf})
	boom := errors.New("broker down")

	err := LoggingProducerMiddleware(log)(context.Background(), testMessage(t), func(context.Context, kafka.Message) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, buf.String(), `"event_id":"evt-1"`)
	assert.Contains(t, buf.String(), `"event_type":"booking.created"`)
	assert.Contains(t, buf.String(), "Failed to publish message")
}
