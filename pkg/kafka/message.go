package kafka

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Message is one keyed record with string headers. Key carries the partition
// key; booking events use the resource id so a resource's history stays ordered.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Topic     string
	Timestamp time.Time
}

const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderCorrelationID = "correlation-id"
	HeaderSchemaVersion = "schema-version"
	HeaderSource        = "source"
	HeaderTimestamp     = "timestamp"
	HeaderOriginalTopic = "original-topic"
)

var errNoEventType = errors.New("kafka: message has no event type")

type MessageBuilder struct {
	msg Message
	err error
}

func NewMessage() *MessageBuilder {
	return &MessageBuilder{msg: Message{Headers: make(map[string]string)}}
}

func (mb *MessageBuilder) WithKey(key string) *MessageBuilder {
	mb.msg.Key = key
	return mb
}

// WithValue stores value as JSON. Encoding errors surface from Build.
func (mb *MessageBuilder) WithValue(value any) *MessageBuilder {
	if mb.err != nil {
		return mb
	}
	mb.msg.Value, mb.err = json.Marshal(value)
	return mb
}

// WithEvent sets the identity headers of a domain event. An empty id is generated on Build.
func (mb *MessageBuilder) WithEvent(id, eventType string) *MessageBuilder {
	mb.msg.Headers[HeaderEventID] = id
	mb.msg.Headers[HeaderEventType] = eventType
	return mb
}

// OccurredAt stamps the record with the time the event happened rather than the send time.
func (mb *MessageBuilder) OccurredAt(at time.Time) *MessageBuilder {
	mb.msg.Timestamp = at.UTC()
	return mb
}

// WithHeader sets key when value is non-empty.
func (mb *MessageBuilder) WithHeader(key, value string) *MessageBuilder {
	if value != "" {
		mb.msg.Headers[key] = value
	}
	return mb
}

func (mb *MessageBuilder) Build() (Message, error) {
	if mb.err != nil {
		return Message{}, mb.err
	}
	if mb.msg.Headers[HeaderEventType] == "" {
		return Message{}, errNoEventType
	}
	if mb.msg.Headers[HeaderEventID] == "" {
		mb.msg.Headers[HeaderEventID] = uuid.NewString()
	}
	if mb.msg.Timestamp.IsZero() {
		mb.msg.Timestamp = time.Now().UTC()
	}
	mb.msg.Headers[HeaderTimestamp] = mb.msg.Timestamp.Format(time.RFC3339Nano)
	return mb.msg, nil
}

func (m *Message) Header(key string) string {
	return m.Headers[key]
}

func (m *Message) Decode(v any) error {
	return json.Unmarshal(m.Value, v)
}
