package events

import (
	"context"
	"fmt"
	"time"

	"auravindex/pkg/kafka"
	"auravindex/pkg/middleware"
	"auravindex/pkg/model"

	"github.com/google/uuid"
)

const (
	TypeBookingCreated     = "booking.created"
	TypeBookingApproved    = "booking.approved"
	TypeBookingRenewed     = "booking.renewed"
	TypeBookingCompleted   = "booking.completed"
	TypeResourceReconciled = "resource.reconciled"

	schemaVersion = "1"
	source        = "lending"
)

type Event struct {
	ID             string               `json:"id"`
	Type           string               `json:"type"`
	ResourceID     string               `json:"resource_id"`
	BookingID      string               `json:"booking_id,omitempty"`
	RequesterID    string               `json:"requester_id,omitempty"`
	Status         model.BookingStatus  `json:"status,omitempty"`
	ResourceStatus model.ResourceStatus `json:"resource_status,omitempty"`
	WindowStart    *time.Time           `json:"window_start,omitempty"`
	WindowEnd      *time.Time           `json:"window_end,omitempty"`
	RenewalCount   int                  `json:"renewal_count,omitempty"`
	OccurredAt     time.Time            `json:"occurred_at"`
}

func FromBooking(eventType string, b *model.Booking, resourceStatus model.ResourceStatus, at time.Time) Event {
	start, end := b.WindowStart, b.WindowEnd
	return Event{
		Type:           eventType,
		ResourceID:     b.ResourceID,
		BookingID:      b.ID,
		RequesterID:    b.RequesterID,
		Status:         b.Status,
		ResourceStatus: resourceStatus,
		WindowStart:    &start,
		WindowEnd:      &end,
		RenewalCount:   b.RenewalCount,
		OccurredAt:     at,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(producer *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// Publish keys messages by resource id so one resource's events stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	msg, err := kafka.NewMessage().
		WithKey(event.ResourceID).
		WithEvent(event.ID, event.Type).
		OccurredAt(event.OccurredAt).
		WithHeader(kafka.HeaderCorrelationID, middleware.RequestIDFromContext(ctx)).
		WithHeader(kafka.HeaderSchemaVersion, schemaVersion).
		WithHeader(kafka.HeaderSource, source).
		WithValue(event).
		Build()
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
