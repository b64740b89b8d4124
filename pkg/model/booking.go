package model

import (
	"fmt"
	"strings"
	"time"
)

type BookingKind string

const (
	KindLoan        BookingKind = "loan"
	KindReservation BookingKind = "reservation"
)

type BookingStatus string

const (
	StatusPending  BookingStatus = "PENDING"
	StatusActive   BookingStatus = "ACTIVE"
	StatusRenewed  BookingStatus = "RENEWED"
	StatusFinished BookingStatus = "FINISHED"
)

var bookingStatuses = []BookingStatus{StatusPending, StatusActive, StatusRenewed, StatusFinished}

// IsTerminal reports whether no further lifecycle transition is allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusFinished
}

func (s BookingStatus) Valid() bool {
	for _, st := range bookingStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// ParseBookingStatus resolves a human readable status code, case-insensitively.
func ParseBookingStatus(code string) (BookingStatus, error) {
	s := BookingStatus(strings.ToUpper(strings.TrimSpace(code)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown booking status %q", code)
	}
	return s, nil
}

// InitialStatus is PENDING for loans awaiting approval and ACTIVE for reservations.
func InitialStatus(kind BookingKind) BookingStatus {
	if kind == KindLoan {
		return StatusPending
	}
	return StatusActive
}

type Booking struct {
	ID           string        `json:"id,omitempty" bson:"_id,omitempty"`
	Kind         BookingKind   `json:"kind" bson:"kind"`
	RequesterID  string        `json:"requester_id" bson:"requester_id"`
	ResourceID   string        `json:"resource_id" bson:"resource_id"`
	Status       BookingStatus `json:"status" bson:"status"`
	WindowStart  time.Time     `json:"window_start" bson:"window_start"`
	WindowEnd    time.Time     `json:"window_end" bson:"window_end"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty" bson:"completed_at"`
	RenewalCount int           `json:"renewal_count" bson:"renewal_count"`
	PeopleCount  int           `json:"people_count,omitempty" bson:"people_count,omitempty"`
	Open         bool          `json:"-" bson:"open"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}

// Bound is the instant the booking stops occupying its resource.
func (b *Booking) Bound() time.Time {
	if b.CompletedAt != nil {
		return *b.CompletedAt
	}
	return b.WindowEnd
}

// ResourceKind is the kind of resource this booking's kind applies to.
func (b *Booking) ResourceKind() ResourceKind {
	if b.Kind == KindReservation {
		return ResourceRoom
	}
	return ResourceBook
}

func (b *Booking) IsFinished() bool {
	return b.CompletedAt != nil || b.Status.IsTerminal()
}

type CreateBookingCommand struct {
	RequesterID string `json:"-" validate:"required,max=128"`
	ResourceID  string `json:"resource_id" validate:"required,mongodb"`
	// WindowStart is required for reservations and rejected for loans.
	WindowStart *time.Time `json:"window_start,omitempty" validate:"omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty" validate:"omitempty"`
	PeopleCount *int       `json:"people_count,omitempty" validate:"omitempty,min=0,max=1000"`
}

type ApprovalCommand struct {
	Status    BookingStatus
	UpdatedAt time.Time
}

// RenewalCommand is applied only if the stored renewal count still equals PreviousCount.
type RenewalCommand struct {
	PreviousCount int
	RenewalCount  int
	WindowEnd     time.Time
	Status        BookingStatus
	UpdatedAt     time.Time
}

type CompletionCommand struct {
	CompletedAt time.Time
	Status      BookingStatus
}

type BookingFilter struct {
	ResourceID  string        `json:"resource_id" validate:"omitempty,mongodb"`
	RequesterID string        `json:"requester_id" validate:"omitempty,max=128"`
	Status      BookingStatus `json:"status" validate:"booking_status"`
	StartTime   *time.Time    `json:"start_time"`
	EndTime     *time.Time    `json:"end_time"`
}
