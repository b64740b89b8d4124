package model

import "time"

type ResourceKind string

const (
	ResourceBook ResourceKind = "book"
	ResourceRoom ResourceKind = "room"
)

type ResourceStatus string

const (
	ResourceAvailable    ResourceStatus = "AVAILABLE"
	ResourceLent         ResourceStatus = "LENT"
	ResourceReserved     ResourceStatus = "RESERVED"
	ResourceNotAvailable ResourceStatus = "NOT_AVAILABLE"
)

// OccupiedStatus is the status a resource takes while a booking holds it.
func OccupiedStatus(kind ResourceKind) ResourceStatus {
	if kind == ResourceRoom {
		return ResourceReserved
	}
	return ResourceLent
}

// BookingKindFor maps a resource kind to the kind of booking it accepts.
func BookingKindFor(kind ResourceKind) BookingKind {
	if kind == ResourceRoom {
		return KindReservation
	}
	return KindLoan
}

type Resource struct {
	ID           string         `json:"id,omitempty" bson:"_id,omitempty"`
	Kind         ResourceKind   `json:"kind" bson:"kind" validate:"required,oneof=book room"`
	Name         string         `json:"name" bson:"name" validate:"required,min=1,max=200"`
	Status       ResourceStatus `json:"status" bson:"status" validate:"required,oneof=AVAILABLE LENT RESERVED NOT_AVAILABLE"`
	MinOccupancy int            `json:"min_occupancy,omitempty" bson:"min_occupancy,omitempty" validate:"omitempty,min=0"`
	MaxOccupancy int            `json:"max_occupancy,omitempty" bson:"max_occupancy,omitempty" validate:"omitempty,gtefield=MinOccupancy"`
	UpdatedAt    time.Time      `json:"updated_at" bson:"updated_at"`
}
