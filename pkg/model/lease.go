package model

import "time"

// ResourceLease grants one request exclusive write access to a resource's bookings.
// The document id is the resource id, so a second holder collides on the primary key.
type ResourceLease struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
