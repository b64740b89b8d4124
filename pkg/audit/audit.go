package audit

import (
	"context"
	"fmt"
	"time"

	"auravindex/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	ActionCreateBooking   = "booking.create"
	ActionApproveBooking  = "booking.approve"
	ActionRenewBooking    = "booking.renew"
	ActionCompleteBooking = "booking.complete"
	ActionReconcile       = "resources.reconcile"

	CollectionName = "Audit_log"
)

type Entry struct {
	RequesterID string    `json:"requester_id" bson:"requester_id"`
	Action      string    `json:"action" bson:"action"`
	ObjectID    string    `json:"object_id" bson:"object_id"`
	RequestID   string    `json:"request_id,omitempty" bson:"request_id,omitempty"`
	RecordedAt  time.Time `json:"recorded_at" bson:"recorded_at"`
}

// Auditor records who did what to which object after a successful write.
type Auditor interface {
	Record(ctx context.Context, entry Entry) error
}

type LogAuditor struct {
	log *logger.Logger
}

func NewLogAuditor(log *logger.Logger) *LogAuditor {
	return &LogAuditor{log: log}
}

func (a *LogAuditor) Record(_ context.Context, entry Entry) error {
	a.log.Info("audit",
		"requester_id", entry.RequesterID,
		"action", entry.Action,
		"object_id", entry.ObjectID,
		"request_id", entry.RequestID,
		"recorded_at", stamp(entry).RecordedAt,
	)
	return nil
}

type MongoAuditor struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewMongoAuditor(db *mongo.Database, timeout time.Duration) *MongoAuditor {
	return &MongoAuditor{collection: db.Collection(CollectionName), timeout: timeout}
}

func (a *MongoAuditor) Record(ctx context.Context, entry Entry) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()

	if _, err := a.collection.InsertOne(ctx, stamp(entry)); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// Tee records to every auditor and returns the first failure.
type Tee []Auditor

func (t Tee) Record(ctx context.Context, entry Entry) error {
	entry = stamp(entry)
	var first error
	for _, a := range t {
		if err := a.Record(ctx, entry); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func stamp(entry Entry) Entry {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	return entry
}
