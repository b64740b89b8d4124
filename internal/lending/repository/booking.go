package repository

import (
	"context"
	"errors"
	"fmt"

	"auravindex/internal/lending/conflict"
	lendingerrors "auravindex/internal/lending/errors"
	"auravindex/pkg/config"
	mongotx "auravindex/pkg/db/mongo"
	"auravindex/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookingRepository interface {
	conflict.Finder

	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	Search(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, filter model.BookingFilter) (int64, error)
	OpenResourceIDs(ctx context.Context) (map[string]bool, error)
	HasOpenBooking(ctx context.Context, resourceID string) (bool, error)
	ApplyApproval(ctx context.Context, id string, cmd model.ApprovalCommand) error
	ApplyRenewal(ctx context.Context, id string, cmd model.RenewalCommand) error
	ApplyCompletion(ctx context.Context, id string, cmd model.CompletionCommand) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(BookingsCollection),
		txManager:  mongotx.NewManager(cfg.Client.Mongo, cfg.MongoTransactions),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	ts := now()
	booking.CreatedAt = ts
	booking.UpdatedAt = ts
	booking.Open = !booking.Status.IsTerminal()

	// a transaction retry must not reuse an id from an aborted attempt
	doc := *booking
	doc.ID = ""

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return lendingerrors.ErrDuplicateOpenLoan
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", lendingerrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, lendingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// FindOverlapCandidates selects bookings whose window starts before the query end
// and whose bound (completed_at, else window_end) lies after the query start.
func (r *mongoBookingRepository) FindOverlapCandidates(ctx context.Context, q conflict.Query) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"resource_id":  q.ResourceID,
		"window_start": bson.M{"$lt": q.WindowEnd},
		"$or": []bson.M{
			{"completed_at": nil, "window_end": bson.M{"$gt": q.WindowStart}},
			{"completed_at": bson.M{"$gt": q.WindowStart}},
		},
	}
	if q.ExcludeStatus != "" {
		filter["status"] = bson.M{"$ne": q.ExcludeStatus}
	}
	if q.RequesterID != "" {
		filter["requester_id"] = q.RequesterID
	}
	if oid, err := primitive.ObjectIDFromHex(q.ExcludeBookingID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}

	opts := options.Find().SetSort(bson.D{{Key: "window_start", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) Search(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "window_start", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, buildSearchFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*model.Booking, 0)
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildSearchFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func buildSearchFilter(f model.BookingFilter) bson.M {
	filter := bson.M{}
	if f.ResourceID != "" {
		filter["resource_id"] = f.ResourceID
	}
	if f.RequesterID != "" {
		filter["requester_id"] = f.RequesterID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.EndTime != nil {
		filter["window_start"] = bson.M{"$lt": *f.EndTime}
	}
	if f.StartTime != nil {
		filter["window_end"] = bson.M{"$gt": *f.StartTime}
	}
	return filter
}

func (r *mongoBookingRepository) OpenResourceIDs(ctx context.Context) (map[string]bool, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	values, err := r.collection.Distinct(ctx, "resource_id", bson.M{"open": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list open bookings: %w", err)
	}

	ids := make(map[string]bool, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids[id] = true
		}
	}
	return ids, nil
}

func (r *mongoBookingRepository) HasOpenBooking(ctx context.Context, resourceID string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"resource_id": resourceID, "open": true}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check open bookings: %w", err)
	}
	return count > 0, nil
}

func (r *mongoBookingRepository) ApplyApproval(ctx context.Context, id string, cmd model.ApprovalCommand) error {
	return r.conditionalUpdate(ctx, id,
		bson.M{"status": model.StatusPending},
		bson.M{"status": cmd.Status, "updated_at": cmd.UpdatedAt},
	)
}

func (r *mongoBookingRepository) ApplyRenewal(ctx context.Context, id string, cmd model.RenewalCommand) error {
	return r.conditionalUpdate(ctx, id,
		bson.M{"renewal_count": cmd.PreviousCount, "completed_at": nil},
		bson.M{
			"renewal_count": cmd.RenewalCount,
			"window_end":    cmd.WindowEnd,
			"status":        cmd.Status,
			"updated_at":    cmd.UpdatedAt,
		},
	)
}

func (r *mongoBookingRepository) ApplyCompletion(ctx context.Context, id string, cmd model.CompletionCommand) error {
	return r.conditionalUpdate(ctx, id,
		bson.M{"completed_at": nil},
		bson.M{
			"completed_at": cmd.CompletedAt,
			"status":       cmd.Status,
			"open":         false,
			"updated_at":   cmd.CompletedAt,
		},
	)
}

// conditionalUpdate sets fields only while guard still holds; a miss is ErrStaleWrite.
func (r *mongoBookingRepository) conditionalUpdate(ctx context.Context, id string, guard, set bson.M) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", lendingerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	for k, v := range guard {
		filter[k] = v
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return lendingerrors.ErrStaleWrite
	}
	return nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
