package repository

import (
	"context"
	"fmt"
	"time"

	lendingerrors "auravindex/internal/lending/errors"
	"auravindex/pkg/config"
	"auravindex/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LeaseRepository grants short-lived exclusive access to one resource.
type LeaseRepository interface {
	Acquire(ctx context.Context, resourceID, owner string, ttl time.Duration) error
	Release(ctx context.Context, resourceID, owner string) error
}

type mongoLeaseRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoLeaseRepository(cfg *config.Config) LeaseRepository {
	return &mongoLeaseRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(LeasesCollection),
	}
}

// Acquire takes over the lease only if it is missing or expired. While another owner
// holds it the filter misses, the upsert inserts the same _id and fails as a duplicate.
func (r *mongoLeaseRepository) Acquire(ctx context.Context, resourceID, owner string, ttl time.Duration) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	ts := now()
	lease := model.ResourceLease{
		ID:        resourceID,
		Owner:     owner,
		ExpiresAt: ts.Add(ttl),
		CreatedAt: ts,
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": resourceID, "expires_at": bson.M{"$lte": ts}},
		bson.M{"$set": bson.M{
			"owner":      lease.Owner,
			"expires_at": lease.ExpiresAt,
			"created_at": lease.CreatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return lendingerrors.ErrLeaseHeld
		}
		return fmt.Errorf("failed to acquire lease: %w", err)
	}
	return nil
}

// Release drops the lease only if owner still holds it.
func (r *mongoLeaseRepository) Release(ctx context.Context, resourceID, owner string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": resourceID, "owner": owner}); err != nil {
		return fmt.Errorf("failed to release lease: %w", err)
	}
	return nil
}
