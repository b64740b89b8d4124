package repository

import (
	"context"
	"errors"
	"fmt"

	lendingerrors "auravindex/internal/lending/errors"
	"auravindex/pkg/config"
	"auravindex/pkg/model"
	"auravindex/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ResourceDirectory is the only store of a resource's current status.
type ResourceDirectory interface {
	Get(ctx context.Context, id string) (*model.Resource, error)
	SetStatus(ctx context.Context, id string, status model.ResourceStatus) error
	ListByStatus(ctx context.Context, statuses ...model.ResourceStatus) ([]*model.Resource, error)
	Create(ctx context.Context, resource *model.Resource) error
}

type mongoResourceDirectory struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoResourceDirectory(cfg *config.Config) ResourceDirectory {
	return &mongoResourceDirectory{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(ResourcesCollection),
	}
}

func (r *mongoResourceDirectory) Get(ctx context.Context, id string) (*model.Resource, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", lendingerrors.ErrInvalidID, id)
	}

	var resource model.Resource
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&resource); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, lendingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find resource: %w", err)
	}
	return &resource, nil
}

func (r *mongoResourceDirectory) SetStatus(ctx context.Context, id string, status model.ResourceStatus) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", lendingerrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": status, "updated_at": now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set resource status: %w", err)
	}
	if result.MatchedCount == 0 {
		return lendingerrors.ErrNotFound
	}
	return nil
}

func (r *mongoResourceDirectory) ListByStatus(ctx context.Context, statuses ...model.ResourceStatus) ([]*model.Resource, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer cursor.Close(ctx)

	resources := make([]*model.Resource, 0)
	if err := cursor.All(ctx, &resources); err != nil {
		return nil, fmt.Errorf("failed to decode resources: %w", err)
	}
	return resources, nil
}

func (r *mongoResourceDirectory) Create(ctx context.Context, resource *model.Resource) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	resource.Name = sanitizer.NormalizeName(resource.Name)
	resource.UpdatedAt = now()
	doc := *resource
	doc.ID = ""

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		resource.ID = oid.Hex()
	}
	return nil
}
