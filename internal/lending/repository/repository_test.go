package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"auravindex/internal/lending/conflict"
	lendingerrors "auravindex/internal/lending/errors"
	"auravindex/internal/lending/repository"
	mongoMigration "auravindex/internal/migrations/mongo"
	"auravindex/pkg/client"
	"auravindex/pkg/config"
	"auravindex/pkg/logger"
	"auravindex/pkg/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMongoConfig connects to TEST_MONGO_URI and migrates a throwaway database.
func newMongoConfig(t *testing.T) *config.Config {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	log := logger.NewNop()
	cfg := &config.Config{
		MongoDatabaseName: "auravindex_test_" + uuid.NewString()[:8],
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		Log:               log,
		Client:            client.NewClient(),
	}
	cfg.Client.SetMongo(log, uri, 10*time.Second)

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	require.NoError(t, mongoMigration.RunMigration(context.Background(), db, log))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		cfg.GracefulShutdown()
	})
	return cfg
}

func TestMongoLease_ExclusiveUntilReleased(t *testing.T) {
	cfg := newMongoConfig(t)
	leases := repository.NewMongoLeaseRepository(cfg)
	ctx := context.Background()

	require.NoError(t, leases.Acquire(ctx, "r1", "owner-a", time.Minute))
	assert.ErrorIs(t, leases.Acquire(ctx, "r1", "owner-b", time.Minute), lendingerrors.ErrLeaseHeld)

	// a release by a non-owner is a no-op
	require.NoError(t, leases.Release(ctx, "r1", "owner-b"))
	assert.ErrorIs(t, leases.Acquire(ctx, "r1", "owner-b", time.Minute), lendingerrors.ErrLeaseHeld)

	require.NoError(t, leases.Release(ctx, "r1", "owner-a"))
	require.NoError(t, leases.Acquire(ctx, "r1", "owner-b", time.Minute))
}

func TestMongoLease_ExpiredLeaseIsTakenOver(t *testing.T) {
	cfg := newMongoConfig(t)
	leases := repository.NewMongoLeaseRepository(cfg)
	ctx := context.Background()

	require.NoError(t, leases.Acquire(ctx, "r1", "owner-a", time.Millisecond))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, leases.Acquire(ctx, "r1", "owner-b", time.Minute))
}

func TestMongoBookings_OneOpenLoanPerResource(t *testing.T) {
	cfg := newMongoConfig(t)
	bookings := repository.NewMongoBookingRepository(cfg)
	ctx := context.Background()
	start := time.Now().UTC().Truncate(time.Millisecond)
	resourceID := "6530f1a2b4c5d6e7f8a9b0c1"

	loan := func(requester string) *model.Booking {
		return &model.Booking{
			Kind: model.KindLoan, RequesterID: requester, ResourceID: resourceID,
			Status: model.StatusPending, WindowStart: start, WindowEnd: start.Add(24 * time.Hour),
		}
	}

	first := loan("member-1")
	require.NoError(t, bookings.Create(ctx, first))
	require.NotEmpty(t, first.ID)
	assert.ErrorIs(t, bookings.Create(ctx, loan("member-2")), lendingerrors.ErrDuplicateOpenLoan)

	open, err := bookings.HasOpenBooking(ctx, resourceID)
	require.NoError(t, err)
	assert.True(t, open)

	overlap, err := conflict.NewDetector(bookings).FindOverlap(ctx, conflict.Query{
		ResourceID:    resourceID,
		ExcludeStatus: model.StatusFinished,
		WindowStart:   start.Add(time.Hour),
		WindowEnd:     start.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	require.NotNil(t, overlap)
	assert.Equal(t, first.ID, overlap.ID)

	overlap, err = conflict.NewDetector(bookings).FindOverlap(ctx, conflict.Query{
		ResourceID:       resourceID,
		ExcludeBookingID: first.ID,
		ExcludeStatus:    model.StatusFinished,
		WindowStart:      start.Add(time.Hour),
		WindowEnd:        start.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	assert.Nil(t, overlap)

	done := model.CompletionCommand{CompletedAt: start.Add(time.Hour), Status: model.StatusFinished}
	require.NoError(t, bookings.ApplyCompletion(ctx, first.ID, done))
	assert.ErrorIs(t, bookings.ApplyCompletion(ctx, first.ID, done), lendingerrors.ErrStaleWrite)

	open, err = bookings.HasOpenBooking(ctx, resourceID)
	require.NoError(t, err)
	assert.False(t, open)
	require.NoError(t, bookings.Create(ctx, loan("member-2")))
}

func TestMongoBookings_RenewalGuardsOnCount(t *testing.T) {
	cfg := newMongoConfig(t)
	bookings := repository.NewMongoBookingRepository(cfg)
	ctx := context.Background()
	start := time.Now().UTC().Truncate(time.Millisecond)

	b := &model.Booking{
		Kind: model.KindLoan, RequesterID: "member-1", ResourceID: "6530f1a2b4c5d6e7f8a9b0c2",
		Status: model.StatusActive, WindowStart: start, WindowEnd: start.Add(24 * time.Hour),
	}
	require.NoError(t, bookings.Create(ctx, b))

	renew := model.RenewalCommand{
		PreviousCount: 0, RenewalCount: 1, WindowEnd: b.WindowEnd.Add(7 * 24 * time.Hour),
		Status: model.StatusRenewed, UpdatedAt: start,
	}
	require.NoError(t, bookings.ApplyRenewal(ctx, b.ID, renew))
	assert.ErrorIs(t, bookings.ApplyRenewal(ctx, b.ID, renew), lendingerrors.ErrStaleWrite)

	stored, err := bookings.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.RenewalCount)
	assert.True(t, renew.WindowEnd.Equal(stored.WindowEnd))

	_, err = bookings.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, lendingerrors.ErrInvalidID)
}

func TestMongoResources_StatusRoundTrip(t *testing.T) {
	cfg := newMongoConfig(t)
	resources := repository.NewMongoResourceDirectory(cfg)
	ctx := context.Background()

	room := &model.Resource{Kind: model.ResourceRoom, Name: "Study room 1", Status: model.ResourceAvailable, MinOccupancy: 2, MaxOccupancy: 6}
	require.NoError(t, resources.Create(ctx, room))
	require.NotEmpty(t, room.ID)

	require.NoError(t, resources.SetStatus(ctx, room.ID, model.ResourceReserved))
	got, err := resources.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ResourceReserved, got.Status)

	reserved, err := resources.ListByStatus(ctx, model.ResourceReserved)
	require.NoError(t, err)
	require.Len(t, reserved, 1)
	assert.Equal(t, room.ID, reserved[0].ID)

	_, err = resources.Get(ctx, "6530f1a2b4c5d6e7f8a9b0ff")
	assert.ErrorIs(t, err, lendingerrors.ErrNotFound)
}
