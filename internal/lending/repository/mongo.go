package repository

import (
	"context"
	"time"

	mongotx "auravindex/pkg/db/mongo"
)

const (
	BookingsCollection  = "Bookings"
	ResourcesCollection = "Resources"
	LeasesCollection    = "Resource_leases"
)

// withTimeout bounds ctx unless it carries a session: wrapping a session
// context would detach the operation from its transaction.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if mongotx.InSession(ctx) {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
