package conflict

import (
	"context"
	"fmt"
	"time"

	"auravindex/pkg/model"
)

type Query struct {
	ResourceID string
	// RequesterID narrows the search to one requester when set.
	RequesterID string
	// ExcludeBookingID skips the booking whose own window is being changed.
	ExcludeBookingID string
	ExcludeStatus    model.BookingStatus
	WindowStart      time.Time
	WindowEnd        time.Time
}

// Finder returns bookings on the resource that may overlap the query window.
// Implementations may over-select; the detector re-checks every candidate.
type Finder interface {
	FindOverlapCandidates(ctx context.Context, q Query) ([]*model.Booking, error)
}

type Detector struct {
	finder Finder
}

func NewDetector(finder Finder) *Detector {
	return &Detector{finder: finder}
}

// FindOverlap returns the first booking that overlaps the query window, or nil.
func (d *Detector) FindOverlap(ctx context.Context, q Query) (*model.Booking, error) {
	candidates, err := d.finder.FindOverlapCandidates(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load overlap candidates: %w", err)
	}
	for _, b := range candidates {
		if Matches(b, q) {
			return b, nil
		}
	}
	return nil, nil
}

// Matches applies every query criterion to a single booking.
func Matches(b *model.Booking, q Query) bool {
	if b == nil || b.ResourceID != q.ResourceID {
		return false
	}
	if q.ExcludeBookingID != "" && b.ID == q.ExcludeBookingID {
		return false
	}
	if q.ExcludeStatus != "" && b.Status == q.ExcludeStatus {
		return false
	}
	if q.RequesterID != "" && b.RequesterID != q.RequesterID {
		return false
	}
	return Overlaps(b.WindowStart, b.Bound(), q.WindowStart, q.WindowEnd)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
