package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"auravindex/internal/lending/conflict"
	lendingerrors "auravindex/internal/lending/errors"
	"auravindex/internal/lending/events"
	"auravindex/internal/lending/policy"
	"auravindex/internal/lending/repository"
	"auravindex/internal/lending/validator"
	"auravindex/pkg/config"
	apperrors "auravindex/pkg/errors"
	"auravindex/pkg/model"

	"github.com/google/uuid"
)

const leaseReleaseTimeout = 5 * time.Second

type BookingService interface {
	Create(ctx context.Context, cmd *model.CreateBookingCommand) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	Search(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	Approve(ctx context.Context, id string) (*model.Booking, error)
	RequestRenewal(ctx context.Context, id string) (*model.Booking, error)
	Complete(ctx context.Context, id string) (*model.Booking, error)
	GetResource(ctx context.Context, id string) (*model.Resource, error)
	Reconcile(ctx context.Context) (*ReconcileReport, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	resources repository.ResourceDirectory
	leases    repository.LeaseRepository
	detector  *conflict.Detector
	validator *validator.BookingValidator
	policy    policy.Config
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	resources repository.ResourceDirectory,
	leases repository.LeaseRepository,
	validator *validator.BookingValidator,
	rules policy.Config,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &bookingService{
		repo:      repo,
		resources: resources,
		leases:    leases,
		detector:  conflict.NewDetector(repo),
		validator: validator,
		policy:    rules,
		publisher: publisher,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *bookingService) Create(ctx context.Context, cmd *model.CreateBookingCommand) (*model.Booking, error) {
	if err := s.validator.ValidateCreate(cmd); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "resource_id", cmd.ResourceID, "error", err)
		return nil, validationError(err)
	}

	resource, err := s.getResource(ctx, cmd.ResourceID)
	if err != nil {
		return nil, err
	}
	if !bookable(resource) {
		return nil, apperrors.ResourceNotAvailable(resource.ID, string(resource.Status))
	}

	booking, err := s.resolveBooking(cmd, resource)
	if err != nil {
		return nil, err
	}

	occupied := model.OccupiedStatus(resource.Kind)
	err = s.withResourceLease(ctx, resource.ID, func(ctx context.Context) error {
		// re-read under the lease: another request may have taken the resource since the first check
		current, err := s.getResource(ctx, resource.ID)
		if err != nil {
			return err
		}
		if !bookable(current) {
			return apperrors.ResourceNotAvailable(current.ID, string(current.Status))
		}

		existing, err := s.detector.FindOverlap(ctx, conflict.Query{
			ResourceID:    resource.ID,
			ExcludeStatus: model.StatusFinished,
			WindowStart:   booking.WindowStart,
			WindowEnd:     booking.WindowEnd,
		})
		if err != nil {
			return apperrors.Internal("Failed to check booking conflicts", err)
		}
		if existing != nil {
			return apperrors.AlreadyBooked(resource.ID, existing.WindowStart, existing.Bound())
		}
		// a lent book with no overlapping loan is drift; leave it to reconciliation
		if current.Status == model.ResourceLent {
			return apperrors.ResourceNotAvailable(current.ID, string(current.Status))
		}

		if err := s.repo.Create(ctx, booking); err != nil {
			if errors.Is(err, lendingerrors.ErrDuplicateOpenLoan) {
				return apperrors.AlreadyBooked(resource.ID, booking.WindowStart, booking.WindowEnd)
			}
			return apperrors.Internal("Failed to create booking", err)
		}

		if err := s.resources.SetStatus(ctx, resource.ID, occupied); err != nil {
			return apperrors.Internal("Failed to update resource status", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("Failed to create booking", err, "resource_id", resource.ID, "requester_id", cmd.RequesterID)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"kind", booking.Kind,
		"resource_id", booking.ResourceID,
		"requester_id", booking.RequesterID,
		"window_start", booking.WindowStart,
		"window_end", booking.WindowEnd,
	)
	s.publish(ctx, events.FromBooking(events.TypeBookingCreated, booking, occupied, booking.CreatedAt))
	return booking, nil
}

// resolveBooking applies the window and policy rules for the resource's booking kind.
func (s *bookingService) resolveBooking(cmd *model.CreateBookingCommand, resource *model.Resource) (*model.Booking, error) {
	now := s.now()
	kind := model.BookingKindFor(resource.Kind)

	booking := &model.Booking{
		Kind:        kind,
		RequesterID: cmd.RequesterID,
		ResourceID:  resource.ID,
		Status:      model.InitialStatus(kind),
	}

	switch kind {
	case model.KindReservation:
		if err := s.validator.ValidateReservation(cmd); err != nil {
			return nil, validationError(err)
		}
		start, end := cmd.WindowStart.UTC(), cmd.WindowEnd.UTC()
		if err := s.policy.ValidateWindow(start, end); err != nil {
			return nil, err
		}
		minPeople, maxPeople := s.policy.OccupancyBounds(resource.MinOccupancy, resource.MaxOccupancy)
		if err := s.policy.ValidateOccupancy(*cmd.PeopleCount, minPeople, maxPeople); err != nil {
			return nil, err
		}
		if err := s.policy.ValidateWithinOperatingHours(start, end); err != nil {
			return nil, err
		}
		if err := s.policy.ValidateChronology(start, end); err != nil {
			return nil, err
		}
		booking.WindowStart, booking.WindowEnd = start, end
		booking.PeopleCount = *cmd.PeopleCount

	default:
		if cmd.WindowStart != nil {
			return nil, apperrors.Validation("Invalid booking input", map[string]any{
				"window_start": "loans start when they are created",
			})
		}
		booking.WindowStart = now
		if cmd.WindowEnd == nil {
			booking.WindowEnd = s.policy.DefaultWindowEnd(now)
			break
		}
		end := cmd.WindowEnd.UTC()
		if err := s.policy.ValidateWindow(now, end); err != nil {
			return nil, err
		}
		if err := s.policy.ValidateChronology(now, end); err != nil {
			return nil, err
		}
		booking.WindowEnd = end
	}

	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	return s.getBooking(ctx, id)
}

func (s *bookingService) Search(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	if err := s.validator.ValidateFilter(&filter); err != nil {
		return nil, 0, validationError(err)
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.Search(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to search bookings",
				"resource_id", filter.ResourceID,
				"requester_id", filter.RequesterID,
				"limit", limit,
				"offset", offset,
				"error", errFind,
			)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) Approve(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := approvable(booking); err != nil {
		return nil, err
	}

	cmd := model.ApprovalCommand{Status: model.StatusActive, UpdatedAt: s.now()}
	if err := s.repo.ApplyApproval(ctx, id, cmd); err != nil {
		return nil, s.resolveStale(ctx, "approve", id, err, approvable)
	}

	booking.Status = cmd.Status
	booking.UpdatedAt = cmd.UpdatedAt

	s.cfg.Log.Info("Booking approved successfully", "id", id, "resource_id", booking.ResourceID)
	s.publish(ctx, events.FromBooking(events.TypeBookingApproved, booking, "", cmd.UpdatedAt))
	return booking, nil
}

func approvable(b *model.Booking) error {
	switch b.Status {
	case model.StatusActive:
		return apperrors.AlreadyApproved(b.ID)
	case model.StatusPending:
		return nil
	default:
		return apperrors.CannotApprove(b.ID, string(b.Status))
	}
}

func (s *bookingService) RequestRenewal(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.renewable(booking); err != nil {
		return nil, err
	}

	var cmd model.RenewalCommand
	if booking.Kind == model.KindReservation {
		// an extended reservation must not run into the next one on the same resource
		err = s.withResourceLease(ctx, booking.ResourceID, func(ctx context.Context) error {
			current, err := s.getBooking(ctx, id)
			if err != nil {
				return err
			}
			if err := s.renewable(current); err != nil {
				return err
			}
			booking = current
			cmd = s.renewalCommand(booking)
			if err := s.checkReservationExtension(ctx, booking, cmd.WindowEnd); err != nil {
				return err
			}
			return s.applyRenewal(ctx, id, cmd)
		})
	} else {
		cmd = s.renewalCommand(booking)
		err = s.applyRenewal(ctx, id, cmd)
	}
	if err != nil {
		s.logFailure("Failed to renew booking", err, "id", id, "resource_id", booking.ResourceID)
		return nil, err
	}

	booking.RenewalCount = cmd.RenewalCount
	booking.WindowEnd = cmd.WindowEnd
	booking.Status = cmd.Status
	booking.UpdatedAt = cmd.UpdatedAt

	s.cfg.Log.Info("Booking renewed successfully",
		"id", id,
		"renewal_count", booking.RenewalCount,
		"window_end", booking.WindowEnd,
	)
	s.publish(ctx, events.FromBooking(events.TypeBookingRenewed, booking, "", cmd.UpdatedAt))
	return booking, nil
}

func (s *bookingService) renewalCommand(b *model.Booking) model.RenewalCommand {
	return model.RenewalCommand{
		PreviousCount: b.RenewalCount,
		RenewalCount:  b.RenewalCount + 1,
		WindowEnd:     s.policy.RenewedWindowEnd(b.WindowEnd),
		Status:        model.StatusRenewed,
		UpdatedAt:     s.now(),
	}
}

func (s *bookingService) applyRenewal(ctx context.Context, id string, cmd model.RenewalCommand) error {
	if err := s.repo.ApplyRenewal(ctx, id, cmd); err != nil {
		return s.resolveStale(ctx, "renew", id, err, s.renewable)
	}
	return nil
}

// checkReservationExtension reports a conflict with another open booking first,
// then re-applies the reservation window rules to [WindowStart, newEnd].
func (s *bookingService) checkReservationExtension(ctx context.Context, b *model.Booking, newEnd time.Time) error {
	existing, err := s.detector.FindOverlap(ctx, conflict.Query{
		ResourceID:       b.ResourceID,
		ExcludeBookingID: b.ID,
		ExcludeStatus:    model.StatusFinished,
		WindowStart:      b.WindowStart,
		WindowEnd:        newEnd,
	})
	if err != nil {
		return apperrors.Internal("Failed to check booking conflicts", err)
	}
	if existing != nil {
		return apperrors.AlreadyBooked(b.ResourceID, existing.WindowStart, existing.Bound())
	}
	if err := s.policy.ValidateWindow(b.WindowStart, newEnd); err != nil {
		return err
	}
	return s.policy.ValidateWithinOperatingHours(b.WindowStart, newEnd)
}

func (s *bookingService) renewable(b *model.Booking) error {
	if b.IsFinished() {
		return apperrors.AlreadyFinished(b.ID)
	}
	if b.Status == model.StatusPending {
		return apperrors.BookingNotActive(b.ID, string(b.Status))
	}
	return s.policy.ValidateRenewal(b.RenewalCount)
}

func (s *bookingService) Complete(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := completable(booking); err != nil {
		return nil, err
	}

	cmd := model.CompletionCommand{CompletedAt: s.now(), Status: model.StatusFinished}
	var released bool
	err = s.withResourceLease(ctx, booking.ResourceID, func(ctx context.Context) error {
		released = false
		if err := s.repo.ApplyCompletion(ctx, id, cmd); err != nil {
			return s.resolveStale(ctx, "complete", id, err, completable)
		}
		stillHeld, err := s.repo.HasOpenBooking(ctx, booking.ResourceID)
		if err != nil {
			return apperrors.Internal("Failed to check open bookings", err)
		}
		if stillHeld {
			return nil
		}
		if err := s.resources.SetStatus(ctx, booking.ResourceID, model.ResourceAvailable); err != nil {
			return apperrors.Internal("Failed to update resource status", err)
		}
		released = true
		return nil
	})
	if err != nil {
		s.logFailure("Failed to complete booking", err, "id", id, "resource_id", booking.ResourceID)
		return nil, err
	}

	booking.CompletedAt = &cmd.CompletedAt
	booking.Status = cmd.Status
	booking.Open = false
	booking.UpdatedAt = cmd.CompletedAt

	resourceStatus := model.OccupiedStatus(booking.ResourceKind())
	if released {
		resourceStatus = model.ResourceAvailable
	}

	s.cfg.Log.Info("Booking completed successfully",
		"id", id,
		"resource_id", booking.ResourceID,
		"resource_status", resourceStatus,
	)
	s.publish(ctx, events.FromBooking(events.TypeBookingCompleted, booking, resourceStatus, cmd.CompletedAt))
	return booking, nil
}

// bookable admits AVAILABLE resources and resources held by their own bookings;
// the overlap check decides the latter.
func bookable(r *model.Resource) bool {
	return r.Status == model.ResourceAvailable || r.Status == model.OccupiedStatus(r.Kind)
}

func completable(b *model.Booking) error {
	if b.IsFinished() {
		return apperrors.AlreadyFinished(b.ID)
	}
	return nil
}

func (s *bookingService) GetResource(ctx context.Context, id string) (*model.Resource, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}
	return s.getResource(ctx, id)
}

// withResourceLease runs fn in a transaction while holding the resource's lease.
func (s *bookingService) withResourceLease(ctx context.Context, resourceID string, fn func(ctx context.Context) error) error {
	owner := uuid.NewString()
	if err := s.leases.Acquire(ctx, resourceID, owner, s.cfg.LeaseTTL); err != nil {
		if errors.Is(err, lendingerrors.ErrLeaseHeld) {
			return apperrors.ResourceBusy(resourceID)
		}
		return apperrors.Internal("Failed to acquire resource lease", err)
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), leaseReleaseTimeout)
		defer cancel()
		if err := s.leases.Release(releaseCtx, resourceID, owner); err != nil {
			s.cfg.Log.Warn("Failed to release resource lease", "resource_id", resourceID, "error", err)
		}
	}()

	return s.repo.ExecuteTransaction(ctx, fn)
}

// resolveStale turns a missed conditional update into the precondition error that
// now applies, or StaleBooking when the booking still looks valid.
func (s *bookingService) resolveStale(ctx context.Context, op, id string, err error, check func(*model.Booking) error) error {
	if !errors.Is(err, lendingerrors.ErrStaleWrite) {
		if errors.Is(err, lendingerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		return apperrors.Internal("Failed to "+op+" booking", err)
	}

	current, findErr := s.getBooking(ctx, id)
	if findErr != nil {
		return findErr
	}
	if checkErr := check(current); checkErr != nil {
		return checkErr
	}
	s.cfg.Log.Warn("Booking changed concurrently", "id", id, "operation", op)
	return apperrors.StaleBooking(id)
}

func (s *bookingService) getBooking(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, lendingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, lendingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) getResource(ctx context.Context, id string) (*model.Resource, error) {
	resource, err := s.resources.Get(ctx, id)
	if err != nil {
		if errors.Is(err, lendingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Resource", id)
		}
		if errors.Is(err, lendingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid resource ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve resource", err)
	}
	if err := s.validator.ValidateResource(resource); err != nil {
		return nil, apperrors.Internal("Resource record is malformed", err)
	}
	return resource, nil
}

func (s *bookingService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"type", event.Type,
			"resource_id", event.ResourceID,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}

// logFailure keeps caller-correctable rejections out of the error log.
func (s *bookingService) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if apperrors.HasCode(err, apperrors.CodeInternal) {
		s.cfg.Log.Error(msg, args...)
		return
	}
	s.cfg.Log.Warn(msg, args...)
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Invalid booking input", verrs.Fields())
	}
	return apperrors.Validation("Invalid booking input", map[string]any{"error": err.Error()})
}
