package service

import (
	"context"

	"auravindex/internal/lending/events"
	apperrors "auravindex/pkg/errors"
	"auravindex/pkg/model"

	"github.com/google/uuid"
)

type StatusRepair struct {
	ResourceID string               `json:"resource_id"`
	From       model.ResourceStatus `json:"from"`
	To         model.ResourceStatus `json:"to"`
}

type ReconcileReport struct {
	RunID    string         `json:"run_id"`
	Checked  int            `json:"checked"`
	Repaired []StatusRepair `json:"repaired"`
	Skipped  []string       `json:"skipped"`
}

// Reconcile realigns resource statuses with their open bookings. NOT_AVAILABLE
// resources are left alone, and resources whose lease is held are skipped.
func (s *bookingService) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	runID := uuid.NewString()
	log := s.cfg.Log.With("run_id", runID)

	resources, err := s.resources.ListByStatus(ctx, model.ResourceAvailable, model.ResourceLent, model.ResourceReserved)
	if err != nil {
		log.Error("Failed to list resources for reconciliation", "error", err)
		return nil, apperrors.Internal("Failed to list resources", err)
	}

	open, err := s.repo.OpenResourceIDs(ctx)
	if err != nil {
		log.Error("Failed to list open bookings for reconciliation", "error", err)
		return nil, apperrors.Internal("Failed to list open bookings", err)
	}

	report := &ReconcileReport{RunID: runID, Repaired: []StatusRepair{}, Skipped: []string{}}
	for _, resource := range resources {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		if expectedStatus(resource, open[resource.ID]) == resource.Status {
			continue
		}

		repair, err := s.repairResource(ctx, resource)
		if err != nil {
			if apperrors.HasCode(err, apperrors.CodeResourceBusy) {
				report.Skipped = append(report.Skipped, resource.ID)
				continue
			}
			log.Error("Failed to reconcile resource", "resource_id", resource.ID, "error", err)
			return report, err
		}
		if repair == nil {
			continue
		}

		report.Repaired = append(report.Repaired, *repair)
		log.Warn("Resource status repaired",
			"resource_id", repair.ResourceID,
			"from", repair.From,
			"to", repair.To,
		)
		s.publish(ctx, events.Event{
			Type:           events.TypeResourceReconciled,
			ResourceID:     repair.ResourceID,
			ResourceStatus: repair.To,
			OccurredAt:     s.now(),
		})
	}

	log.Info("Reconciliation finished",
		"checked", report.Checked,
		"repaired", len(report.Repaired),
		"skipped", len(report.Skipped),
	)
	return report, nil
}

// repairResource re-checks the resource under its lease and fixes the status if it
// still disagrees. A nil repair means a concurrent request already fixed it.
func (s *bookingService) repairResource(ctx context.Context, resource *model.Resource) (*StatusRepair, error) {
	var repair *StatusRepair
	err := s.withResourceLease(ctx, resource.ID, func(ctx context.Context) error {
		repair = nil

		current, err := s.getResource(ctx, resource.ID)
		if err != nil {
			return err
		}
		if current.Status == model.ResourceNotAvailable {
			return nil
		}

		hasOpen, err := s.repo.HasOpenBooking(ctx, resource.ID)
		if err != nil {
			return apperrors.Internal("Failed to check open bookings", err)
		}

		want := expectedStatus(current, hasOpen)
		if want == current.Status {
			return nil
		}
		if err := s.resources.SetStatus(ctx, current.ID, want); err != nil {
			return apperrors.Internal("Failed to update resource status", err)
		}
		repair = &StatusRepair{ResourceID: current.ID, From: current.Status, To: want}
		return nil
	})
	return repair, err
}

func expectedStatus(resource *model.Resource, hasOpenBooking bool) model.ResourceStatus {
	if hasOpenBooking {
		return model.OccupiedStatus(resource.Kind)
	}
	return model.ResourceAvailable
}
