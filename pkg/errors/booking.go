package errors

import (
	"fmt"
	"time"
)

func ResourceNotAvailable(resourceID, status string) *AppError {
	return newError(CodeResourceNotAvailable, "Resource is not available for booking", map[string]any{
		"resource_id": resourceID,
		"status":      status,
	})
}

func AlreadyBooked(resourceID string, start, end time.Time) *AppError {
	msg := fmt.Sprintf("Resource is already booked between %s and %s",
		start.Format(time.RFC3339), end.Format(time.RFC3339))
	return newError(CodeAlreadyBooked, msg, map[string]any{"resource_id": resourceID})
}

func WindowTooLong(maxDays int) *AppError {
	return newError(CodeWindowTooLong, fmt.Sprintf("Booking window cannot exceed %d days", maxDays),
		map[string]any{"max_window_days": maxDays})
}

func EndBeforeStart() *AppError {
	return newError(CodeEndBeforeStart, "Booking end must be after its start", nil)
}

func OutsideOperatingHours(reason string) *AppError {
	return newError(CodeOutsideOperatingHours, "Booking falls outside operating hours: "+reason, nil)
}

func OccupancyUnauthorized(people, minPeople, maxPeople int) *AppError {
	msg := fmt.Sprintf("Occupancy of %d is outside the allowed range %d-%d", people, minPeople, maxPeople)
	return newError(CodeOccupancyUnauthorized, msg, map[string]any{
		"people_count":  people,
		"min_occupancy": minPeople,
		"max_occupancy": maxPeople,
	})
}

func RenewalLimitExceeded(maxRenewals int) *AppError {
	return newError(CodeRenewalLimitExceeded, fmt.Sprintf("Booking cannot be renewed more than %d times", maxRenewals),
		map[string]any{"max_renewals": maxRenewals})
}

func AlreadyFinished(bookingID string) *AppError {
	return newError(CodeAlreadyFinished, "Booking is already finished", map[string]any{"id": bookingID})
}

func AlreadyApproved(bookingID string) *AppError {
	return newError(CodeAlreadyApproved, "Booking is already approved", map[string]any{"id": bookingID})
}

func CannotApprove(bookingID, status string) *AppError {
	return newError(CodeCannotApprove, fmt.Sprintf("Booking in status %s cannot be approved", status),
		map[string]any{"id": bookingID, "status": status})
}

func BookingNotActive(bookingID, status string) *AppError {
	return newError(CodeBookingNotActive, fmt.Sprintf("Booking in status %s cannot be renewed", status),
		map[string]any{"id": bookingID, "status": status})
}

func ResourceBusy(resourceID string) *AppError {
	return newError(CodeResourceBusy, "Resource is being modified by another request. Please try again.",
		map[string]any{"resource_id": resourceID})
}

func StaleBooking(bookingID string) *AppError {
	return newError(CodeStaleBooking, "Booking was modified concurrently. Please retry.",
		map[string]any{"id": bookingID})
}
