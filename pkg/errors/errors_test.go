package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	plain := InvalidInput("bad limit")
	assert.Equal(t, "INVALID_INPUT: bad limit", plain.Error())

	cause := errors.New("connection reset")
	wrapped := Internal("Failed to create booking", cause)
	assert.Equal(t, "INTERNAL_ERROR: Failed to create booking (caused by: connection reset)", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(CodeNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(CodeValidation))
	assert.Equal(t, http.StatusInternalServerError, StatusFor("SOMETHING_NEW"))
}

func TestGenericConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFoundWithID("Booking", "b1"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("invalid", map[string]any{"field": "x"}), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("who"), CodeUnauthorized, http.StatusUnauthorized},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}

	nf := NotFoundWithID("Resource", "r9")
	assert.Equal(t, "Resource not found", nf.Message)
	assert.Equal(t, map[string]any{"resource": "Resource", "id": "r9"}, nf.Details)
}

func TestBookingErrors_StatusAndCode(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"resource not available", ResourceNotAvailable("r1", "LENT"), CodeResourceNotAvailable, http.StatusBadRequest},
		{"already booked", AlreadyBooked("r1", now, now.Add(time.Hour)), CodeAlreadyBooked, http.StatusConflict},
		{"window too long", WindowTooLong(15), CodeWindowTooLong, http.StatusBadRequest},
		{"end before start", EndBeforeStart(), CodeEndBeforeStart, http.StatusBadRequest},
		{"outside hours", OutsideOperatingHours("closed on sunday"), CodeOutsideOperatingHours, http.StatusBadRequest},
		{"occupancy", OccupancyUnauthorized(12, 1, 10), CodeOccupancyUnauthorized, http.StatusBadRequest},
		{"renewal limit", RenewalLimitExceeded(2), CodeRenewalLimitExceeded, http.StatusBadRequest},
		{"already finished", AlreadyFinished("b1"), CodeAlreadyFinished, http.StatusConflict},
		{"already approved", AlreadyApproved("b1"), CodeAlreadyApproved, http.StatusConflict},
		{"cannot approve", CannotApprove("b1", "FINISHED"), CodeCannotApprove, http.StatusConflict},
		{"not active", BookingNotActive("b1", "PENDING"), CodeBookingNotActive, http.StatusConflict},
		{"resource busy", ResourceBusy("r1"), CodeResourceBusy, http.StatusConflict},
		{"stale", StaleBooking("b1"), CodeStaleBooking, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestAlreadyBooked_MessageNamesWindow(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	err := AlreadyBooked("r1", start, start.Add(time.Hour))
	assert.Contains(t, err.Message, "2026-03-02T10:00:00Z")
	assert.Contains(t, err.Message, "2026-03-02T11:00:00Z")
}

func TestAsAppError(t *testing.T) {
	appErr := AlreadyFinished("b1")
	assert.Same(t, appErr, AsAppError(fmt.Errorf("renew: %w", appErr)))

	regular := errors.New("regular error")
	result := AsAppError(regular)
	assert.Equal(t, CodeInternal, result.Code)
	assert.Same(t, regular, result.Err)
}

func TestIsAppErrorAndHasCode(t *testing.T) {
	wrapped := fmt.Errorf("create: %w", ResourceBusy("r1"))

	require.True(t, IsAppError(wrapped))
	assert.True(t, HasCode(wrapped, CodeResourceBusy))
	assert.False(t, HasCode(wrapped, CodeAlreadyBooked))
	assert.False(t, IsAppError(errors.New("plain")))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
}
