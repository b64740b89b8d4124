package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeInvalidInput = "INVALID_INPUT"
)

// Transport codes raised by the HTTP middleware.
const (
	CodeTimeout              = "REQUEST_TIMEOUT"
	CodeRateLimited          = "RATE_LIMITED"
	CodePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	CodeRequestInProgress    = "REQUEST_IN_PROGRESS"
)

// Booking lifecycle codes.
const (
	CodeResourceNotAvailable  = "RESOURCE_NOT_AVAILABLE"
	CodeAlreadyBooked         = "ALREADY_BOOKED"
	CodeWindowTooLong         = "WINDOW_TOO_LONG"
	CodeEndBeforeStart        = "END_BEFORE_START"
	CodeOutsideOperatingHours = "OUTSIDE_OPERATING_HOURS"
	CodeOccupancyUnauthorized = "OCCUPANCY_UNAUTHORIZED"
	CodeRenewalLimitExceeded  = "RENEWAL_LIMIT_EXCEEDED"
	CodeAlreadyFinished       = "ALREADY_FINISHED"
	CodeAlreadyApproved       = "ALREADY_APPROVED"
	CodeCannotApprove         = "CANNOT_APPROVE"
	CodeBookingNotActive      = "BOOKING_NOT_ACTIVE"
	CodeResourceBusy          = "RESOURCE_BUSY"
	CodeStaleBooking          = "STALE_BOOKING"
)

// statusByCode is the single mapping from failure code to HTTP status.
var statusByCode = map[string]int{
	CodeNotFound:     http.StatusNotFound,
	CodeValidation:   http.StatusUnprocessableEntity,
	CodeUnauthorized: http.StatusUnauthorized,
	CodeInternal:     http.StatusInternalServerError,
	CodeBadRequest:   http.StatusBadRequest,
	CodeInvalidInput: http.StatusBadRequest,

	CodeTimeout:              http.StatusServiceUnavailable,
	CodeRateLimited:          http.StatusTooManyRequests,
	CodePayloadTooLarge:      http.StatusRequestEntityTooLarge,
	CodeUnsupportedMediaType: http.StatusUnsupportedMediaType,
	CodeRequestInProgress:    http.StatusConflict,

	CodeResourceNotAvailable:  http.StatusBadRequest,
	CodeWindowTooLong:         http.StatusBadRequest,
	CodeEndBeforeStart:        http.StatusBadRequest,
	CodeOutsideOperatingHours: http.StatusBadRequest,
	CodeOccupancyUnauthorized: http.StatusBadRequest,
	CodeRenewalLimitExceeded:  http.StatusBadRequest,

	CodeAlreadyBooked:    http.StatusConflict,
	CodeAlreadyFinished:  http.StatusConflict,
	CodeAlreadyApproved:  http.StatusConflict,
	CodeCannotApprove:    http.StatusConflict,
	CodeBookingNotActive: http.StatusConflict,
	CodeResourceBusy:     http.StatusConflict,
	CodeStaleBooking:     http.StatusConflict,
}

// StatusFor returns the HTTP status of code, or 500 for unknown codes.
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func newError(code, message string, details map[string]any) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: StatusFor(code),
		Details:    details,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// FromCode builds an error whose status comes from the code table.
func FromCode(code, message string) *AppError {
	return newError(code, message, nil)
}

func NotFoundWithID(resource, id string) *AppError {
	return newError(CodeNotFound, resource+" not found", map[string]any{
		"resource": resource,
		"id":       id,
	})
}

func Validation(message string, details map[string]any) *AppError {
	return newError(CodeValidation, message, details)
}

func InvalidInput(message string) *AppError {
	return newError(CodeInvalidInput, message, nil)
}

func Unauthorized(message string) *AppError {
	return newError(CodeUnauthorized, message, nil)
}

// Internal keeps err for logs only; responses never render it.
func Internal(message string, err error) *AppError {
	e := newError(CodeInternal, message, nil)
	e.Err = err
	return e
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError unwraps err to an AppError, treating anything else as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is, or wraps, an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
