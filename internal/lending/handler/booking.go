package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"auravindex/internal/lending/service"
	"auravindex/pkg/audit"
	apperrors "auravindex/pkg/errors"
	httputil "auravindex/pkg/http"
	"auravindex/pkg/logger"
	"auravindex/pkg/middleware"
	"auravindex/pkg/model"
	"auravindex/pkg/sanitizer"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	auditor audit.Auditor
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, auditor audit.Auditor, log *logger.Logger) *BookingHandler {
	if auditor == nil {
		auditor = audit.NewLogAuditor(log)
	}
	return &BookingHandler{
		service: service,
		auditor: auditor,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requesterID, ok := h.requester(w, r, "Create")
	if !ok {
		return
	}

	var cmd model.CreateBookingCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
			Code:  apperrors.CodeBadRequest,
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	cmd.RequesterID = requesterID
	cmd.ResourceID = sanitizer.NormalizeIdentifier(cmd.ResourceID)

	booking, err := h.service.Create(r.Context(), &cmd)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}
	h.record(r.Context(), requesterID, audit.ActionCreateBooking, booking.ID)

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	bookings, total, err := h.service.Search(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Search", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, "Approve", audit.ActionApproveBooking, h.service.Approve)
}

func (h *BookingHandler) Renew(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, "Renew", audit.ActionRenewBooking, h.service.RequestRenewal)
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, "Complete", audit.ActionCompleteBooking, h.service.Complete)
}

func (h *BookingHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	ps httprouter.Params,
	name, action string,
	apply func(ctx context.Context, id string) (*model.Booking, error),
) {
	requesterID, ok := h.requester(w, r, name)
	if !ok {
		return
	}

	booking, err := apply(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, name, err)
		return
	}
	h.record(r.Context(), requesterID, action, booking.ID)

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetResource(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resource, err := h.service.GetResource(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetResource", err)
		return
	}

	if err := httputil.WriteSuccess(w, resource); err != nil {
		h.log.Error("failed to write success response", "handler", "GetResource", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Reconcile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requesterID, ok := h.requester(w, r, "Reconcile")
	if !ok {
		return
	}

	report, err := h.service.Reconcile(r.Context())
	if err != nil {
		h.writeError(w, "Reconcile", err)
		return
	}
	h.record(r.Context(), requesterID, audit.ActionReconcile, "resources")

	if err := httputil.WriteSuccess(w, report); err != nil {
		h.log.Error("failed to write success response", "handler", "Reconcile", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) requester(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	requesterID, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		h.writeError(w, name, apperrors.Unauthorized("Requester identity is required"))
		return "", false
	}
	return requesterID, true
}

func (h *BookingHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) record(ctx context.Context, requesterID, action, objectID string) {
	err := h.auditor.Record(ctx, audit.Entry{
		RequesterID: requesterID,
		Action:      action,
		ObjectID:    objectID,
		RequestID:   middleware.RequestIDFromContext(ctx),
	})
	if err != nil {
		h.log.Error("Failed to record audit entry",
			"requester_id", requesterID,
			"action", action,
			"object_id", objectID,
			"error", err,
		)
	}
}

func parseFilter(r *http.Request) (model.BookingFilter, error) {
	query := r.URL.Query()
	filter := model.BookingFilter{
		ResourceID:  sanitizer.NormalizeIdentifier(query.Get("resource_id")),
		RequesterID: sanitizer.NormalizeIdentifier(query.Get("requester_id")),
	}

	if s := query.Get("status"); s != "" {
		status, err := model.ParseBookingStatus(s)
		if err != nil {
			return filter, apperrors.InvalidInput("invalid status parameter: " + s)
		}
		filter.Status = status
	}

	if s := query.Get("start_time"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return filter, apperrors.InvalidInput("invalid start_time format, must be RFC3339")
		}
		filter.StartTime = &parsed
	}
	if s := query.Get("end_time"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return filter, apperrors.InvalidInput("invalid end_time format, must be RFC3339")
		}
		filter.EndTime = &parsed
	}
	return filter, nil
}

// AdminPathPrefix groups operator routes. Requester auth alone admits them;
// deployments gate this prefix with their own permission layer.
const AdminPathPrefix = "/api/v1/admin"

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.Search)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.POST("/api/v1/bookings/id/:id/approve", h.Approve)
	router.POST("/api/v1/bookings/id/:id/renew", h.Renew)
	router.POST("/api/v1/bookings/id/:id/complete", h.Complete)
	router.GET("/api/v1/resources/id/:id", h.GetResource)

	// admin
	router.POST(AdminPathPrefix+"/reconcile", h.Reconcile)
}
