package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"auravindex/internal/lending/service"
	"auravindex/pkg/audit"
	apperrors "auravindex/pkg/errors"
	httputil "auravindex/pkg/http"
	"auravindex/pkg/logger"
	"auravindex/pkg/middleware"
	"auravindex/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const testBookingID = "6530f1a2b4c5d6e7f8a9b0c1"

// Mock service for testing
type mockBookingService struct {
	createFunc   func(ctx context.Context, cmd *model.CreateBookingCommand) (*model.Booking, error)
	searchFunc   func(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	completeFunc func(ctx context.Context, id string) (*model.Booking, error)
}

func (m *mockBookingService) Create(ctx context.Context, cmd *model.CreateBookingCommand) (*model.Booking, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, cmd)
	}
	return &model.Booking{ID: testBookingID}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockBookingService) Search(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, filter, limit, offset)
	}
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) Approve(ctx context.Context, id string) (*model.Booking, error) {
	return &model.Booking{ID: id, Status: model.StatusActive}, nil
}

func (m *mockBookingService) RequestRenewal(ctx context.Context, id string) (*model.Booking, error) {
	return nil, apperrors.RenewalLimitExceeded(2)
}

func (m *mockBookingService) Complete(ctx context.Context, id string) (*model.Booking, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, id)
	}
	return &model.Booking{ID: id, Status: model.StatusFinished}, nil
}

func (m *mockBookingService) GetResource(ctx context.Context, id string) (*model.Resource, error) {
	return &model.Resource{ID: id, Kind: model.ResourceBook, Status: model.ResourceAvailable}, nil
}

func (m *mockBookingService) Reconcile(ctx context.Context) (*service.ReconcileReport, error) {
	return &service.ReconcileReport{Checked: 3, Repaired: []service.StatusRepair{}, Skipped: []string{}}, nil
}

type recordingAuditor struct {
	entries []audit.Entry
}

func (a *recordingAuditor) Record(_ context.Context, e audit.Entry) error {
	a.entries = append(a.entries, e)
	return nil
}

func newTestRouter(svc service.BookingService, auditor audit.Auditor) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, auditor, logger.NewNop()).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, path, body, requester string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if requester != "" {
		req = req.WithContext(middleware.WithRequester(req.Context(), requester))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreate_UsesAuthenticatedRequesterAndAudits(t *testing.T) {
	var received *model.CreateBookingCommand
	svc := &mockBookingService{
		createFunc: func(_ context.Context, cmd *model.CreateBookingCommand) (*model.Booking, error) {
			received = cmd
			return &model.Booking{ID: testBookingID, RequesterID: cmd.RequesterID, ResourceID: cmd.ResourceID}, nil
		},
	}
	auditor := &recordingAuditor{}

	rec := serve(newTestRouter(svc, auditor), http.MethodPost, "/api/v1/bookings",
		`{"resource_id":"6530f1a2b4c5d6e7f8a9b0c2","requester_id":"spoofed"}`, "member-1")

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, received)
	assert.Equal(t, "member-1", received.RequesterID)
	assert.Equal(t, "6530f1a2b4c5d6e7f8a9b0c2", received.ResourceID)
	require.Len(t, auditor.entries, 1)
	assert.Equal(t, audit.Entry{RequesterID: "member-1", Action: audit.ActionCreateBooking, ObjectID: testBookingID}, auditor.entries[0])
}

func TestCreate_MissingRequester(t *testing.T) {
	auditor := &recordingAuditor{}
	rec := serve(newTestRouter(&mockBookingService{}, auditor), http.MethodPost, "/api/v1/bookings", `{}`, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperrors.CodeUnauthorized, decodeError(t, rec).Code)
	assert.Empty(t, auditor.entries)
}

func TestCreate_InvalidBody(t *testing.T) {
	rec := serve(newTestRouter(&mockBookingService{}, nil), http.MethodPost, "/api/v1/bookings", `{not json`, "member-1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decodeError(t, rec).Error)
}

func TestCreate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not available", apperrors.ResourceNotAvailable("r1", "NOT_AVAILABLE"), http.StatusBadRequest, apperrors.CodeResourceNotAvailable},
		{"already booked", apperrors.AlreadyBooked("r1", time.Now(), time.Now()), http.StatusConflict, apperrors.CodeAlreadyBooked},
		{"policy", apperrors.OutsideOperatingHours("closed on Sundays"), http.StatusBadRequest, apperrors.CodeOutsideOperatingHours},
		{"busy", apperrors.ResourceBusy("r1"), http.StatusConflict, apperrors.CodeResourceBusy},
		{"not found", apperrors.NotFoundWithID("Resource", "r1"), http.StatusNotFound, apperrors.CodeNotFound},
		{"validation", apperrors.Validation("Invalid booking input", nil), http.StatusUnprocessableEntity, apperrors.CodeValidation},
		{"unexpected", errors.New("socket closed"), http.StatusInternalServerError, apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auditor := &recordingAuditor{}
			svc := &mockBookingService{
				createFunc: func(context.Context, *model.CreateBookingCommand) (*model.Booking, error) {
					return nil, tt.err
				},
			}

			rec := serve(newTestRouter(svc, auditor), http.MethodPost, "/api/v1/bookings", `{"resource_id":"x"}`, "member-1")

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotContains(t, resp.Error, "socket closed")
			assert.Empty(t, auditor.entries)
		})
	}
}

func TestSearch_ParsesQuery(t *testing.T) {
	var gotFilter model.BookingFilter
	var gotLimit int
	var gotOffset int64
	svc := &mockBookingService{
		searchFunc: func(_ context.Context, f model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
			gotFilter, gotLimit, gotOffset = f, limit, offset
			return []*model.Booking{{ID: testBookingID}}, 7, nil
		},
	}

	rec := serve(newTestRouter(svc, nil), http.MethodGet,
		"/api/v1/bookings?resource_id=r1&requester_id=member-1&status=renewed&start_time=2026-10-19T00:00:00Z&limit=500&offset=5", "", "member-1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "r1", gotFilter.ResourceID)
	assert.Equal(t, "member-1", gotFilter.RequesterID)
	assert.Equal(t, model.StatusRenewed, gotFilter.Status)
	require.NotNil(t, gotFilter.StartTime)
	assert.Nil(t, gotFilter.EndTime)
	assert.Equal(t, 100, gotLimit)
	assert.Equal(t, int64(5), gotOffset)

	var page httputil.PaginatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(7), page.TotalCount)
}

func TestSearch_InvalidParameters(t *testing.T) {
	paths := []string{
		"/api/v1/bookings?status=lost",
		"/api/v1/bookings?start_time=yesterday",
		"/api/v1/bookings?end_time=2026-10-19",
		"/api/v1/bookings?limit=ten",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := serve(newTestRouter(&mockBookingService{}, nil), http.MethodGet, path, "", "member-1")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, apperrors.CodeInvalidInput, decodeError(t, rec).Code)
		})
	}
}

func TestTransitions(t *testing.T) {
	auditor := &recordingAuditor{}
	router := newTestRouter(&mockBookingService{}, auditor)

	rec := serve(router, http.MethodPost, "/api/v1/bookings/id/"+testBookingID+"/approve", "", "librarian")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodPost, "/api/v1/bookings/id/"+testBookingID+"/complete", "", "librarian")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodPost, "/api/v1/bookings/id/"+testBookingID+"/renew", "", "member-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeRenewalLimitExceeded, decodeError(t, rec).Code)

	require.Len(t, auditor.entries, 2)
	assert.Equal(t, audit.ActionApproveBooking, auditor.entries[0].Action)
	assert.Equal(t, audit.ActionCompleteBooking, auditor.entries[1].Action)
	assert.Equal(t, testBookingID, auditor.entries[1].ObjectID)
}

func TestComplete_AlreadyFinishedIsConflict(t *testing.T) {
	svc := &mockBookingService{
		completeFunc: func(_ context.Context, id string) (*model.Booking, error) {
			return nil, apperrors.AlreadyFinished(id)
		},
	}

	rec := serve(newTestRouter(svc, nil), http.MethodPost, "/api/v1/bookings/id/"+testBookingID+"/complete", "", "librarian")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperrors.CodeAlreadyFinished, decodeError(t, rec).Code)
}

func TestGetByID_NotFound(t *testing.T) {
	rec := serve(newTestRouter(&mockBookingService{}, nil), http.MethodGet, "/api/v1/bookings/id/"+testBookingID, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReconcile_ReturnsReport(t *testing.T) {
	auditor := &recordingAuditor{}
	rec := serve(newTestRouter(&mockBookingService{}, auditor), http.MethodPost, "/api/v1/admin/reconcile", "", "ops")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data service.ReconcileReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Checked)
	require.Len(t, auditor.entries, 1)
	assert.Equal(t, audit.ActionReconcile, auditor.entries[0].Action)
}

func TestRegisterRoutes_ReconcileOnlyUnderAdminPrefix(t *testing.T) {
	router := newTestRouter(&mockBookingService{}, nil)

	handle, _, _ := router.Lookup(http.MethodPost, AdminPathPrefix+"/reconcile")
	assert.NotNil(t, handle)

	handle, _, _ = router.Lookup(http.MethodPost, "/api/v1/reconcile")
	assert.Nil(t, handle)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context, *readpref.ReadPref) error { return p.err }

func TestHealthHandler(t *testing.T) {
	router := httprouter.New()
	NewHealthHandler(fakePinger{}, logger.NewNop()).RegisterRoutes(router)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/ready", "", "").Code)

	router = httprouter.New()
	NewHealthHandler(fakePinger{err: errors.New("no primary")}, logger.NewNop()).RegisterRoutes(router)
	assert.Equal(t, http.StatusServiceUnavailable, serve(router, http.MethodGet, "/ready", "", "").Code)
}
