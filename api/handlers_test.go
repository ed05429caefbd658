package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/Domenick1991/airbooking-modify/config"
	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/Domenick1991/airbooking-modify/internal/lifecycle"
	"github.com/Domenick1991/airbooking-modify/internal/service/requests"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var alice = domain.Identity{ID: "user-1", Email: "alice@example.com", DisplayName: "Alice"}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fixture struct {
	bookings *bookingUseCaseMock
	mods     *modificationUseCaseMock
	requests *requestUseCaseMock
	fares    *fareUseCaseMock
	router   *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		bookings: &bookingUseCaseMock{},
		mods:     &modificationUseCaseMock{},
		requests: &requestUseCaseMock{},
		fares:    &fareUseCaseMock{},
	}
	log, _ := test.NewNullLogger()
	f.router = NewRouter(config.HTTPConfig{}, log, Handlers{
		Bookings: NewBookingHandler(f.bookings),
		Drafts:   NewDraftHandler(f.mods),
		Requests: NewRequestHandler(f.requests),
		Fares:    NewFareHandler(f.fares),
	})
	t.Cleanup(func() {
		f.bookings.AssertExpectations(t)
		f.mods.AssertExpectations(t)
		f.requests.AssertExpectations(t)
		f.fares.AssertExpectations(t)
	})
	return f
}

func (f *fixture) do(method, path, body string, who *domain.Identity) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if who != nil {
		req.Header.Set(HeaderUserID, who.ID)
		req.Header.Set(HeaderUserEmail, who.Email)
		req.Header.Set(HeaderUserName, who.DisplayName)
		req.Header.Set(HeaderUserRole, who.Role)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestIdentityRequired(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/bookings", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "unauthorized", resp.Code)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, resp.RequestID, w.Header().Get(HeaderRequestID))
}

func TestRequestIDPropagated(t *testing.T) {
	f := newFixture(t)
	f.bookings.On("ListBookings", mock.Anything, alice).Return([]domain.Booking{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	req.Header.Set(HeaderUserID, alice.ID)
	req.Header.Set(HeaderUserEmail, alice.Email)
	req.Header.Set(HeaderUserName, alice.DisplayName)
	req.Header.Set(HeaderRequestID, "rid-42")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rid-42", w.Header().Get(HeaderRequestID))
}

func TestListBookings(t *testing.T) {
	f := newFixture(t)
	f.bookings.On("ListBookings", mock.Anything, alice).
		Return([]domain.Booking{{ID: "b-1", UserID: alice.ID, Status: domain.BookingStatusConfirmed}}, nil)

	w := f.do(http.MethodGet, "/api/v1/bookings", "", &alice)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Bookings []domain.Booking `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Bookings, 1)
	assert.Equal(t, "b-1", body.Bookings[0].ID)
}

func TestBookingActions(t *testing.T) {
	f := newFixture(t)
	actions := lifecycle.Actions{
		RequestModification: lifecycle.Gate{Reason: "a modification request is awaiting review"},
		ModifyBooking:       lifecycle.Gate{Reason: "the modification request has not been approved yet"},
		RequestCancellation: lifecycle.Gate{Allowed: true},
		CancelBooking:       lifecycle.Gate{Reason: "request a cancellation and wait for approval first"},
	}
	f.bookings.On("Actions", mock.Anything, alice, "b-1").Return(actions, nil)

	w := f.do(http.MethodGet, "/api/v1/bookings/b-1/actions", "", &alice)

	require.Equal(t, http.StatusOK, w.Code)
	var got lifecycle.Actions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, actions, got)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"gate", domain.StateGateError{Action: "cancel booking", Reason: "request a cancellation and wait for approval first"}, http.StatusConflict, "not_allowed", "request a cancellation and wait for approval first"},
		{"conflict", domain.ConflictError{Msg: "this booking is no longer confirmed and cannot be cancelled"}, http.StatusConflict, "conflict", "this booking is no longer confirmed and cannot be cancelled"},
		{"not found", domain.NotFoundError{Resource: "booking"}, http.StatusNotFound, "not_found", "booking not found"},
		{"forbidden", domain.ForbiddenError{Action: "review requests"}, http.StatusForbidden, "forbidden", "not allowed to review requests"},
		{"submission", domain.SubmissionError{Message: "could not save your changes, please try again"}, http.StatusBadGateway, "submission_failed", "could not save your changes, please try again"},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal_error", msgInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.bookings.On("CancelBooking", mock.Anything, alice, "b-1").Return(nil, tt.err)

			w := f.do(http.MethodPost, "/api/v1/bookings/b-1/cancel", "", &alice)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.msg, resp.Error)
		})
	}
}

func TestValidationErrorResponse(t *testing.T) {
	f := newFixture(t)
	verr := domain.ValidationError{
		Field: "departure_date",
		Msg:   "departure date must be in the future",
		Fields: []domain.FieldError{
			{Field: "departure_date", Message: "departure date must be in the future"},
			{Field: "passengers[0].last_name", Message: "last name is required"},
		},
	}
	f.mods.On("Submit", mock.Anything, alice, "b-1").Return(nil, verr)

	w := f.do(http.MethodPost, "/api/v1/bookings/b-1/draft/submit", "", &alice)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "validation_error", resp.Code)
	assert.Equal(t, "departure_date", resp.Field)
	assert.Len(t, resp.Details, 2)
}

func TestOpenDraft(t *testing.T) {
	f := newFixture(t)
	f.mods.On("OpenDraft", mock.Anything, alice, "b-1").
		Return(&domain.Draft{ID: "d-1", BookingID: "b-1", TotalPrice: 45000}, nil)

	w := f.do(http.MethodPost, "/api/v1/bookings/b-1/draft", "", &alice)

	require.Equal(t, http.StatusCreated, w.Code)
	var d domain.Draft
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, "d-1", d.ID)
	assert.Equal(t, domain.Money(45000), d.TotalPrice)
}

func TestToggleSection(t *testing.T) {
	f := newFixture(t)
	f.mods.On("ToggleSection", mock.Anything, alice, "b-1", domain.SectionSeats, false).
		Return(&domain.Draft{BookingID: "b-1"}, nil)

	w := f.do(http.MethodPut, "/api/v1/bookings/b-1/draft/sections/seats", `{"enabled":false}`, &alice)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestToggleSectionRejectsUnknownSection(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/api/v1/bookings/b-1/draft/sections/meals", `{"enabled":true}`, &alice)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "section is not valid", decodeError(t, w).Error)
}

func TestToggleSectionRequiresEnabled(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/api/v1/bookings/b-1/draft/sections/dates", `{}`, &alice)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "enabled is required", decodeError(t, w).Error)
}

func TestSetField(t *testing.T) {
	f := newFixture(t)
	f.mods.On("SetField", mock.Anything, alice, "b-1", "departure_date", json.RawMessage(`"2026-12-01"`)).
		Return(&domain.Draft{BookingID: "b-1", DepartureDate: "2026-12-01"}, nil)

	w := f.do(http.MethodPatch, "/api/v1/bookings/b-1/draft", `{"path":"departure_date","value":"2026-12-01"}`, &alice)

	require.Equal(t, http.StatusOK, w.Code)
	var d domain.Draft
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, "2026-12-01", d.DepartureDate)
}

func TestValidateDraftReportsFirstError(t *testing.T) {
	f := newFixture(t)
	d := &domain.Draft{BookingID: "b-1", Errors: map[string]string{"return_date": "return date must be after departure"}}
	f.mods.On("Validate", mock.Anything, alice, "b-1").
		Return(d, domain.ValidationError{Field: "return_date", Msg: "return date must be after departure"})

	w := f.do(http.MethodPost, "/api/v1/bookings/b-1/draft/validate", "", &alice)

	require.Equal(t, http.StatusOK, w.Code)
	var resp draftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "return_date", resp.Error.Field)
	assert.Equal(t, "return date must be after departure", resp.Draft.Errors["return_date"])
}

func TestValidateDraftValid(t *testing.T) {
	f := newFixture(t)
	f.mods.On("Validate", mock.Anything, alice, "b-1").Return(&domain.Draft{BookingID: "b-1"}, nil)

	w := f.do(http.MethodPost, "/api/v1/bookings/b-1/draft/validate", "", &alice)

	require.Equal(t, http.StatusOK, w.Code)
	var resp draftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Nil(t, resp.Error)
}

func TestDiscardDraft(t *testing.T) {
	f := newFixture(t)
	f.mods.On("DiscardDraft", mock.Anything, alice, "b-1").Return(nil)

	w := f.do(http.MethodDelete, "/api/v1/bookings/b-1/draft", "", &alice)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCreateRequest(t *testing.T) {
	f := newFixture(t)
	input := requests.CreateRequestInput{
		BookingID:  "b-1",
		Kind:       domain.RequestKindModification,
		ReasonCode: "schedule_change",
		Detail:     "meeting moved",
	}
	f.requests.On("CreateRequest", mock.Anything, alice, input).
		Return(&domain.Request{ID: "r-1", BookingID: "b-1", Status: domain.RequestStatusPending}, nil)

	w := f.do(http.MethodPost, "/api/v1/requests",
		`{"booking_id":"b-1","kind":"modification","reason_code":"schedule_change","detail":"meeting moved"}`, &alice)

	require.Equal(t, http.StatusCreated, w.Code)
	var r domain.Request
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	assert.Equal(t, domain.RequestStatusPending, r.Status)
}

func TestCreateRequestBindingErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"unknown kind", `{"booking_id":"b-1","kind":"upgrade","reason_code":"other"}`, "kind is not valid"},
		{"missing booking", `{"kind":"modification","reason_code":"other"}`, "booking_id is required"},
		{"detail too long", `{"booking_id":"b-1","kind":"modification","reason_code":"other","detail":"` + strings.Repeat("x", 501) + `"}`, "detail must be at most 500"},
		{"malformed", `{"booking_id":`, "unexpected EOF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			w := f.do(http.MethodPost, "/api/v1/requests", tt.body, &alice)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.msg, decodeError(t, w).Error)
		})
	}
}

func TestRespondToRequest(t *testing.T) {
	f := newFixture(t)
	admin := domain.Identity{ID: "admin-1", Role: domain.RoleAdmin}
	note := "approved, fare difference applies"
	amount := domain.Money(2500)
	input := requests.DecisionInput{Status: domain.RequestStatusApproved, AdminNote: &note, Amount: &amount}
	f.requests.On("Respond", mock.Anything, admin, "r-1", input).
		Return(&domain.Request{ID: "r-1", Status: domain.RequestStatusApproved}, nil)

	w := f.do(http.MethodPost, "/api/v1/admin/requests/r-1/decision",
		`{"status":"approved","admin_note":"approved, fare difference applies","amount_cents":2500}`, &admin)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRespondRejectsPendingStatus(t *testing.T) {
	f := newFixture(t)
	admin := domain.Identity{ID: "admin-1", Role: domain.RoleAdmin}

	w := f.do(http.MethodPost, "/api/v1/admin/requests/r-1/decision", `{"status":"pending"}`, &admin)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "status must be one of: approved rejected", decodeError(t, w).Error)
}

func TestListPendingForbidden(t *testing.T) {
	f := newFixture(t)
	f.requests.On("ListPending", mock.Anything, alice).Return(nil, domain.ForbiddenError{Action: "review requests"})

	w := f.do(http.MethodGet, "/api/v1/admin/requests/pending", "", &alice)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListFares(t *testing.T) {
	f := newFixture(t)
	f.fares.On("ListCandidateFares", mock.Anything, "JFK", "LAX").
		Return([]domain.Fare{{ID: 7, Origin: "JFK", Destination: "LAX", Price: 19900}}, nil)

	w := f.do(http.MethodGet, "/api/v1/fares?origin=JFK&destination=LAX", "", &alice)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Fares []domain.Fare `json:"fares"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Fares, 1)
	assert.Equal(t, domain.Money(19900), body.Fares[0].Price)
}

func TestListFaresRequiresRoute(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/fares?origin=JFK", "", &alice)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetFareRejectsBadID(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/fares/abc", "", &alice)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "id", decodeError(t, w).Field)
}

func TestHealth(t *testing.T) {
	log, _ := test.NewNullLogger()
	router := NewRouter(config.HTTPConfig{}, log, Handlers{
		Bookings: NewBookingHandler(&bookingUseCaseMock{}),
		Drafts:   NewDraftHandler(&modificationUseCaseMock{}),
		Requests: NewRequestHandler(&requestUseCaseMock{}),
		Fares:    NewFareHandler(&fareUseCaseMock{}),
	},
		HealthCheck{Name: "postgres", Check: func(ctx context.Context) error { return nil }},
		HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return errors.New("dial tcp: refused") }},
	)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["postgres"])
	assert.Equal(t, "dial tcp: refused", body["redis"])
}
