package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"carereminder/internal/application/dto"
	"carereminder/internal/domain/entity"
	appErrors "carereminder/internal/pkg/errors"
	"carereminder/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAppointmentService struct {
	mock.Mock
}

func (m *mockAppointmentService) Create(ctx context.Context, req dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.AppointmentResponse)
	return resp, args.Error(1)
}

func (m *mockAppointmentService) Get(ctx context.Context, userID, appointmentID string) (*dto.AppointmentResponse, error) {
	args := m.Called(ctx, userID, appointmentID)
	resp, _ := args.Get(0).(*dto.AppointmentResponse)
	return resp, args.Error(1)
}

func (m *mockAppointmentService) List(ctx context.Context, userID string) ([]dto.AppointmentResponse, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]dto.AppointmentResponse)
	return list, args.Error(1)
}

func (m *mockAppointmentService) Update(ctx context.Context, req dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.AppointmentResponse)
	return resp, args.Error(1)
}

func (m *mockAppointmentService) Delete(ctx context.Context, userID, appointmentID string) error {
	return m.Called(ctx, userID, appointmentID).Error(0)
}

func (m *mockAppointmentService) GetReminder(ctx context.Context, userID, appointmentID string) (*dto.ReminderResponse, error) {
	args := m.Called(ctx, userID, appointmentID)
	resp, _ := args.Get(0).(*dto.ReminderResponse)
	return resp, args.Error(1)
}

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) RegisterPushToken(ctx context.Context, req dto.RegisterPushTokenRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockUserService) ClearPushToken(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockUserService) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger.Discard())
	return e
}

func serve(e *echo.Echo, method, path, body, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if user != "" {
		req.Header.Set(HeaderUserID, user)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAppointmentHandler_Create(t *testing.T) {
	svc := new(mockAppointmentService)
	h := NewAppointmentHandler(svc)
	e := newTestEcho()
	e.POST("/appointments", h.Create)

	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.On("Create", mock.Anything, mock.MatchedBy(func(req dto.CreateAppointmentRequest) bool {
		return req.UserID == "u1" && req.Title == "Oncology checkup" && req.ScheduledAt.Equal(at) &&
			req.ReminderPreference == "3 days before"
	})).Return(&dto.AppointmentResponse{
		ID:            "a1",
		Title:         "Oncology checkup",
		ScheduledAt:   at,
		ReminderError: "\"3 days before\": invalid reminder preference",
	}, nil).Once()

	rec := serve(e, http.MethodPost, "/appointments",
		`{"title":"Oncology checkup","scheduledAt":"2025-03-10T09:00:00Z","reminderPreference":"3 days before"}`, "u1")

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "a1", resp.ID)
	assert.Contains(t, resp.ReminderError, "invalid reminder preference")
	svc.AssertExpectations(t)
}

func TestAppointmentHandler_CreateValidation(t *testing.T) {
	svc := new(mockAppointmentService)
	h := NewAppointmentHandler(svc)
	e := newTestEcho()
	e.POST("/appointments", h.Create)

	tests := []struct {
		name     string
		body     string
		user     string
		wantCode int
	}{
		{name: "missing user header", body: `{"title":"x","scheduledAt":"2025-03-10T09:00:00Z"}`, wantCode: http.StatusUnauthorized},
		{name: "missing title", body: `{"scheduledAt":"2025-03-10T09:00:00Z"}`, user: "u1", wantCode: http.StatusBadRequest},
		{name: "missing scheduledAt", body: `{"title":"x"}`, user: "u1", wantCode: http.StatusBadRequest},
		{name: "malformed json", body: `{"title":`, user: "u1", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodPost, "/appointments", tt.body, tt.user)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAppointmentHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{name: "not found", err: errors.Wrap(appErrors.ErrAppointmentNotFound, "appointment a1"), wantCode: http.StatusNotFound, wantErr: "APPOINTMENT_NOT_FOUND"},
		{name: "database", err: errors.Wrap(appErrors.ErrDatabaseOperation, "disk I/O error"), wantCode: http.StatusInternalServerError, wantErr: "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockAppointmentService)
			h := NewAppointmentHandler(svc)
			e := newTestEcho()
			e.GET("/appointments/:id", h.Get)
			svc.On("Get", mock.Anything, "u1", "a1").Return(nil, tt.err).Once()

			rec := serve(e, http.MethodGet, "/appointments/a1", "", "u1")

			assert.Equal(t, tt.wantCode, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
			assert.NotContains(t, resp.Error.Message, "disk")
		})
	}
}

func TestAppointmentHandler_UpdateAndDelete(t *testing.T) {
	svc := new(mockAppointmentService)
	h := NewAppointmentHandler(svc)
	e := newTestEcho()
	e.PUT("/appointments/:id", h.Update)
	e.DELETE("/appointments/:id", h.Delete)
	e.GET("/appointments/:id/reminder", h.GetReminder)

	svc.On("Update", mock.Anything, mock.MatchedBy(func(req dto.UpdateAppointmentRequest) bool {
		return req.UserID == "u1" && req.AppointmentID == "a1" &&
			req.ReminderPreference != nil && *req.ReminderPreference == "none" && req.Title == nil
	})).Return(&dto.AppointmentResponse{ID: "a1", ReminderPreference: "none"}, nil).Once()
	svc.On("Delete", mock.Anything, "u1", "a1").Return(nil).Once()
	svc.On("GetReminder", mock.Anything, "u1", "a1").
		Return(nil, errors.Wrap(appErrors.ErrReminderNotFound, "appointment a1")).Once()

	rec := serve(e, http.MethodPut, "/appointments/a1", `{"reminderPreference":"none"}`, "u1")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodDelete, "/appointments/a1", "", "u1")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(e, http.MethodGet, "/appointments/a1/reminder", "", "u1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "REMINDER_NOT_FOUND", decodeError(t, rec).Error.Code)

	svc.AssertExpectations(t)
}

func TestUserHandler_RegisterPushToken(t *testing.T) {
	svc := new(mockUserService)
	h := NewUserHandler(svc)
	e := newTestEcho()
	e.PUT("/users/me/push-token", h.RegisterPushToken)

	svc.On("RegisterPushToken", mock.Anything, dto.RegisterPushTokenRequest{UserID: "u1", Token: "xyz"}).Return(nil).Once()
	svc.On("RegisterPushToken", mock.Anything, dto.RegisterPushTokenRequest{UserID: "u1", Token: "bad token"}).
		Return(errors.Wrap(appErrors.ErrInvalidInput, "push token contains whitespace")).Once()

	rec := serve(e, http.MethodPut, "/users/me/push-token", `{"token":"xyz"}`, "u1")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(e, http.MethodPut, "/users/me/push-token", `{"token":"bad token"}`, "u1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, http.MethodPut, "/users/me/push-token", `{}`, "u1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.AssertExpectations(t)
}

func signLineBody(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestLineHandler_HandleWebhook(t *testing.T) {
	const secret = "channel-secret"
	svc := new(mockUserService)
	h := NewLineHandler(secret, svc, logger.Discard())
	e := newTestEcho()
	e.POST("/line/callback", h.HandleWebhook)

	body := `{"destination":"Ubot","events":[` +
		`{"type":"follow","replyToken":"r1","timestamp":1462629479859,"mode":"active","webhookEventId":"e1",` +
		`"deliveryContext":{"isRedelivery":false},"source":{"type":"user","userId":"U111"}},` +
		`{"type":"unfollow","timestamp":1462629479860,"mode":"active","webhookEventId":"e2",` +
		`"deliveryContext":{"isRedelivery":false},"source":{"type":"user","userId":"U222"}}]}`

	svc.On("RegisterPushToken", mock.Anything, dto.RegisterPushTokenRequest{UserID: "U111", Token: "U111"}).Return(nil).Once()
	svc.On("ClearPushToken", mock.Anything, "U222").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/line/callback", strings.NewReader(body))
	req.Header.Set("X-Line-Signature", signLineBody(secret, body))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestLineHandler_RejectsBadSignature(t *testing.T) {
	svc := new(mockUserService)
	h := NewLineHandler("channel-secret", svc, logger.Discard())
	e := newTestEcho()
	e.POST("/line/callback", h.HandleWebhook)

	req := httptest.NewRequest(http.MethodPost, "/line/callback", strings.NewReader(`{"events":[]}`))
	req.Header.Set("X-Line-Signature", signLineBody("wrong-secret", `{"events":[]}`))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "RegisterPushToken", mock.Anything, mock.Anything)
}
