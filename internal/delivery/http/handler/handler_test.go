package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"doctor-duty-notifier/internal/delivery/dto"
	"doctor-duty-notifier/internal/usecase"
	"doctor-duty-notifier/pkg/response"
	"doctor-duty-notifier/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Mock ScheduleUsecase ──

type mockScheduleUsecase struct {
	ingestResult    *dto.IngestResponse
	ingestErr       error
	ingestTrigger   string
	schedulesResult *dto.ScheduleListResponse
	schedulesErr    error
	lastQuery       *dto.ScheduleQuery
	upcomingResult  *dto.UpcomingResponse
	upcomingErr     error
	lastNow         time.Time
	runsResult      *dto.ScrapeRunListResponse
	runsErr         error
	lastLimit       int
}

func (m *mockScheduleUsecase) Ingest(_ context.Context, trigger string) (*dto.IngestResponse, error) {
	m.ingestTrigger = trigger
	return m.ingestResult, m.ingestErr
}
func (m *mockScheduleUsecase) GetSchedules(_ context.Context, query *dto.ScheduleQuery) (*dto.ScheduleListResponse, error) {
	m.lastQuery = query
	return m.schedulesResult, m.schedulesErr
}
func (m *mockScheduleUsecase) GetUpcoming(_ context.Context, now time.Time) (*dto.UpcomingResponse, error) {
	m.lastNow = now
	return m.upcomingResult, m.upcomingErr
}
func (m *mockScheduleUsecase) LoadSnapshot(_ context.Context) (int, error) {
	return 0, nil
}
func (m *mockScheduleUsecase) GetScrapeRuns(_ context.Context, limit int) (*dto.ScrapeRunListResponse, error) {
	m.lastLimit = limit
	return m.runsResult, m.runsErr
}

// ── Mock NotificationUsecase ──

type mockNotificationUsecase struct {
	subscribeResult *dto.SubscriptionResponse
	subscribeErr    error
	unsubscribeErr  error
	listResult      *dto.SubscriptionListResponse
	listErr         error
}

func (m *mockNotificationUsecase) Subscribe(_ context.Context, _ *dto.SubscribeRequest) (*dto.SubscriptionResponse, error) {
	return m.subscribeResult, m.subscribeErr
}
func (m *mockNotificationUsecase) Unsubscribe(_ context.Context, _ *dto.UnsubscribeRequest) error {
	return m.unsubscribeErr
}
func (m *mockNotificationUsecase) ListSubscriptions(_ context.Context) (*dto.SubscriptionListResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockNotificationUsecase) CheckAndNotify(_ context.Context, _ time.Time) (*dto.NotifyReport, error) {
	return &dto.NotifyReport{}, nil
}

// ── Mock DeviceUsecase ──

type mockDeviceUsecase struct {
	registerCreated  bool
	registerErr      error
	subscribeCreated bool
	subscribeErr     error
	unsubscribeErr   error
	devicesResult    *dto.DeviceSubscriptionsResponse
	devicesErr       error
	lastDeviceID     string
}

func (m *mockDeviceUsecase) RegisterToken(_ context.Context, _ *dto.RegisterTokenRequest) (bool, error) {
	return m.registerCreated, m.registerErr
}
func (m *mockDeviceUsecase) SubscribeDoctor(_ context.Context, _ *dto.DoctorSubscriptionRequest) (bool, error) {
	return m.subscribeCreated, m.subscribeErr
}
func (m *mockDeviceUsecase) UnsubscribeDoctor(_ context.Context, _ *dto.DoctorSubscriptionRequest) error {
	return m.unsubscribeErr
}
func (m *mockDeviceUsecase) GetDeviceSubscriptions(_ context.Context, deviceID string) (*dto.DeviceSubscriptionsResponse, error) {
	m.lastDeviceID = deviceID
	return m.devicesResult, m.devicesErr
}

// ── Helpers ──

var ist = time.FixedZone("IST", 5*3600+1800)

func doRequest(h http.HandlerFunc, method, target string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// ── Schedule handler ──

func TestScheduleHandler_GetSchedules(t *testing.T) {
	uc := &mockScheduleUsecase{schedulesResult: &dto.ScheduleListResponse{Total: 1, Schedules: []dto.DutyRecordResponse{{Name: "Dr. Asha Rao"}}}}
	h := NewScheduleHandler(uc, validator.NewValidator(), ist)

	rec := doRequest(h.GetSchedules, http.MethodGet, "/api/v1/schedules?date=31/01/2026&category=Visiting+Specialist&doctor=rao", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	require.NotNil(t, uc.lastQuery)
	assert.Equal(t, "31/01/2026", uc.lastQuery.Date)
	assert.Equal(t, "Visiting Specialist", uc.lastQuery.Category)
	assert.Equal(t, "rao", uc.lastQuery.DoctorName)
}

func TestScheduleHandler_GetSchedulesValidation(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "iso date", query: "date=2026-01-31"},
		{name: "unknown category", query: "category=Surgeon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockScheduleUsecase{}
			h := NewScheduleHandler(uc, validator.NewValidator(), ist)

			rec := doRequest(h.GetSchedules, http.MethodGet, "/api/v1/schedules?"+tt.query, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, uc.lastQuery)
		})
	}
}

func TestScheduleHandler_GetUpcoming(t *testing.T) {
	uc := &mockScheduleUsecase{upcomingResult: &dto.UpcomingResponse{}}
	h := NewScheduleHandler(uc, validator.NewValidator(), ist)

	rec := doRequest(h.GetUpcoming, http.MethodGet, "/api/v1/schedules/upcoming?at=2026-01-31T09:00:00Z", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ist, uc.lastNow.Location())
	assert.Equal(t, 14, uc.lastNow.Hour())
	assert.Equal(t, 30, uc.lastNow.Minute())
}

func TestScheduleHandler_GetUpcomingUsesClock(t *testing.T) {
	uc := &mockScheduleUsecase{upcomingResult: &dto.UpcomingResponse{}}
	h := NewScheduleHandler(uc, validator.NewValidator(), ist)
	fixed := time.Date(2026, time.January, 31, 3, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	rec := doRequest(h.GetUpcoming, http.MethodGet, "/api/v1/schedules/upcoming", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, fixed.Equal(uc.lastNow))
	assert.Equal(t, ist, uc.lastNow.Location())
}

func TestScheduleHandler_GetUpcomingBadTime(t *testing.T) {
	uc := &mockScheduleUsecase{}
	h := NewScheduleHandler(uc, validator.NewValidator(), ist)

	rec := doRequest(h.GetUpcoming, http.MethodGet, "/api/v1/schedules/upcoming?at=tomorrow", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleHandler_Ingest(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "already running", err: usecase.ErrIngestInProgress, wantStatus: http.StatusConflict},
		{name: "scrape failed", err: fmt.Errorf("%w: %v", usecase.ErrScrapeFailed, errors.New("no sheets")), wantStatus: http.StatusBadGateway},
		{name: "store failed", err: usecase.ErrScheduleStoreFail, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockScheduleUsecase{ingestErr: tt.err}
			if tt.err == nil {
				uc.ingestResult = &dto.IngestResponse{Status: "success", Message: "Schedule ingested", Count: 12}
			}
			h := NewScheduleHandler(uc, validator.NewValidator(), ist)

			rec := doRequest(h.Ingest, http.MethodPost, "/api/v1/schedules/ingest", nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "manual", uc.ingestTrigger)
		})
	}
}

func TestScheduleHandler_GetScrapeRuns(t *testing.T) {
	uc := &mockScheduleUsecase{runsResult: &dto.ScrapeRunListResponse{}}
	h := NewScheduleHandler(uc, validator.NewValidator(), ist)

	rec := doRequest(h.GetScrapeRuns, http.MethodGet, "/api/v1/schedules/runs?limit=5", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, uc.lastLimit)

	rec = doRequest(h.GetScrapeRuns, http.MethodGet, "/api/v1/schedules/runs?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ── Notification handler ──

func TestNotificationHandler_Subscribe(t *testing.T) {
	email := "nurse@example.com"
	uc := &mockNotificationUsecase{subscribeResult: &dto.SubscriptionResponse{ID: 1, Email: &email, IsActive: true}}
	h := NewNotificationHandler(uc, validator.NewValidator())

	rec := doRequest(h.Subscribe, http.MethodPost, "/api/v1/notifications/subscribe", map[string]string{"email": email})

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Subscribed successfully", resp.Message)
}

func TestNotificationHandler_SubscribeErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		err        error
		wantStatus int
	}{
		{name: "malformed body", body: "{", wantStatus: http.StatusBadRequest},
		{name: "invalid email", body: map[string]string{"email": "not-an-email"}, wantStatus: http.StatusBadRequest},
		{name: "nothing to subscribe", body: map[string]string{}, err: usecase.ErrEmailOrPushRequired, wantStatus: http.StatusBadRequest},
		{name: "store failure", body: map[string]string{"email": "a@b.co"}, err: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockNotificationUsecase{subscribeErr: tt.err}
			h := NewNotificationHandler(uc, validator.NewValidator())

			rec := doRequest(h.Subscribe, http.MethodPost, "/api/v1/notifications/subscribe", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestNotificationHandler_Unsubscribe(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "missing target", err: usecase.ErrUnsubscribeTargetRequired, wantStatus: http.StatusBadRequest},
		{name: "not found", err: usecase.ErrSubscriptionNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockNotificationUsecase{unsubscribeErr: tt.err}
			h := NewNotificationHandler(uc, validator.NewValidator())

			rec := doRequest(h.Unsubscribe, http.MethodPost, "/api/v1/notifications/unsubscribe", map[string]int{"subscription_id": 3})

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestNotificationHandler_ListSubscriptions(t *testing.T) {
	uc := &mockNotificationUsecase{listResult: &dto.SubscriptionListResponse{Total: 0, Subscriptions: []dto.SubscriptionResponse{}}}
	h := NewNotificationHandler(uc, validator.NewValidator())

	rec := doRequest(h.ListSubscriptions, http.MethodGet, "/api/v1/notifications/subscriptions", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	uc.listErr = errors.New("db down")
	rec = doRequest(h.ListSubscriptions, http.MethodGet, "/api/v1/notifications/subscriptions", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ── Device handler ──

func TestDeviceHandler_RegisterToken(t *testing.T) {
	body := map[string]string{"device_id": "pixel-7", "fcm_token": "tok-1"}

	uc := &mockDeviceUsecase{registerCreated: true}
	h := NewDeviceHandler(uc, validator.NewValidator())
	rec := doRequest(h.RegisterToken, http.MethodPost, "/api/v1/fcm/register-token", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "FCM token registered", decodeResponse(t, rec).Message)

	uc.registerCreated = false
	rec = doRequest(h.RegisterToken, http.MethodPost, "/api/v1/fcm/register-token", body)
	assert.Equal(t, "FCM token updated", decodeResponse(t, rec).Message)

	rec = doRequest(h.RegisterToken, http.MethodPost, "/api/v1/fcm/register-token", map[string]string{"device_id": "pixel-7"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeviceHandler_SubscribeDoctor(t *testing.T) {
	body := map[string]string{"device_id": "pixel-7", "doctor_name": "Dr. Asha Rao"}

	uc := &mockDeviceUsecase{subscribeCreated: true}
	h := NewDeviceHandler(uc, validator.NewValidator())
	rec := doRequest(h.SubscribeDoctor, http.MethodPost, "/api/v1/fcm/subscribe-doctor", body)
	assert.Equal(t, "Subscribed to Dr. Asha Rao", decodeResponse(t, rec).Message)

	uc.subscribeCreated = false
	rec = doRequest(h.SubscribeDoctor, http.MethodPost, "/api/v1/fcm/subscribe-doctor", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Already subscribed to this doctor", decodeResponse(t, rec).Message)
}

func TestDeviceHandler_UnsubscribeDoctorNotFound(t *testing.T) {
	uc := &mockDeviceUsecase{unsubscribeErr: usecase.ErrDoctorSubscriptionNotFound}
	h := NewDeviceHandler(uc, validator.NewValidator())

	rec := doRequest(h.UnsubscribeDoctor, http.MethodPost, "/api/v1/fcm/unsubscribe-doctor",
		map[string]string{"device_id": "pixel-7", "doctor_name": "Dr. Asha Rao"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeviceHandler_GetDeviceSubscriptions(t *testing.T) {
	uc := &mockDeviceUsecase{devicesResult: &dto.DeviceSubscriptionsResponse{DeviceID: "pixel-7", SubscribedDoctors: []string{"Dr. Asha Rao"}, Count: 1}}
	h := NewDeviceHandler(uc, validator.NewValidator())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fcm/subscriptions/pixel-7", nil)
	req = mux.SetURLVars(req, map[string]string{"deviceId": "pixel-7"})
	rec := httptest.NewRecorder()
	h.GetDeviceSubscriptions(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pixel-7", uc.lastDeviceID)
}
