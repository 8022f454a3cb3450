package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/departure"
)

var fixedNow = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

type fakeService struct {
	prefs domain.NotificationPreferences
	err   error

	gotNow      time.Time
	gotUserID   string
	gotPrefs    domain.NotificationPreferences
	gotTimings  []domain.ReminderTiming
	gotEventID  string
	gotDelay    int
	gotState    domain.NotificationState
	gotActivity departure.Activity
}

func (f *fakeService) Preferences(_ context.Context, _ string) domain.NotificationPreferences {
	return f.prefs.Clone()
}

func (f *fakeService) Refresh(_ context.Context, userID string, now time.Time) (*departure.RefreshResponse, error) {
	f.gotUserID, f.gotNow = userID, now
	if f.err != nil {
		return nil, f.err
	}
	return &departure.RefreshResponse{UserID: userID, EvaluatedAt: now, CreatedCount: 2}, nil
}

func (f *fakeService) ListDepartures(_ context.Context, userID string, now time.Time) (*departure.ListResponse, error) {
	f.gotUserID, f.gotNow = userID, now
	if f.err != nil {
		return nil, f.err
	}
	return &departure.ListResponse{UserID: userID, EvaluatedAt: now, Degraded: true}, nil
}

func (f *fakeService) UpdatePreferences(_ context.Context, userID string, prefs domain.NotificationPreferences, now time.Time) (*departure.PreferencesUpdate, error) {
	f.gotUserID, f.gotPrefs, f.gotNow = userID, prefs, now
	if f.err != nil {
		return nil, f.err
	}
	return &departure.PreferencesUpdate{Preferences: prefs.Normalize()}, nil
}

func (f *fakeService) ScheduleActivityReminder(_ context.Context, userID string, activity departure.Activity, timings []domain.ReminderTiming, now time.Time) (*departure.SendResult, error) {
	f.gotUserID, f.gotActivity, f.gotTimings, f.gotNow = userID, activity, timings, now
	if f.err != nil {
		return nil, f.err
	}
	return &departure.SendResult{}, nil
}

func (f *fakeService) NotifyPartner(_ context.Context, userID string, _ departure.PartnerEvent, now time.Time) (*departure.SendResult, error) {
	f.gotUserID, f.gotNow = userID, now
	if f.err != nil {
		return nil, f.err
	}
	return &departure.SendResult{}, nil
}

func (f *fakeService) ReportDelay(_ context.Context, userID, eventID string, delayMinutes int, now time.Time) (*departure.SendResult, error) {
	f.gotUserID, f.gotEventID, f.gotDelay, f.gotNow = userID, eventID, delayMinutes, now
	if f.err != nil {
		return nil, f.err
	}
	return &departure.SendResult{}, nil
}

func (f *fakeService) MarkNotification(_ context.Context, userID, notificationID string, state domain.NotificationState, now time.Time) (domain.ScheduledNotification, error) {
	f.gotUserID, f.gotState, f.gotNow = userID, state, now
	if f.err != nil {
		return domain.ScheduledNotification{}, f.err
	}
	return domain.ScheduledNotification{ID: notificationID, UserID: userID, State: state}, nil
}

func setupRouter(svc DepartureService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewDepartureHandler(svc)
	h.clock = func() time.Time { return fixedNow }

	r := gin.New()
	h.Register(r.Group("/api/v1"))
	return r
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDepartureHandler_Refresh(t *testing.T) {
	svc := &fakeService{prefs: domain.DefaultPreferences()}
	r := setupRouter(svc)

	w := doRequest(r, http.MethodPost, "/api/v1/users/user-1/departures/refresh", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	var resp departure.RefreshResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.UserID != "user-1" || resp.CreatedCount != 2 {
		t.Errorf("response: got %+v", resp)
	}
	if !svc.gotNow.Equal(fixedNow) {
		t.Errorf("now: got %v, want %v", svc.gotNow, fixedNow)
	}
}

func TestDepartureHandler_VirtualNow(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantNow    time.Time
	}{
		{
			name:       "clock when from is absent",
			wantStatus: http.StatusOK,
			wantNow:    fixedNow,
		},
		{
			name:       "from overrides the clock",
			query:      "?from=2024-06-01T17:00:00%2B09:00",
			wantStatus: http.StatusOK,
			wantNow:    time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			name:       "invalid from",
			query:      "?from=tomorrow",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{prefs: domain.DefaultPreferences()}
			r := setupRouter(svc)

			w := doRequest(r, http.MethodGet, "/api/v1/users/user-1/departures"+tt.query, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && !svc.gotNow.Equal(tt.wantNow) {
				t.Errorf("now: got %v, want %v", svc.gotNow, tt.wantNow)
			}
		})
	}
}

func TestDepartureHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"trip source", fmt.Errorf("%w: bookings: timeout", departure.ErrTripSourceUnavailable), http.StatusBadGateway, "trip_source_unavailable"},
		{"ledger", departure.ErrLedgerUnavailable, http.StatusServiceUnavailable, "storage_unavailable"},
		{"preferences", departure.ErrPreferencesUnavailable, http.StatusServiceUnavailable, "storage_unavailable"},
		{"event not found", domain.ErrEventNotFound, http.StatusNotFound, "not_found"},
		{"invalid delay", departure.ErrInvalidDelay, http.StatusBadRequest, "validation_error"},
		{"transition", domain.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "processing_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{prefs: domain.DefaultPreferences(), err: tt.err}
			r := setupRouter(svc)

			w := doRequest(r, http.MethodPost, "/api/v1/users/user-1/departures/refresh", "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", w.Code, tt.wantStatus)
			}

			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding error response: %v", err)
			}
			if resp.Error != tt.wantType {
				t.Errorf("error type: got %q, want %q", resp.Error, tt.wantType)
			}
		})
	}
}

func TestDepartureHandler_UpdatePreferencesMergesOntoCurrent(t *testing.T) {
	current := domain.DefaultPreferences()
	current.LeadTimeMinutes = 90
	svc := &fakeService{prefs: current}
	r := setupRouter(svc)

	w := doRequest(r, http.MethodPut, "/api/v1/users/user-1/preferences", `{"global_enabled": false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if svc.gotPrefs.GlobalEnabled {
		t.Error("global_enabled: got true, want false")
	}
	if svc.gotPrefs.LeadTimeMinutes != 90 {
		t.Errorf("lead_time_minutes: got %d, want 90", svc.gotPrefs.LeadTimeMinutes)
	}
}

func TestDepartureHandler_UpdatePreferencesMalformed(t *testing.T) {
	r := setupRouter(&fakeService{prefs: domain.DefaultPreferences()})

	w := doRequest(r, http.MethodPut, "/api/v1/users/user-1/preferences", `{"global_enabled": "sometimes"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestDepartureHandler_TestReminderDefaultsTimings(t *testing.T) {
	prefs := domain.DefaultPreferences()
	prefs.ActivityReminders.DefaultTimings = []domain.ReminderTiming{domain.Timing15Min}
	svc := &fakeService{prefs: prefs}
	r := setupRouter(svc)

	body := `{"activity": {"title": "Museum visit", "event_time": "2024-06-01T09:00:00Z"}}`
	w := doRequest(r, http.MethodPost, "/api/v1/users/user-1/reminders/test", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if len(svc.gotTimings) != 1 || svc.gotTimings[0] != domain.Timing15Min {
		t.Errorf("timings: got %v, want [15min]", svc.gotTimings)
	}
	if svc.gotActivity.Title != "Museum visit" {
		t.Errorf("activity title: got %q", svc.gotActivity.Title)
	}
}

func TestDepartureHandler_ReportDelay(t *testing.T) {
	svc := &fakeService{prefs: domain.DefaultPreferences()}
	r := setupRouter(svc)

	w := doRequest(r, http.MethodPost, "/api/v1/users/user-1/departures/booking:dinner/delay", `{"delay_minutes": 25}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if svc.gotEventID != "booking:dinner" || svc.gotDelay != 25 {
		t.Errorf("got event %q delay %d", svc.gotEventID, svc.gotDelay)
	}

	w = doRequest(r, http.MethodPost, "/api/v1/users/user-1/departures/booking:dinner/delay", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing delay: got %d, want 400", w.Code)
	}
}

func TestDepartureHandler_NotificationState(t *testing.T) {
	svc := &fakeService{prefs: domain.DefaultPreferences()}
	r := setupRouter(svc)

	w := doRequest(r, http.MethodPost, "/api/v1/users/user-1/notifications/n-1/state", `{"state": " Delivered "}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if svc.gotState != domain.StateDelivered {
		t.Errorf("state: got %q, want delivered", svc.gotState)
	}
}

func TestDepartureHandler_PartnerNotify(t *testing.T) {
	svc := &fakeService{prefs: domain.DefaultPreferences(), err: departure.ErrInvalidPartnerKind}
	r := setupRouter(svc)

	w := doRequest(r, http.MethodPost, "/api/v1/users/user-1/partner/notify", `{"kind": "travel_alert", "trip_id": "trip-1"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}
