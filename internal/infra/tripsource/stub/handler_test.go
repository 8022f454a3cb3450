package stub

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/infra/tripsource"
)

func newRouter(storage *Storage) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(storage).Register(r)
	return r
}

func TestHandler_SeedAndList(t *testing.T) {
	storage := NewStorage()
	r := newRouter(storage)

	body, _ := json.Marshal(SeedRequest{
		Bookings: []domain.Booking{{ID: "b1", Status: "confirmed", StartDate: "2024-06-01", Type: "flight", Name: "Flight", Location: "Airport"}},
		Trips:    []domain.Trip{{ID: "t1", Status: "upcoming", Destination: "Tokyo"}},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/users/u1/seed", bytes.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("seed: got status %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/bookings", nil))
	var bookings tripsource.BookingsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &bookings); err != nil {
		t.Fatalf("decode bookings: %v", err)
	}
	if bookings.Count != 1 || bookings.Bookings[0].ID != "b1" {
		t.Errorf("bookings: got %+v", bookings)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users/other/trips", nil))
	var trips tripsource.TripsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &trips); err != nil {
		t.Fatalf("decode trips: %v", err)
	}
	if trips.Count != 0 || trips.Trips == nil {
		t.Errorf("trips for unknown user: got %+v, want empty list", trips)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/users/u1/seed", nil))
	if got := storage.Bookings("u1"); len(got) != 0 {
		t.Errorf("after reset: got %d bookings", len(got))
	}
}

func TestHandler_SeedRejectsInvalidJSON(t *testing.T) {
	r := newRouter(NewStorage())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/users/u1/seed", bytes.NewReader([]byte("{"))))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusBadRequest)
	}
}
