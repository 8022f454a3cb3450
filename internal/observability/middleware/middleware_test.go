package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/logging"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Gin(GinConfig{
		SkipPaths:  []string{"/health"},
		Module:     logging.Module("departure"),
		TracerName: "test",
	}))
	r.Use(PanicRecoveryGin())
	return r
}

func TestGin_PropagatesRequestID(t *testing.T) {
	r := newRouter()

	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = logging.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("x-request-id", incoming)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if seen != incoming {
		t.Errorf("request id in context: got %q, want %q", seen, incoming)
	}
	if got := w.Header().Get("x-request-id"); got != incoming {
		t.Errorf("response header: got %q, want %q", got, incoming)
	}
}

func TestGin_GeneratesRequestIDForInvalidHeader(t *testing.T) {
	r := newRouter()
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("x-request-id", "bogus")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if _, err := uuid.Parse(w.Header().Get("x-request-id")); err != nil {
		t.Errorf("response header: got %q, want a generated uuid", w.Header().Get("x-request-id"))
	}
}

func TestGin_SkipsConfiguredPaths(t *testing.T) {
	r := newRouter()
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := w.Header().Get("x-request-id"); got != "" {
		t.Errorf("skipped path got request id %q", got)
	}
}

func TestPanicRecoveryGin(t *testing.T) {
	r := newRouter()
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
