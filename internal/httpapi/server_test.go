package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hamed0406/weatheralert/internal/alert"
	"github.com/hamed0406/weatheralert/internal/domain"
	apimw "github.com/hamed0406/weatheralert/internal/httpapi/middleware"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		in   domain.Outcome
		want int
	}{
		{domain.Outcome{Status: domain.StatusNormal}, http.StatusOK},
		{domain.Outcome{Status: domain.StatusSkipped}, http.StatusOK},
		{domain.Outcome{Status: domain.StatusAlertSent}, http.StatusOK},
		{domain.Outcome{Status: domain.StatusError, Err: alert.ErrValidation}, http.StatusBadRequest},
		{domain.Outcome{Status: domain.StatusError, Err: alert.ErrChannel}, http.StatusInternalServerError},
		{domain.Outcome{Status: domain.StatusError, Err: alert.ErrPersistence}, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := statusFor(c.in); got != c.want {
			t.Fatalf("statusFor(%+v)=%d want %d", c.in, got, c.want)
		}
	}
}

func TestRouter_HealthzAndMetricsAreOpen(t *testing.T) {
	srv := NewServer(nil, nil, nil, "")
	h := srv.Router(apimw.Keys{Public: []string{"p"}, Admin: []string{"a"}}, []string{"https://app.example.com"}, 0, 0, 0, 0)

	for _, path := range []string{"/healthz", "/metrics"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: want 200 got %d", path, rr.Code)
		}
	}
}

func TestRouter_CORSRestrictsOrigins(t *testing.T) {
	srv := NewServer(nil, nil, nil, "")
	h := srv.Router(apimw.Keys{}, []string{"https://app.example.com"}, 0, 0, 0, 0)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Fatalf("allowed origin not echoed: %v", rr.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("foreign origin allowed")
	}
}
