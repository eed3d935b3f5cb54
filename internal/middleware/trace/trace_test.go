package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"daybook/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Output: &buf, Format: "json"})
	m := NewMiddleware(func(*http.Request) string { return "203.0.113.1" }, logger)

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		log.FromContext(r.Context()).InfoContext(r.Context(), "inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/entries", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("request id %q is not a UUID", seen)
	}
	if rr.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("response header = %q, want %q", rr.Header().Get(RequestIDHeader), seen)
	}
	out := buf.String()
	if strings.Count(out, seen) < 2 {
		t.Fatalf("handler and completion logs should carry the request id:\n%s", out)
	}
	if !strings.Contains(out, `"status_code":418`) || !strings.Contains(out, `"client_ip":"203.0.113.1"`) {
		t.Fatalf("completion log missing fields:\n%s", out)
	}
	if m.GetMetrics().TotalRequests != 1 {
		t.Fatalf("total requests = %d", m.GetMetrics().TotalRequests)
	}
}

func TestMiddlewareReusesIncomingID(t *testing.T) {
	m := NewMiddleware(nil, log.New(log.Config{Output: &bytes.Buffer{}}))
	h := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get(RequestIDHeader) != id {
		t.Fatalf("incoming id not reused: %q", rr.Header().Get(RequestIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not a uuid")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get(RequestIDHeader); got == "not a uuid" || got == "" {
		t.Fatalf("malformed id should be replaced, got %q", got)
	}
}
