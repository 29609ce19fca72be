package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoggingMiddlewareSetsRequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RequestIDFromContext(r.Context()) == "" {
			t.Fatal("expected request id in context")
		}
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	LoggingMiddleware(nil, nil, next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}
}

func TestLoggingMiddlewarePreservesValidRequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	LoggingMiddleware(nil, nil, next).ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected preserved request id, got %q", got)
	}
}

func TestLoggingMiddlewareReplacesMalformedRequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "bad id with spaces!")
	rec := httptest.NewRecorder()
	LoggingMiddleware(nil, nil, next).ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got == "bad id with spaces!" || got == "" {
		t.Fatalf("expected regenerated request id, got %q", got)
	}
}
