package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func headerContains(value, target string) bool {
	for part := range strings.SplitSeq(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), target) {
			return true
		}
	}
	return false
}

func TestCORSDefaultsToAnyOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/catalog", nil)
	req.Header.Set("Origin", "http://app.example.com")
	rec := httptest.NewRecorder()
	CORS()(okHandler).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected *, got %q", got)
	}
	expose := rec.Header().Get("Access-Control-Expose-Headers")
	for _, h := range []string{"Link", "Location", "X-Request-Id"} {
		if !headerContains(expose, h) {
			t.Errorf("expected %s to be exposed, got %q", h, expose)
		}
	}
}

func TestCORSRestrictsOrigins(t *testing.T) {
	h := CORS("https://app.example.com")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no allow-origin for foreign origin, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodOptions, "/v1/profile", nil)
	req.Header.Set("Origin", "http://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, traceparent")
	rec := httptest.NewRecorder()
	CORS()(next).ServeHTTP(rec, req)

	if called {
		t.Fatal("preflight must not reach the handler")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	allow := rec.Header().Get("Access-Control-Allow-Headers")
	for _, h := range []string{"Authorization", "traceparent"} {
		if !headerContains(allow, h) {
			t.Errorf("expected %s in allowed headers, got %q", h, allow)
		}
	}
}

func TestRequestIDGeneratesUUID(t *testing.T) {
	var fromCtx string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		fromCtx = chimiddleware.GetReqID(r.Context())
	})
	rec := httptest.NewRecorder()
	RequestID()(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	id := rec.Header().Get(chimiddleware.RequestIDHeader)
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.Version() != 4 {
		t.Fatalf("expected UUIDv4, got %q", id)
	}
	if fromCtx != id {
		t.Errorf("context id %q does not match header %q", fromCtx, id)
	}
}

func TestRequestIDReusesValidHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "client-req-42")
	rec := httptest.NewRecorder()
	RequestID()(okHandler).ServeHTTP(rec, req)

	if got := rec.Header().Get(chimiddleware.RequestIDHeader); got != "client-req-42" {
		t.Errorf("expected incoming id, got %q", got)
	}
}

func TestRequestIDRejectsUnsafeHeaders(t *testing.T) {
	for _, bad := range []string{"line\nbreak", "tab\there", strings.Repeat("a", maxRequestIDLength+1), "café"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(chimiddleware.RequestIDHeader, bad)
		rec := httptest.NewRecorder()
		RequestID()(okHandler).ServeHTTP(rec, req)

		if got := rec.Header().Get(chimiddleware.RequestIDHeader); got == bad {
			t.Errorf("expected %q to be replaced", bad)
		}
	}
}

func TestValidRequestIDBoundaries(t *testing.T) {
	tests := map[string]bool{
		"":                                     false,
		" ":                                    true,
		"~":                                    true,
		"\x7f":                                 false,
		strings.Repeat("x", maxRequestIDLength): true,
	}
	for id, want := range tests {
		if got := validRequestID(id); got != want {
			t.Errorf("validRequestID(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestVaryAddsAccept(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Custom", "kept")
		w.WriteHeader(http.StatusCreated)
	})
	rec := httptest.NewRecorder()
	Vary()(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	if rec.Code != http.StatusCreated || rec.Header().Get("X-Custom") != "kept" {
		t.Fatalf("downstream response not preserved: %d %v", rec.Code, rec.Header())
	}
	if got := rec.Header().Get("Vary"); got != "Accept" {
		t.Errorf("expected Vary Accept, got %q", got)
	}
}

func TestSecuritySetsHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	Security("/api-docs")(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/profile", nil))

	for _, kv := range securityHeaders {
		if got := rec.Header().Get(kv[0]); got != kv[1] {
			t.Errorf("%s = %q, want %q", kv[0], got, kv[1])
		}
	}
}

func TestSecuritySkipsDocs(t *testing.T) {
	rec := httptest.NewRecorder()
	Security("/api-docs")(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api-docs", nil))

	if got := rec.Header().Get("X-Frame-Options"); got != "" {
		t.Errorf("expected no security headers on docs, got X-Frame-Options %q", got)
	}
}
