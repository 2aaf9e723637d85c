package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	t.Parallel()

	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Error("expected a generated request id in context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("header %q does not match context value %q", got, seen)
	}
}

func TestRequestID_PreservesIncoming(t *testing.T) {
	t.Parallel()

	handler := RequestID(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "incoming-id")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "incoming-id" {
		t.Errorf("expected incoming-id, got %q", got)
	}
}

func TestGetRequestID_EmptyContext(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetRequestID(req.Context()); got != "" {
		t.Errorf("expected empty id, got %q", got)
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	handler := CORS(cfg)(okHandler())

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantAllowed string
	}{
		{
			name:       "same origin request passes untouched",
			method:     http.MethodGet,
			origin:     "",
			wantStatus: http.StatusOK,
		},
		{
			name:        "allowed origin gets headers",
			method:      http.MethodGet,
			origin:      "https://app.example.com",
			wantStatus:  http.StatusOK,
			wantAllowed: "https://app.example.com",
		},
		{
			name:        "origin match is case insensitive",
			method:      http.MethodGet,
			origin:      "https://APP.example.com",
			wantStatus:  http.StatusOK,
			wantAllowed: "https://APP.example.com",
		},
		{
			name:        "preflight for allowed origin",
			method:      http.MethodOptions,
			origin:      "https://app.example.com",
			wantStatus:  http.StatusNoContent,
			wantAllowed: "https://app.example.com",
		},
		{
			name:       "preflight for unknown origin is refused",
			method:     http.MethodOptions,
			origin:     "https://evil.example.com",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unknown origin proceeds without headers",
			method:     http.MethodGet,
			origin:     "https://evil.example.com",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllowed {
				t.Errorf("allow-origin: got %q, want %q", got, tt.wantAllowed)
			}
		})
	}
}

func TestCORS_PreflightCarriesMethodsAndMaxAge(t *testing.T) {
	t.Parallel()

	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	handler := CORS(cfg)(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Errorf("allow-methods: got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "86400" {
		t.Errorf("max-age: got %q", got)
	}
}

func TestRecoverer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !bytes.Contains(buf.Bytes(), []byte("boom")) {
		t.Error("panic value not logged")
	}
}

func TestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/coins/BTCUSDT", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["path"] != "/coins/BTCUSDT" {
		t.Errorf("path: got %v", entry["path"])
	}
	if status, ok := entry["status_code"].(float64); !ok || int(status) != http.StatusTeapot {
		t.Errorf("status_code: got %v", entry["status_code"])
	}
}

func TestLogger_PassesBodyThrough(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Body.String() != "hello" {
		t.Errorf("body: got %q", rec.Body.String())
	}
}
