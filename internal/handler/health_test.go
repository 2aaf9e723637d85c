package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeChecker struct {
	err error
}

func (f *fakeChecker) Ping(ctx context.Context) error { return f.err }

func TestHealthHandler_Healthz(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(nil, t.TempDir())

	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected ok, got %s", resp.Status)
	}
}

func TestHealthHandler_Readyz(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cache      HealthChecker
		wantStatus int
		wantRedis  string
	}{
		{
			name:       "redis healthy",
			cache:      &fakeChecker{},
			wantStatus: http.StatusOK,
			wantRedis:  "ok",
		},
		{
			name:       "redis not configured",
			cache:      nil,
			wantStatus: http.StatusOK,
			wantRedis:  "not configured",
		},
		{
			name:       "redis down",
			cache:      &fakeChecker{err: errors.New("connection refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantRedis:  "error: connection refused",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthHandler(tt.cache, t.TempDir())

			rec := httptest.NewRecorder()
			h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}

			var resp HealthResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decoding response failed: %v", err)
			}
			if resp.Checks["redis"] != tt.wantRedis {
				t.Errorf("redis check: got %q, want %q", resp.Checks["redis"], tt.wantRedis)
			}
			if resp.Checks["upload_dir"] != "ok" {
				t.Errorf("upload_dir check: got %q", resp.Checks["upload_dir"])
			}
		})
	}
}
