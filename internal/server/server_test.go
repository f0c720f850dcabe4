package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/kollabary/backend/internal/config"
)

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{
			Port:          "0",
			Env:           "development",
			LogLevel:      "error",
			SweepInterval: time.Hour,
			RateLimitRPM:  10000,
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := New(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(s.limiter.Stop)
	return s
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Healthy bool `json:"healthy"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.Healthy {
		t.Error("in-memory server should be healthy")
	}
}

func TestTierGuidePublic(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/ranking/tiers", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Kollabary Icon") {
		t.Error("tier guide should list the top tier")
	}
}

func TestCollaborationsRequireIdentity(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/collaborations", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAdminGate(t *testing.T) {
	cfg := &config.Config{
		Port:          "0",
		Env:           "production",
		LogLevel:      "error",
		AdminSecret:   "topsecret",
		SweepInterval: time.Hour,
		RateLimitRPM:  10000,
	}
	s := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodPut, "/v1/admin/ranking/weights", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("missing secret: status = %d, want 403", w.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/v1/admin/ranking/weights", strings.NewReader(`{"averageRating": 60}`))
	req.Header.Set("X-Admin-Secret", "topsecret")
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("with secret: status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s := newTestServer(t, nil)

	body := `{"niche":"fitness","followersCount":5000,"platforms":[{"kind":"instagram","handle":"@fit","followers":5000}]}`
	req := httptest.NewRequest(http.MethodPut, "/v1/influencers/me", strings.NewReader(body))
	req.Header.Set("X-User-ID", "creator")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("save profile: status = %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/ranking/creator/breakdown", nil)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("breakdown: status = %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Rising Creator") {
		t.Errorf("fresh profile should rank at the base tier: %s", w.Body.String())
	}
}

func TestMaskDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://user:pass@db:5432/kollabary", "postgres://***@db:5432/kollabary"},
		{"postgres://db:5432/kollabary", "postgres://db:5432/kollabary"},
		{"user:pass@host", "***@host"},
	}
	for _, tc := range tests {
		if got := maskDSN(tc.in); got != tc.want {
			t.Errorf("maskDSN(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
